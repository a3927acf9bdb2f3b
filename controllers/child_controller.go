package controllers

import (
	"net/http"

	"KinderTube/models"
	"KinderTube/services"

	"github.com/gin-gonic/gin"
)

var childService *services.ChildService

func SetChildService(service *services.ChildService) {
	childService = service
}

func ListChildren(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	children, err := childService.List(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", children)
}

func CreateChild(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var input struct {
		Name        string `json:"name" binding:"required,max=50"`
		DateOfBirth string `json:"dateOfBirth" binding:"required"`
		Gender      string `json:"gender" binding:"required,gender"`
		Avatar      string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	dob, err := models.ParseDate(input.DateOfBirth)
	if err != nil {
		respondError(c, err)
		return
	}

	child, err := childService.Create(c.Request.Context(), who, services.ChildInput{
		Name:        input.Name,
		DateOfBirth: dob,
		Gender:      models.Gender(input.Gender),
		Avatar:      input.Avatar,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "child profile created", child)
}

func ReadChild(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	child, err := childService.Get(c.Request.Context(), who, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", child)
}

func UpdateChild(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input struct {
		Name        *string `json:"name"`
		DateOfBirth *string `json:"dateOfBirth"`
		Gender      *string `json:"gender" binding:"omitempty,gender"`
		Avatar      *string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	update := services.ChildUpdate{Name: input.Name, Avatar: input.Avatar}
	if input.DateOfBirth != nil {
		dob, err := models.ParseDate(*input.DateOfBirth)
		if err != nil {
			respondError(c, err)
			return
		}
		update.DateOfBirth = &dob
	}
	if input.Gender != nil {
		gender := models.Gender(*input.Gender)
		update.Gender = &gender
	}

	child, err := childService.Update(c.Request.Context(), who, id, update)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "child profile updated", child)
}

func DeleteChild(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := childService.Delete(c.Request.Context(), who, id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "child profile deleted", nil)
}

package controllers

import (
	"net/http"

	"KinderTube/services"

	"github.com/gin-gonic/gin"
)

var authService *services.AuthService

func SetAuthService(service *services.AuthService) {
	authService = service
}

func RegisterParent(c *gin.Context) {
	var input struct {
		Username     string `json:"username" binding:"required,min=3,max=30"`
		Email        string `json:"email" binding:"required,email"`
		Password     string `json:"password" binding:"required,min=6"`
		FirstName    string `json:"firstName"`
		LastName     string `json:"lastName"`
		SixDigitCode string `json:"sixDigitCode" binding:"required,pin"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := authService.RegisterParent(c.Request.Context(), services.RegisterInput{
		Username:     input.Username,
		Email:        input.Email,
		Password:     input.Password,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		SixDigitCode: input.SixDigitCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "registered", result)
}

// LoginParent требует пароль и шестизначный код
func LoginParent(c *gin.Context) {
	var input struct {
		Email        string `json:"email" binding:"required"`
		Password     string `json:"password" binding:"required"`
		SixDigitCode string `json:"sixDigitCode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := authService.LoginParent(c.Request.Context(), input.Email, input.Password, input.SixDigitCode)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "logged in", result)
}

// LoginChild открывает детскую сессию по учетке родителя
func LoginChild(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := authService.LoginChild(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "logged in", result)
}

func Me(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	profile, err := authService.Me(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", profile)
}

func ChangePassword(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var input struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	if err := authService.ChangePassword(c.Request.Context(), who, input.CurrentPassword, input.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "password changed", nil)
}

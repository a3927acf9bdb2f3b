package controllers

import (
	"net/http"

	"KinderTube/models"
	"KinderTube/services"

	"github.com/gin-gonic/gin"
)

var (
	parentService *services.ParentService
	adminService  *services.AdminService
)

func SetParentService(service *services.ParentService) {
	parentService = service
}

func SetAdminService(service *services.AdminService) {
	adminService = service
}

func UpdateParent(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var input struct {
		FirstName    *string `json:"firstName" binding:"omitempty,max=50"`
		LastName     *string `json:"lastName" binding:"omitempty,max=50"`
		Email        *string `json:"email" binding:"omitempty,email"`
		ProfileImage *string `json:"profileImage"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	parent, err := parentService.UpdateProfile(c.Request.Context(), who, services.ProfileUpdate{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		ProfileImage: input.ProfileImage,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "profile updated", parent)
}

func UpdateDeviceToken(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var input struct {
		DeviceToken string `json:"deviceToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	if err := parentService.UpdateDeviceToken(c.Request.Context(), who, input.DeviceToken); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "device token updated", nil)
}

func ParentStats(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	stats, err := parentService.Stats(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", stats)
}

// Администрирование

func ListUsers(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	page, err := adminService.ListUsers(c.Request.Context(), who, models.ParentFilter{
		Search: c.Query("search"),
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "limit", 20),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", page)
}

func UpdateUserRole(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input struct {
		Role models.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	parent, err := adminService.UpdateRole(c.Request.Context(), who, id, input.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "role updated", parent)
}

func DeactivateUser(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := adminService.Deactivate(c.Request.Context(), who, id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "user deactivated", nil)
}

// SendTestNotification отправляет пробное уведомление выбранному пользователю
func SendTestNotification(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input struct {
		Title string `json:"title" binding:"required"`
		Body  string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	if err := adminService.SendTestNotification(c.Request.Context(), who, id, input.Title, input.Body); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "notification sent", nil)
}

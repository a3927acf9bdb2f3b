package controllers

import (
	"net/http"

	"KinderTube/middlewares"

	"github.com/gin-gonic/gin"
)

// SessionInfo показывает, как сервер понял токен текущего запроса
func SessionInfo(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, "ok", gin.H{
		"parent_id":  who.ParentID,
		"user_type":  who.UserType,
		"role":       who.Role,
		"is_admin":   who.IsAdmin(),
		"request_id": c.Writer.Header().Get(middlewares.RequestIDHeader),
	})
}

package middlewares

import (
	"errors"
	"strings"

	"KinderTube/apperrors"
	"KinderTube/jwt"
	"KinderTube/models"
	"KinderTube/repositories"

	"github.com/gin-gonic/gin"
)

const callerKey = "caller"

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperrors.HTTPStatus(err), gin.H{"error": apperrors.PublicMessage(err)})
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	// браузер не может передать заголовок при открытии WebSocket
	if c.IsWebsocket() {
		return c.Query("token")
	}
	return ""
}

// AuthMiddleware validates the bearer token and loads the account behind it, so
// deactivated parents and role changes take effect without reissuing tokens.
func AuthMiddleware(tokens *jwt.Manager, parents repositories.ParentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			abort(c, apperrors.Unauthorized("unauthorized"))
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			abort(c, err)
			return
		}

		parent, err := parents.FindByID(c.Request.Context(), claims.ParentID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				abort(c, apperrors.Unauthorized("account not found"))
				return
			}
			abort(c, apperrors.Internal("failed to load user", err))
			return
		}
		if !parent.IsActive {
			abort(c, apperrors.Unauthorized("account is deactivated"))
			return
		}

		caller := claims.Caller()
		caller.Role = parent.Role
		c.Set(callerKey, caller)
		c.Set("parent_id", caller.ParentID)
		c.Set("user_type", string(caller.UserType))
		c.Next()
	}
}

// CallerFrom returns the caller stored by AuthMiddleware.
func CallerFrom(c *gin.Context) (models.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return models.Caller{}, false
	}
	caller, ok := v.(models.Caller)
	return caller, ok
}

func requireCaller(check func(models.Caller) bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			abort(c, apperrors.Unauthorized("unauthorized"))
			return
		}
		if !check(caller) {
			abort(c, apperrors.Forbidden("%s", message))
			return
		}
		c.Next()
	}
}

func RequireParent() gin.HandlerFunc {
	return requireCaller(models.Caller.IsParent, "parent session required")
}

func RequireChild() gin.HandlerFunc {
	return requireCaller(models.Caller.IsChild, "child session required")
}

func RequireAdmin() gin.HandlerFunc {
	return requireCaller(models.Caller.IsAdmin, "admin role required")
}

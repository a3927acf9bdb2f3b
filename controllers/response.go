package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"KinderTube/apperrors"
	"KinderTube/middlewares"
	"KinderTube/models"
	"KinderTube/validation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Log is used for failures that end in a 500.
var Log = logrus.StandardLogger()

func SetLogger(log *logrus.Logger) {
	Log = log
}

func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		Log.WithError(err).WithField("request_id", c.GetString("request_id")).Error("request failed")
	}
	c.JSON(status, gin.H{"error": apperrors.PublicMessage(err)})
}

// respondBindError answers 400 for malformed bodies and failed binding tags.
func respondBindError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message(err)})
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"message": message, "data": data})
}

func caller(c *gin.Context) (models.Caller, bool) {
	who, ok := middlewares.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return who, ok
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

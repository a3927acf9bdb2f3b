package controllers

import (
	"KinderTube/websocket"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
)

var (
	webSocketHub *websocket.Hub
	upgrader     gorilla.Upgrader
)

// SetWebSocketHub sets the hub parents subscribe to. The hub must already be running.
func SetWebSocketHub(hub *websocket.Hub, allowedOrigin string) {
	webSocketHub = hub
	upgrader = websocket.Upgrader(allowedOrigin)
}

// ServeWs подписывает родителя на уведомления о запросах детей
func ServeWs(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	if err := websocket.Serve(webSocketHub, upgrader, c.Writer, c.Request, who.ParentID); err != nil {
		Log.WithError(err).WithField("parent_id", who.ParentID).Warn("websocket upgrade failed")
	}
}

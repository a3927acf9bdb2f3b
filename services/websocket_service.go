package services

import (
	"context"

	"KinderTube/websocket"
)

// HubNotifier pushes notifications to the parent's open websocket connections.
type HubNotifier struct {
	Hub *websocket.Hub
}

func NewHubNotifier(hub *websocket.Hub) *HubNotifier {
	return &HubNotifier{Hub: hub}
}

func (n *HubNotifier) NotifyParent(_ context.Context, parentID uint, notification Notification) error {
	return n.Hub.SendToParent(parentID, websocket.Message{
		Type: notification.Type,
		Payload: map[string]interface{}{
			"title": notification.Title,
			"body":  notification.Body,
			"data":  notification.Data,
		},
	})
}

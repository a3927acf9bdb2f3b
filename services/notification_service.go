package services

import (
	"context"
	"fmt"
	"strconv"

	"KinderTube/repositories"

	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
)

const (
	EventVideoRequested = "video_requested"
	EventTest           = "test"
)

// Notification is what a parent is told about an event in the family.
type Notification struct {
	Type  string
	Title string
	Body  string
	Data  map[string]string
}

// Notifier delivers notifications to a parent. Delivery is best effort: callers only
// log the error.
type Notifier interface {
	NotifyParent(ctx context.Context, parentID uint, n Notification) error
}

// MultiNotifier sends through every notifier and logs the failures.
type MultiNotifier struct {
	Notifiers []Notifier
	Log       *logrus.Logger
}

func (m *MultiNotifier) NotifyParent(ctx context.Context, parentID uint, n Notification) error {
	var firstErr error
	for _, notifier := range m.Notifiers {
		if err := notifier.NotifyParent(ctx, parentID, n); err != nil {
			m.Log.WithError(err).WithFields(logrus.Fields{
				"parent_id": parentID,
				"type":      n.Type,
			}).Warn("notification delivery failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// MessageSender is satisfied by *messaging.Client.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushNotifier sends FCM push notifications to the parent's registered device.
type PushNotifier struct {
	FCMClient  MessageSender
	ParentRepo repositories.ParentRepository
	Log        *logrus.Logger
}

func NewPushNotifier(client MessageSender, parentRepo repositories.ParentRepository, log *logrus.Logger) *PushNotifier {
	return &PushNotifier{FCMClient: client, ParentRepo: parentRepo, Log: log}
}

func (s *PushNotifier) NotifyParent(ctx context.Context, parentID uint, n Notification) error {
	parent, err := s.ParentRepo.FindByID(ctx, parentID)
	if err != nil {
		return fmt.Errorf("parent not found: %w", err)
	}

	if parent.DeviceToken == "" {
		return nil // Пропускаем отправку, если нет токена устройства
	}

	data := map[string]string{"type": n.Type, "parent_id": strconv.FormatUint(uint64(parentID), 10)}
	for k, v := range n.Data {
		data[k] = v
	}

	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data:  data,
		Token: parent.DeviceToken,
	}

	resp, err := s.FCMClient.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}

	s.Log.WithFields(logrus.Fields{"parent_id": parentID, "message_id": resp}).Debug("push notification sent")
	return nil
}

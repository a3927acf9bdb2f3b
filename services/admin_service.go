package services

import (
	"context"
	"strconv"
	"strings"

	"KinderTube/apperrors"
	"KinderTube/models"
	"KinderTube/repositories"

	"github.com/sirupsen/logrus"
)

type AdminService struct {
	ParentRepo repositories.ParentRepository
	Notifier   Notifier
	Log        *logrus.Logger
}

func NewAdminService(parentRepo repositories.ParentRepository, notifier Notifier, log *logrus.Logger) *AdminService {
	return &AdminService{ParentRepo: parentRepo, Notifier: notifier, Log: log}
}

func (s *AdminService) ListUsers(ctx context.Context, caller models.Caller, filter models.ParentFilter) (models.ParentPage, error) {
	if err := requireAdmin(caller); err != nil {
		return models.ParentPage{}, err
	}
	filter.Normalize()
	users, total, err := s.ParentRepo.List(ctx, filter)
	if err != nil {
		return models.ParentPage{}, apperrors.Internal("failed to list users", err)
	}
	if users == nil {
		users = []models.Parent{}
	}
	return models.ParentPage{
		Users:       users,
		Total:       total,
		CurrentPage: filter.Page,
		TotalPages:  int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	}, nil
}

func (s *AdminService) UpdateRole(ctx context.Context, caller models.Caller, parentID uint, role models.Role) (models.Parent, error) {
	if err := requireAdmin(caller); err != nil {
		return models.Parent{}, err
	}
	if !role.Valid() {
		return models.Parent{}, apperrors.Validation("role must be parent or admin")
	}
	parent, err := s.ParentRepo.FindByID(ctx, parentID)
	if err != nil {
		return models.Parent{}, persistErr(err, "failed to load user")
	}
	parent.Role = role
	if err := s.ParentRepo.Save(ctx, &parent); err != nil {
		return models.Parent{}, persistErr(err, "failed to update role")
	}
	s.Log.WithFields(logrus.Fields{"admin_id": caller.ParentID, "parent_id": parentID, "role": role}).Info("role updated")
	return parent, nil
}

// Deactivate disables the account. Existing tokens stop working on the next request.
func (s *AdminService) Deactivate(ctx context.Context, caller models.Caller, parentID uint) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if parentID == caller.ParentID {
		return apperrors.Validation("administrators cannot deactivate themselves")
	}
	parent, err := s.ParentRepo.FindByID(ctx, parentID)
	if err != nil {
		return persistErr(err, "failed to load user")
	}
	parent.IsActive = false
	if err := s.ParentRepo.Save(ctx, &parent); err != nil {
		return persistErr(err, "failed to deactivate user")
	}
	s.Log.WithFields(logrus.Fields{"admin_id": caller.ParentID, "parent_id": parentID}).Info("user deactivated")
	return nil
}

// SendTestNotification отправляет тестовое уведомление пользователю по всем каналам.
// В отличие от обычных уведомлений ошибка доставки возвращается вызывающему.
func (s *AdminService) SendTestNotification(ctx context.Context, caller models.Caller, parentID uint, title, body string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	title, body = strings.TrimSpace(title), strings.TrimSpace(body)
	if title == "" || body == "" {
		return apperrors.Validation("title and body are required")
	}
	parent, err := s.ParentRepo.FindByID(ctx, parentID)
	if err != nil {
		return persistErr(err, "failed to load user")
	}
	if !parent.IsActive {
		return apperrors.Validation("account is deactivated")
	}
	if s.Notifier == nil {
		return apperrors.Internal("notifications are not configured", nil)
	}

	err = s.Notifier.NotifyParent(ctx, parentID, Notification{
		Type:  EventTest,
		Title: title,
		Body:  body,
		Data:  map[string]string{"sent_by": strconv.FormatUint(uint64(caller.ParentID), 10)},
	})
	if err != nil {
		return apperrors.Internal("failed to deliver notification", err)
	}
	s.Log.WithFields(logrus.Fields{"admin_id": caller.ParentID, "parent_id": parentID}).Info("test notification sent")
	return nil
}

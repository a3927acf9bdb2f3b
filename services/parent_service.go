package services

import (
	"context"
	"errors"
	"strings"

	"KinderTube/apperrors"
	"KinderTube/models"
	"KinderTube/repositories"
)

type ProfileUpdate struct {
	FirstName    *string
	LastName     *string
	Email        *string
	ProfileImage *string
}

// ParentService manages the parent's own account.
type ParentService struct {
	ParentRepo repositories.ParentRepository
	ChildRepo  repositories.ChildRepository
	VideoRepo  repositories.VideoRepository
}

func NewParentService(parentRepo repositories.ParentRepository, childRepo repositories.ChildRepository, videoRepo repositories.VideoRepository) *ParentService {
	return &ParentService{ParentRepo: parentRepo, ChildRepo: childRepo, VideoRepo: videoRepo}
}

func (s *ParentService) UpdateProfile(ctx context.Context, caller models.Caller, input ProfileUpdate) (models.Parent, error) {
	if err := requireParent(caller); err != nil {
		return models.Parent{}, err
	}
	parent, err := s.ParentRepo.FindByID(ctx, caller.ParentID)
	if err != nil {
		return models.Parent{}, persistErr(err, "failed to load user")
	}

	if input.FirstName != nil {
		parent.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		parent.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.ProfileImage != nil {
		parent.ProfileImage = *input.ProfileImage
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email == "" {
			return models.Parent{}, apperrors.Validation("email must not be empty")
		}
		if email != parent.Email {
			existing, err := s.ParentRepo.FindByEmail(ctx, email)
			if err == nil && existing.ID != parent.ID {
				return models.Parent{}, apperrors.Conflict("email is already in use")
			}
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return models.Parent{}, apperrors.Internal("failed to check email", err)
			}
			parent.Email = email
		}
	}

	if err := s.ParentRepo.Save(ctx, &parent); err != nil {
		return models.Parent{}, persistErr(err, "failed to update user")
	}
	return parent, nil
}

// UpdateDeviceToken stores the FCM token push notifications are sent to.
func (s *ParentService) UpdateDeviceToken(ctx context.Context, caller models.Caller, token string) error {
	if err := requireParent(caller); err != nil {
		return err
	}
	parent, err := s.ParentRepo.FindByID(ctx, caller.ParentID)
	if err != nil {
		return persistErr(err, "failed to load user")
	}
	parent.DeviceToken = strings.TrimSpace(token)
	return persistErr(s.ParentRepo.Save(ctx, &parent), "failed to update device token")
}

func (s *ParentService) Stats(ctx context.Context, caller models.Caller) (models.ParentStats, error) {
	if err := requireParent(caller); err != nil {
		return models.ParentStats{}, err
	}
	videos, views, err := s.VideoRepo.StatsByUploader(ctx, caller.ParentID)
	if err != nil {
		return models.ParentStats{}, apperrors.Internal("failed to load video stats", err)
	}
	children, err := s.ChildRepo.CountActiveByParent(ctx, caller.ParentID)
	if err != nil {
		return models.ParentStats{}, apperrors.Internal("failed to count child profiles", err)
	}
	return models.ParentStats{VideoCount: videos, ChildCount: children, TotalViews: views}, nil
}

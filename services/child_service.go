package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"KinderTube/apperrors"
	"KinderTube/models"
	"KinderTube/repositories"

	"github.com/sirupsen/logrus"
)

const maxChildNameLength = 50

type ChildInput struct {
	Name        string
	DateOfBirth time.Time
	Gender      models.Gender
	Avatar      string
}

// ChildUpdate carries the fields to change, nil means keep.
type ChildUpdate struct {
	Name        *string
	DateOfBirth *time.Time
	Gender      *models.Gender
	Avatar      *string
}

type ChildService struct {
	ChildRepo repositories.ChildRepository
	Log       *logrus.Logger
	Now       func() time.Time
}

func NewChildService(childRepo repositories.ChildRepository, log *logrus.Logger) *ChildService {
	return &ChildService{ChildRepo: childRepo, Log: log, Now: time.Now}
}

func (s *ChildService) validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxChildNameLength {
		return "", apperrors.Validation("name must be 1 to %d characters", maxChildNameLength)
	}
	return name, nil
}

func (s *ChildService) validateBirthDate(dob time.Time) error {
	if dob.IsZero() || !dob.Before(s.Now()) {
		return apperrors.Validation("date of birth must be in the past")
	}
	return nil
}

func validateGender(g models.Gender) error {
	if !g.Valid() {
		return apperrors.Validation("gender must be one of male, female, other, prefer-not-to-say")
	}
	return nil
}

func (s *ChildService) List(ctx context.Context, caller models.Caller) ([]models.ChildDetail, error) {
	if err := requireParent(caller); err != nil {
		return nil, err
	}
	children, err := s.ChildRepo.ListActiveByParent(ctx, caller.ParentID)
	if err != nil {
		return nil, apperrors.Internal("failed to load child profiles", err)
	}
	now := s.Now()
	details := make([]models.ChildDetail, 0, len(children))
	for i := range children {
		details = append(details, models.NewChildDetail(&children[i], now))
	}
	return details, nil
}

func (s *ChildService) Create(ctx context.Context, caller models.Caller, input ChildInput) (models.ChildDetail, error) {
	if err := requireParent(caller); err != nil {
		return models.ChildDetail{}, err
	}
	name, err := s.validateName(input.Name)
	if err != nil {
		return models.ChildDetail{}, err
	}
	if err := s.validateBirthDate(input.DateOfBirth); err != nil {
		return models.ChildDetail{}, err
	}
	if err := validateGender(input.Gender); err != nil {
		return models.ChildDetail{}, err
	}

	child := &models.ChildProfile{
		ParentID:      caller.ParentID,
		Name:          name,
		DateOfBirth:   input.DateOfBirth,
		Gender:        input.Gender,
		Avatar:        input.Avatar,
		IsActive:      true,
		Version:       1,
		Requests:      []models.VideoRequest{},
		SearchHistory: []models.SearchEntry{},
		WatchHistory:  []models.WatchEntry{},
	}
	if err := s.ChildRepo.Create(ctx, child); err != nil {
		return models.ChildDetail{}, persistErr(err, "failed to create child profile")
	}

	s.Log.WithFields(logrus.Fields{"parent_id": caller.ParentID, "child_id": child.ID}).Info("child profile created")
	return models.NewChildDetail(child, s.Now()), nil
}

func (s *ChildService) Get(ctx context.Context, caller models.Caller, childID uint) (models.ChildDetail, error) {
	if err := requireParent(caller); err != nil {
		return models.ChildDetail{}, err
	}
	child, err := loadOwnedChild(ctx, s.ChildRepo, caller, childID)
	if err != nil {
		return models.ChildDetail{}, err
	}
	return models.NewChildDetail(child, s.Now()), nil
}

func (s *ChildService) Update(ctx context.Context, caller models.Caller, childID uint, input ChildUpdate) (models.ChildDetail, error) {
	if err := requireParent(caller); err != nil {
		return models.ChildDetail{}, err
	}

	// Все проверки до чтения и записи
	var name string
	if input.Name != nil {
		var err error
		if name, err = s.validateName(*input.Name); err != nil {
			return models.ChildDetail{}, err
		}
	}
	if input.DateOfBirth != nil {
		if err := s.validateBirthDate(*input.DateOfBirth); err != nil {
			return models.ChildDetail{}, err
		}
	}
	if input.Gender != nil {
		if err := validateGender(*input.Gender); err != nil {
			return models.ChildDetail{}, err
		}
	}

	child, err := loadOwnedChild(ctx, s.ChildRepo, caller, childID)
	if err != nil {
		return models.ChildDetail{}, err
	}
	if input.Name != nil {
		child.Name = name
	}
	if input.DateOfBirth != nil {
		child.DateOfBirth = *input.DateOfBirth
	}
	if input.Gender != nil {
		child.Gender = *input.Gender
	}
	if input.Avatar != nil {
		child.Avatar = *input.Avatar
	}

	if err := s.ChildRepo.Save(ctx, child); err != nil {
		return models.ChildDetail{}, persistErr(err, "failed to update child profile")
	}
	return models.NewChildDetail(child, s.Now()), nil
}

// Delete deactivates the profile, its data is kept.
func (s *ChildService) Delete(ctx context.Context, caller models.Caller, childID uint) error {
	if err := requireParent(caller); err != nil {
		return err
	}
	child, err := loadOwnedChild(ctx, s.ChildRepo, caller, childID)
	if err != nil {
		return err
	}
	child.IsActive = false
	if err := s.ChildRepo.Save(ctx, child); err != nil {
		return persistErr(err, "failed to delete child profile")
	}
	s.Log.WithFields(logrus.Fields{"parent_id": caller.ParentID, "child_id": childID}).Info("child profile deactivated")
	return nil
}

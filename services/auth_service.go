package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"KinderTube/apperrors"
	"KinderTube/jwt"
	"KinderTube/models"
	"KinderTube/repositories"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	FirstName    string
	LastName     string
	SixDigitCode string
}

type AuthResult struct {
	Token string               `json:"token"`
	User  models.ParentProfile `json:"user"`
}

type AuthService struct {
	ParentRepo repositories.ParentRepository
	ChildRepo  repositories.ChildRepository
	Tokens     *jwt.Manager
	Log        *logrus.Logger
	Now        func() time.Time
}

func NewAuthService(parentRepo repositories.ParentRepository, childRepo repositories.ChildRepository, tokens *jwt.Manager, log *logrus.Logger) *AuthService {
	return &AuthService{ParentRepo: parentRepo, ChildRepo: childRepo, Tokens: tokens, Log: log, Now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Internal("failed to hash password", err)
	}
	return string(hashed), nil
}

func (s *AuthService) RegisterParent(ctx context.Context, input RegisterInput) (AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := normalizeEmail(input.Email)

	if n := utf8.RuneCountInString(username); n < 3 || n > 30 {
		return AuthResult{}, apperrors.Validation("username must be 3 to 30 characters")
	}
	if email == "" {
		return AuthResult{}, apperrors.Validation("email is required")
	}
	if len(input.Password) < minPasswordLength {
		return AuthResult{}, apperrors.Validation("password must be at least %d characters", minPasswordLength)
	}
	if !models.IsValidSixDigitCode(input.SixDigitCode) {
		return AuthResult{}, apperrors.Validation("six digit code must be exactly 6 digits")
	}

	exists, err := s.ParentRepo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return AuthResult{}, apperrors.Internal("failed to check existing users", err)
	}
	if exists {
		return AuthResult{}, apperrors.Conflict("user with this email or username already exists")
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	parent := &models.Parent{
		Username:     username,
		Email:        email,
		Password:     hashed,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		SixDigitCode: input.SixDigitCode,
		Role:         models.RoleParent,
		IsActive:     true,
	}
	if err := s.ParentRepo.Create(ctx, parent); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return AuthResult{}, apperrors.Conflict("user with this email or username already exists")
		}
		return AuthResult{}, apperrors.Internal("failed to create user", err)
	}

	s.Log.WithField("parent_id", parent.ID).Info("parent registered")
	return s.issue(ctx, *parent, models.UserTypeParent)
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (models.Parent, error) {
	parent, err := s.ParentRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Parent{}, apperrors.Unauthorized("invalid credentials")
		}
		return models.Parent{}, apperrors.Internal("failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(parent.Password), []byte(password)); err != nil {
		return models.Parent{}, apperrors.Unauthorized("invalid credentials")
	}
	if !parent.IsActive {
		return models.Parent{}, apperrors.Unauthorized("account is deactivated")
	}
	return parent, nil
}

// LoginParent requires the six digit code on top of the password.
func (s *AuthService) LoginParent(ctx context.Context, email, password, sixDigitCode string) (AuthResult, error) {
	parent, err := s.authenticate(ctx, email, password)
	if err != nil {
		return AuthResult{}, err
	}
	if subtle.ConstantTimeCompare([]byte(parent.SixDigitCode), []byte(sixDigitCode)) != 1 {
		return AuthResult{}, apperrors.Unauthorized("invalid six digit code")
	}
	return s.issue(ctx, parent, models.UserTypeParent)
}

// LoginChild opens a child-mode session with the parent's credentials.
func (s *AuthService) LoginChild(ctx context.Context, email, password string) (AuthResult, error) {
	parent, err := s.authenticate(ctx, email, password)
	if err != nil {
		return AuthResult{}, err
	}
	count, err := s.ChildRepo.CountActiveByParent(ctx, parent.ID)
	if err != nil {
		return AuthResult{}, apperrors.Internal("failed to load child profiles", err)
	}
	if count == 0 {
		return AuthResult{}, apperrors.Validation("create a child profile before using child mode")
	}
	return s.issue(ctx, parent, models.UserTypeChild)
}

func (s *AuthService) issue(ctx context.Context, parent models.Parent, userType models.UserType) (AuthResult, error) {
	token, err := s.Tokens.Issue(parent, userType)
	if err != nil {
		return AuthResult{}, err
	}
	profile, err := s.profile(ctx, parent, userType)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: profile}, nil
}

func (s *AuthService) profile(ctx context.Context, parent models.Parent, userType models.UserType) (models.ParentProfile, error) {
	children, err := s.ChildRepo.ListActiveByParent(ctx, parent.ID)
	if err != nil {
		return models.ParentProfile{}, apperrors.Internal("failed to load child profiles", err)
	}
	now := s.Now()
	summaries := make([]models.ChildSummary, 0, len(children))
	for i := range children {
		summaries = append(summaries, children[i].Summary(now))
	}
	return models.ParentProfile{Parent: &parent, UserType: userType, ChildrenProfiles: summaries}, nil
}

func (s *AuthService) Me(ctx context.Context, caller models.Caller) (models.ParentProfile, error) {
	parent, err := s.ParentRepo.FindByID(ctx, caller.ParentID)
	if err != nil {
		return models.ParentProfile{}, persistErr(err, "failed to load user")
	}
	return s.profile(ctx, parent, caller.UserType)
}

func (s *AuthService) ChangePassword(ctx context.Context, caller models.Caller, currentPassword, newPassword string) error {
	if err := requireParent(caller); err != nil {
		return err
	}
	if len(newPassword) < minPasswordLength {
		return apperrors.Validation("password must be at least %d characters", minPasswordLength)
	}
	parent, err := s.ParentRepo.FindByID(ctx, caller.ParentID)
	if err != nil {
		return persistErr(err, "failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(parent.Password), []byte(currentPassword)); err != nil {
		return apperrors.Validation("current password is incorrect")
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	parent.Password = hashed
	if err := s.ParentRepo.Save(ctx, &parent); err != nil {
		return persistErr(err, "failed to update password")
	}
	s.Log.WithField("parent_id", parent.ID).Info("password changed")
	return nil
}

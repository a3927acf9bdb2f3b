package models

import (
	"regexp"
	"time"
)

type Role string

const (
	RoleParent Role = "parent"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleParent || r == RoleAdmin
}

var sixDigitCodePattern = regexp.MustCompile(`^\d{6}$`)

// IsValidSixDigitCode проверяет, что PIN состоит ровно из 6 цифр
func IsValidSixDigitCode(code string) bool {
	return sixDigitCodePattern.MatchString(code)
}

type Parent struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:30;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Password     string    `json:"-" gorm:"not null"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	SixDigitCode string    `json:"-" gorm:"size:6;not null"`
	ProfileImage string    `json:"profile_image,omitempty"`
	Role         Role      `json:"role" gorm:"size:16;default:parent"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	DeviceToken  string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p *Parent) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// ChildSummary is the short child record returned together with a parent profile.
type ChildSummary struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Gender      Gender    `json:"gender"`
	Avatar      string    `json:"avatar,omitempty"`
	Age         int       `json:"age"`
	CreatedAt   time.Time `json:"created_at"`
}

type ParentProfile struct {
	*Parent
	UserType         UserType       `json:"user_type"`
	ChildrenProfiles []ChildSummary `json:"children_profiles"`
}

type ParentStats struct {
	VideoCount int64 `json:"video_count"`
	ChildCount int64 `json:"child_count"`
	TotalViews int64 `json:"total_views"`
}

// ParentFilter pages the admin user list.
type ParentFilter struct {
	Search string
	Page   int
	Limit  int
}

func (f *ParentFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type ParentPage struct {
	Users       []Parent `json:"users"`
	Total       int64    `json:"total"`
	CurrentPage int      `json:"current_page"`
	TotalPages  int      `json:"total_pages"`
}

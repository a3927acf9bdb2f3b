package models

import (
	"strings"
	"time"

	"KinderTube/apperrors"
)

type Category string

const (
	CategoryEducation     Category = "education"
	CategoryEntertainment Category = "entertainment"
	CategoryMusic         Category = "music"
	CategoryScience       Category = "science"
	CategoryArt           Category = "art"
	CategorySports        Category = "sports"
	CategoryStories       Category = "stories"
	CategoryOther         Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryEducation, CategoryEntertainment, CategoryMusic, CategoryScience,
		CategoryArt, CategorySports, CategoryStories, CategoryOther:
		return true
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return CategoryOther, nil
	}
	if !c.Valid() {
		return "", apperrors.Validation("unknown category %q", s)
	}
	return c, nil
}

const MaxAge = 18

type Video struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Title         string    `json:"title" gorm:"size:100;not null"`
	Description   string    `json:"description" gorm:"size:1000"`
	Category      Category  `json:"category" gorm:"size:24;index;default:other"`
	AgeMin        int       `json:"age_min" gorm:"default:0"`
	AgeMax        int       `json:"age_max" gorm:"not null"`
	Tags          []string  `json:"tags" gorm:"serializer:json"`
	Thumbnail     string    `json:"thumbnail,omitempty"`
	Filename      string    `json:"filename" gorm:"not null"`
	ContentType   string    `json:"content_type,omitempty"`
	Duration      int       `json:"duration"` // seconds
	IsApproved    bool      `json:"is_approved" gorm:"index:idx_video_feed;default:false"`
	IsPublic      bool      `json:"is_public" gorm:"index:idx_video_feed;not null"`
	IsActive      bool      `json:"is_active" gorm:"index:idx_video_feed;not null"`
	UploaderID    uint      `json:"uploader_id" gorm:"index;not null"`
	Views         int64     `json:"views" gorm:"default:0"`
	LikesCount    int64     `json:"likes_count" gorm:"default:0"`
	CommentsCount int64     `json:"comments_count" gorm:"default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Requestable reports whether a child may request the video.
func (v *Video) Requestable() bool {
	return v.IsApproved && v.IsActive
}

func (v *Video) InPublicFeed() bool {
	return v.Requestable() && v.IsPublic
}

// ChildSafe returns the subset of fields a child session may see.
func (v *Video) ChildSafe() ChildVideo {
	return ChildVideo{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Thumbnail:   v.Thumbnail,
		Category:    v.Category,
		Duration:    v.Duration,
	}
}

func ValidateAgeRange(min, max int) error {
	if min < 0 || max > MaxAge || min > max {
		return apperrors.Validation("age range must satisfy 0 <= age_min <= age_max <= %d", MaxAge)
	}
	return nil
}

type VideoLike struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	VideoID   uint      `json:"video_id" gorm:"uniqueIndex:idx_video_like;not null"`
	ParentID  uint      `json:"parent_id" gorm:"uniqueIndex:idx_video_like;not null"`
	CreatedAt time.Time `json:"created_at"`
}

type VideoComment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	VideoID   uint      `json:"video_id" gorm:"index;not null"`
	ParentID  uint      `json:"parent_id" gorm:"not null"`
	Text      string    `json:"text" gorm:"size:500;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// VideoFilter narrows the public feed.
type VideoFilter struct {
	Category Category
	Search   string
	Page     int
	Limit    int
}

func (f *VideoFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 50 {
		f.Limit = 12
	}
}

func (f VideoFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type VideoPage struct {
	Videos      []Video `json:"videos"`
	Total       int64   `json:"total"`
	CurrentPage int     `json:"current_page"`
	TotalPages  int     `json:"total_pages"`
}

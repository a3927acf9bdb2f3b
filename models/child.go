package models

import (
	"encoding/json"
	"strings"
	"time"

	"KinderTube/apperrors"
)

type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderOther          Gender = "other"
	GenderPreferNotToSay Gender = "prefer-not-to-say"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// ApprovalAction is the parent's decision on a pending request.
type ApprovalAction string

const (
	ActionApprove ApprovalAction = "approve"
	ActionReject  ApprovalAction = "reject"
)

func ParseApprovalAction(s string) (ApprovalAction, error) {
	switch a := ApprovalAction(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionApprove, ActionReject:
		return a, nil
	}
	return "", apperrors.Validation(`action must be either "approve" or "reject"`)
}

func (a *ApprovalAction) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return apperrors.Validation(`action must be either "approve" or "reject"`)
	}
	parsed, err := ParseApprovalAction(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Лимиты истории: старые записи удаляются первыми
const (
	MaxSearchHistory = 50
	MaxWatchHistory  = 100
)

// VideoRequest is the single record of a (child, video) pair. The approved library
// is derived from the requests with status approved.
type VideoRequest struct {
	ID             uint           `json:"-" gorm:"primaryKey"`
	ChildProfileID uint           `json:"-" gorm:"uniqueIndex:idx_child_video;not null"`
	VideoID        uint           `json:"video_id" gorm:"uniqueIndex:idx_child_video;not null"`
	RequestedBy    UserType       `json:"requested_by" gorm:"size:16"`
	RequestedAt    time.Time      `json:"requested_at"`
	Status         RequestStatus  `json:"status" gorm:"size:16;not null;default:pending"`
	ParentResponse *RequestStatus `json:"parent_response"`
	RespondedAt    *time.Time     `json:"responded_at"`
	RespondedBy    *uint          `json:"responded_by,omitempty"`
}

func (r *VideoRequest) respond(status RequestStatus, parentID uint, now time.Time) {
	response := status
	at := now
	by := parentID
	r.Status = status
	r.ParentResponse = &response
	r.RespondedAt = &at
	r.RespondedBy = &by
}

// ApprovedVideo is one entry of a child's approved library.
type ApprovedVideo struct {
	VideoID    uint      `json:"video_id"`
	ApprovedAt time.Time `json:"approved_at"`
	ApprovedBy uint      `json:"approved_by"`
}

type SearchEntry struct {
	ID             uint      `json:"-" gorm:"primaryKey"`
	ChildProfileID uint      `json:"-" gorm:"index;not null"`
	Query          string    `json:"query" gorm:"not null"`
	SearchedAt     time.Time `json:"searched_at"`
	ResultsCount   int       `json:"results_count"`
}

type WatchEntry struct {
	ID             uint      `json:"-" gorm:"primaryKey"`
	ChildProfileID uint      `json:"-" gorm:"index;not null"`
	VideoID        uint      `json:"video_id" gorm:"not null"`
	WatchedAt      time.Time `json:"watched_at"`
	WatchDuration  int       `json:"watch_duration"` // seconds
	Completed      bool      `json:"completed"`
}

type ChildProfile struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ParentID    uint      `json:"parent_id" gorm:"index:idx_parent_active;not null"`
	Name        string    `json:"name" gorm:"size:50;not null"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Gender      Gender    `json:"gender" gorm:"size:24;not null"`
	Avatar      string    `json:"avatar,omitempty"`
	IsActive    bool      `json:"is_active" gorm:"index:idx_parent_active;not null"`
	// Version растет при каждом сохранении (оптимистичная блокировка)
	Version       int            `json:"version" gorm:"not null;default:1"`
	Requests      []VideoRequest `json:"requested_videos" gorm:"foreignKey:ChildProfileID;constraint:OnDelete:CASCADE"`
	SearchHistory []SearchEntry  `json:"search_history" gorm:"foreignKey:ChildProfileID;constraint:OnDelete:CASCADE"`
	WatchHistory  []WatchEntry   `json:"watch_history" gorm:"foreignKey:ChildProfileID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Age in full years at now.
func (c *ChildProfile) Age(now time.Time) int {
	age := now.Year() - c.DateOfBirth.Year()
	if now.Month() < c.DateOfBirth.Month() ||
		(now.Month() == c.DateOfBirth.Month() && now.Day() < c.DateOfBirth.Day()) {
		age--
	}
	return age
}

func (c *ChildProfile) Summary(now time.Time) ChildSummary {
	return ChildSummary{
		ID:          c.ID,
		Name:        c.Name,
		DateOfBirth: c.DateOfBirth,
		Gender:      c.Gender,
		Avatar:      c.Avatar,
		Age:         c.Age(now),
		CreatedAt:   c.CreatedAt,
	}
}

// FindRequest returns a pointer into Requests, nil when the video was never requested.
func (c *ChildProfile) FindRequest(videoID uint) *VideoRequest {
	for i := range c.Requests {
		if c.Requests[i].VideoID == videoID {
			return &c.Requests[i]
		}
	}
	return nil
}

// AddRequest appends a pending request. A second request for the same video is a
// conflict whatever the status of the first one.
func (c *ChildProfile) AddRequest(videoID uint, requestedBy UserType, now time.Time) (*VideoRequest, error) {
	if c.FindRequest(videoID) != nil {
		return nil, apperrors.Conflict("video already requested for this child")
	}
	c.Requests = append(c.Requests, VideoRequest{
		ChildProfileID: c.ID,
		VideoID:        videoID,
		RequestedBy:    requestedBy,
		RequestedAt:    now,
		Status:         RequestPending,
	})
	return &c.Requests[len(c.Requests)-1], nil
}

// Resolve applies the parent's decision. It reports whether the profile changed.
//
//	pending  + approve -> approved
//	pending  + reject  -> rejected
//	approved + approve -> unchanged
//	approved + reject  -> rejected
//	rejected + reject  -> unchanged
//	rejected + approve -> approved
func (c *ChildProfile) Resolve(videoID uint, action ApprovalAction, parentID uint, now time.Time) (bool, error) {
	req := c.FindRequest(videoID)
	if req == nil {
		return false, apperrors.NotFound("video request not found")
	}

	switch action {
	case ActionApprove:
		if req.Status == RequestApproved {
			return false, nil
		}
		req.respond(RequestApproved, parentID, now)
		return true, nil
	case ActionReject:
		if req.Status == RequestRejected {
			return false, nil
		}
		req.respond(RequestRejected, parentID, now)
		return true, nil
	}
	return false, apperrors.Validation(`action must be either "approve" or "reject"`)
}

// Revoke removes the video from the approved library. An existing request is forced
// to rejected and its responded_at is overwritten on every call.
func (c *ChildProfile) Revoke(videoID uint, parentID uint, now time.Time) (wasApproved bool) {
	req := c.FindRequest(videoID)
	if req == nil {
		return false
	}
	wasApproved = req.Status == RequestApproved
	req.respond(RequestRejected, parentID, now)
	return wasApproved
}

// ApprovedVideos is the library derived from approved requests, in request order.
func (c *ChildProfile) ApprovedVideos() []ApprovedVideo {
	approved := make([]ApprovedVideo, 0)
	for _, req := range c.Requests {
		if req.Status != RequestApproved || req.RespondedAt == nil {
			continue
		}
		entry := ApprovedVideo{VideoID: req.VideoID, ApprovedAt: *req.RespondedAt}
		if req.RespondedBy != nil {
			entry.ApprovedBy = *req.RespondedBy
		}
		approved = append(approved, entry)
	}
	return approved
}

func (c *ChildProfile) IsApproved(videoID uint) bool {
	req := c.FindRequest(videoID)
	return req != nil && req.Status == RequestApproved
}

func (c *ChildProfile) RecordSearch(query string, resultsCount int, now time.Time) {
	c.SearchHistory = append(c.SearchHistory, SearchEntry{
		ChildProfileID: c.ID,
		Query:          query,
		SearchedAt:     now,
		ResultsCount:   resultsCount,
	})
	if n := len(c.SearchHistory); n > MaxSearchHistory {
		c.SearchHistory = append([]SearchEntry(nil), c.SearchHistory[n-MaxSearchHistory:]...)
	}
}

// RecordWatch updates the entry for videoID in place or appends a new one. A zero
// duration keeps the previous value, completed is sticky once true.
func (c *ChildProfile) RecordWatch(videoID uint, watchDuration int, completed bool, now time.Time) {
	for i := range c.WatchHistory {
		entry := &c.WatchHistory[i]
		if entry.VideoID != videoID {
			continue
		}
		entry.WatchedAt = now
		if watchDuration != 0 {
			entry.WatchDuration = watchDuration
		}
		if completed {
			entry.Completed = true
		}
		return
	}

	c.WatchHistory = append(c.WatchHistory, WatchEntry{
		ChildProfileID: c.ID,
		VideoID:        videoID,
		WatchedAt:      now,
		WatchDuration:  watchDuration,
		Completed:      completed,
	})
	if n := len(c.WatchHistory); n > MaxWatchHistory {
		c.WatchHistory = append([]WatchEntry(nil), c.WatchHistory[n-MaxWatchHistory:]...)
	}
}

func (c *ChildProfile) ClearSearchHistory() {
	c.SearchHistory = []SearchEntry{}
}

func (c *ChildProfile) ClearWatchHistory() {
	c.WatchHistory = []WatchEntry{}
}

// ParseDate accepts YYYY-MM-DD or RFC3339.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.Validation("invalid date %q, expected YYYY-MM-DD", s)
}

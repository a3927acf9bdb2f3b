package models

import (
	"sort"
	"time"
)

// ChildVideo is the child-safe projection of a Video.
type ChildVideo struct {
	ID          uint     `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Category    Category `json:"category"`
	Duration    int      `json:"duration"`
}

// LibraryEntry is one video of the family library shown to a child session.
type LibraryEntry struct {
	ChildVideo
	ChildID    uint      `json:"child_id"`
	ChildName  string    `json:"child_name"`
	ApprovedAt time.Time `json:"approved_at"`
}

// SortLibrary orders entries newest approval first.
func SortLibrary(entries []LibraryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ApprovedAt.After(entries[j].ApprovedAt)
	})
}

// ChildRequestView exposes a request to a child session: status and title only.
type ChildRequestView struct {
	VideoID     uint          `json:"video_id"`
	Title       string        `json:"title,omitempty"`
	Status      RequestStatus `json:"status"`
	RequestedAt time.Time     `json:"requested_at"`
	ChildID     uint          `json:"child_id"`
	ChildName   string        `json:"child_name"`
}

// ChildView is the profile as a child session sees it.
type ChildView struct {
	ID              uint               `json:"id"`
	Name            string             `json:"name"`
	Age             int                `json:"age"`
	Avatar          string             `json:"avatar,omitempty"`
	RequestedVideos []ChildRequestView `json:"requested_videos"`
}

// NewChildView projects child for a child session. titles holds the titles of
// videos the child is allowed to see, other requests are listed without one.
func NewChildView(child *ChildProfile, titles map[uint]string, now time.Time) ChildView {
	view := ChildView{
		ID:              child.ID,
		Name:            child.Name,
		Age:             child.Age(now),
		Avatar:          child.Avatar,
		RequestedVideos: make([]ChildRequestView, 0, len(child.Requests)),
	}
	for _, req := range child.Requests {
		view.RequestedVideos = append(view.RequestedVideos, ChildRequestView{
			VideoID:     req.VideoID,
			Title:       titles[req.VideoID],
			Status:      req.Status,
			RequestedAt: req.RequestedAt,
			ChildID:     child.ID,
			ChildName:   child.Name,
		})
	}
	return view
}

// ChildDetail is the parent view of a profile including the derived library.
type ChildDetail struct {
	*ChildProfile
	Age            int             `json:"age"`
	ApprovedVideos []ApprovedVideo `json:"approved_videos"`
}

func NewChildDetail(child *ChildProfile, now time.Time) ChildDetail {
	return ChildDetail{
		ChildProfile:   child,
		Age:            child.Age(now),
		ApprovedVideos: child.ApprovedVideos(),
	}
}

// PendingRequest is an entry of the parent's approval queue.
type PendingRequest struct {
	ChildID     uint      `json:"child_id"`
	ChildName   string    `json:"child_name"`
	VideoID     uint      `json:"video_id"`
	Title       string    `json:"title"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	RequestedBy UserType  `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
}

// History lists both logs newest first.
type History struct {
	SearchHistory []SearchEntry `json:"search_history"`
	WatchHistory  []WatchEntry  `json:"watch_history"`
}

func NewHistory(child *ChildProfile) History {
	h := History{
		SearchHistory: make([]SearchEntry, len(child.SearchHistory)),
		WatchHistory:  make([]WatchEntry, len(child.WatchHistory)),
	}
	copy(h.SearchHistory, child.SearchHistory)
	copy(h.WatchHistory, child.WatchHistory)
	sort.SliceStable(h.SearchHistory, func(i, j int) bool {
		return h.SearchHistory[i].SearchedAt.After(h.SearchHistory[j].SearchedAt)
	})
	sort.SliceStable(h.WatchHistory, func(i, j int) bool {
		return h.WatchHistory[i].WatchedAt.After(h.WatchHistory[j].WatchedAt)
	})
	return h
}

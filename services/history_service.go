package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"KinderTube/apperrors"
	"KinderTube/models"
	"KinderTube/observability"
	"KinderTube/repositories"

	"github.com/sirupsen/logrus"
)

const maxQueryLength = 200

// HistoryService keeps the bounded search and watch logs of a child profile.
type HistoryService struct {
	ChildRepo repositories.ChildRepository
	VideoRepo repositories.VideoRepository
	Log       *logrus.Logger
	Now       func() time.Time
}

func NewHistoryService(childRepo repositories.ChildRepository, videoRepo repositories.VideoRepository, log *logrus.Logger) *HistoryService {
	return &HistoryService{ChildRepo: childRepo, VideoRepo: videoRepo, Log: log, Now: time.Now}
}

func (s *HistoryService) RecordSearch(ctx context.Context, caller models.Caller, query string, resultsCount int) (models.SearchEntry, error) {
	if err := requireChild(caller); err != nil {
		return models.SearchEntry{}, err
	}
	query = strings.TrimSpace(query)
	if query == "" || utf8.RuneCountInString(query) > maxQueryLength {
		return models.SearchEntry{}, apperrors.Validation("query must be 1 to %d characters", maxQueryLength)
	}
	if resultsCount < 0 {
		return models.SearchEntry{}, apperrors.Validation("results count must not be negative")
	}

	child, err := firstActiveChild(ctx, s.ChildRepo, caller.ParentID)
	if err != nil {
		return models.SearchEntry{}, err
	}

	child.RecordSearch(query, resultsCount, s.Now())
	if err := s.ChildRepo.Save(ctx, child); err != nil {
		return models.SearchEntry{}, persistErr(err, "failed to save search history")
	}

	observability.HistoryEvents.WithLabelValues("search").Inc()
	return child.SearchHistory[len(child.SearchHistory)-1], nil
}

func (s *HistoryService) RecordWatch(ctx context.Context, caller models.Caller, videoID uint, watchDuration int, completed bool) (models.WatchEntry, error) {
	if err := requireChild(caller); err != nil {
		return models.WatchEntry{}, err
	}
	if watchDuration < 0 {
		return models.WatchEntry{}, apperrors.Validation("watch duration must not be negative")
	}
	if _, err := s.VideoRepo.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.WatchEntry{}, apperrors.NotFound("video not found")
		}
		return models.WatchEntry{}, apperrors.Internal("failed to load video", err)
	}

	child, err := firstActiveChild(ctx, s.ChildRepo, caller.ParentID)
	if err != nil {
		return models.WatchEntry{}, err
	}

	child.RecordWatch(videoID, watchDuration, completed, s.Now())
	if err := s.ChildRepo.Save(ctx, child); err != nil {
		return models.WatchEntry{}, persistErr(err, "failed to save watch history")
	}

	observability.HistoryEvents.WithLabelValues("watch").Inc()
	for _, entry := range child.WatchHistory {
		if entry.VideoID == videoID {
			return entry, nil
		}
	}
	return models.WatchEntry{}, apperrors.Internal("watch entry missing after save", nil)
}

func (s *HistoryService) ClearSearch(ctx context.Context, caller models.Caller, childID uint) error {
	return s.clear(ctx, caller, childID, "clear_search", (*models.ChildProfile).ClearSearchHistory)
}

func (s *HistoryService) ClearWatch(ctx context.Context, caller models.Caller, childID uint) error {
	return s.clear(ctx, caller, childID, "clear_watch", (*models.ChildProfile).ClearWatchHistory)
}

func (s *HistoryService) clear(ctx context.Context, caller models.Caller, childID uint, kind string, apply func(*models.ChildProfile)) error {
	if err := requireParent(caller); err != nil {
		return err
	}
	child, err := loadOwnedChild(ctx, s.ChildRepo, caller, childID)
	if err != nil {
		return err
	}

	apply(child)
	if err := s.ChildRepo.Save(ctx, child); err != nil {
		return persistErr(err, "failed to clear history")
	}

	observability.HistoryEvents.WithLabelValues(kind).Inc()
	s.Log.WithFields(logrus.Fields{"parent_id": caller.ParentID, "child_id": childID, "kind": kind}).Info("history cleared")
	return nil
}

func (s *HistoryService) GetHistory(ctx context.Context, caller models.Caller, childID uint) (models.History, error) {
	if err := requireParent(caller); err != nil {
		return models.History{}, err
	}
	child, err := loadOwnedChild(ctx, s.ChildRepo, caller, childID)
	if err != nil {
		return models.History{}, err
	}
	return models.NewHistory(child), nil
}

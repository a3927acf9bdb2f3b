package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"KinderTube/apperrors"
	"KinderTube/models"
	"KinderTube/observability"
	"KinderTube/repositories"

	"github.com/sirupsen/logrus"
)

// RequestService runs the request/approval workflow on child profiles.
type RequestService struct {
	ChildRepo repositories.ChildRepository
	VideoRepo repositories.VideoRepository
	Notifier  Notifier
	Log       *logrus.Logger
	Now       func() time.Time
}

func NewRequestService(childRepo repositories.ChildRepository, videoRepo repositories.VideoRepository, notifier Notifier, log *logrus.Logger) *RequestService {
	return &RequestService{ChildRepo: childRepo, VideoRepo: videoRepo, Notifier: notifier, Log: log, Now: time.Now}
}

// SubmitRequest adds a pending request for videoID. Parent sessions name the child,
// child sessions act on the first active profile and pass childID 0.
func (s *RequestService) SubmitRequest(ctx context.Context, caller models.Caller, childID, videoID uint) (models.ChildView, error) {
	var child *models.ChildProfile
	var err error
	switch {
	case caller.IsParent():
		if childID == 0 {
			return models.ChildView{}, apperrors.Validation("child id is required")
		}
		child, err = loadOwnedChild(ctx, s.ChildRepo, caller, childID)
	case caller.IsChild():
		child, err = firstActiveChild(ctx, s.ChildRepo, caller.ParentID)
	default:
		err = apperrors.Forbidden("unknown session type")
	}
	if err != nil {
		return models.ChildView{}, err
	}

	video, err := s.requestableVideo(ctx, videoID)
	if err != nil {
		return models.ChildView{}, err
	}

	now := s.Now()
	if _, err := child.AddRequest(video.ID, caller.UserType, now); err != nil {
		return models.ChildView{}, err
	}
	if err := s.ChildRepo.Save(ctx, child); err != nil {
		return models.ChildView{}, persistErr(err, "failed to save video request")
	}

	observability.VideoRequests.WithLabelValues(string(caller.UserType)).Inc()
	s.Log.WithFields(logrus.Fields{
		"parent_id":    caller.ParentID,
		"child_id":     child.ID,
		"video_id":     video.ID,
		"requested_by": caller.UserType,
	}).Info("video requested")

	s.notifyRequested(ctx, child, video)

	titles, err := s.childTitles(ctx, []models.ChildProfile{*child})
	if err != nil {
		return models.ChildView{}, err
	}
	return models.NewChildView(child, titles, now), nil
}

func (s *RequestService) requestableVideo(ctx context.Context, videoID uint) (models.Video, error) {
	video, err := s.VideoRepo.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, apperrors.NotFound("video not found")
		}
		return models.Video{}, apperrors.Internal("failed to load video", err)
	}
	if !video.Requestable() {
		return models.Video{}, apperrors.NotFound("video not found")
	}
	return video, nil
}

func (s *RequestService) notifyRequested(ctx context.Context, child *models.ChildProfile, video models.Video) {
	if s.Notifier == nil {
		return
	}
	err := s.Notifier.NotifyParent(ctx, child.ParentID, Notification{
		Type:  EventVideoRequested,
		Title: "New video request",
		Body:  fmt.Sprintf("%s wants to watch %q", child.Name, video.Title),
		Data: map[string]string{
			"child_id": strconv.FormatUint(uint64(child.ID), 10),
			"video_id": strconv.FormatUint(uint64(video.ID), 10),
		},
	})
	if err != nil {
		s.Log.WithError(err).WithField("parent_id", child.ParentID).Warn("failed to notify parent about video request")
	}
}

// ResolveRequest applies the parent's decision to an existing request.
func (s *RequestService) ResolveRequest(ctx context.Context, caller models.Caller, childID, videoID uint, action models.ApprovalAction) (models.ChildDetail, error) {
	if err := requireParent(caller); err != nil {
		return models.ChildDetail{}, err
	}
	if _, err := models.ParseApprovalAction(string(action)); err != nil {
		return models.ChildDetail{}, err
	}
	child, err := loadOwnedChild(ctx, s.ChildRepo, caller, childID)
	if err != nil {
		return models.ChildDetail{}, err
	}

	now := s.Now()
	changed, err := child.Resolve(videoID, action, caller.ParentID, now)
	if err != nil {
		observability.RequestResolutions.WithLabelValues(string(action), "error").Inc()
		return models.ChildDetail{}, err
	}
	if !changed {
		observability.RequestResolutions.WithLabelValues(string(action), "unchanged").Inc()
		return models.NewChildDetail(child, now), nil
	}

	if err := s.ChildRepo.Save(ctx, child); err != nil {
		observability.RequestResolutions.WithLabelValues(string(action), "error").Inc()
		return models.ChildDetail{}, persistErr(err, "failed to save decision")
	}

	observability.RequestResolutions.WithLabelValues(string(action), "changed").Inc()
	s.Log.WithFields(logrus.Fields{
		"parent_id": caller.ParentID,
		"child_id":  child.ID,
		"video_id":  videoID,
		"action":    action,
	}).Info("video request resolved")
	return models.NewChildDetail(child, now), nil
}

// RevokeApproval removes the video from the child's library. Without a request
// it succeeds without writing.
func (s *RequestService) RevokeApproval(ctx context.Context, caller models.Caller, childID, videoID uint) (models.ChildDetail, error) {
	if err := requireParent(caller); err != nil {
		return models.ChildDetail{}, err
	}
	child, err := loadOwnedChild(ctx, s.ChildRepo, caller, childID)
	if err != nil {
		return models.ChildDetail{}, err
	}

	now := s.Now()
	if child.FindRequest(videoID) == nil {
		return models.NewChildDetail(child, now), nil
	}

	wasApproved := child.Revoke(videoID, caller.ParentID, now)
	if err := s.ChildRepo.Save(ctx, child); err != nil {
		return models.ChildDetail{}, persistErr(err, "failed to revoke approval")
	}

	observability.ApprovalRevocations.Inc()
	s.Log.WithFields(logrus.Fields{
		"parent_id":    caller.ParentID,
		"child_id":     child.ID,
		"video_id":     videoID,
		"was_approved": wasApproved,
	}).Info("video approval revoked")
	return models.NewChildDetail(child, now), nil
}

// ProjectChildLibrary returns the approved videos of every active profile of the
// family, newest approval first. Videos no longer approved or active are left out.
func (s *RequestService) ProjectChildLibrary(ctx context.Context, caller models.Caller) ([]models.LibraryEntry, error) {
	if err := requireChild(caller); err != nil {
		return nil, err
	}
	children, err := s.ChildRepo.ListActiveByParent(ctx, caller.ParentID)
	if err != nil {
		return nil, apperrors.Internal("failed to load child profiles", err)
	}

	var ids []uint
	for i := range children {
		for _, approved := range children[i].ApprovedVideos() {
			ids = append(ids, approved.VideoID)
		}
	}
	videos, err := videosByID(ctx, s.VideoRepo, ids)
	if err != nil {
		return nil, err
	}

	library := make([]models.LibraryEntry, 0, len(ids))
	for i := range children {
		child := &children[i]
		for _, approved := range child.ApprovedVideos() {
			video, ok := videos[approved.VideoID]
			if !ok || !video.Requestable() {
				continue
			}
			library = append(library, models.LibraryEntry{
				ChildVideo: video.ChildSafe(),
				ChildID:    child.ID,
				ChildName:  child.Name,
				ApprovedAt: approved.ApprovedAt,
			})
		}
	}
	models.SortLibrary(library)
	return library, nil
}

// ChildRequests lists the family's requests as a child session may see them.
func (s *RequestService) ChildRequests(ctx context.Context, caller models.Caller) ([]models.ChildRequestView, error) {
	if err := requireChild(caller); err != nil {
		return nil, err
	}
	children, err := s.ChildRepo.ListActiveByParent(ctx, caller.ParentID)
	if err != nil {
		return nil, apperrors.Internal("failed to load child profiles", err)
	}
	titles, err := s.childTitles(ctx, children)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	requests := make([]models.ChildRequestView, 0)
	for i := range children {
		requests = append(requests, models.NewChildView(&children[i], titles, now).RequestedVideos...)
	}
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].RequestedAt.After(requests[j].RequestedAt)
	})
	return requests, nil
}

// childTitles resolves titles only for videos that are still visible to children.
func (s *RequestService) childTitles(ctx context.Context, children []models.ChildProfile) (map[uint]string, error) {
	var ids []uint
	for _, child := range children {
		for _, req := range child.Requests {
			ids = append(ids, req.VideoID)
		}
	}
	videos, err := videosByID(ctx, s.VideoRepo, ids)
	if err != nil {
		return nil, err
	}
	titles := make(map[uint]string, len(videos))
	for id, video := range videos {
		if video.Requestable() {
			titles[id] = video.Title
		}
	}
	return titles, nil
}

// PendingRequests is the parent's approval queue, oldest first.
func (s *RequestService) PendingRequests(ctx context.Context, caller models.Caller) ([]models.PendingRequest, error) {
	if err := requireParent(caller); err != nil {
		return nil, err
	}
	children, err := s.ChildRepo.ListActiveByParent(ctx, caller.ParentID)
	if err != nil {
		return nil, apperrors.Internal("failed to load child profiles", err)
	}

	var ids []uint
	for _, child := range children {
		for _, req := range child.Requests {
			if req.Status == models.RequestPending {
				ids = append(ids, req.VideoID)
			}
		}
	}
	videos, err := videosByID(ctx, s.VideoRepo, ids)
	if err != nil {
		return nil, err
	}

	pending := make([]models.PendingRequest, 0, len(ids))
	for _, child := range children {
		for _, req := range child.Requests {
			if req.Status != models.RequestPending {
				continue
			}
			video := videos[req.VideoID]
			pending = append(pending, models.PendingRequest{
				ChildID:     child.ID,
				ChildName:   child.Name,
				VideoID:     req.VideoID,
				Title:       video.Title,
				Thumbnail:   video.Thumbnail,
				RequestedBy: req.RequestedBy,
				RequestedAt: req.RequestedAt,
			})
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].RequestedAt.Before(pending[j].RequestedAt)
	})
	return pending, nil
}

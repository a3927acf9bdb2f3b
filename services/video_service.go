package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"KinderTube/apperrors"
	"KinderTube/models"
	"KinderTube/repositories"
	"KinderTube/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type UploadInput struct {
	Title       string
	Description string
	Category    models.Category
	AgeMin      int
	AgeMax      int
	Tags        []string
	Thumbnail   string
	Duration    int
	IsPublic    *bool
	Filename    string
	ContentType string
}

type VideoUpdate struct {
	Title       *string
	Description *string
	Category    *models.Category
	AgeMin      *int
	AgeMax      *int
	Tags        []string
	Thumbnail   *string
	IsPublic    *bool
}

type UploadResult struct {
	Video     models.Video `json:"video"`
	UploadURL string       `json:"upload_url,omitempty"`
}

type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

type VideoService struct {
	VideoRepo   repositories.VideoRepository
	CommentRepo repositories.CommentRepository
	ChildRepo   repositories.ChildRepository
	// Files is nil when object storage is not configured.
	Files storage.FileStore
	Log   *logrus.Logger
}

func NewVideoService(videoRepo repositories.VideoRepository, commentRepo repositories.CommentRepository, childRepo repositories.ChildRepository, files storage.FileStore, log *logrus.Logger) *VideoService {
	return &VideoService{VideoRepo: videoRepo, CommentRepo: commentRepo, ChildRepo: childRepo, Files: files, Log: log}
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > 100 {
		return "", apperrors.Validation("title must be 1 to 100 characters")
	}
	return title, nil
}

// Upload stores the metadata of a new video and returns a presigned URL for the file.
// New videos wait for moderation.
func (s *VideoService) Upload(ctx context.Context, caller models.Caller, input UploadInput) (UploadResult, error) {
	if err := requireParent(caller); err != nil {
		return UploadResult{}, err
	}
	title, err := validateTitle(input.Title)
	if err != nil {
		return UploadResult{}, err
	}
	category := input.Category
	if category == "" {
		category = models.CategoryOther
	}
	if !category.Valid() {
		return UploadResult{}, apperrors.Validation("unknown category %q", category)
	}
	if input.AgeMin == 0 && input.AgeMax == 0 {
		input.AgeMax = models.MaxAge
	}
	if err := models.ValidateAgeRange(input.AgeMin, input.AgeMax); err != nil {
		return UploadResult{}, err
	}
	if input.Duration < 0 {
		return UploadResult{}, apperrors.Validation("duration must not be negative")
	}
	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	video := &models.Video{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		AgeMin:      input.AgeMin,
		AgeMax:      input.AgeMax,
		Tags:        input.Tags,
		Thumbnail:   input.Thumbnail,
		Filename:    fmt.Sprintf("videos/%d/%s%s", caller.ParentID, uuid.NewString(), strings.ToLower(path.Ext(input.Filename))),
		ContentType: input.ContentType,
		Duration:    input.Duration,
		IsApproved:  false,
		IsPublic:    isPublic,
		IsActive:    true,
		UploaderID:  caller.ParentID,
	}
	if err := s.VideoRepo.Create(ctx, video); err != nil {
		return UploadResult{}, persistErr(err, "failed to create video")
	}

	result := UploadResult{Video: *video}
	if s.Files != nil {
		url, err := s.Files.PresignUpload(ctx, video.Filename, video.ContentType)
		if err != nil {
			return UploadResult{}, apperrors.Internal("failed to create upload url", err)
		}
		result.UploadURL = url
	}

	s.Log.WithFields(logrus.Fields{"parent_id": caller.ParentID, "video_id": video.ID}).Info("video uploaded")
	return result, nil
}

func (s *VideoService) ListPublic(ctx context.Context, caller models.Caller, filter models.VideoFilter) (models.VideoPage, error) {
	if err := requireParent(caller); err != nil {
		return models.VideoPage{}, err
	}
	filter.Normalize()
	videos, total, err := s.VideoRepo.ListPublic(ctx, filter)
	if err != nil {
		return models.VideoPage{}, apperrors.Internal("failed to list videos", err)
	}
	if videos == nil {
		videos = []models.Video{}
	}
	return models.VideoPage{
		Videos:      videos,
		Total:       total,
		CurrentPage: filter.Page,
		TotalPages:  int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	}, nil
}

func (s *VideoService) ListMine(ctx context.Context, caller models.Caller) ([]models.Video, error) {
	if err := requireParent(caller); err != nil {
		return nil, err
	}
	videos, err := s.VideoRepo.ListByUploader(ctx, caller.ParentID)
	if err != nil {
		return nil, apperrors.Internal("failed to list videos", err)
	}
	if videos == nil {
		videos = []models.Video{}
	}
	return videos, nil
}

func (s *VideoService) load(ctx context.Context, videoID uint) (models.Video, error) {
	video, err := s.VideoRepo.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, apperrors.NotFound("video not found")
		}
		return models.Video{}, apperrors.Internal("failed to load video", err)
	}
	return video, nil
}

// visible hides videos outside the public feed from everyone but the uploader and admins.
func visible(caller models.Caller, video models.Video) bool {
	if !video.IsActive {
		return caller.IsAdmin()
	}
	return video.InPublicFeed() || video.UploaderID == caller.ParentID || caller.IsAdmin()
}

// Get returns the video and counts a view.
func (s *VideoService) Get(ctx context.Context, caller models.Caller, videoID uint) (models.Video, error) {
	if err := requireParent(caller); err != nil {
		return models.Video{}, err
	}
	video, err := s.load(ctx, videoID)
	if err != nil {
		return models.Video{}, err
	}
	if !visible(caller, video) {
		return models.Video{}, apperrors.NotFound("video not found")
	}
	if video.IsActive {
		if err := s.VideoRepo.IncrementViews(ctx, video.ID); err != nil {
			s.Log.WithError(err).WithField("video_id", video.ID).Warn("failed to count view")
		} else {
			video.Views++
		}
	}
	return video, nil
}

func (s *VideoService) ownVideo(ctx context.Context, caller models.Caller, videoID uint) (models.Video, error) {
	if err := requireParent(caller); err != nil {
		return models.Video{}, err
	}
	video, err := s.load(ctx, videoID)
	if err != nil {
		return models.Video{}, err
	}
	if !video.IsActive {
		return models.Video{}, apperrors.NotFound("video not found")
	}
	if video.UploaderID != caller.ParentID && !caller.IsAdmin() {
		return models.Video{}, apperrors.Forbidden("only the uploader can change this video")
	}
	return video, nil
}

func (s *VideoService) Update(ctx context.Context, caller models.Caller, videoID uint, input VideoUpdate) (models.Video, error) {
	video, err := s.ownVideo(ctx, caller, videoID)
	if err != nil {
		return models.Video{}, err
	}

	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return models.Video{}, err
		}
		video.Title = title
	}
	if input.Description != nil {
		video.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		if !input.Category.Valid() {
			return models.Video{}, apperrors.Validation("unknown category %q", *input.Category)
		}
		video.Category = *input.Category
	}
	if input.AgeMin != nil {
		video.AgeMin = *input.AgeMin
	}
	if input.AgeMax != nil {
		video.AgeMax = *input.AgeMax
	}
	if err := models.ValidateAgeRange(video.AgeMin, video.AgeMax); err != nil {
		return models.Video{}, err
	}
	if input.Tags != nil {
		video.Tags = input.Tags
	}
	if input.Thumbnail != nil {
		video.Thumbnail = *input.Thumbnail
	}
	if input.IsPublic != nil {
		video.IsPublic = *input.IsPublic
	}

	if err := s.VideoRepo.Save(ctx, &video); err != nil {
		return models.Video{}, persistErr(err, "failed to update video")
	}
	return video, nil
}

// Delete hides the video everywhere. Approved entries pointing at it drop out of
// the child library.
func (s *VideoService) Delete(ctx context.Context, caller models.Caller, videoID uint) error {
	video, err := s.ownVideo(ctx, caller, videoID)
	if err != nil {
		return err
	}
	video.IsActive = false
	if err := s.VideoRepo.Save(ctx, &video); err != nil {
		return persistErr(err, "failed to delete video")
	}
	s.Log.WithFields(logrus.Fields{"parent_id": caller.ParentID, "video_id": videoID}).Info("video deactivated")
	return nil
}

func (s *VideoService) Like(ctx context.Context, caller models.Caller, videoID uint) (LikeResult, error) {
	if err := requireParent(caller); err != nil {
		return LikeResult{}, err
	}
	video, err := s.load(ctx, videoID)
	if err != nil {
		return LikeResult{}, err
	}
	if !visible(caller, video) || !video.IsActive {
		return LikeResult{}, apperrors.NotFound("video not found")
	}
	liked, likes, err := s.VideoRepo.ToggleLike(ctx, videoID, caller.ParentID)
	if err != nil {
		return LikeResult{}, persistErr(err, "failed to update like")
	}
	return LikeResult{Liked: liked, LikesCount: likes}, nil
}

func (s *VideoService) AddComment(ctx context.Context, caller models.Caller, videoID uint, text string) (models.VideoComment, error) {
	if err := requireParent(caller); err != nil {
		return models.VideoComment{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > 500 {
		return models.VideoComment{}, apperrors.Validation("comment must be 1 to 500 characters")
	}
	video, err := s.load(ctx, videoID)
	if err != nil {
		return models.VideoComment{}, err
	}
	if !visible(caller, video) || !video.IsActive {
		return models.VideoComment{}, apperrors.NotFound("video not found")
	}

	comment := &models.VideoComment{VideoID: videoID, ParentID: caller.ParentID, Text: text}
	if err := s.CommentRepo.Create(ctx, comment); err != nil {
		return models.VideoComment{}, persistErr(err, "failed to add comment")
	}
	return *comment, nil
}

func (s *VideoService) Comments(ctx context.Context, caller models.Caller, videoID uint, limit, offset int) ([]models.VideoComment, error) {
	if err := requireParent(caller); err != nil {
		return nil, err
	}
	video, err := s.load(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !visible(caller, video) {
		return nil, apperrors.NotFound("video not found")
	}
	comments, err := s.CommentRepo.ListByVideo(ctx, videoID, limit, offset)
	if err != nil {
		return nil, apperrors.Internal("failed to list comments", err)
	}
	if comments == nil {
		comments = []models.VideoComment{}
	}
	return comments, nil
}

// Stream returns a short-lived download URL. Child sessions may only stream videos
// in the family library.
func (s *VideoService) Stream(ctx context.Context, caller models.Caller, videoID uint) (string, error) {
	video, err := s.load(ctx, videoID)
	if err != nil {
		return "", err
	}

	switch {
	case caller.IsChild():
		allowed, err := s.inFamilyLibrary(ctx, caller.ParentID, video)
		if err != nil {
			return "", err
		}
		if !allowed {
			return "", apperrors.Forbidden("video is not approved for this family")
		}
	case !visible(caller, video):
		return "", apperrors.NotFound("video not found")
	}

	if s.Files == nil {
		return "", apperrors.NotFound("video file is not available")
	}
	url, err := s.Files.PresignDownload(ctx, video.Filename)
	if err != nil {
		return "", apperrors.Internal("failed to create stream url", err)
	}
	return url, nil
}

func (s *VideoService) inFamilyLibrary(ctx context.Context, parentID uint, video models.Video) (bool, error) {
	if !video.Requestable() {
		return false, nil
	}
	children, err := s.ChildRepo.ListActiveByParent(ctx, parentID)
	if err != nil {
		return false, apperrors.Internal("failed to load child profiles", err)
	}
	for i := range children {
		if children[i].IsApproved(video.ID) {
			return true, nil
		}
	}
	return false, nil
}

// Moderate sets the admin approval flag that makes a video requestable.
func (s *VideoService) Moderate(ctx context.Context, caller models.Caller, videoID uint, approved bool) (models.Video, error) {
	if err := requireAdmin(caller); err != nil {
		return models.Video{}, err
	}
	video, err := s.load(ctx, videoID)
	if err != nil {
		return models.Video{}, err
	}
	video.IsApproved = approved
	if err := s.VideoRepo.Save(ctx, &video); err != nil {
		return models.Video{}, persistErr(err, "failed to moderate video")
	}
	s.Log.WithFields(logrus.Fields{"admin_id": caller.ParentID, "video_id": videoID, "approved": approved}).Info("video moderated")
	return video, nil
}

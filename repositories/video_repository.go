package repositories

import (
	"context"

	"KinderTube/models"
)

type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	FindByID(ctx context.Context, id uint) (models.Video, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Video, error)
	ListPublic(ctx context.Context, filter models.VideoFilter) ([]models.Video, int64, error)
	ListByUploader(ctx context.Context, uploaderID uint) ([]models.Video, error)
	Save(ctx context.Context, video *models.Video) error
	IncrementViews(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, videoID, parentID uint) (liked bool, likes int64, err error)
	StatsByUploader(ctx context.Context, uploaderID uint) (videos int64, views int64, err error)
}

type CommentRepository interface {
	// Create stores the comment and bumps the video's comments_count.
	Create(ctx context.Context, comment *models.VideoComment) error
	ListByVideo(ctx context.Context, videoID uint, limit, offset int) ([]models.VideoComment, error)
}

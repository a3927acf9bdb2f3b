package impl

import (
	"context"

	"KinderTube/models"
	"KinderTube/repositories"

	"gorm.io/gorm"
)

type CommentRepositoryImpl struct {
	DB *gorm.DB
}

func NewCommentRepository(db *gorm.DB) repositories.CommentRepository {
	return &CommentRepositoryImpl{DB: db}
}

func (r *CommentRepositoryImpl) Create(ctx context.Context, comment *models.VideoComment) error {
	return translate(r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Video{}).Where("id = ?", comment.VideoID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	}))
}

func (r *CommentRepositoryImpl) ListByVideo(ctx context.Context, videoID uint, limit, offset int) ([]models.VideoComment, error) {
	var comments []models.VideoComment
	query := r.DB.WithContext(ctx).Where("video_id = ?", videoID).Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&comments).Error
	return comments, translate(err)
}

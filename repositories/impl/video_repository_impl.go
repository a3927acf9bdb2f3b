package impl

import (
	"context"
	"errors"
	"strings"

	"KinderTube/models"
	"KinderTube/repositories"

	"gorm.io/gorm"
)

type VideoRepositoryImpl struct {
	DB *gorm.DB
}

func NewVideoRepository(db *gorm.DB) repositories.VideoRepository {
	return &VideoRepositoryImpl{DB: db}
}

func (r *VideoRepositoryImpl) Create(ctx context.Context, video *models.Video) error {
	return translate(r.DB.WithContext(ctx).Create(video).Error)
}

func (r *VideoRepositoryImpl) FindByID(ctx context.Context, id uint) (models.Video, error) {
	var video models.Video
	if err := r.DB.WithContext(ctx).First(&video, id).Error; err != nil {
		return models.Video{}, translate(err)
	}
	return video, nil
}

func (r *VideoRepositoryImpl) FindByIDs(ctx context.Context, ids []uint) ([]models.Video, error) {
	var videos []models.Video
	if len(ids) == 0 {
		return videos, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&videos).Error
	return videos, translate(err)
}

func (r *VideoRepositoryImpl) ListPublic(ctx context.Context, filter models.VideoFilter) ([]models.Video, int64, error) {
	query := r.DB.WithContext(ctx).Model(&models.Video{}).
		Where("is_approved = ? AND is_active = ? AND is_public = ?", true, true, true)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var videos []models.Video
	err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset()).
		Find(&videos).Error
	return videos, total, translate(err)
}

func (r *VideoRepositoryImpl) ListByUploader(ctx context.Context, uploaderID uint) ([]models.Video, error) {
	var videos []models.Video
	err := r.DB.WithContext(ctx).
		Where("uploader_id = ? AND is_active = ?", uploaderID, true).
		Order("created_at DESC").
		Find(&videos).Error
	return videos, translate(err)
}

func (r *VideoRepositoryImpl) Save(ctx context.Context, video *models.Video) error {
	return translate(r.DB.WithContext(ctx).Save(video).Error)
}

func (r *VideoRepositoryImpl) IncrementViews(ctx context.Context, id uint) error {
	return translate(r.DB.WithContext(ctx).Model(&models.Video{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error)
}

func (r *VideoRepositoryImpl) ToggleLike(ctx context.Context, videoID, parentID uint) (bool, int64, error) {
	var liked bool
	var likes int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var like models.VideoLike
		err := tx.Where("video_id = ? AND parent_id = ?", videoID, parentID).First(&like).Error
		delta := gorm.Expr("likes_count + 1")
		switch {
		case err == nil:
			if err := tx.Delete(&like).Error; err != nil {
				return err
			}
			delta = gorm.Expr("GREATEST(likes_count - 1, 0)")
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.VideoLike{VideoID: videoID, ParentID: parentID}).Error; err != nil {
				return err
			}
			liked = true
		default:
			return err
		}

		if err := tx.Model(&models.Video{}).Where("id = ?", videoID).
			UpdateColumn("likes_count", delta).Error; err != nil {
			return err
		}
		return tx.Model(&models.Video{}).Where("id = ?", videoID).
			Pluck("likes_count", &likes).Error
	})
	return liked, likes, translate(err)
}

func (r *VideoRepositoryImpl) StatsByUploader(ctx context.Context, uploaderID uint) (int64, int64, error) {
	var row struct {
		Videos int64
		Views  int64
	}
	err := r.DB.WithContext(ctx).Model(&models.Video{}).
		Select("COUNT(*) AS videos, COALESCE(SUM(views), 0) AS views").
		Where("uploader_id = ? AND is_active = ?", uploaderID, true).
		Scan(&row).Error
	return row.Videos, row.Views, translate(err)
}

package impl

import (
	"context"
	"time"

	"KinderTube/models"
	"KinderTube/repositories"

	"gorm.io/gorm"
)

type ChildRepositoryImpl struct {
	DB *gorm.DB
}

func NewChildRepository(db *gorm.DB) repositories.ChildRepository {
	return &ChildRepositoryImpl{DB: db}
}

func byID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (r *ChildRepositoryImpl) withCollections(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Preload("Requests", byID).
		Preload("SearchHistory", byID).
		Preload("WatchHistory", byID)
}

func (r *ChildRepositoryImpl) Create(ctx context.Context, child *models.ChildProfile) error {
	if child.Version == 0 {
		child.Version = 1
	}
	return translate(r.DB.WithContext(ctx).Create(child).Error)
}

func (r *ChildRepositoryImpl) FindByID(ctx context.Context, id uint) (models.ChildProfile, error) {
	var child models.ChildProfile
	if err := r.withCollections(ctx).First(&child, id).Error; err != nil {
		return models.ChildProfile{}, translate(err)
	}
	return child, nil
}

func (r *ChildRepositoryImpl) ListActiveByParent(ctx context.Context, parentID uint) ([]models.ChildProfile, error) {
	var children []models.ChildProfile
	err := r.withCollections(ctx).
		Where("parent_id = ? AND is_active = ?", parentID, true).
		Order("id ASC").
		Find(&children).Error
	return children, translate(err)
}

func (r *ChildRepositoryImpl) CountActiveByParent(ctx context.Context, parentID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.ChildProfile{}).
		Where("parent_id = ? AND is_active = ?", parentID, true).
		Count(&count).Error
	return count, translate(err)
}

// Save bumps the version with a conditional update and rewrites the embedded
// lists in the same transaction.
func (r *ChildRepositoryImpl) Save(ctx context.Context, child *models.ChildProfile) error {
	now := time.Now()
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ChildProfile{}).
			Where("id = ? AND version = ?", child.ID, child.Version).
			Updates(map[string]interface{}{
				"name":          child.Name,
				"date_of_birth": child.DateOfBirth,
				"gender":        child.Gender,
				"avatar":        child.Avatar,
				"is_active":     child.IsActive,
				"version":       gorm.Expr("version + 1"),
				"updated_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repositories.ErrVersionConflict
		}

		for _, model := range []interface{}{&models.VideoRequest{}, &models.SearchEntry{}, &models.WatchEntry{}} {
			if err := tx.Where("child_profile_id = ?", child.ID).Delete(model).Error; err != nil {
				return err
			}
		}

		requests := make([]models.VideoRequest, len(child.Requests))
		for i, req := range child.Requests {
			req.ID = 0
			req.ChildProfileID = child.ID
			requests[i] = req
		}
		searches := make([]models.SearchEntry, len(child.SearchHistory))
		for i, entry := range child.SearchHistory {
			entry.ID = 0
			entry.ChildProfileID = child.ID
			searches[i] = entry
		}
		watches := make([]models.WatchEntry, len(child.WatchHistory))
		for i, entry := range child.WatchHistory {
			entry.ID = 0
			entry.ChildProfileID = child.ID
			watches[i] = entry
		}

		if len(requests) > 0 {
			if err := tx.Create(&requests).Error; err != nil {
				return err
			}
		}
		if len(searches) > 0 {
			if err := tx.Create(&searches).Error; err != nil {
				return err
			}
		}
		if len(watches) > 0 {
			if err := tx.Create(&watches).Error; err != nil {
				return err
			}
		}

		child.Requests, child.SearchHistory, child.WatchHistory = requests, searches, watches
		return nil
	})
	if err != nil {
		return translate(err)
	}

	child.Version++
	child.UpdatedAt = now
	return nil
}

package impl

import (
	"context"
	"strings"

	"KinderTube/models"
	"KinderTube/repositories"

	"gorm.io/gorm"
)

type ParentRepositoryImpl struct {
	DB *gorm.DB
}

func NewParentRepository(db *gorm.DB) repositories.ParentRepository {
	return &ParentRepositoryImpl{DB: db}
}

func (r *ParentRepositoryImpl) Create(ctx context.Context, parent *models.Parent) error {
	return translate(r.DB.WithContext(ctx).Create(parent).Error)
}

func (r *ParentRepositoryImpl) FindByID(ctx context.Context, id uint) (models.Parent, error) {
	var parent models.Parent
	if err := r.DB.WithContext(ctx).First(&parent, id).Error; err != nil {
		return models.Parent{}, translate(err)
	}
	return parent, nil
}

func (r *ParentRepositoryImpl) FindByEmail(ctx context.Context, email string) (models.Parent, error) {
	var parent models.Parent
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&parent).Error; err != nil {
		return models.Parent{}, translate(err)
	}
	return parent, nil
}

func (r *ParentRepositoryImpl) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Parent{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error
	return count > 0, translate(err)
}

func (r *ParentRepositoryImpl) Save(ctx context.Context, parent *models.Parent) error {
	return translate(r.DB.WithContext(ctx).Save(parent).Error)
}

func (r *ParentRepositoryImpl) List(ctx context.Context, filter models.ParentFilter) ([]models.Parent, int64, error) {
	query := r.DB.WithContext(ctx).Model(&models.Parent{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var parents []models.Parent
	err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Find(&parents).Error
	return parents, total, translate(err)
}

// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"KinderTube/models"

	"github.com/stretchr/testify/mock"
)

type ChildRepository struct {
	mock.Mock
}

func (m *ChildRepository) Create(ctx context.Context, child *models.ChildProfile) error {
	args := m.Called(ctx, child)
	return args.Error(0)
}

func (m *ChildRepository) FindByID(ctx context.Context, id uint) (models.ChildProfile, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.ChildProfile), args.Error(1)
}

func (m *ChildRepository) ListActiveByParent(ctx context.Context, parentID uint) ([]models.ChildProfile, error) {
	args := m.Called(ctx, parentID)
	return args.Get(0).([]models.ChildProfile), args.Error(1)
}

func (m *ChildRepository) CountActiveByParent(ctx context.Context, parentID uint) (int64, error) {
	args := m.Called(ctx, parentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ChildRepository) Save(ctx context.Context, child *models.ChildProfile) error {
	args := m.Called(ctx, child)
	return args.Error(0)
}

type VideoRepository struct {
	mock.Mock
}

func (m *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *VideoRepository) FindByID(ctx context.Context, id uint) (models.Video, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Video), args.Error(1)
}

func (m *VideoRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Video, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Video), args.Error(1)
}

func (m *VideoRepository) ListPublic(ctx context.Context, filter models.VideoFilter) ([]models.Video, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Video), args.Get(1).(int64), args.Error(2)
}

func (m *VideoRepository) ListByUploader(ctx context.Context, uploaderID uint) ([]models.Video, error) {
	args := m.Called(ctx, uploaderID)
	return args.Get(0).([]models.Video), args.Error(1)
}

func (m *VideoRepository) Save(ctx context.Context, video *models.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *VideoRepository) IncrementViews(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *VideoRepository) ToggleLike(ctx context.Context, videoID, parentID uint) (bool, int64, error) {
	args := m.Called(ctx, videoID, parentID)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *VideoRepository) StatsByUploader(ctx context.Context, uploaderID uint) (int64, int64, error) {
	args := m.Called(ctx, uploaderID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

type ParentRepository struct {
	mock.Mock
}

func (m *ParentRepository) Create(ctx context.Context, parent *models.Parent) error {
	args := m.Called(ctx, parent)
	return args.Error(0)
}

func (m *ParentRepository) FindByID(ctx context.Context, id uint) (models.Parent, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Parent), args.Error(1)
}

func (m *ParentRepository) FindByEmail(ctx context.Context, email string) (models.Parent, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.Parent), args.Error(1)
}

func (m *ParentRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	args := m.Called(ctx, email, username)
	return args.Bool(0), args.Error(1)
}

func (m *ParentRepository) Save(ctx context.Context, parent *models.Parent) error {
	args := m.Called(ctx, parent)
	return args.Error(0)
}

func (m *ParentRepository) List(ctx context.Context, filter models.ParentFilter) ([]models.Parent, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Parent), args.Get(1).(int64), args.Error(2)
}

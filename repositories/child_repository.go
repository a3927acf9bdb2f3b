package repositories

import (
	"context"

	"KinderTube/models"
)

// ChildRepository loads and saves a ChildProfile together with its requests and
// history lists.
type ChildRepository interface {
	Create(ctx context.Context, child *models.ChildProfile) error
	FindByID(ctx context.Context, id uint) (models.ChildProfile, error)
	// ListActiveByParent returns the parent's active profiles ordered by id.
	ListActiveByParent(ctx context.Context, parentID uint) ([]models.ChildProfile, error)
	CountActiveByParent(ctx context.Context, parentID uint) (int64, error)
	// Save succeeds only if child.Version still matches the stored version and
	// increments child.Version. Otherwise it returns ErrVersionConflict.
	Save(ctx context.Context, child *models.ChildProfile) error
}

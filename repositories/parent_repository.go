package repositories

import (
	"context"

	"KinderTube/models"
)

type ParentRepository interface {
	Create(ctx context.Context, parent *models.Parent) error
	FindByID(ctx context.Context, id uint) (models.Parent, error)
	FindByEmail(ctx context.Context, email string) (models.Parent, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Save(ctx context.Context, parent *models.Parent) error
	List(ctx context.Context, filter models.ParentFilter) ([]models.Parent, int64, error)
}

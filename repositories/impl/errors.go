package impl

import (
	"errors"

	"KinderTube/repositories"

	"gorm.io/gorm"
)

// translate maps gorm errors onto the repository sentinels.
// Requires gorm.Config.TranslateError for duplicate keys.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.ErrDuplicate
	}
	return err
}

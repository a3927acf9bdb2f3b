package repositories

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict означает, что профиль изменили после чтения
	ErrVersionConflict = errors.New("version conflict")
	ErrDuplicate       = errors.New("duplicate key")
)

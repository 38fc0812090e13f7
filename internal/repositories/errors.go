package repositories

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyResolved = errors.New("already resolved")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrMissingActor    = errors.New("actor id is required")
)

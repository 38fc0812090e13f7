package services

import (
	"errors"
	"fmt"

	"github.com/icar-directory/backend/internal/repositories"
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyResolved = errors.New("already resolved")
	ErrStorage         = errors.New("storage error")
	ErrAlreadyClaimed  = errors.New("organization already claimed")

	// ErrEntityGone means an approval targets a record deleted since the
	// edit was submitted. The edit stays pending and can only be rejected.
	ErrEntityGone = errors.New("edited entity no longer exists")
)

// storeErr maps a repository error onto the service taxonomy. Anything that is
// not a known repository condition is a storage failure.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repositories.ErrAlreadyResolved):
		return fmt.Errorf("%s: %w", op, ErrAlreadyResolved)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

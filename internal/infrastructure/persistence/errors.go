package persistence

import (
	"errors"

	"gorm.io/gorm"

	"github.com/flowi/backend/internal/domain/shared"
)

// translateError maps GORM errors onto domain errors. Anything that is not a
// known condition is reported as STORAGE_UNAVAILABLE with op as context.
func translateError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrDuplicateReference
	default:
		return shared.WrapStorageError(err, op)
	}
}

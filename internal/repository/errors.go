package repository

import (
	"errors"

	"gorm.io/gorm"

	"friendship-service/internal/models"
)

// translateError maps gorm's translated driver errors onto the domain
// taxonomy at the gateway boundary, so nothing above the repositories
// depends on gorm.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.ErrDuplicateKey
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return models.ErrReferenceViolation
	default:
		return err
	}
}

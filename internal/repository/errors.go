package repository

import (
	"errors"

	"go-commerce-core/internal/apperr"

	"gorm.io/gorm"
)

// translate maps gorm sentinel errors onto the business error taxonomy.
// entity names the record the caller was looking for.
func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict(entity, err)
	default:
		return err
	}
}

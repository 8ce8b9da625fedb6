package service

import (
	"go-commerce-core/internal/apperr"
	"go-commerce-core/pkg/validator"
)

// validateInput runs struct validation and reports the first failing field.
func validateInput(entity string, input interface{}) error {
	errs := validator.ValidateStruct(input)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	if first.FailedField == "" {
		return apperr.Validation(entity, "%s", first.Tag)
	}
	return apperr.Validation(entity, "field '%s' failed on '%s'", first.FailedField, first.Tag)
}

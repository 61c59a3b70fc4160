package validator

import (
	apperrors "github.com/maeshaii/backend-wny/internal/errors"
)

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

func ToValidationErrors(err error) ValidationErrors {
	return apperrors.ToValidationErrors(err)
}

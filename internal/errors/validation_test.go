package errors

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("ctu_id", "is required", "")

	assert.Equal(t, "ctu_id", err.Field)
	assert.Equal(t, "is required", err.Message)
	assert.Equal(t, "validation error on field 'ctu_id': is required", err.Error())
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("title", "is required", nil))
	assert.Equal(t, "validation failed: title is required", errs.Error())

	errs = append(errs, *NewValidationError("type", "is required", nil))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
	assert.Equal(t, []string{"title", "type"}, errs.Fields())
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("gender", "must be M or F", "gender", "X")

	assert.Equal(t, "gender", err.Rule)
	assert.Equal(t, "X", err.Value)
}

func TestToValidationErrors(t *testing.T) {
	type request struct {
		Title string `validate:"required"`
		Kind  string `validate:"oneof=a b"`
	}

	v := validator.New()
	err := v.Struct(request{Kind: "c"})
	require.Error(t, err)

	errs := ToValidationErrors(fmt.Errorf("wrapped: %w", err))
	require.Len(t, errs, 2)
	assert.Equal(t, "Title", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
	assert.Equal(t, "must be one of: a, b", errs[1].Message)

	own := ValidationErrors{{Field: "answers", Message: "is required"}}
	assert.Equal(t, own, ToValidationErrors(own))
}

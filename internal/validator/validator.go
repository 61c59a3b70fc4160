package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/maeshaii/backend-wny/internal/models"
)

var batchYearPattern = regexp.MustCompile(`^\d{4}$`)

// Validator wraps a configured go-playground validator shared by handlers and services
type Validator struct {
	structValidator *validator.Validate
}

func New() *Validator {
	v := validator.New()
	registerCustomValidators(v)
	return &Validator{structValidator: v}
}

// ValidateStruct runs struct tag validation and converts failures to ValidationErrors
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(field interface{}, tag string) error {
	return v.structValidator.Var(field, tag)
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("stats_type", validateStatsType)
	validate.RegisterValidation("gender", validateGender)
	validate.RegisterValidation("batch_year", validateBatchYear)

	// Report JSON names rather than Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).IsValid()
}

func validateStatsType(fl validator.FieldLevel) bool {
	_, err := models.ParseStatsType(fl.Field().String())
	return err == nil
}

func validateGender(fl validator.FieldLevel) bool {
	switch strings.ToUpper(strings.TrimSpace(fl.Field().String())) {
	case "M", "F":
		return true
	}
	return false
}

func validateBatchYear(fl validator.FieldLevel) bool {
	return batchYearPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// ValidateStruct validates a struct using struct tags. Failures come back
// as one readable error listing every offending field.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fields := FormatValidationErrors(err)
	if len(fields) == 0 {
		return err
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fields[name])
	}
	return errors.New(strings.Join(parts, "; "))
}

// FormatValidationErrors converts validation errors to per-field messages.
func FormatValidationErrors(err error) map[string]string {
	fields := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			field := strings.ToLower(e.Field())
			switch e.Tag() {
			case "required":
				fields[field] = fmt.Sprintf("%s is required", e.Field())
			case "email":
				fields[field] = "Invalid email format"
			case "min":
				fields[field] = fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
			case "max":
				fields[field] = fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
			default:
				fields[field] = fmt.Sprintf("%s is invalid", e.Field())
			}
		}
	}

	return fields
}

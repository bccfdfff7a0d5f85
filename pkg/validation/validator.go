package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// MaxNameLength bounds node, link and scenario names
	MaxNameLength = 64

	namePattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]+$`)
)

func init() {
	validate = validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = validate.RegisterValidation("name", func(fl validator.FieldLevel) bool {
		return ValidateName(fl.Field().String()) == nil
	})
}

// FieldError reports the first struct field that failed validation.
type FieldError struct {
	Field   string // namespaced, e.g. "Config.Starts[2]"
	Rule    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap returns the check's own error, if it had one
func (e *FieldError) Unwrap() error {
	return e.Cause
}

// Struct validates v against its `validate` tags. The error, if any, is a
// *FieldError for the first failing field.
func Struct(v any) error {
	if v == nil {
		return errors.New("value to validate cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateName checks a node, link or scenario name
func ValidateName(name string) error {
	if name == "" {
		return errors.New("name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("name '%s' exceeds maximum length of %d characters", name, MaxNameLength)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("name '%s' contains invalid characters (only alphanumeric, '_', '.', ':' and '-' allowed)", name)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		fe := &FieldError{Field: e.Namespace(), Rule: e.Tag()}
		param := e.Param()

		switch e.Tag() {
		case "required":
			fe.Message = "field is required"
		case "min", "gte":
			fe.Message = fmt.Sprintf("must be at least %s", param)
		case "max", "lte":
			fe.Message = fmt.Sprintf("must not exceed %s", param)
		case "gt":
			fe.Message = fmt.Sprintf("must be greater than %s", param)
		case "oneof":
			fe.Message = fmt.Sprintf("must be one of [%s]", param)
		case "unique":
			fe.Message = "values must be unique"
		case "name":
			fe.Message = fmt.Sprintf("invalid name %q", e.Value())
		default:
			fe.Message = fmt.Sprintf("validation failed (%s)", e.Tag())
		}
		return fe
	}

	return err
}

package validation

import (
	"errors"
	"fmt"
)

// ConfigValidator chains checks over hand-assembled settings such as a
// scenario file. Every failed check is kept as a *FieldError named
// "<prefix>.<field>", so callers see all problems at once.
type ConfigValidator struct {
	prefix string
	errs   []error
}

// NewConfigValidator starts a chain whose field names are prefixed with prefix
func NewConfigValidator(prefix string) *ConfigValidator {
	return &ConfigValidator{prefix: prefix}
}

func (cv *ConfigValidator) fail(field, rule, format string, args ...any) *ConfigValidator {
	cv.errs = append(cv.errs, &FieldError{
		Field:   cv.prefix + "." + field,
		Rule:    rule,
		Message: fmt.Sprintf(format, args...),
	})
	return cv
}

// Required rejects an empty string
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		return cv.fail(field, "required", "required field is empty")
	}
	return cv
}

// MinInt rejects values below min
func (cv *ConfigValidator) MinInt(field string, value, min int) *ConfigValidator {
	if value < min {
		return cv.fail(field, "min", "value %d is below minimum %d", value, min)
	}
	return cv
}

// Positive rejects zero and negative values
func (cv *ConfigValidator) Positive(field string, value int) *ConfigValidator {
	if value <= 0 {
		return cv.fail(field, "gt", "value %d must be positive", value)
	}
	return cv
}

// NonNegative rejects negative values
func (cv *ConfigValidator) NonNegative(field string, value int) *ConfigValidator {
	if value < 0 {
		return cv.fail(field, "gte", "value %d must be non-negative", value)
	}
	return cv
}

// OneOf rejects values outside allowed
func (cv *ConfigValidator) OneOf(field, value string, allowed []string) *ConfigValidator {
	for _, a := range allowed {
		if value == a {
			return cv
		}
	}
	return cv.fail(field, "oneof", "value %q must be one of %v", value, allowed)
}

func (cv *ConfigValidator) wrap(field, rule string, err error) *ConfigValidator {
	cv.errs = append(cv.errs, &FieldError{
		Field:   cv.prefix + "." + field,
		Rule:    rule,
		Message: err.Error(),
		Cause:   err,
	})
	return cv
}

// Name applies ValidateName
func (cv *ConfigValidator) Name(field, value string) *ConfigValidator {
	if err := ValidateName(value); err != nil {
		return cv.wrap(field, "name", err)
	}
	return cv
}

// Custom records the error returned by fn, if any
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		return cv.wrap(field, "custom", err)
	}
	return cv
}

// When runs checks only if condition holds
func (cv *ConfigValidator) When(condition bool, checks func(*ConfigValidator)) *ConfigValidator {
	if condition {
		checks(cv)
	}
	return cv
}

// HasErrors reports whether any check failed
func (cv *ConfigValidator) HasErrors() bool {
	return len(cv.errs) > 0
}

// Errors returns the failures in the order the checks ran
func (cv *ConfigValidator) Errors() []error {
	return cv.errs
}

// Validate returns nil, the single *FieldError, or all failures joined.
func (cv *ConfigValidator) Validate() error {
	switch len(cv.errs) {
	case 0:
		return nil
	case 1:
		return cv.errs[0]
	}
	return fmt.Errorf("%s: %d errors: %w", cv.prefix, len(cv.errs), errors.Join(cv.errs...))
}

// DefaultOr returns value unless it is the zero value
func DefaultOr[T comparable](value, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}

// DefaultOrInt returns value if positive, otherwise defaultValue. Counts and
// caps use it where zero and negative both mean "unset".
func DefaultOrInt(value, defaultValue int) int {
	if value <= 0 {
		return defaultValue
	}
	return value
}

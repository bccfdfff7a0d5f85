package simulation

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrConfiguration = errors.New("invalid configuration")
	ErrFinished      = errors.New("simulation already finished")
)

// ConfigurationError rejects a setup before the first turn. Field names the
// offending configuration field, or "network" for graph-level problems.
type ConfigurationError struct {
	Field string
	Cause error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrConfiguration, e.Field, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configError(field string, format string, args ...any) error {
	return &ConfigurationError{Field: field, Cause: fmt.Errorf(format, args...)}
}

package risk

import (
	"errors"
	"fmt"
)

// ConfigError reports invalid or incomplete input: a missing structural
// level, non-positive equity, a percentage outside [0, 100]. It signals a
// bug or bad configuration and is surfaced loudly. Policy rejections are
// never errors; they come back as an ordinary PositionSizing result.
type ConfigError struct {
	Field      string
	Reason     string
	Underlying error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("config error [%s]: %s: %v", e.Field, e.Reason, e.Underlying)
	}
	return fmt.Sprintf("config error [%s]: %s", e.Field, e.Reason)
}

// Unwrap returns the underlying error for error unwrapping
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// NewConfigError creates a ConfigError for the named input field
func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

// ConfigErrorf creates a ConfigError with a formatted reason
func ConfigErrorf(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// WrapConfigError attaches field context to an underlying error
func WrapConfigError(err error, field, reason string) *ConfigError {
	if err == nil {
		return nil
	}
	return &ConfigError{Field: field, Reason: reason, Underlying: err}
}

// IsConfigError reports whether err is, or wraps, a ConfigError
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

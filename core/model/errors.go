package model

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every error raised for invalid planning input.
var ErrConfiguration = errors.New("configuration error")

// ConfigError describes an invalid planning input. It is returned before any
// allocation is attempted.
type ConfigError struct {
	Field  string
	Reason string
}

// Configf returns a ConfigError for field with a formatted reason.
func Configf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) hold for every ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

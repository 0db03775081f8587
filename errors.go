package gglayout

import (
	"errors"
	"fmt"
)

// Sentinel errors for the gglayout package.
var (
	// ErrNoChild is returned when the view provider yields no view for an
	// index that is inside the collection. The measurement pass that hit it
	// is abandoned.
	ErrNoChild = errors.New("gglayout: provider returned no view")

	// ErrNotTemplated is returned by operations that need a template
	// instance when the provider does not supply one.
	ErrNotTemplated = errors.New("gglayout: provider is not templated")

	// ErrLayoutClosed is returned by operations on a closed Layout.
	ErrLayoutClosed = errors.New("gglayout: layout closed")

	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("gglayout: invalid config")
)

// ConfigError describes a configuration field that failed validation.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("gglayout: config %s: %s", e.Field, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvalidConfig) hold for every ConfigError.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

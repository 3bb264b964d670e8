package formconfig

import (
	"errors"
	"fmt"
)

// ErrEmptyDocument is returned when a config payload holds no data.
var ErrEmptyDocument = errors.New("formconfig: document is empty")

// ConfigError reports a malformed spec. Path is the dotted attribute path
// where the problem was found.
type ConfigError struct {
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return "formconfig: " + e.Reason
	}
	return fmt.Sprintf("formconfig: %s: %s", e.Path, e.Reason)
}

// NewConfigError builds a ConfigError with a formatted reason.
func NewConfigError(path, format string, args ...any) *ConfigError {
	return &ConfigError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err wraps a ConfigError.
func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

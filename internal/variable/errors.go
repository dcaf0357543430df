package variable

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid variable declaration or partition.
// It is fatal: the variable cannot be constructed.
type ConfigError struct {
	// Variable is the name of the offending variable, if known.
	Variable string

	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Variable != "" {
		msg = fmt.Sprintf("%s for variable %s", e.Message, e.Variable)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError returns true if err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func configErrorf(name, format string, args ...any) *ConfigError {
	return &ConfigError{Variable: name, Message: fmt.Sprintf(format, args...)}
}

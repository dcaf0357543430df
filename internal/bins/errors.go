package bins

import (
	"errors"
	"fmt"

	"github.com/roach88/subsamplr/internal/variable"
)

// ErrorCode categorises collection errors.
type ErrorCode string

const (
	// ErrCodeConfig indicates invalid weights or parameters supplied by
	// configuration.
	ErrCodeConfig ErrorCode = "CONFIGURATION"

	// ErrCodeContract indicates a caller bug, such as a value tuple of the
	// wrong length.
	ErrCodeContract ErrorCode = "CONTRACT_VIOLATION"

	// ErrCodeCapacity indicates that the population cannot satisfy the
	// request, such as sampling more units from a bin than it holds.
	ErrCodeCapacity ErrorCode = "CAPACITY"
)

// Error is returned by Collection operations.
type Error struct {
	Code ErrorCode

	Message string

	// Dimension names the variable involved, if any.
	Dimension string

	// Details contains additional context.
	Details map[string]string
}

func (e *Error) Error() string {
	if e.Dimension != "" {
		return fmt.Sprintf("%s: %s (dimension=%s)", e.Code, e.Message, e.Dimension)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError returns true for configuration errors from this package or
// from variable construction.
func IsConfigError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == ErrCodeConfig
	}
	return variable.IsConfigError(err)
}

// IsContractError returns true if the error is a contract violation.
func IsContractError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeContract
}

// IsCapacityError returns true if the error is a capacity error.
func IsCapacityError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeCapacity
}

func configError(dim, format string, args ...any) *Error {
	return &Error{Code: ErrCodeConfig, Message: fmt.Sprintf(format, args...), Dimension: dim}
}

func contractError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeContract, Message: fmt.Sprintf(format, args...)}
}

// newCapacityError reports a bin drawn more often than it has units.
func newCapacityError(b *Bin, requested int) *Error {
	return &Error{
		Code:    ErrCodeCapacity,
		Message: fmt.Sprintf("cannot sample %d units without replacement from a bin of %d", requested, b.Count()),
		Details: map[string]string{
			"bin":       b.String(),
			"requested": fmt.Sprintf("%d", requested),
			"available": fmt.Sprintf("%d", b.Count()),
		},
	}
}

package terminal

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the user aborts an interactive operation
// with Escape, q or Ctrl+C.
var ErrCancelled = errors.New("cancelled by user")

// SystemError wraps a failure of the terminal, input stream or an external
// process that an interactive operation depends on.
type SystemError struct {
	Op  string
	Err error
}

func (e *SystemError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("system error: %v", e.Err)
	}
	return fmt.Sprintf("system error: %s: %v", e.Op, e.Err)
}

func (e *SystemError) Unwrap() error { return e.Err }

func systemError(op string, err error) error {
	return &SystemError{Op: op, Err: err}
}

// IsCancelled reports whether err is a user cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsSystemError reports whether err carries a SystemError.
func IsSystemError(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}

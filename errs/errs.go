// Package errs holds the error kinds raised by the simulator.
package errs

import "fmt"

// Error type is used to create constant errors.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrValidation reports malformed constructor input.
	ErrValidation = Error("validation error")
	// ErrData reports a missing or malformed data file.
	ErrData = Error("data error")
	// ErrPhysics reports a corrupted physics state (NaN or Inf).
	ErrPhysics = Error("physics error")
	// ErrControl reports a plan that could not be computed.
	ErrControl = Error("control error")
)

// Validation wraps ErrValidation with a formatted message.
func Validation(format string, v ...interface{}) error {
	return wrap(ErrValidation, format, v...)
}

// Data wraps ErrData with a formatted message.
func Data(format string, v ...interface{}) error {
	return wrap(ErrData, format, v...)
}

// Physics wraps ErrPhysics with a formatted message.
func Physics(format string, v ...interface{}) error {
	return wrap(ErrPhysics, format, v...)
}

// Control wraps ErrControl with a formatted message.
func Control(format string, v ...interface{}) error {
	return wrap(ErrControl, format, v...)
}

func wrap(kind Error, format string, v ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, v...))
}

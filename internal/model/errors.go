package model

import "fmt"

// LoadError reports that the model parameters could not be loaded or
// decoded. Handlers map it to a server-side failure.
type LoadError struct {
	msg string
	err error
}

func (e *LoadError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *LoadError) Unwrap() error { return e.err }

func loadErrorf(format string, args ...any) *LoadError {
	return &LoadError{msg: fmt.Sprintf(format, args...)}
}

func wrapLoadError(msg string, err error) *LoadError {
	return &LoadError{msg: msg, err: err}
}

// ValidationError reports malformed or mis-shaped client input. Handlers
// map it to a client-side failure and echo the message verbatim.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// NewValidationError builds a ValidationError with the given message.
// Exposed so the API layer can flag decode failures with the same kind.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

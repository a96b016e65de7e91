package envfile

import "fmt"

// WriteError is returned when a project file cannot be written.
type WriteError struct {
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Cause)
}

func (e *WriteError) Unwrap() error { return e.Cause }

func (e *WriteError) IOError() bool { return true }

// ReadError is returned when an existing project file cannot be read.
type ReadError struct {
	Path  string
	Cause error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Cause)
}

func (e *ReadError) Unwrap() error { return e.Cause }

func (e *ReadError) IOError() bool { return true }

// DecodeError is returned when config values cannot be mapped onto Environment.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid config values: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

func (e *DecodeError) InvalidInput() bool { return true }

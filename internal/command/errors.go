package command

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a local command exceeds its timeout.
var ErrTimeout = errors.New("command timeout")

// ExecutionError is returned when the execution endpoint answers with a non-2xx status.
type ExecutionError struct {
	Status     int
	StatusText string
	Body       string
}

func (e *ExecutionError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("failed to execute command: %d %s: %s", e.Status, e.StatusText, e.Body)
	}
	return fmt.Sprintf("failed to execute command: %d %s", e.Status, e.StatusText)
}

// TransportError is returned when the execution endpoint cannot be reached or its
// response cannot be decoded.
type TransportError struct {
	URL   string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("execution endpoint %s: %v", e.URL, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

func (e *TransportError) IOError() bool { return true }

// StartError is returned when a local command cannot be started.
type StartError struct {
	Command string
	Cause   error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start %q: %v", e.Command, e.Cause)
}

func (e *StartError) Unwrap() error { return e.Cause }

package lifecycle

import (
	"fmt"
	"strings"
)

// PreconditionError is returned when the project config lacks required keys.
type PreconditionError struct {
	Missing []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("required keys missing from config: %s", strings.Join(e.Missing, ", "))
}

func (e *PreconditionError) InvalidInput() bool { return true }

// CommandFailedError is returned when an external command exits non-zero.
type CommandFailedError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandFailedError) Error() string {
	msg := fmt.Sprintf("command %q exited with code %d", e.Command, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + lastLine(s)
	}
	return msg
}

// lastLine keeps error messages to the line tools usually put the reason on.
func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

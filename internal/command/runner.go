// Package command issues single shell commands on behalf of the lifecycle operations,
// either through a notebook server's execution endpoint or on the local machine.
package command

import "context"

// Result is the outcome of one command.
type Result struct {
	ExitCode  int    `json:"exitCode"`
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	Truncated bool   `json:"truncated,omitempty"`
}

// Succeeded reports a zero exit code.
func (r *Result) Succeeded() bool {
	return r != nil && r.ExitCode == 0
}

// Runner executes one shell command string and reports its output.
// A non-zero exit code is reported in the Result, not as an error; errors mean the
// command could not be run or its result could not be obtained.
type Runner interface {
	Run(ctx context.Context, command string) (*Result, error)
}

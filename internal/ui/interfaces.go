// Package ui asks the user for the inputs lifecycle commands need and shows their progress.
package ui

import (
	"context"
	"errors"
)

// ErrCancelled is returned when the user dismisses a prompt.
var ErrCancelled = errors.New("prompt cancelled")

// Prompter collects answers from the user.
//
// Context Usage:
// If ctx is cancelled while a prompt is open, the prompt closes and ctx.Err() is returned.
type Prompter interface {
	// PromptVersion asks for a Python version, returning def when the user just confirms.
	PromptVersion(ctx context.Context, def string) (string, error)

	// Choose asks the user to pick one of options and returns its index.
	Choose(ctx context.Context, title string, options []string) (int, error)
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// UI runs Bubble Tea prompts on the given terminal streams.
type UI struct {
	in  io.Reader
	out io.Writer
}

// NewUI creates a UI reading keys from in and drawing to out.
func NewUI(in io.Reader, out io.Writer) *UI {
	if in == nil || out == nil {
		panic("in and out are required")
	}
	return &UI{in: in, out: out}
}

// PromptVersion asks for a Python version.
func (u *UI) PromptVersion(ctx context.Context, def string) (string, error) {
	final, err := u.run(ctx, newVersionModel(def))
	if err != nil {
		return "", err
	}
	m := final.(versionModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.value, nil
}

// Choose asks the user to pick one of options.
func (u *UI) Choose(ctx context.Context, title string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("no options to choose from")
	}
	final, err := u.run(ctx, newChoiceModel(title, options))
	if err != nil {
		return 0, err
	}
	m := final.(choiceModel)
	if m.cancelled {
		return 0, ErrCancelled
	}
	return m.index, nil
}

func (u *UI) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(u.in),
		tea.WithOutput(u.out),
	)
	final, err := p.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, tea.ErrProgramKilled) {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	return final, nil
}

// Defaults answers every prompt with its default, for --yes and non-interactive use.
type Defaults struct {
	// Choice is the index Choose returns.
	Choice int
}

func (d Defaults) PromptVersion(ctx context.Context, def string) (string, error) {
	return def, ctx.Err()
}

func (d Defaults) Choose(ctx context.Context, title string, options []string) (int, error) {
	if d.Choice < 0 || d.Choice >= len(options) {
		return 0, fmt.Errorf("default choice %d out of range for %q", d.Choice, title)
	}
	return d.Choice, ctx.Err()
}

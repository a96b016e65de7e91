package views

import (
	"fmt"
	"strings"
)

// RenderChoice renders a selection list with the cursor on index.
func RenderChoice(title string, options []string, index int) string {
	var lines []string
	lines = append(lines, TitleStyle.Render(title))
	lines = append(lines, "")

	for i, opt := range options {
		if i == index {
			lines = append(lines, CursorStyle.Render(fmt.Sprintf("▸ %s", opt)))
		} else {
			lines = append(lines, fmt.Sprintf("  %s", opt))
		}
	}

	lines = append(lines, "")
	lines = append(lines, HintStyle.Render("↑/↓: Navigate  Enter: Select  Esc: Cancel"))

	return PromptBoxStyle.Render(strings.Join(lines, "\n"))
}

// RenderInput renders a text prompt with an optional validation error.
func RenderInput(title, input, validationErr string) string {
	lines := []string{TitleStyle.Render(title), "", input}
	if validationErr != "" {
		lines = append(lines, ErrorStyle.Render(validationErr))
	}
	lines = append(lines, "", HintStyle.Render("Enter: Confirm  Esc: Cancel"))
	return PromptBoxStyle.Render(strings.Join(lines, "\n"))
}

// Package services holds rendering helpers that do not depend on a running program.
package services

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer turns markdown into terminal output.
type MarkdownRenderer interface {
	Render(content string, width int) (string, error)
}

// GlamourRenderer renders markdown with glamour's automatic style.
type GlamourRenderer struct{}

func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{}
}

func (r *GlamourRenderer) Render(content string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return renderer.Render(content)
}

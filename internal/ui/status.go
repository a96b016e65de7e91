package ui

import (
	"github.com/Cyclone1070/kernelenv/internal/lifecycle"
	"github.com/Cyclone1070/kernelenv/internal/ui/services"
)

// RenderStatus renders a status report for the terminal. If the renderer fails, the
// plain markdown is returned with the error.
func RenderStatus(r lifecycle.StatusReport, renderer services.MarkdownRenderer, width int) (string, error) {
	md := services.FormatStatus(r)
	out, err := renderer.Render(md, width)
	if err != nil {
		return md, err
	}
	return out, nil
}

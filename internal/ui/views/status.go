package views

import (
	"github.com/Cyclone1070/kernelenv/internal/notify"
	"github.com/charmbracelet/lipgloss"
)

// RenderNotice renders one notification line.
func RenderNotice(t notify.Type, message string) string {
	var icon string
	var style lipgloss.Style

	switch t {
	case notify.TypeSuccess:
		icon = "✔"
		style = lipgloss.NewStyle().Foreground(ColorSuccess)
	case notify.TypeWarning:
		icon = "!"
		style = lipgloss.NewStyle().Foreground(ColorWarning)
	case notify.TypeError:
		icon = "✘"
		style = lipgloss.NewStyle().Foreground(ColorError)
	default:
		icon = "•"
		style = lipgloss.NewStyle().Foreground(ColorMuted)
	}

	return style.Render(icon + " " + message)
}

// Package views renders prompt and notification state as styled strings.
package views

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("39")
	ColorSuccess = lipgloss.Color("42")
	ColorWarning = lipgloss.Color("214")
	ColorError   = lipgloss.Color("196")
	ColorMuted   = lipgloss.Color("241")

	TitleStyle  = lipgloss.NewStyle().Bold(true)
	HintStyle   = lipgloss.NewStyle().Faint(true)
	ErrorStyle  = lipgloss.NewStyle().Foreground(ColorError)
	CursorStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	PromptBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)
)

package ui

import (
	"fmt"

	"github.com/Cyclone1070/kernelenv/internal/config"
	"github.com/Cyclone1070/kernelenv/internal/ui/views"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// versionModel is a single-line prompt that only accepts MAJOR.MINOR versions.
type versionModel struct {
	input     textinput.Model
	def       string
	err       string
	value     string
	cancelled bool
}

func newVersionModel(def string) versionModel {
	ti := textinput.New()
	ti.Placeholder = def
	ti.CharLimit = 16
	ti.Prompt = "> "
	ti.Focus()
	return versionModel{input: ti, def: def}
}

func (m versionModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m versionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			if v == "" {
				v = m.def
			}
			if !config.ValidPythonVersion(v) {
				m.err = fmt.Sprintf("%q is not a version like 3.11", v)
				return m, nil
			}
			m.value = v
			return m, tea.Quit
		}
		m.err = ""
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m versionModel) View() string {
	if m.value != "" || m.cancelled {
		return ""
	}
	return views.RenderInput("Python version for the new environment", m.input.View(), m.err) + "\n"
}

// choiceModel picks one entry from a fixed list.
type choiceModel struct {
	title     string
	options   []string
	index     int
	chosen    bool
	cancelled bool
}

func newChoiceModel(title string, options []string) choiceModel {
	return choiceModel{title: title, options: options}
}

func (m choiceModel) Init() tea.Cmd {
	return nil
}

func (m choiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.index > 0 {
			m.index--
		}
	case "down", "j":
		if m.index < len(m.options)-1 {
			m.index++
		}
	case "enter":
		if m.index < len(m.options) {
			m.chosen = true
			return m, tea.Quit
		}
	case "esc", "ctrl+c", "q":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m choiceModel) View() string {
	if m.chosen || m.cancelled {
		return ""
	}
	return views.RenderChoice(m.title, m.options, m.index) + "\n"
}

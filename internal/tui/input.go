package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user backs out of a prompt.
var ErrCancelled = errors.New("cancelled")

type inputModel struct {
	label     string
	input     textinput.Model
	value     string
	done      bool
	cancelled bool
}

func newInputModel(label, placeholder string) inputModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = promptStyle.Render("> ")
	ti.CharLimit = 200
	ti.Focus()
	return inputModel{label: label, input: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			v := strings.TrimSpace(m.input.Value())
			if v == "" {
				return m, nil
			}
			m.value = v
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return fmt.Sprintf("%s\n%s\n%s\n",
		headerStyle.Render(m.label),
		m.input.View(),
		dimStyle.Render("enter to confirm · esc to cancel"))
}

// Ask shows a single-line prompt and returns the trimmed, non-empty answer.
func Ask(label, placeholder string) (string, error) {
	final, err := tea.NewProgram(newInputModel(label, placeholder)).Run()
	if err != nil {
		return "", fmt.Errorf("running prompt: %w", err)
	}
	m := final.(inputModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.value, nil
}

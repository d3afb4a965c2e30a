package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type pickerModel struct {
	label     string
	options   []string
	cursor    int
	chosen    int
	cancelled bool
}

func newPickerModel(label string, options []string, def int) pickerModel {
	if def < 0 || def >= len(options) {
		def = 0
	}
	return pickerModel{label: label, options: options, cursor: def, chosen: -1}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch s := key.String(); s {
	case "ctrl+c", "esc", "q":
		m.cancelled = true
		return m, tea.Quit
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "j", "down":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.chosen = m.cursor
		return m, tea.Quit
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n, _ := strconv.Atoi(s)
		if n <= len(m.options) {
			m.chosen = n - 1
			m.cursor = n - 1
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.chosen >= 0 || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.label) + "\n")
	for i, opt := range m.options {
		line := fmt.Sprintf("%d. %s", i+1, opt)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString(optionStyle.Render("  "+line) + "\n")
		}
	}
	b.WriteString(dimStyle.Render("↑/↓ to move · enter to select · esc to cancel") + "\n")
	return b.String()
}

// Pick shows a menu and returns the index of the chosen option.
func Pick(label string, options []string, def int) (int, error) {
	final, err := tea.NewProgram(newPickerModel(label, options, def)).Run()
	if err != nil {
		return 0, fmt.Errorf("running picker: %w", err)
	}
	m := final.(pickerModel)
	if m.cancelled {
		return 0, ErrCancelled
	}
	return m.chosen, nil
}

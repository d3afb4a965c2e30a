package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Adaptive colors for dark/light terminals
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorSecondary = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorDim       = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent    = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorBorder    = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorGreen     = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorRed       = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F6D"}
	colorYellow    = lipgloss.AdaptiveColor{Light: "#B58900", Dark: "#F2C94C"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	okStyle = lipgloss.NewStyle().
		Foreground(colorGreen).
		Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	errStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	optionStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(colorBorder)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary).
				Padding(0, 1)

	tableCellStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Padding(0, 1)

	sourceStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Padding(0, 1)
)

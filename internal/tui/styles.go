package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")).
			Bold(true)

	headerRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("8")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	colNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	colTypeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	notNullStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	pkStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
)

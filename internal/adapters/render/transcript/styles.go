package transcript

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	timestamp lipgloss.Style
	agent     lipgloss.Style
	customer  lipgloss.Style
	body      lipgloss.Style
	system    lipgloss.Style
	presence  lipgloss.Style
	typing    lipgloss.Style
	warning   lipgloss.Style
	section   lipgloss.Style
	empty     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		agent:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		customer:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		body:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		system:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		presence:  lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		typing:    lipgloss.NewStyle().Faint(true).Italic(true),
		warning:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:   lipgloss.NewStyle().MarginTop(1),
		empty:     lipgloss.NewStyle().Faint(true),
	}
}

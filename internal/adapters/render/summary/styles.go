package summary

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	account lipgloss.Style
	claimed lipgloss.Style
	skipped lipgloss.Style
	failed  lipgloss.Style
	reward  lipgloss.Style
	empty   lipgloss.Style
	section lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		account: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		claimed: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		skipped: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		failed:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		reward:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		empty:   lipgloss.NewStyle().Faint(true),
		section: lipgloss.NewStyle().MarginTop(1),
	}
}

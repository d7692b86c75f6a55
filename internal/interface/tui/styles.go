package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/yanqian/preburn-dashboard/internal/domain/dashboard"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("6")).
			MarginBottom(1)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	LoadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Italic(true)

	ChipStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder())

	DayStyle = lipgloss.NewStyle().
			Padding(0, 1)

	SelectedDayStyle = DayStyle.
				Bold(true).
				Reverse(true)

	CursorDayStyle = DayStyle.
			Underline(true)
)

func badgeStyle(c dashboard.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(string(c)))
}

func gaugeStyle(c dashboard.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(string(c)))
}

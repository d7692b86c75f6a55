package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yanqian/preburn-dashboard/internal/domain/dashboard"
)

func (m Model) View() string {
	v := dashboard.Present(m.state)

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Burnout Risk"))
	b.WriteString("\n")
	b.WriteString(m.riskSection(v))
	b.WriteString("\n\n")
	b.WriteString(m.forecastSection(v))
	b.WriteString("\n\n")
	b.WriteString(m.actionsSection(v))
	b.WriteString("\n\n")
	b.WriteString(MutedStyle.Render("←/→ move • enter select • 1-9 jump to day • q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) riskSection(v dashboard.View) string {
	if !v.HasRisk {
		if m.riskPending {
			return m.spinner.View() + LoadingStyle.Render(" Loading risk...")
		}
		return MutedStyle.Render("Risk unavailable")
	}

	lines := []string{
		MutedStyle.Render(v.Header),
		lipgloss.JoinHorizontal(lipgloss.Center,
			gaugeStyle(v.AccentColor).Render(fmt.Sprintf("%d%%", v.Percentage)),
			"  ",
			badgeStyle(v.BadgeColor).Render(string(v.RiskLevel)),
		),
	}
	if len(v.Contributors) > 0 {
		chips := make([]string, 0, len(v.Contributors))
		for _, chip := range v.Contributors {
			chips = append(chips, ChipStyle.Render(chip.Text))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, chips...))
	}
	return strings.Join(lines, "\n")
}

func (m Model) forecastSection(v dashboard.View) string {
	title := SectionStyle.Render("Forecast")
	if !v.HasForecast {
		if m.forecastPending {
			return title + "\n" + m.spinner.View() + LoadingStyle.Render(" Loading forecast...")
		}
		return title + "\n" + MutedStyle.Render("Forecast unavailable")
	}
	if len(v.Forecast) == 0 {
		return title + "\n" + MutedStyle.Render("No forecast days")
	}

	cols := make([]string, 0, len(v.Forecast))
	for _, day := range v.Forecast {
		style := DayStyle
		switch {
		case day.Selected:
			style = SelectedDayStyle
		case day.Day == m.cursor:
			style = CursorDayStyle
		}
		cols = append(cols, style.Render(fmt.Sprintf("%s\n%d%%", day.Label, day.Percentage)))
	}
	return title + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) actionsSection(v dashboard.View) string {
	heading := "Actions for today"
	if v.SelectedDay > 0 {
		heading = "Actions for " + dashboard.DayLabel(v.SelectedDay)
	}
	title := SectionStyle.Render(heading)

	switch v.Status {
	case dashboard.StatusLoading:
		return title + "\n" + m.spinner.View() + LoadingStyle.Render(" Loading actions...")
	case dashboard.StatusError:
		return title + "\n" + ErrorStyle.Render(v.ErrorMessage)
	}

	if len(v.Actions) == 0 {
		return title + "\n" + MutedStyle.Render("No actions.")
	}
	var b strings.Builder
	b.WriteString(title)
	for _, action := range v.Actions {
		b.WriteString("\n• ")
		b.WriteString(action.Title)
		if action.Explanation != "" {
			b.WriteString("\n  ")
			b.WriteString(MutedStyle.Render(action.Explanation))
		}
	}
	if v.Source != "" {
		b.WriteString("\n")
		b.WriteString(MutedStyle.Render("source: " + v.Source))
	}
	return b.String()
}

package dashboard

import (
	"fmt"
	"math"
)

// Color is a hex color used by renderers.
type Color string

const (
	BadgeRed   Color = "#DC2626"
	BadgeAmber Color = "#EAB308"
	BadgeGreen Color = "#16A34A"

	AccentRed   Color = "#F87171"
	AccentAmber Color = "#FBBF24"
	AccentGreen Color = "#4ADE80"
)

var contributorLabels = map[string]string{
	"HRV low":   "HRV (RMSSD)",
	"Workload":  "Workload Index",
	"Sentiment": "Negative Sentiment %",
}

// BadgeColor maps a risk level to the risk badge color. Unknown or empty levels use the
// Low color.
func BadgeColor(level RiskLevel) Color {
	switch level {
	case RiskHigh:
		return BadgeRed
	case RiskMedium:
		return BadgeAmber
	default:
		return BadgeGreen
	}
}

// AccentColor maps a risk level to the ring gauge color.
func AccentColor(level RiskLevel) Color {
	switch level {
	case RiskHigh:
		return AccentRed
	case RiskMedium:
		return AccentAmber
	default:
		return AccentGreen
	}
}

// Percentage rounds a [0,1] fraction half-up to a whole percent.
func Percentage(fraction float64) int {
	return int(math.Floor(fraction*100 + 0.5))
}

// RiskPercentage is Percentage of the snapshot score, or 0 without a snapshot.
func RiskPercentage(risk *RiskSnapshot) int {
	if risk == nil {
		return 0
	}
	return Percentage(risk.RiskScore)
}

// FormatContributorName translates metric identifiers into display labels.
func FormatContributorName(name string) string {
	if label, ok := contributorLabels[name]; ok {
		return label
	}
	return name
}

// ContributorChip renders a contributor as "<label> • <n>%".
func ContributorChip(c Contributor) string {
	return fmt.Sprintf("%s • %d%%", FormatContributorName(c.Name), Percentage(c.Weight))
}

// DayLabel renders a 1-based forecast day as "+<n>d".
func DayLabel(day int) string {
	return fmt.Sprintf("+%dd", day)
}

// View is the render-ready dashboard.
type View struct {
	HasRisk      bool          `json:"hasRisk"`
	Date         string        `json:"date,omitempty"`
	Header       string        `json:"header,omitempty"`
	Percentage   int           `json:"percentage"`
	RiskLevel    RiskLevel     `json:"riskLevel,omitempty"`
	BadgeColor   Color         `json:"badgeColor"`
	AccentColor  Color         `json:"accentColor"`
	Contributors []ChipView    `json:"contributors"`
	HasForecast  bool          `json:"hasForecast"`
	Forecast     []ForecastDay `json:"forecast"`
	SelectedDay  int           `json:"selectedDay,omitempty"`
	Actions      []Action      `json:"actions"`
	Source       string        `json:"source,omitempty"`
	Status       FetchStatus   `json:"actionsStatus"`
	ErrorMessage string        `json:"actionsError,omitempty"`
}

// ChipView is one contributor chip.
type ChipView struct {
	Label   string `json:"label"`
	Percent int    `json:"percent"`
	Text    string `json:"text"`
}

// ForecastDay is one forecast column.
type ForecastDay struct {
	Day        int    `json:"day"`
	Label      string `json:"label"`
	Percentage int    `json:"percentage"`
	Selected   bool   `json:"selected"`
}

// Present derives the view from the given state.
func Present(s State) View {
	var level RiskLevel
	if s.Risk != nil {
		level = s.Risk.RiskLevel
	}
	v := View{
		HasRisk:      s.Risk != nil,
		Percentage:   RiskPercentage(s.Risk),
		RiskLevel:    level,
		BadgeColor:   BadgeColor(level),
		AccentColor:  AccentColor(level),
		Contributors: []ChipView{},
		HasForecast:  s.Forecast != nil,
		Forecast:     make([]ForecastDay, 0, len(s.Forecast)),
		SelectedDay:  s.SelectedDay,
		Actions:      s.Actions.Actions,
		Source:       s.Actions.Source,
		Status:       s.Status,
		ErrorMessage: s.ErrorMessage,
	}
	if v.Actions == nil {
		v.Actions = []Action{}
	}
	if s.Risk != nil {
		v.Date = s.Risk.Date
		v.Header = "Today • " + s.Risk.Date
		for _, c := range s.Risk.TopContributors {
			v.Contributors = append(v.Contributors, ChipView{
				Label:   FormatContributorName(c.Name),
				Percent: Percentage(c.Weight),
				Text:    ContributorChip(c),
			})
		}
	}
	for i, value := range s.Forecast {
		day := i + 1
		v.Forecast = append(v.Forecast, ForecastDay{
			Day:        day,
			Label:      DayLabel(day),
			Percentage: Percentage(value),
			Selected:   day == s.SelectedDay,
		})
	}
	return v
}

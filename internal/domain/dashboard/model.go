package dashboard

import "time"

// RiskLevel is the upstream classification of a risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskSnapshot is the day's aggregate burnout risk as reported upstream.
type RiskSnapshot struct {
	Date            string        `json:"date"`
	RiskScore       float64       `json:"risk_score"`
	RiskLevel       RiskLevel     `json:"risk_level"`
	TopContributors []Contributor `json:"top_contributors"`
}

// Contributor is a named factor with its normalized share of the risk score.
type Contributor struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Action is a recommended intervention.
type Action struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
}

// ActionSet holds the actions for today or for one forecast day.
type ActionSet struct {
	Actions []Action `json:"actions"`
	Source  string   `json:"source,omitempty"`
}

// FetchStatus is the lifecycle of the most recent actions request.
type FetchStatus string

const (
	StatusIdle    FetchStatus = "idle"
	StatusLoading FetchStatus = "loading"
	StatusError   FetchStatus = "error"
)

// ActionsErrorMessage is shown whenever a day-scoped actions fetch fails.
const ActionsErrorMessage = "Could not load actions."

// ActionsRequest describes an actions fetch issued by the reducer. Day 0 means today.
type ActionsRequest struct {
	Seq uint64
	Day int
}

// RiskResult is the outcome of the risk fetch.
type RiskResult struct {
	Snapshot RiskSnapshot
	Err      error
	Latency  time.Duration
}

// ForecastResult is the outcome of the forecast fetch.
type ForecastResult struct {
	Values  []float64
	Err     error
	Latency time.Duration
}

// ActionsResult is the outcome of an actions fetch.
type ActionsResult struct {
	Request ActionsRequest
	Set     ActionSet
	Err     error
	Latency time.Duration
}

// EventKind names a controller transition.
type EventKind string

const (
	EventRiskLoaded       EventKind = "risk_loaded"
	EventRiskFailed       EventKind = "risk_failed"
	EventForecastLoaded   EventKind = "forecast_loaded"
	EventForecastFailed   EventKind = "forecast_failed"
	EventDaySelected      EventKind = "day_selected"
	EventActionsLoaded    EventKind = "actions_loaded"
	EventActionsFailed    EventKind = "actions_failed"
	EventActionsDiscarded EventKind = "actions_discarded"
)

// Event is emitted after every controller transition together with the new state.
type Event struct {
	Kind    EventKind
	Day     int
	Count   int
	Latency time.Duration
	Err     error
	State   State
}

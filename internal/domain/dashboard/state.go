package dashboard

import (
	"fmt"

	apperrors "github.com/yanqian/preburn-dashboard/pkg/errors"
)

// State is the dashboard's complete client-side state. Every transition returns a new
// value; slices held by a State are never modified after being stored.
type State struct {
	// Risk is nil until the risk fetch succeeds.
	Risk *RiskSnapshot
	// Forecast is nil until the forecast fetch succeeds.
	Forecast []float64
	// Actions.Actions is nil until the first actions fetch resolves.
	Actions      ActionSet
	SelectedDay  int
	Status       FetchStatus
	ErrorMessage string

	seq uint64
}

// NewState returns the pre-mount state.
func NewState() State {
	return State{Status: StatusIdle}
}

// Mount issues the initial "today" actions request. Risk and forecast requests carry no
// sequence and are dispatched by the caller alongside it.
func (s State) Mount() (State, ActionsRequest) {
	s.seq++
	return s, ActionsRequest{Seq: s.seq, Day: 0}
}

// Select records the selected day and moves the actions lifecycle to loading.
func (s State) Select(day int) (State, ActionsRequest, error) {
	if err := s.ValidateDay(day); err != nil {
		return s, ActionsRequest{}, err
	}
	s.SelectedDay = day
	s.Status = StatusLoading
	s.ErrorMessage = ""
	s.seq++
	return s, ActionsRequest{Seq: s.seq, Day: day}, nil
}

// ValidateDay rejects days outside the loaded forecast. Before the forecast arrives only
// the lower bound is enforced.
func (s State) ValidateDay(day int) error {
	if day < 1 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("day must be >= 1, got %d", day), nil)
	}
	if s.Forecast != nil && day > len(s.Forecast) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("day must be <= %d, got %d", len(s.Forecast), day), nil)
	}
	return nil
}

// ApplyRisk stores a successful snapshot. A failure leaves the risk absent.
func (s State) ApplyRisk(res RiskResult) (State, Event) {
	if res.Err != nil {
		return s, Event{Kind: EventRiskFailed, Err: res.Err, Latency: res.Latency}
	}
	snapshot := res.Snapshot
	s.Risk = &snapshot
	return s, Event{Kind: EventRiskLoaded, Count: len(snapshot.TopContributors), Latency: res.Latency}
}

// ApplyForecast stores a successful forecast. A failure leaves the forecast absent.
func (s State) ApplyForecast(res ForecastResult) (State, Event) {
	if res.Err != nil {
		return s, Event{Kind: EventForecastFailed, Err: res.Err, Latency: res.Latency}
	}
	values := res.Values
	if values == nil {
		values = []float64{}
	}
	s.Forecast = values
	return s, Event{Kind: EventForecastLoaded, Count: len(values), Latency: res.Latency}
}

// ApplyActions applies an actions result if it answers the latest request. Results of
// superseded requests are dropped without touching the state.
func (s State) ApplyActions(res ActionsResult) (State, Event) {
	evt := Event{Day: res.Request.Day, Latency: res.Latency, Err: res.Err}
	if res.Request.Seq != s.seq {
		evt.Kind = EventActionsDiscarded
		return s, evt
	}
	if res.Err != nil {
		s.Actions = ActionSet{Actions: []Action{}}
		if res.Request.Day == 0 {
			// today's fetch degrades silently
			s.Status = StatusIdle
		} else {
			s.Status = StatusError
			s.ErrorMessage = ActionsErrorMessage
		}
		evt.Kind = EventActionsFailed
		return s, evt
	}
	set := res.Set
	if set.Actions == nil {
		set.Actions = []Action{}
	}
	s.Actions = set
	s.Status = StatusIdle
	s.ErrorMessage = ""
	evt.Kind = EventActionsLoaded
	evt.Count = len(set.Actions)
	return s, evt
}

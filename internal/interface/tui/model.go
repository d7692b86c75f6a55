package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yanqian/preburn-dashboard/internal/domain/dashboard"
)

type riskMsg struct{ res dashboard.RiskResult }

type forecastMsg struct{ res dashboard.ForecastResult }

type actionsMsg struct{ res dashboard.ActionsResult }

// Model is the terminal dashboard. It drives dashboard.State directly from the bubbletea
// event loop; fetches run as commands and come back as messages.
type Model struct {
	ctx     context.Context
	fetcher dashboard.Fetcher
	logger  *slog.Logger

	state    dashboard.State
	mountReq dashboard.ActionsRequest

	riskPending     bool
	forecastPending bool

	cursor  int
	spinner spinner.Model
	width   int
}

// New builds a model that has already issued its mount transition. Init dispatches the
// fetches.
func New(ctx context.Context, fetcher dashboard.Fetcher, logger *slog.Logger) Model {
	state, req := dashboard.NewState().Mount()
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = LoadingStyle
	return Model{
		ctx:             ctx,
		fetcher:         fetcher,
		logger:          logger.With("component", "tui"),
		state:           state,
		mountReq:        req,
		riskPending:     true,
		forecastPending: true,
		cursor:          1,
		spinner:         sp,
	}
}

// State exposes the current dashboard state.
func (m Model) State() dashboard.State {
	return m.state
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchRisk(),
		m.fetchForecast(),
		m.fetchActions(m.mountReq),
		m.spinner.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case riskMsg:
		var evt dashboard.Event
		m.state, evt = m.state.ApplyRisk(msg.res)
		m.riskPending = false
		m.logEvent(evt)
		return m, nil
	case forecastMsg:
		var evt dashboard.Event
		m.state, evt = m.state.ApplyForecast(msg.res)
		m.forecastPending = false
		m.clampCursor()
		m.logEvent(evt)
		return m, nil
	case actionsMsg:
		var evt dashboard.Event
		m.state, evt = m.state.ApplyActions(msg.res)
		m.logEvent(evt)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "left", "h":
		if m.cursor > 1 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor < len(m.state.Forecast) {
			m.cursor++
		}
	case "enter", " ":
		return m.selectDay(m.cursor)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return m.selectDay(int(key[0] - '0'))
	}
	return m, nil
}

// selectDay only acts on rendered forecast days, so nothing is selectable before the
// forecast arrives.
func (m Model) selectDay(day int) (tea.Model, tea.Cmd) {
	if m.state.Forecast == nil {
		m.logger.Debug("day selection ignored before forecast", "day", day)
		return m, nil
	}
	next, req, err := m.state.Select(day)
	if err != nil {
		m.logger.Debug("day selection ignored", "day", day, "error", err)
		return m, nil
	}
	m.state = next
	m.cursor = day
	m.logger.Debug("day selected", "day", day)
	return m, m.fetchActions(req)
}

func (m *Model) clampCursor() {
	if n := len(m.state.Forecast); n > 0 && m.cursor > n {
		m.cursor = n
	}
	if m.cursor < 1 {
		m.cursor = 1
	}
}

func (m Model) logEvent(evt dashboard.Event) {
	switch evt.Kind {
	case dashboard.EventRiskFailed, dashboard.EventForecastFailed, dashboard.EventActionsFailed:
		m.logger.Warn("dashboard fetch failed", "event", evt.Kind, "day", evt.Day, "error", evt.Err)
	default:
		m.logger.Debug("dashboard transition", "event", evt.Kind, "day", evt.Day, "count", evt.Count, "latency_ms", evt.Latency.Milliseconds())
	}
}

func (m Model) fetchRisk() tea.Cmd {
	ctx, fetcher := m.ctx, m.fetcher
	return func() tea.Msg {
		start := time.Now()
		snapshot, err := fetcher.Risk(ctx)
		return riskMsg{res: dashboard.RiskResult{Snapshot: snapshot, Err: err, Latency: time.Since(start)}}
	}
}

func (m Model) fetchForecast() tea.Cmd {
	ctx, fetcher := m.ctx, m.fetcher
	return func() tea.Msg {
		start := time.Now()
		values, err := fetcher.Forecast(ctx)
		return forecastMsg{res: dashboard.ForecastResult{Values: values, Err: err, Latency: time.Since(start)}}
	}
}

func (m Model) fetchActions(req dashboard.ActionsRequest) tea.Cmd {
	ctx, fetcher := m.ctx, m.fetcher
	return func() tea.Msg {
		start := time.Now()
		set, err := fetcher.Actions(ctx, req.Day)
		return actionsMsg{res: dashboard.ActionsResult{Request: req, Set: set, Err: err, Latency: time.Since(start)}}
	}
}

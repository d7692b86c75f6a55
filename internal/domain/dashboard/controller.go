package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Fetcher is the upstream burnout API as seen by the controller.
type Fetcher interface {
	Risk(ctx context.Context) (RiskSnapshot, error)
	Forecast(ctx context.Context) ([]float64, error)
	Actions(ctx context.Context, day int) (ActionSet, error)
}

// Observer receives every transition in the order it was applied. It must not call back
// into the controller.
type Observer func(Event)

// Controller runs the dashboard reducer against a Fetcher. Each fetch runs in its own
// goroutine and its result is applied under the controller lock, so completions may
// arrive in any order.
type Controller struct {
	fetcher  Fetcher
	logger   *slog.Logger
	observer Observer
	now      func() time.Time

	mu      sync.Mutex
	state   State
	mounted bool

	notifyMu sync.Mutex

	trackMu sync.Mutex
	pending int
	drained chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewController builds a controller whose fetches live until Close is called or the
// parent context ends.
func NewController(parent context.Context, fetcher Fetcher, logger *slog.Logger, observer Observer) *Controller {
	ctx, cancel := context.WithCancel(parent)
	if observer == nil {
		observer = func(Event) {}
	}
	return &Controller{
		fetcher:  fetcher,
		logger:   logger.With("component", "dashboard.controller"),
		observer: observer,
		now:      time.Now,
		state:    NewState(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Mount dispatches the risk, forecast and today's actions fetches. Only the first call
// has any effect.
func (c *Controller) Mount() {
	c.mu.Lock()
	if c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	next, req := c.state.Mount()
	c.state = next
	c.mu.Unlock()

	c.spawn(func(ctx context.Context) {
		start := c.now()
		snapshot, err := c.fetcher.Risk(ctx)
		latency := c.now().Sub(start)
		c.apply(func(s State) (State, Event) {
			return s.ApplyRisk(RiskResult{Snapshot: snapshot, Err: err, Latency: latency})
		})
	})
	c.spawn(func(ctx context.Context) {
		start := c.now()
		values, err := c.fetcher.Forecast(ctx)
		latency := c.now().Sub(start)
		c.apply(func(s State) (State, Event) {
			return s.ApplyForecast(ForecastResult{Values: values, Err: err, Latency: latency})
		})
	})
	c.fetchActions(req)
}

// Select marks day as selected, sets the actions lifecycle to loading and starts the
// day-scoped fetch. The returned state already reflects the selection.
func (c *Controller) Select(day int) (State, error) {
	c.mu.Lock()
	next, req, err := c.state.Select(day)
	if err != nil {
		c.mu.Unlock()
		return next, err
	}
	c.state = next
	c.publish(Event{Kind: EventDaySelected, Day: day, State: next})
	c.fetchActions(req)
	return next, nil
}

// State returns the current state snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Wait blocks until every fetch started so far has been applied or ctx ends.
func (c *Controller) Wait(ctx context.Context) error {
	c.trackMu.Lock()
	drained := c.drained
	c.trackMu.Unlock()
	if drained == nil {
		return nil
	}
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels in-flight fetches.
func (c *Controller) Close() {
	c.cancel()
}

func (c *Controller) fetchActions(req ActionsRequest) {
	c.spawn(func(ctx context.Context) {
		start := c.now()
		set, err := c.fetcher.Actions(ctx, req.Day)
		latency := c.now().Sub(start)
		c.apply(func(s State) (State, Event) {
			return s.ApplyActions(ActionsResult{Request: req, Set: set, Err: err, Latency: latency})
		})
	})
}

func (c *Controller) spawn(fn func(ctx context.Context)) {
	c.trackMu.Lock()
	if c.pending == 0 {
		c.drained = make(chan struct{})
	}
	c.pending++
	c.trackMu.Unlock()

	go func() {
		defer c.untrack()
		fn(c.ctx)
	}()
}

func (c *Controller) untrack() {
	c.trackMu.Lock()
	defer c.trackMu.Unlock()
	c.pending--
	if c.pending == 0 {
		close(c.drained)
	}
}

func (c *Controller) apply(transition func(State) (State, Event)) {
	c.mu.Lock()
	next, evt := transition(c.state)
	c.state = next
	evt.State = next

	switch evt.Kind {
	case EventRiskFailed, EventForecastFailed, EventActionsFailed:
		c.logger.Warn("dashboard fetch failed", "event", evt.Kind, "day", evt.Day, "error", evt.Err)
	case EventActionsDiscarded:
		c.logger.Debug("stale actions response discarded", "day", evt.Day)
	default:
		c.logger.Debug("dashboard transition", "event", evt.Kind, "day", evt.Day, "count", evt.Count)
	}
	c.publish(evt)
}

// publish is called with c.mu held and releases it. notifyMu is taken before c.mu is
// released so observers see events in transition order.
func (c *Controller) publish(evt Event) {
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()
	c.observer(evt)
}

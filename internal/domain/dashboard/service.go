package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/preburn-dashboard/pkg/errors"
	"github.com/yanqian/preburn-dashboard/pkg/util"
)

// Config holds the session registry knobs.
type Config struct {
	SessionTTL  time.Duration
	MaxSessions int
}

// OpenRequest starts a new dashboard session.
type OpenRequest struct {
	Wait bool
}

// SelectRequest selects a forecast day within a session.
type SelectRequest struct {
	SessionID string
	Day       int
	Wait      bool
}

// SessionView is returned to API consumers.
type SessionView struct {
	ID        string    `json:"id"`
	Stale     bool      `json:"stale"`
	UpdatedAt time.Time `json:"updatedAt"`
	View      View      `json:"view"`
}

// Service hosts one Controller per dashboard session.
type Service interface {
	Open(ctx context.Context, req OpenRequest) (SessionView, error)
	Get(ctx context.Context, sessionID string) (SessionView, error)
	Select(ctx context.Context, req SelectRequest) (SessionView, error)
	Interactions(ctx context.Context, sessionID string, limit int) ([]Interaction, error)
	Close(ctx context.Context, sessionID string) error
	Shutdown()
}

type session struct {
	id       string
	ctrl     *Controller
	lastSeen time.Time

	// saveMu orders view saves against Close deleting the stored view.
	saveMu sync.Mutex
	closed atomic.Bool
}

func (sess *session) shutdown() {
	sess.closed.Store(true)
	sess.ctrl.Close()
}

type service struct {
	cfg      Config
	fetcher  Fetcher
	views    ViewStore
	log      InteractionLog
	recorder Recorder
	base     *slog.Logger
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string

	root   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService wires up the dashboard session service.
func NewService(cfg Config, fetcher Fetcher, views ViewStore, log InteractionLog, recorder Recorder, logger *slog.Logger) Service {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	root, cancel := context.WithCancel(context.Background())
	return &service{
		cfg:      cfg,
		fetcher:  fetcher,
		views:    views,
		log:      log,
		recorder: recorder,
		base:     logger,
		logger:   logger.With("component", "dashboard.service"),
		now:      util.NowUTC,
		newID:    uuid.NewString,
		root:     root,
		cancel:   cancel,
		sessions: make(map[string]*session),
	}
}

func (s *service) Open(ctx context.Context, req OpenRequest) (SessionView, error) {
	id := s.newID()
	now := s.now()
	sess := &session{id: id, lastSeen: now}
	sess.ctrl = NewController(s.root, s.fetcher, s.base.With("session", id), s.observerFor(sess))

	s.mu.Lock()
	s.sweepLocked(now)
	for s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		s.evictOldestLocked()
	}
	s.sessions[id] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	s.recorder.SetSessions(count)
	s.logger.Info("dashboard session opened", "session", id, "sessions", count)

	sess.ctrl.Mount()
	if req.Wait {
		s.wait(ctx, sess)
	}
	return s.liveView(sess), nil
}

func (s *service) Get(ctx context.Context, sessionID string) (SessionView, error) {
	if sess, ok := s.touch(sessionID); ok {
		return s.liveView(sess), nil
	}
	stored, found, err := s.views.GetView(ctx, sessionID)
	if err != nil {
		return SessionView{}, apperrors.Wrap(apperrors.CodeStore, "failed to load session view", err)
	}
	if !found {
		return SessionView{}, apperrors.Wrap(apperrors.CodeSessionNotFound, "session not found", nil)
	}
	return SessionView{ID: sessionID, Stale: true, UpdatedAt: stored.UpdatedAt, View: stored.View}, nil
}

func (s *service) Select(ctx context.Context, req SelectRequest) (SessionView, error) {
	sess, ok := s.touch(req.SessionID)
	if !ok {
		return SessionView{}, apperrors.Wrap(apperrors.CodeSessionNotFound, "session not found", nil)
	}
	if _, err := sess.ctrl.Select(req.Day); err != nil {
		return SessionView{}, err
	}
	if req.Wait {
		s.wait(ctx, sess)
	}
	return s.liveView(sess), nil
}

func (s *service) Interactions(ctx context.Context, sessionID string, limit int) ([]Interaction, error) {
	if limit <= 0 {
		limit = 20
	}
	items, err := s.log.Recent(ctx, sessionID, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStore, "failed to load interactions", err)
	}
	return items, nil
}

func (s *service) Close(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	count := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return apperrors.Wrap(apperrors.CodeSessionNotFound, "session not found", nil)
	}
	sess.shutdown()
	s.recorder.SetSessions(count)

	sess.saveMu.Lock()
	err := s.views.DeleteView(ctx, sessionID)
	sess.saveMu.Unlock()
	if err != nil {
		s.logger.Warn("failed to delete session view", "session", sessionID, "error", err)
	}
	s.logger.Info("dashboard session closed", "session", sessionID)
	return nil
}

func (s *service) Shutdown() {
	s.mu.Lock()
	for id, sess := range s.sessions {
		sess.shutdown()
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	s.cancel()
	s.recorder.SetSessions(0)
}

func (s *service) touch(sessionID string) (*session, bool) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	sess.lastSeen = now
	return sess, true
}

func (s *service) sweepLocked(now time.Time) {
	if s.cfg.SessionTTL <= 0 {
		return
	}
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.cfg.SessionTTL {
			sess.shutdown()
			delete(s.sessions, id)
			s.logger.Info("dashboard session expired", "session", id)
		}
	}
	s.recorder.SetSessions(len(s.sessions))
}

func (s *service) evictOldestLocked() {
	ordered := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		ordered = append(ordered, sess)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].lastSeen.Before(ordered[j].lastSeen)
	})
	if len(ordered) == 0 {
		return
	}
	oldest := ordered[0]
	oldest.shutdown()
	delete(s.sessions, oldest.id)
	s.logger.Info("dashboard session evicted", "session", oldest.id)
}

func (s *service) wait(ctx context.Context, sess *session) {
	if err := sess.ctrl.Wait(ctx); err != nil {
		s.logger.Warn("stopped waiting for dashboard fetches", "session", sess.id, "error", err)
	}
}

func (s *service) liveView(sess *session) SessionView {
	return SessionView{ID: sess.id, UpdatedAt: s.now(), View: Present(sess.ctrl.State())}
}

func (s *service) observerFor(sess *session) Observer {
	return func(evt Event) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		s.recordEvent(ctx, sess.id, evt)

		sess.saveMu.Lock()
		defer sess.saveMu.Unlock()
		if sess.closed.Load() {
			return
		}
		stored := StoredView{SessionID: sess.id, View: Present(evt.State), UpdatedAt: s.now()}
		if err := s.views.SaveView(ctx, stored, s.cfg.SessionTTL); err != nil {
			s.logger.Warn("failed to persist session view", "session", sess.id, "error", err)
		}
	}
}

func (s *service) recordEvent(ctx context.Context, sessionID string, evt Event) {
	// fetches cut short by Close or Shutdown are not outcomes of the upstream
	if errors.Is(evt.Err, context.Canceled) {
		return
	}
	var (
		resource string
		outcome  Outcome
	)
	switch evt.Kind {
	case EventRiskLoaded:
		resource, outcome = "risk", OutcomeOK
	case EventRiskFailed:
		resource, outcome = "risk", OutcomeError
	case EventForecastLoaded:
		resource, outcome = "forecast", OutcomeOK
	case EventForecastFailed:
		resource, outcome = "forecast", OutcomeError
	case EventActionsLoaded:
		resource, outcome = "actions", OutcomeOK
	case EventActionsFailed:
		resource, outcome = "actions", OutcomeError
	case EventActionsDiscarded:
		resource, outcome = "actions", OutcomeDiscarded
	default:
		return
	}
	s.recorder.ObserveFetch(resource, string(outcome), evt.Latency)
	if resource != "actions" {
		return
	}
	entry := Interaction{
		SessionID:   sessionID,
		Day:         evt.Day,
		Outcome:     outcome,
		ActionCount: evt.Count,
		LatencyMS:   evt.Latency.Milliseconds(),
		CreatedAt:   s.now(),
	}
	if err := s.log.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record interaction", "session", sessionID, "error", err)
	}
}

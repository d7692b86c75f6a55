package dashboard

import (
	"context"
	"time"
)

// StoredView is the last rendered view of a session.
type StoredView struct {
	SessionID string    `json:"sessionId"`
	View      View      `json:"view"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ViewStore persists rendered views so they outlive the in-process session.
type ViewStore interface {
	SaveView(ctx context.Context, view StoredView, ttl time.Duration) error
	GetView(ctx context.Context, sessionID string) (StoredView, bool, error)
	DeleteView(ctx context.Context, sessionID string) error
}

// Outcome classifies a resolved actions fetch.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeError     Outcome = "error"
	OutcomeDiscarded Outcome = "discarded"
)

// Interaction is one resolved actions fetch of a session.
type Interaction struct {
	SessionID   string    `json:"sessionId"`
	Day         int       `json:"day"`
	Outcome     Outcome   `json:"outcome"`
	ActionCount int       `json:"actionCount"`
	LatencyMS   int64     `json:"latencyMs"`
	CreatedAt   time.Time `json:"createdAt"`
}

// InteractionLog records resolved actions fetches.
type InteractionLog interface {
	Record(ctx context.Context, entry Interaction) error
	Recent(ctx context.Context, sessionID string, limit int) ([]Interaction, error)
}

// Recorder receives fetch outcomes and session counts for metrics.
type Recorder interface {
	ObserveFetch(resource, outcome string, latency time.Duration)
	SetSessions(n int)
}

type noopRecorder struct{}

func (noopRecorder) ObserveFetch(string, string, time.Duration) {}
func (noopRecorder) SetSessions(int)                            {}

package interactionlog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/preburn-dashboard/internal/domain/dashboard"
)

// Schema creates the interaction table when missing.
const Schema = `
CREATE TABLE IF NOT EXISTS dashboard_interactions (
	id           BIGSERIAL PRIMARY KEY,
	session_id   TEXT        NOT NULL,
	day          INTEGER     NOT NULL,
	outcome      TEXT        NOT NULL,
	action_count INTEGER     NOT NULL,
	latency_ms   BIGINT      NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS dashboard_interactions_session_idx
	ON dashboard_interactions (session_id, created_at DESC);
`

// PostgresLog implements dashboard.InteractionLog using pgx.
type PostgresLog struct {
	pool *pgxpool.Pool
}

// NewPostgresLog constructs the repository.
func NewPostgresLog(pool *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{pool: pool}
}

// EnsureSchema applies Schema.
func (l *PostgresLog) EnsureSchema(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, Schema)
	return err
}

// Record inserts one interaction row.
func (l *PostgresLog) Record(ctx context.Context, entry dashboard.Interaction) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO dashboard_interactions (session_id, day, outcome, action_count, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.SessionID, entry.Day, string(entry.Outcome), entry.ActionCount, entry.LatencyMS, entry.CreatedAt)
	return err
}

// Recent lists the newest interactions of a session.
func (l *PostgresLog) Recent(ctx context.Context, sessionID string, limit int) ([]dashboard.Interaction, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT session_id, day, outcome, action_count, latency_ms, created_at
		FROM dashboard_interactions
		WHERE session_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]dashboard.Interaction, 0, limit)
	for rows.Next() {
		var (
			entry   dashboard.Interaction
			outcome string
		)
		if err := rows.Scan(&entry.SessionID, &entry.Day, &outcome, &entry.ActionCount, &entry.LatencyMS, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Outcome = dashboard.Outcome(outcome)
		out = append(out, entry)
	}
	return out, rows.Err()
}

var _ dashboard.InteractionLog = (*PostgresLog)(nil)

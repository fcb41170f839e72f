package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"thumbai/internal/domain"
)

const notifyChannel = "generate_events"

var errNoEventAvailable = errors.New("no event available")

// PostgresQueue implements Publisher and a consumer loop on one events table.
// Claims use FOR UPDATE SKIP LOCKED so multiple workers never double-process a
// live event; NOTIFY wakes sleeping workers without tight polling.
type PostgresQueue struct {
	pool        *pgxpool.Pool
	logger      zerolog.Logger
	maxAttempts int

	// PollInterval bounds how long a worker sleeps when no wake-up arrives.
	PollInterval time.Duration
	// InvocationTimeout is the per-delivery execution ceiling.
	InvocationTimeout time.Duration
	// Wakeup, when non-nil, yields whenever a NOTIFY arrives.
	Wakeup <-chan struct{}
}

// NewPostgresQueue creates a queue backed by PostgreSQL.
func NewPostgresQueue(pool *pgxpool.Pool, logger zerolog.Logger) *PostgresQueue {
	return &PostgresQueue{
		pool:              pool,
		logger:            logger,
		maxAttempts:       DefaultMaxAttempts,
		PollInterval:      2 * time.Second,
		InvocationTimeout: 180 * time.Second,
	}
}

// EnsureSchema creates the generate_events table when it does not exist.
func (q *PostgresQueue) EnsureSchema(ctx context.Context) error {
	_, err := q.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS generate_events (
    id         UUID PRIMARY KEY,
    payload    JSONB NOT NULL,
    state      TEXT NOT NULL DEFAULT 'queued',
    attempts   INT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS generate_events_queued_idx ON generate_events (created_at) WHERE state = 'queued';
`)
	if err != nil {
		return fmt.Errorf("queue: ensure schema: %w", err)
	}
	return nil
}

// Publish enqueues one event and notifies listening workers.
func (q *PostgresQueue) Publish(ctx context.Context, event domain.GenerateEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("queue: encode event: %w", err)
	}
	if _, err := q.pool.Exec(ctx, `INSERT INTO generate_events (id, payload) VALUES ($1, $2);`, uuid.NewString(), payload); err != nil {
		return fmt.Errorf("queue: publish: %w", err)
	}
	// Delivery does not depend on the notification; it only shortens the
	// worker's sleep. Failure here is not a publish failure.
	if _, err := q.pool.Exec(ctx, `SELECT pg_notify($1, '');`, notifyChannel); err != nil {
		q.logger.Warn().Err(err).Msg("queue: notify failed")
	}
	return nil
}

// Consume claims and processes events until ctx is cancelled.
func (q *PostgresQueue) Consume(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		event, eventID, attempts, err := q.claim(ctx)
		if err != nil {
			if errors.Is(err, errNoEventAvailable) {
				q.idle(ctx)
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			q.logger.Error().Err(err).Msg("queue: claim failed")
			q.idle(ctx)
			continue
		}

		q.deliver(ctx, handler, event, eventID, attempts)
	}
}

func (q *PostgresQueue) idle(ctx context.Context) {
	timer := time.NewTimer(q.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	case <-q.Wakeup:
	}
}

func (q *PostgresQueue) claim(ctx context.Context) (domain.GenerateEvent, string, int, error) {
	query := `
UPDATE generate_events
SET state = 'running', attempts = attempts + 1, updated_at = NOW()
WHERE id = (
    SELECT id FROM generate_events
    WHERE state = 'queued'
    ORDER BY created_at
    FOR UPDATE SKIP LOCKED
    LIMIT 1
)
RETURNING id, payload, attempts;
`
	var id string
	var payload []byte
	var attempts int
	row := q.pool.QueryRow(ctx, query)
	if err := row.Scan(&id, &payload, &attempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.GenerateEvent{}, "", 0, errNoEventAvailable
		}
		return domain.GenerateEvent{}, "", 0, err
	}
	event, err := decodeEvent(payload)
	if err != nil {
		// The claiming update already flipped the row to running; without a
		// decodable payload it can never be delivered, so bury it here.
		q.finish(ctx, id, "dead")
		return domain.GenerateEvent{}, "", 0, fmt.Errorf("queue: decode event %s: %w", id, err)
	}
	return event, id, attempts, nil
}

func decodeEvent(payload []byte) (domain.GenerateEvent, error) {
	var event domain.GenerateEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return domain.GenerateEvent{}, err
	}
	return event, nil
}

func (q *PostgresQueue) deliver(ctx context.Context, handler Handler, event domain.GenerateEvent, eventID string, attempts int) {
	invCtx, cancel := context.WithTimeout(ctx, q.InvocationTimeout)
	defer cancel()

	err := handler(invCtx, event)
	if err == nil {
		q.finish(ctx, eventID, "done")
		return
	}

	q.logger.Error().Err(err).
		Str("event_id", eventID).
		Str("job_id", event.JobID).
		Int("attempts", attempts).
		Msg("queue: handler failed")

	if attempts >= q.maxAttempts {
		q.finish(ctx, eventID, "dead")
		return
	}
	q.finish(ctx, eventID, "queued")
}

func (q *PostgresQueue) finish(ctx context.Context, eventID, state string) {
	// Use a detached context so a cancelled invocation can still record its
	// outcome during shutdown.
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	if _, err := q.pool.Exec(ctx, `UPDATE generate_events SET state = $2, updated_at = NOW() WHERE id = $1;`, eventID, state); err != nil {
		q.logger.Error().Err(err).Str("event_id", eventID).Str("state", state).Msg("queue: finish failed")
	}
}

package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"thumbai/internal/domain"
)

// PostgresStore implements Store on top of a pgx connection pool. Expiry is an
// expires_at column checked on read; expired rows look identical to missing
// ones, matching set-with-TTL semantics.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a job store backed by PostgreSQL.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the job_records table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS job_records (
    key        TEXT PRIMARY KEY,
    status     TEXT NOT NULL,
    data       JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMPTZ NOT NULL
);
`)
	if err != nil {
		return fmt.Errorf("jobstore: ensure schema: %w", err)
	}
	return nil
}

// CreatePending inserts the initial pending record.
func (s *PostgresStore) CreatePending(ctx context.Context, jobID string, data domain.JobData, ttl time.Duration) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("jobstore: encode data: %w", err)
	}
	query := `
INSERT INTO job_records (key, status, data, expires_at)
VALUES ($1, $2, $3, NOW() + $4::interval);
`
	if _, err := s.pool.Exec(ctx, query, storeKey(jobID), domain.JobStatusPending, payload, ttl.String()); err != nil {
		return fmt.Errorf("jobstore: create pending: %w", err)
	}
	return nil
}

// Complete writes the terminal record for jobID. Only a live pending row is
// updated; a row that already reached a terminal state yields ErrStoreConflict.
func (s *PostgresStore) Complete(ctx context.Context, jobID string, rec domain.JobRecord) error {
	payload, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("jobstore: encode data: %w", err)
	}
	query := `
UPDATE job_records
SET status = $2, data = $3, updated_at = NOW()
WHERE key = $1 AND expires_at > NOW() AND status = $4
RETURNING key;
`
	var key string
	row := s.pool.QueryRow(ctx, query, storeKey(jobID), rec.Status, payload, domain.JobStatusPending)
	if err := row.Scan(&key); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.completeMissReason(ctx, jobID)
		}
		return fmt.Errorf("jobstore: complete: %w", err)
	}
	return nil
}

// completeMissReason distinguishes "already terminal" from "expired/missing"
// after a conditional update matched nothing.
func (s *PostgresStore) completeMissReason(ctx context.Context, jobID string) error {
	var status string
	row := s.pool.QueryRow(ctx, `SELECT status FROM job_records WHERE key = $1 AND expires_at > NOW();`, storeKey(jobID))
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("jobstore: inspect record: %w", err)
	}
	if domain.JobStatus(status).Terminal() {
		return domain.ErrStoreConflict
	}
	return domain.ErrNotFound
}

// Get fetches the current record for jobID.
func (s *PostgresStore) Get(ctx context.Context, jobID string) (*domain.JobRecord, error) {
	query := `
SELECT status, data
FROM job_records
WHERE key = $1 AND expires_at > NOW();
`
	row := s.pool.QueryRow(ctx, query, storeKey(jobID))
	var status string
	var payload []byte
	if err := row.Scan(&status, &payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("jobstore: get: %w", err)
	}
	rec := domain.JobRecord{Status: domain.JobStatus(status)}
	if err := json.Unmarshal(payload, &rec.Data); err != nil {
		return nil, fmt.Errorf("jobstore: decode data: %w", err)
	}
	return &rec, nil
}

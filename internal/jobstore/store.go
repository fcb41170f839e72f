// Package jobstore persists generation job records keyed by job id.
//
// A record is written once as pending by the dispatcher and once more with a
// terminal status by the worker. Terminal writes are conditional so duplicate
// worker deliveries cannot overwrite a finished job.
package jobstore

import (
	"context"
	"time"

	"thumbai/internal/domain"
)

// Store is the contract the dispatcher, worker and status endpoint share.
type Store interface {
	// CreatePending writes the initial pending record with a TTL.
	CreatePending(ctx context.Context, jobID string, data domain.JobData, ttl time.Duration) error
	// Complete writes the terminal record for jobID. It returns
	// domain.ErrStoreConflict when the job already reached a terminal state
	// and domain.ErrNotFound when the record expired or never existed.
	Complete(ctx context.Context, jobID string, rec domain.JobRecord) error
	// Get returns the current record, or domain.ErrNotFound when the record
	// expired or never existed.
	Get(ctx context.Context, jobID string) (*domain.JobRecord, error)
}

func storeKey(jobID string) string {
	return domain.JobKeyPrefix + jobID
}

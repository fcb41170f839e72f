package jobstore

import (
	"context"
	"sync"
	"time"

	"thumbai/internal/domain"
)

type memoryEntry struct {
	rec       domain.JobRecord
	expiresAt time.Time
}

// MemoryStore is an in-process Store used in tests and single-node setups.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// CreatePending writes the initial pending record.
func (s *MemoryStore) CreatePending(ctx context.Context, jobID string, data domain.JobData, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[storeKey(jobID)] = memoryEntry{
		rec:       domain.JobRecord{Status: domain.JobStatusPending, Data: data},
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Complete writes the terminal record, refusing to overwrite a terminal state.
func (s *MemoryStore) Complete(ctx context.Context, jobID string, rec domain.JobRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey(jobID)
	entry, ok := s.entries[key]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return domain.ErrNotFound
	}
	if entry.rec.Status.Terminal() {
		return domain.ErrStoreConflict
	}
	entry.rec = rec
	s.entries[key] = entry
	return nil
}

// Get fetches the current record, hiding expired entries.
func (s *MemoryStore) Get(ctx context.Context, jobID string) (*domain.JobRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey(jobID)
	entry, ok := s.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, domain.ErrNotFound
	}
	rec := entry.rec
	return &rec, nil
}

// SetClock overrides time for expiry tests.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

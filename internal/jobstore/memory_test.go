package jobstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"thumbai/internal/domain"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.CreatePending(ctx, "job-1", domain.JobData{Message: "working"}, time.Hour); err != nil {
		t.Fatalf("CreatePending error: %v", err)
	}

	rec, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Status != domain.JobStatusPending {
		t.Fatalf("unexpected status: %s", rec.Status)
	}

	terminal := domain.JobRecord{
		Status: domain.JobStatusCompleted,
		Data:   domain.JobData{Thumbnails: []string{"https://example.com/a.png"}},
	}
	if err := store.Complete(ctx, "job-1", terminal); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	rec, err = store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get after complete error: %v", err)
	}
	if rec.Status != domain.JobStatusCompleted {
		t.Fatalf("unexpected status: %s", rec.Status)
	}
}

func TestMemoryStoreTerminalWriteOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.CreatePending(ctx, "job-1", domain.JobData{}, time.Hour); err != nil {
		t.Fatalf("CreatePending error: %v", err)
	}
	first := domain.JobRecord{Status: domain.JobStatusCompleted, Data: domain.JobData{Thumbnails: []string{"a"}}}
	if err := store.Complete(ctx, "job-1", first); err != nil {
		t.Fatalf("first Complete error: %v", err)
	}
	second := domain.JobRecord{Status: domain.JobStatusFailed, Data: domain.JobData{Error: "late"}}
	if err := store.Complete(ctx, "job-1", second); !errors.Is(err, domain.ErrStoreConflict) {
		t.Fatalf("expected ErrStoreConflict, got %v", err)
	}

	rec, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Status != domain.JobStatusCompleted || len(rec.Data.Thumbnails) != 1 {
		t.Fatalf("terminal record was overwritten: %+v", rec)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now()
	store.SetClock(func() time.Time { return now })
	if err := store.CreatePending(ctx, "job-1", domain.JobData{}, time.Hour); err != nil {
		t.Fatalf("CreatePending error: %v", err)
	}

	store.SetClock(func() time.Time { return now.Add(2 * time.Hour) })
	if _, err := store.Get(ctx, "job-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
	rec := domain.JobRecord{Status: domain.JobStatusCompleted}
	if err := store.Complete(ctx, "job-1", rec); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on complete after expiry, got %v", err)
	}
}

func TestMemoryStoreMissing(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

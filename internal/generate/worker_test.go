package generate

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"thumbai/internal/domain"
	"thumbai/internal/jobstore"
)

func pendingJob(t *testing.T, store *jobstore.MemoryStore, jobID string) {
	t.Helper()
	if err := store.CreatePending(context.Background(), jobID, domain.JobData{}, time.Hour); err != nil {
		t.Fatalf("CreatePending error: %v", err)
	}
}

func TestWorkerSuccessPadsThumbnails(t *testing.T) {
	store := jobstore.NewMemoryStore()
	pendingJob(t, store, "abc123")
	w := NewWorker(store, &fakeProvider{locator: "https://example.com/real.png"}, zerolog.Nop())

	event := domain.GenerateEvent{JobID: "abc123", Prompt: "a cat astronaut", Timestamp: time.Now()}
	if err := w.Handle(context.Background(), event); err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	rec, err := store.Get(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Status != domain.JobStatusCompleted {
		t.Fatalf("unexpected status: %s", rec.Status)
	}
	if len(rec.Data.Thumbnails) != domain.ThumbnailCount {
		t.Fatalf("expected %d thumbnails, got %d", domain.ThumbnailCount, len(rec.Data.Thumbnails))
	}
	if rec.Data.Thumbnails[0] != "https://example.com/real.png" {
		t.Fatalf("real result must come first, got %s", rec.Data.Thumbnails[0])
	}
}

func TestWorkerProviderFailure(t *testing.T) {
	store := jobstore.NewMemoryStore()
	pendingJob(t, store, "abc123")
	provider := &fakeProvider{err: &domain.ProviderError{Kind: domain.ProviderContentPolicy, Code: "content_policy_violation", Message: "blocked"}}
	w := NewWorker(store, provider, zerolog.Nop())

	if err := w.Handle(context.Background(), domain.GenerateEvent{JobID: "abc123", Prompt: "risky prompt"}); err != nil {
		t.Fatalf("Handle must not return provider errors, got %v", err)
	}

	rec, err := store.Get(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Status != domain.JobStatusFailed {
		t.Fatalf("unexpected status: %s", rec.Status)
	}
	if rec.Data.Error == "" {
		t.Fatal("failed record must carry a user message")
	}
	if len(rec.Data.Thumbnails) != domain.ThumbnailCount {
		t.Fatalf("failed record must carry the full fallback set, got %d", len(rec.Data.Thumbnails))
	}
	if rec.Data.RequiresVerification {
		t.Fatal("content policy failure must not set the verification flag")
	}
}

func TestWorkerVerificationFlag(t *testing.T) {
	store := jobstore.NewMemoryStore()
	pendingJob(t, store, "abc123")
	provider := &fakeProvider{err: &domain.ProviderError{Kind: domain.ProviderVerification, Message: "verify org"}}
	w := NewWorker(store, provider, zerolog.Nop())

	_ = w.Handle(context.Background(), domain.GenerateEvent{JobID: "abc123", Prompt: "a cat astronaut"})

	rec, err := store.Get(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !rec.Data.RequiresVerification {
		t.Fatal("verification failures must set requires_verification")
	}
}

func TestWorkerShortPrompt(t *testing.T) {
	store := jobstore.NewMemoryStore()
	pendingJob(t, store, "abc123")
	provider := &fakeProvider{locator: "unused"}
	w := NewWorker(store, provider, zerolog.Nop())

	_ = w.Handle(context.Background(), domain.GenerateEvent{JobID: "abc123", Prompt: "ab"})

	if provider.calls != 0 {
		t.Fatalf("provider must not be called for a too-short prompt, got %d calls", provider.calls)
	}
	rec, _ := store.Get(context.Background(), "abc123")
	if rec.Status != domain.JobStatusFailed {
		t.Fatalf("unexpected status: %s", rec.Status)
	}
}

func TestWorkerDuplicateDelivery(t *testing.T) {
	store := jobstore.NewMemoryStore()
	pendingJob(t, store, "abc123")
	w := NewWorker(store, &fakeProvider{locator: "https://example.com/first.png"}, zerolog.Nop())

	event := domain.GenerateEvent{JobID: "abc123", Prompt: "a cat astronaut"}
	if err := w.Handle(context.Background(), event); err != nil {
		t.Fatalf("first Handle error: %v", err)
	}
	// Redelivery must acknowledge without clobbering the terminal record.
	if err := w.Handle(context.Background(), event); err != nil {
		t.Fatalf("duplicate Handle error: %v", err)
	}

	rec, _ := store.Get(context.Background(), "abc123")
	if rec.Data.Thumbnails[0] != "https://example.com/first.png" {
		t.Fatalf("terminal record overwritten by duplicate delivery: %s", rec.Data.Thumbnails[0])
	}
}

func TestWorkerNoProvider(t *testing.T) {
	store := jobstore.NewMemoryStore()
	pendingJob(t, store, "abc123")
	w := NewWorker(store, nil, zerolog.Nop())

	if err := w.Handle(context.Background(), domain.GenerateEvent{JobID: "abc123", Prompt: "a cat astronaut"}); err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	rec, _ := store.Get(context.Background(), "abc123")
	if rec.Status != domain.JobStatusFailed {
		t.Fatalf("unexpected status: %s", rec.Status)
	}
	if len(rec.Data.Thumbnails) == 0 {
		t.Fatal("failed record must carry fallback thumbnails")
	}
}

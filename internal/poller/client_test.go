package poller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"thumbai/internal/domain"
)

func TestClientJobStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/thumbnails/status" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("jobId"); got != "abc123" {
			t.Fatalf("unexpected jobId: %s", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":     "completed",
			"thumbnails": []string{"https://example.com/a.png"},
		})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, nil)
	rec, err := client.JobStatus(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("JobStatus error: %v", err)
	}
	if rec.Status != domain.JobStatusCompleted {
		t.Fatalf("unexpected status: %s", rec.Status)
	}
	if len(rec.Data.Thumbnails) != 1 {
		t.Fatalf("unexpected thumbnails: %v", rec.Data.Thumbnails)
	}
}

func TestClientJobStatusNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, nil)
	if _, err := client.JobStatus(context.Background(), "expired-id"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"thumbai/internal/domain"
	"thumbai/internal/generate"
	"thumbai/internal/jobstore"
	"thumbai/internal/queue"
)

func newTestApp(t *testing.T, store *jobstore.MemoryStore) *App {
	t.Helper()
	dispatcher := generate.NewDispatcher(generate.DispatcherOptions{
		Store:  store,
		Queue:  queue.NewMemoryQueue(8),
		Logger: zerolog.Nop(),
	})
	return &App{
		Dispatcher: dispatcher,
		Store:      store,
		Logger:     zerolog.Nop(),
	}
}

func multipartBody(t *testing.T, prompt string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	if err := mw.WriteField("prompt", prompt); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, mw.FormDataContentType()
}

func TestThumbnailsSubmitEmptyPrompt(t *testing.T) {
	app := newTestApp(t, jobstore.NewMemoryStore())
	body, contentType := multipartBody(t, "   ")
	req := httptest.NewRequest(http.MethodPost, "/v1/thumbnails", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	app.ThumbnailsSubmit(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestThumbnailsSubmitPending(t *testing.T) {
	store := jobstore.NewMemoryStore()
	app := newTestApp(t, store)
	body, contentType := multipartBody(t, "a cat astronaut")
	req := httptest.NewRequest(http.MethodPost, "/v1/thumbnails", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	app.ThumbnailsSubmit(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp submitResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != string(domain.JobStatusPending) {
		t.Fatalf("unexpected status: %s", resp.Status)
	}
	if resp.JobID == "" {
		t.Fatal("pending response must carry a job id")
	}
	if len(resp.Thumbnails) == 0 {
		t.Fatal("pending response must carry placeholder thumbnails")
	}
	if _, err := store.Get(context.Background(), resp.JobID); err != nil {
		t.Fatalf("pending record missing: %v", err)
	}
}

func TestThumbnailsStatusMissingID(t *testing.T) {
	app := newTestApp(t, jobstore.NewMemoryStore())
	req := httptest.NewRequest(http.MethodGet, "/v1/thumbnails/status", nil)
	rr := httptest.NewRecorder()

	app.ThumbnailsStatus(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestThumbnailsStatusNotFound(t *testing.T) {
	app := newTestApp(t, jobstore.NewMemoryStore())
	req := httptest.NewRequest(http.MethodGet, "/v1/thumbnails/status?jobId=expired-id", nil)
	rr := httptest.NewRecorder()

	app.ThumbnailsStatus(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var resp submitResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != string(domain.JobStatusFailed) {
		t.Fatalf("unexpected status: %s", resp.Status)
	}
	if len(resp.Thumbnails) != domain.ThumbnailCount {
		t.Fatalf("not-found response must carry the fallback set, got %d", len(resp.Thumbnails))
	}
}

func TestThumbnailsStatusCompleted(t *testing.T) {
	store := jobstore.NewMemoryStore()
	app := newTestApp(t, store)
	ctx := context.Background()
	if err := store.CreatePending(ctx, "abc123", domain.JobData{}, time.Hour); err != nil {
		t.Fatalf("CreatePending error: %v", err)
	}
	rec := domain.JobRecord{
		Status: domain.JobStatusCompleted,
		Data:   domain.JobData{Thumbnails: domain.PadThumbnails([]string{"https://example.com/real.png"})},
	}
	if err := store.Complete(ctx, "abc123", rec); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/thumbnails/status?jobId=abc123", nil)
	rr := httptest.NewRecorder()
	app.ThumbnailsStatus(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp submitResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != string(domain.JobStatusCompleted) {
		t.Fatalf("unexpected status: %s", resp.Status)
	}
	if resp.Thumbnails[0] != "https://example.com/real.png" {
		t.Fatalf("unexpected first thumbnail: %s", resp.Thumbnails[0])
	}
}

func TestThumbnailsArchive(t *testing.T) {
	store := jobstore.NewMemoryStore()
	app := newTestApp(t, store)
	ctx := context.Background()
	if err := store.CreatePending(ctx, "abc123", domain.JobData{}, time.Hour); err != nil {
		t.Fatalf("CreatePending error: %v", err)
	}
	rec := domain.JobRecord{
		Status: domain.JobStatusCompleted,
		Data:   domain.JobData{Thumbnails: []string{"data:image/png;base64,aGVsbG8=", "https://example.com/b.png"}},
	}
	if err := store.Complete(ctx, "abc123", rec); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	router := chi.NewRouter()
	router.Get("/v1/thumbnails/{job_id}/archive", app.ThumbnailsArchive)
	req := httptest.NewRequest(http.MethodGet, "/v1/thumbnails/abc123/archive", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/zip" {
		t.Fatalf("unexpected content type: %s", got)
	}
	if rr.Body.Len() == 0 {
		t.Fatal("archive body is empty")
	}
}

func TestThumbnailsArchiveNotCompleted(t *testing.T) {
	store := jobstore.NewMemoryStore()
	app := newTestApp(t, store)
	if err := store.CreatePending(context.Background(), "abc123", domain.JobData{}, time.Hour); err != nil {
		t.Fatalf("CreatePending error: %v", err)
	}

	router := chi.NewRouter()
	router.Get("/v1/thumbnails/{job_id}/archive", app.ThumbnailsArchive)
	req := httptest.NewRequest(http.MethodGet, "/v1/thumbnails/abc123/archive", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

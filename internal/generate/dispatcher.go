// Package generate implements the thumbnail generation pipeline: a dispatcher
// that routes submissions between the async job backend and a bounded
// synchronous fallback, and a worker that executes queued jobs.
package generate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"thumbai/internal/domain"
	"thumbai/internal/imagegen"
	"thumbai/internal/jobstore"
	"thumbai/internal/queue"
)

// SubmitResult is what the caller gets back immediately after submission.
// Thumbnails is never empty: placeholders while pending, real-plus-fallback or
// all-fallback once terminal.
type SubmitResult struct {
	Status               domain.JobStatus
	JobID                string
	Thumbnails           []string
	Error                string
	Message              string
	RequiresVerification bool
}

// Dispatcher accepts generation requests and decides between asynchronous
// hand-off and direct synchronous execution.
type Dispatcher struct {
	store    jobstore.Store
	queue    queue.Publisher
	provider imagegen.Generator
	logger   zerolog.Logger

	syncTimeout time.Duration
	ttl         time.Duration
	newID       func() string
}

// DispatcherOptions wires the dispatcher's collaborators. Store and Queue may
// both be nil, which forces the synchronous path for every submission.
type DispatcherOptions struct {
	Store       jobstore.Store
	Queue       queue.Publisher
	Provider    imagegen.Generator
	Logger      zerolog.Logger
	SyncTimeout time.Duration
	TTL         time.Duration
}

// NewDispatcher constructs a dispatcher with defaulted timeouts.
func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	syncTimeout := opts.SyncTimeout
	if syncTimeout <= 0 {
		syncTimeout = 170 * time.Second
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = domain.JobTTL
	}
	return &Dispatcher{
		store:       opts.Store,
		queue:       opts.Queue,
		provider:    opts.Provider,
		logger:      opts.Logger,
		syncTimeout: syncTimeout,
		ttl:         ttl,
		newID:       uuid.NewString,
	}
}

// Submit validates and routes one generation request. Validation failures are
// returned as errors; everything past validation resolves to a SubmitResult,
// never an error.
func (d *Dispatcher) Submit(ctx context.Context, prompt string) (*SubmitResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, domain.ErrInvalidPrompt
	}

	if d.store == nil || d.queue == nil {
		d.logger.Debug().Msg("dispatcher: async backend unavailable, generating synchronously")
		return d.generateSync(ctx, prompt, ""), nil
	}

	jobID := d.newID()
	pending := domain.JobData{Message: "Generation in progress", Thumbnails: domain.ProcessingThumbnails()}
	if err := d.store.CreatePending(ctx, jobID, pending, d.ttl); err != nil {
		d.logger.Error().Err(err).Msg("dispatcher: pending write failed, generating synchronously")
		return d.generateSync(ctx, prompt, ""), nil
	}

	event := domain.GenerateEvent{JobID: jobID, Prompt: prompt, Timestamp: time.Now().UTC()}
	if err := d.queue.Publish(ctx, event); err != nil {
		// A pending record with no worker assigned would strand pollers, so
		// generate inline and persist the terminal outcome under the same id.
		d.logger.Error().Err(err).Str("job_id", jobID).Msg("dispatcher: publish failed, generating synchronously")
		result := d.generateSync(ctx, prompt, jobID)
		d.persistTerminal(ctx, jobID, result)
		return result, nil
	}

	return &SubmitResult{
		Status:     domain.JobStatusPending,
		JobID:      jobID,
		Thumbnails: domain.ProcessingThumbnails(),
		Message:    "Generation in progress",
	}, nil
}

// generateSync calls the provider inline, bounded by the sync timeout. Any
// failure degrades to the fallback thumbnail set instead of surfacing an error.
func (d *Dispatcher) generateSync(ctx context.Context, prompt, jobID string) *SubmitResult {
	if d.provider == nil {
		return &SubmitResult{
			Status:     domain.JobStatusFailed,
			JobID:      jobID,
			Error:      "Image generation service unavailable",
			Thumbnails: domain.FallbackThumbnails(),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, d.syncTimeout)
	defer cancel()

	result, err := d.provider.Generate(ctx, imagegen.GenerateRequest{Prompt: prompt, JobID: jobID})
	if err != nil {
		return d.syncFailure(jobID, err)
	}

	return &SubmitResult{
		Status:     domain.JobStatusCompleted,
		JobID:      jobID,
		Thumbnails: domain.PadThumbnails([]string{result.Locator}),
		Message:    "Thumbnails generated successfully",
	}
}

func (d *Dispatcher) syncFailure(jobID string, err error) *SubmitResult {
	out := &SubmitResult{
		Status:     domain.JobStatusFailed,
		JobID:      jobID,
		Thumbnails: domain.FallbackThumbnails(),
	}
	switch {
	case errors.Is(err, domain.ErrGenerateTimeout) || errors.Is(err, context.DeadlineExceeded):
		out.Error = "Generation timed out. Please try again."
	default:
		if pe, ok := domain.AsProviderError(err); ok {
			out.Error = pe.UserMessage()
			out.RequiresVerification = pe.Kind == domain.ProviderVerification
		} else {
			out.Error = "Failed to generate thumbnails"
		}
	}
	d.logger.Error().Err(err).Str("job_id", jobID).Msg("dispatcher: synchronous generation failed")
	return out
}

// persistTerminal records a synchronous outcome under an already-issued job id.
func (d *Dispatcher) persistTerminal(ctx context.Context, jobID string, result *SubmitResult) {
	rec := domain.JobRecord{
		Status: result.Status,
		Data: domain.JobData{
			Thumbnails:           result.Thumbnails,
			Error:                result.Error,
			Message:              result.Message,
			RequiresVerification: result.RequiresVerification,
		},
	}
	if err := d.store.Complete(ctx, jobID, rec); err != nil {
		d.logger.Error().Err(err).Str("job_id", jobID).Msg("dispatcher: terminal write failed")
	}
}

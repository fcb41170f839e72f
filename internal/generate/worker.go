package generate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"thumbai/internal/domain"
	"thumbai/internal/imagegen"
	"thumbai/internal/jobstore"
)

// Worker executes one queued generation job: call the provider, shape the
// result, and persist exactly one terminal record. Every path ends in a store
// write; nothing escapes Handle as a panic or an unexpected error.
type Worker struct {
	store    jobstore.Store
	provider imagegen.Generator
	logger   zerolog.Logger
}

// NewWorker constructs a worker over the shared store and provider.
func NewWorker(store jobstore.Store, provider imagegen.Generator, logger zerolog.Logger) *Worker {
	return &Worker{store: store, provider: provider, logger: logger}
}

// Handle processes one delivered event. It always acknowledges: terminal
// outcomes, including provider failures, are job results, not delivery
// failures, so redelivery would only duplicate work the conditional store
// write rejects anyway.
func (w *Worker) Handle(ctx context.Context, event domain.GenerateEvent) error {
	logger := w.logger.With().Str("job_id", event.JobID).Logger()

	if event.JobID == "" {
		logger.Error().Msg("worker: event missing job id")
		return nil
	}
	if w.provider == nil {
		w.writeTerminal(ctx, logger, event.JobID, failedRecord("Image client not initialized", false))
		return nil
	}
	if len(strings.TrimSpace(event.Prompt)) < 3 {
		w.writeTerminal(ctx, logger, event.JobID, failedRecord("Invalid prompt provided", false))
		return nil
	}

	start := time.Now()
	result, err := w.provider.Generate(ctx, imagegen.GenerateRequest{Prompt: event.Prompt, JobID: event.JobID})
	if err != nil {
		w.writeTerminal(ctx, logger, event.JobID, w.failureRecord(logger, err))
		return nil
	}

	elapsed := time.Since(start)
	logger.Info().Dur("elapsed", elapsed).Msg("worker: generation succeeded")
	w.writeTerminal(ctx, logger, event.JobID, domain.JobRecord{
		Status: domain.JobStatusCompleted,
		Data: domain.JobData{
			Thumbnails:   domain.PadThumbnails([]string{result.Locator}),
			GenerationMS: elapsed.Milliseconds(),
		},
	})
	return nil
}

func (w *Worker) failureRecord(logger zerolog.Logger, err error) domain.JobRecord {
	logger.Error().Err(err).Msg("worker: generation failed")
	if pe, ok := domain.AsProviderError(err); ok {
		return failedRecord(pe.UserMessage(), pe.Kind == domain.ProviderVerification)
	}
	if errors.Is(err, domain.ErrGenerateTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return failedRecord("Generation timed out. Please try again.", false)
	}
	return failedRecord("Failed to generate thumbnails", false)
}

func failedRecord(message string, verification bool) domain.JobRecord {
	return domain.JobRecord{
		Status: domain.JobStatusFailed,
		Data: domain.JobData{
			Error:                message,
			Thumbnails:           domain.FallbackThumbnails(),
			RequiresVerification: verification,
		},
	}
}

// writeTerminal persists the outcome. Write failures are logged, not retried;
// a conflict means another delivery already finished this job.
func (w *Worker) writeTerminal(ctx context.Context, logger zerolog.Logger, jobID string, rec domain.JobRecord) {
	// The record must land even when the invocation deadline has expired.
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	err := w.store.Complete(ctx, jobID, rec)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrStoreConflict):
		logger.Warn().Msg("worker: job already terminal, dropping duplicate result")
	case errors.Is(err, domain.ErrNotFound):
		logger.Warn().Msg("worker: job record expired before completion")
	default:
		logger.Error().Err(err).Msg("worker: terminal write failed")
	}
}

package queue

import (
	"context"
	"errors"

	"thumbai/internal/domain"
)

// MemoryQueue is an in-process Publisher backed by a buffered channel. It backs
// tests and single-binary deployments where the worker runs in the API process.
type MemoryQueue struct {
	events chan domain.GenerateEvent
}

// NewMemoryQueue creates a queue with the given buffer.
func NewMemoryQueue(buffer int) *MemoryQueue {
	return &MemoryQueue{events: make(chan domain.GenerateEvent, buffer)}
}

// Publish enqueues the event, failing when the buffer is full rather than
// blocking the request path.
func (q *MemoryQueue) Publish(ctx context.Context, event domain.GenerateEvent) error {
	select {
	case q.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.New("queue: buffer full")
	}
}

// Consume processes events until ctx is cancelled. Handler errors are
// redelivered up to DefaultMaxAttempts times.
func (q *MemoryQueue) Consume(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-q.events:
			for attempt := 1; attempt <= DefaultMaxAttempts; attempt++ {
				if err := handler(ctx, event); err == nil {
					break
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
			}
		}
	}
}

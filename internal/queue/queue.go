// Package queue delivers generation events from the dispatcher to worker
// processes with retry on transient failure.
package queue

import (
	"context"

	"thumbai/internal/domain"
)

// Publisher hands a generation event to the delivery backend. Publish returning
// an error means the event was not accepted and the caller must fall back.
type Publisher interface {
	Publish(ctx context.Context, event domain.GenerateEvent) error
}

// Handler processes one delivered event. A nil return acknowledges the event;
// an error triggers redelivery until the attempt budget is spent. Delivery is
// at-least-once, so handlers must tolerate duplicates.
type Handler func(ctx context.Context, event domain.GenerateEvent) error

// DefaultMaxAttempts is the per-event retry budget.
const DefaultMaxAttempts = 3

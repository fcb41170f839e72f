// Package poller drives the client-side wait for an asynchronous generation
// job: fixed-interval status reads until a terminal state, a ceiling, or
// cancellation.
package poller

import (
	"context"
	"time"

	"thumbai/internal/domain"
)

// StatusFetcher reads the current record for a job id.
type StatusFetcher interface {
	JobStatus(ctx context.Context, jobID string) (*domain.JobRecord, error)
}

// State is the observable phase of a poll cycle.
type State string

const (
	StateIdle      State = "idle"
	StatePolling   State = "polling"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed_out"
)

// Poller waits on a job until it resolves. The zero value is not usable; use
// New.
type Poller struct {
	fetch    StatusFetcher
	interval time.Duration
	timeout  time.Duration

	state State
}

// New constructs a poller. Non-positive durations fall back to the observed
// defaults: a 3s tick and a 120s ceiling.
func New(fetch StatusFetcher, interval, timeout time.Duration) *Poller {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Poller{fetch: fetch, interval: interval, timeout: timeout, state: StateIdle}
}

// State reports the phase the last Wait call ended in.
func (p *Poller) State() State {
	return p.state
}

// Wait polls until the job reaches a terminal status. Not-found and transport
// errors are transient blips: an in-flight worker may not have written yet,
// so polling continues until the ceiling fires. The tick timer is owned by
// this call and released on every exit path; cancelling ctx stops the poll
// immediately.
func (p *Poller) Wait(ctx context.Context, jobID string) (*domain.JobRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.state = StatePolling
	for {
		rec, err := p.fetch.JobStatus(ctx, jobID)
		if err == nil && rec != nil && rec.Status.Terminal() {
			if rec.Status == domain.JobStatusCompleted {
				p.state = StateCompleted
			} else {
				p.state = StateFailed
			}
			return rec, nil
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				p.state = StateTimedOut
				return nil, domain.ErrPollTimeout
			}
			p.state = StateIdle
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

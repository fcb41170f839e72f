package queue

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// Listener converts Postgres NOTIFY traffic on the events channel into wake-up
// signals for a consuming worker.
type Listener struct {
	pq     *pq.Listener
	wakeup chan struct{}
}

// NewListener connects a LISTEN session to the events channel. The returned
// listener degrades to nothing on connection loss; the consumer still polls.
func NewListener(databaseURL string, logger zerolog.Logger) (*Listener, error) {
	inner := pq.NewListener(databaseURL, 2*time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn().Err(err).Int("event", int(event)).Msg("queue: listener event")
		}
	})
	if err := inner.Listen(notifyChannel); err != nil {
		_ = inner.Close()
		return nil, fmt.Errorf("queue: listen %s: %w", notifyChannel, err)
	}

	l := &Listener{pq: inner, wakeup: make(chan struct{}, 1)}
	go l.forward()
	return l, nil
}

// Wakeup yields once per batch of notifications.
func (l *Listener) Wakeup() <-chan struct{} {
	return l.wakeup
}

// Close tears down the LISTEN session.
func (l *Listener) Close() error {
	return l.pq.Close()
}

func (l *Listener) forward() {
	for range l.pq.Notify {
		select {
		case l.wakeup <- struct{}{}:
		default:
		}
	}
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/terra-clan/graduate-survey/internal/models"
)

// SubmissionEventsChannel is the NOTIFY channel written by the submissions trigger
const SubmissionEventsChannel = "submission_events"

// Listener relays Postgres notifications about submission writes
type Listener struct {
	dsn          string
	channel      string
	pingInterval time.Duration
}

// NewListener creates a listener for the submission events channel
func NewListener(dsn string) *Listener {
	return &Listener{
		dsn:          dsn,
		channel:      SubmissionEventsChannel,
		pingInterval: 90 * time.Second,
	}
}

// Run listens until ctx is cancelled, calling handle for every event.
// pq reconnects on its own; a nil notification marks a reconnect.
func (l *Listener) Run(ctx context.Context, handle func(models.SubmissionEvent)) error {
	listener := pq.NewListener(l.dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			slog.Warn("submission listener event", "event", ev, "error", err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(l.channel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.channel, err)
	}
	slog.Info("submission listener started", "channel", l.channel)

	ticker := time.NewTicker(l.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("submission listener stopped")
			return nil
		case n := <-listener.Notify:
			if n == nil {
				slog.Info("submission listener reconnected")
				continue
			}
			ev, err := ParseEvent(n.Extra)
			if err != nil {
				slog.Warn("invalid submission event", "payload", n.Extra, "error", err)
				continue
			}
			handle(ev)
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				slog.Warn("submission listener ping failed", "error", err)
			}
		}
	}
}

// ParseEvent decodes a notification payload
func ParseEvent(payload string) (models.SubmissionEvent, error) {
	var ev models.SubmissionEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, fmt.Errorf("failed to decode event: %w", err)
	}
	if ev.ID == "" {
		return ev, fmt.Errorf("event without id")
	}
	return ev, nil
}

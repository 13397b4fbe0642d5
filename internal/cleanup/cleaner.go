package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// SessionPurger drops expired respondent sessions
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// PartialDeleter removes abandoned partial submissions
type PartialDeleter interface {
	DeletePartialBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Cleaner periodically sweeps expired sessions and stale partial submissions
type Cleaner struct {
	sessions  SessionPurger
	partials  PartialDeleter
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

// NewCleaner creates a new cleanup worker. Either target may be nil.
// Partial submissions are only deleted when retention is positive.
func NewCleaner(sessions SessionPurger, partials PartialDeleter, retention, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Cleaner{
		sessions:  sessions,
		partials:  partials,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Cleaner) run(ctx context.Context) {
	slog.Info("cleanup worker started", "interval", c.interval, "partial_retention", c.retention)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *Cleaner) cleanup(ctx context.Context) {
	slog.Debug("running cleanup cycle")

	if c.sessions != nil {
		purged, err := c.sessions.PurgeExpired(ctx)
		if err != nil {
			slog.Error("failed to purge expired sessions", "error", err)
		} else if purged > 0 {
			slog.Info("expired sessions purged", "count", purged)
		}
	}

	if c.partials != nil && c.retention > 0 {
		cutoff := c.now().Add(-c.retention)
		deleted, err := c.partials.DeletePartialBefore(ctx, cutoff)
		if err != nil {
			slog.Error("failed to delete stale partial submissions", "error", err, "cutoff", cutoff)
			return
		}
		if deleted > 0 {
			slog.Info("stale partial submissions deleted", "count", deleted, "cutoff", cutoff)
		}
	}
}

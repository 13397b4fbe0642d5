package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/terra-clan/graduate-survey/internal/survey"
)

var ErrSessionNotFound = errors.New("session not found")

// Record is a stored respondent session
type Record struct {
	ID        string          `json:"id"`
	Snapshot  survey.Snapshot `json:"snapshot"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Store persists session records with a time to live
type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	// Put writes the record and resets its expiry to ttl from now
	Put(ctx context.Context, rec *Record, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	// Count returns the number of live sessions
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

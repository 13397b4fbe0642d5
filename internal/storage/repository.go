package storage

import (
	"context"
	"errors"
	"time"

	"github.com/terra-clan/graduate-survey/internal/models"
)

var ErrNotFound = errors.New("submission not found")

// Repository defines the interface for submission persistence
type Repository interface {
	// SaveSubmission inserts the submission or, when the id exists, overwrites
	// its responses, status, language and timestamps.
	// SubmittedAt and UpdatedAt are set from the stored row.
	SaveSubmission(ctx context.Context, s *models.Submission) error
	GetSubmission(ctx context.Context, id string) (*models.Submission, error)
	// ListSubmissions returns submissions newest first
	ListSubmissions(ctx context.Context, filters models.ListFilters) ([]*models.Submission, error)
	// CountSubmissions counts matches of filters, ignoring Limit and Offset
	CountSubmissions(ctx context.Context, filters models.ListFilters) (int, error)
	// DeletePartialBefore removes partial submissions not updated since cutoff
	DeletePartialBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}

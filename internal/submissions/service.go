package submissions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/terra-clan/graduate-survey/internal/models"
	"github.com/terra-clan/graduate-survey/internal/storage"
)

var (
	ErrInvalidStatus   = errors.New("status must be partial or complete")
	ErrInvalidID       = errors.New("invalid submission id")
	ErrMissingResponse = errors.New("responses are required")
	ErrSaveFailed      = errors.New("an error occurred while saving")
)

// DefaultLanguage is used when a save request names no language
const DefaultLanguage = "ko"

// Service implements create-or-update of submissions on top of a Repository
type Service struct {
	repo   storage.Repository
	notify func(models.SubmissionEvent)
}

// Option configures the service
type Option func(*Service)

// WithNotifier calls fn after every successful save. Used when the store
// does not publish change events itself.
func WithNotifier(fn func(models.SubmissionEvent)) Option {
	return func(s *Service) {
		s.notify = fn
	}
}

// NewService creates a new submissions service
func NewService(repo storage.Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores the responses. An empty id creates a new record with a fresh UUID,
// a known id is updated in place. Store failures are wrapped in ErrSaveFailed.
func (s *Service) Save(ctx context.Context, req models.SaveRequest) (string, error) {
	if req.Responses == nil {
		return "", ErrMissingResponse
	}

	status := req.Status
	if status == "" {
		status = models.StatusComplete
	}
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	} else if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	lang := req.Language
	if lang == "" {
		lang = DefaultLanguage
	}

	sub := &models.Submission{
		ID:        id,
		Responses: req.Responses,
		Language:  lang,
		Status:    status,
	}
	if err := s.repo.SaveSubmission(ctx, sub); err != nil {
		slog.Error("failed to save submission", "id", id, "status", status, "error", err)
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	slog.Info("submission saved", "id", id, "status", status, "language", lang, "answers", len(req.Responses))
	if s.notify != nil {
		s.notify(models.SubmissionEvent{ID: id, Status: status, Language: lang, At: sub.UpdatedAt})
	}
	return id, nil
}

// Get returns one submission
func (s *Service) Get(ctx context.Context, id string) (*models.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	return s.repo.GetSubmission(ctx, id)
}

// List returns submissions newest first
func (s *Service) List(ctx context.Context, filters models.ListFilters) ([]*models.Submission, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, filters.Status)
	}
	return s.repo.ListSubmissions(ctx, filters)
}

// Count returns how many submissions match filters, ignoring paging
func (s *Service) Count(ctx context.Context, filters models.ListFilters) (int, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, filters.Status)
	}
	return s.repo.CountSubmissions(ctx, filters)
}

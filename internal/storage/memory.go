package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/terra-clan/graduate-survey/internal/models"
)

// MemoryRepository keeps submissions in process memory
type MemoryRepository struct {
	mu          sync.RWMutex
	submissions map[string]*models.Submission
	now         func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		submissions: make(map[string]*models.Submission),
		now:         time.Now,
	}
}

// SaveSubmission upserts a copy of s
func (r *MemoryRepository) SaveSubmission(_ context.Context, s *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	stored := copySubmission(s)
	stored.SubmittedAt = now
	stored.UpdatedAt = now
	r.submissions[s.ID] = stored

	s.SubmittedAt = stored.SubmittedAt
	s.UpdatedAt = stored.UpdatedAt
	return nil
}

// GetSubmission returns a copy of one submission
func (r *MemoryRepository) GetSubmission(_ context.Context, id string) (*models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.submissions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copySubmission(s), nil
}

// ListSubmissions returns matching submissions, newest first
func (r *MemoryRepository) ListSubmissions(_ context.Context, filters models.ListFilters) ([]*models.Submission, error) {
	r.mu.RLock()
	var result []*models.Submission
	for _, s := range r.submissions {
		if matches(s, filters) {
			result = append(result, copySubmission(s))
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].SubmittedAt.Equal(result[j].SubmittedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].SubmittedAt.After(result[j].SubmittedAt)
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(result) {
			return nil, nil
		}
		result = result[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(result) {
		result = result[:filters.Limit]
	}
	return result, nil
}

// CountSubmissions counts submissions matching filters
func (r *MemoryRepository) CountSubmissions(_ context.Context, filters models.ListFilters) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.submissions {
		if matches(s, filters) {
			n++
		}
	}
	return n, nil
}

func matches(s *models.Submission, filters models.ListFilters) bool {
	if filters.Status != "" && s.Status != filters.Status {
		return false
	}
	return filters.Language == "" || s.Language == filters.Language
}

// DeletePartialBefore removes partial submissions not updated since cutoff
func (r *MemoryRepository) DeletePartialBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, s := range r.submissions {
		if s.Status == models.StatusPartial && s.UpdatedAt.Before(cutoff) {
			delete(r.submissions, id)
			deleted++
		}
	}
	return deleted, nil
}

// Ping always succeeds
func (r *MemoryRepository) Ping(context.Context) error { return nil }

// Close is a no-op
func (r *MemoryRepository) Close() error { return nil }

func copySubmission(s *models.Submission) *models.Submission {
	cp := *s
	cp.Responses = s.Responses.Clone()
	return &cp
}

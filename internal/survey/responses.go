package survey

import "github.com/terra-clan/graduate-survey/internal/models"

// ResponseStore holds the answers of one respondent session
type ResponseStore struct {
	answers models.Responses
}

// NewResponseStore creates a store seeded with a copy of initial
func NewResponseStore(initial models.Responses) *ResponseStore {
	if initial == nil {
		return &ResponseStore{answers: make(models.Responses)}
	}
	return &ResponseStore{answers: initial.Clone()}
}

// Set creates or overwrites an answer
func (s *ResponseStore) Set(questionID string, answer models.Answer) {
	s.answers[questionID] = answer
}

// Get returns an answer and whether it is present
func (s *ResponseStore) Get(questionID string) (models.Answer, bool) {
	a, ok := s.answers[questionID]
	return a, ok
}

// Clear unsets one answer
func (s *ResponseStore) Clear(questionID string) {
	delete(s.answers, questionID)
}

// Reset drops every answer
func (s *ResponseStore) Reset() {
	s.answers = make(models.Responses)
}

// Len is the number of stored entries, answered or not
func (s *ResponseStore) Len() int {
	return len(s.answers)
}

// Snapshot returns a copy safe to hand to savers and serializers
func (s *ResponseStore) Snapshot() models.Responses {
	return s.answers.Clone()
}

// view exposes the live map for read-only helpers inside the package
func (s *ResponseStore) view() models.Responses {
	return s.answers
}

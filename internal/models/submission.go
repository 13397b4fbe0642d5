package models

import "time"

// SubmissionStatus represents how far a respondent got
type SubmissionStatus string

const (
	StatusPartial  SubmissionStatus = "partial"  // Checkpoint saved at a part transition
	StatusComplete SubmissionStatus = "complete" // Final submit
)

// Valid reports whether s is partial or complete
func (s SubmissionStatus) Valid() bool {
	return s == StatusPartial || s == StatusComplete
}

// Submission is a persisted set of answers
type Submission struct {
	ID          string           `json:"id"`
	Responses   Responses        `json:"responses"`
	Language    string           `json:"language"`
	Status      SubmissionStatus `json:"status"`
	SubmittedAt time.Time        `json:"submitted_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// IsComplete returns true for final submissions
func (s *Submission) IsComplete() bool {
	return s.Status == StatusComplete
}

// SaveRequest is the body of a save call.
// An empty ID creates a new record, a known ID updates it in place.
type SaveRequest struct {
	Responses Responses        `json:"responses"`
	Language  string           `json:"language,omitempty"`
	ID        string           `json:"id,omitempty"`
	Status    SubmissionStatus `json:"status,omitempty"`
}

// SaveResponse carries the identifier assigned by the store
type SaveResponse struct {
	ID string `json:"id"`
}

// ListFilters narrows a submission listing
type ListFilters struct {
	Status   SubmissionStatus
	Language string
	Limit    int
	Offset   int
}

// SubmissionEvent is published whenever a submission is written
type SubmissionEvent struct {
	ID       string           `json:"id"`
	Status   SubmissionStatus `json:"status"`
	Language string           `json:"language"`
	At       time.Time        `json:"at"`
}

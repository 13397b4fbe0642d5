package survey

import "github.com/terra-clan/graduate-survey/internal/models"

// IsVisible reports whether a question is currently active.
// Unconditional questions are always visible. A conditional question is visible
// when its dependency is answered and the answer equals (or, for sequences,
// contains) one of the trigger values.
func IsVisible(q *models.Question, responses models.Responses) bool {
	if q.ConditionalOn == nil {
		return true
	}

	dep, ok := responses[q.ConditionalOn.QuestionID]
	if !ok || dep.IsEmpty() {
		return false
	}

	for _, trigger := range q.ConditionalOn.Triggers() {
		if dep.Matches(trigger) {
			return true
		}
	}
	return false
}

// ActiveQuestions returns the visible questions in declared order
func ActiveQuestions(questions []*models.Question, responses models.Responses) []*models.Question {
	active := make([]*models.Question, 0, len(questions))
	for _, q := range questions {
		if IsVisible(q, responses) {
			active = append(active, q)
		}
	}
	return active
}

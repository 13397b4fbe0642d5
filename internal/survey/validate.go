package survey

import (
	"fmt"

	"github.com/terra-clan/graduate-survey/internal/models"
)

// ErrorCode classifies a validation failure
type ErrorCode string

const (
	ErrorRequired          ErrorCode = "required"
	ErrorRankingIncomplete ErrorCode = "ranking_incomplete"
)

// ValidationError is a per-question problem that blocks navigation
type ValidationError struct {
	QuestionID string    `json:"question_id"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
}

// ValidationErrors are kept in page order so the first entry is the one to focus
type ValidationErrors []ValidationError

// Has reports whether the question has an error
func (e ValidationErrors) Has(questionID string) bool {
	for _, v := range e {
		if v.QuestionID == questionID {
			return true
		}
	}
	return false
}

// Without returns the errors minus the given question
func (e ValidationErrors) Without(questionID string) ValidationErrors {
	if !e.Has(questionID) {
		return e
	}
	out := make(ValidationErrors, 0, len(e)-1)
	for _, v := range e {
		if v.QuestionID != questionID {
			out = append(out, v)
		}
	}
	return out
}

var messages = map[string]map[ErrorCode]string{
	"ko": {
		ErrorRequired:          "필수 응답 항목입니다.",
		ErrorRankingIncomplete: "%d개를 모두 선택해 주세요.",
	},
	"en": {
		ErrorRequired:          "This is a required question.",
		ErrorRankingIncomplete: "Please select all %d items.",
	},
}

func message(lang string, code ErrorCode, args ...any) string {
	m, ok := messages[lang]
	if !ok {
		m = messages["en"]
	}
	if len(args) == 0 {
		return m[code]
	}
	return fmt.Sprintf(m[code], args...)
}

// ValidatePage checks the required questions of one page.
// Hidden questions are skipped; other pages are never inspected.
func ValidatePage(page Page, responses models.Responses, lang string) ValidationErrors {
	var errs ValidationErrors

	for _, q := range page.Questions {
		if !q.Required || !IsVisible(q, responses) {
			continue
		}

		answer, ok := responses[q.ID]
		if !ok || answer.IsEmpty() {
			errs = append(errs, ValidationError{
				QuestionID: q.ID,
				Code:       ErrorRequired,
				Message:    message(lang, ErrorRequired),
			})
			continue
		}

		if q.Type == models.QuestionRanking && q.RankingCount > 0 && answer.Len() < q.RankingCount {
			errs = append(errs, ValidationError{
				QuestionID: q.ID,
				Code:       ErrorRankingIncomplete,
				Message:    message(lang, ErrorRankingIncomplete, q.RankingCount),
			})
		}
	}

	return errs
}

package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/graduate-survey/internal/models"
)

func TestIsVisible(t *testing.T) {
	dep := &models.Question{ID: "d", ConditionalOn: &models.Condition{QuestionID: "src", Value: "Yes"}}
	anyOf := &models.Question{ID: "e", ConditionalOn: &models.Condition{QuestionID: "src", AnyOf: []string{"MS", "PhD"}}}
	onScale := &models.Question{ID: "f", ConditionalOn: &models.Condition{QuestionID: "src", Value: "5"}}

	tests := []struct {
		name      string
		q         *models.Question
		responses models.Responses
		want      bool
	}{
		{"unconditional", &models.Question{ID: "u"}, nil, true},
		{"dependency unset", dep, models.Responses{}, false},
		{"dependency empty string", dep, models.Responses{"src": models.TextAnswer("")}, false},
		{"dependency empty list", dep, models.Responses{"src": models.ChoicesAnswer()}, false},
		{"scalar equal", dep, models.Responses{"src": models.TextAnswer("Yes")}, true},
		{"scalar different", dep, models.Responses{"src": models.TextAnswer("yes")}, false},
		{"checkbox contains", dep, models.Responses{"src": models.ChoicesAnswer("No", "Yes")}, true},
		{"checkbox missing", dep, models.Responses{"src": models.ChoicesAnswer("No")}, false},
		{"one of values", anyOf, models.Responses{"src": models.TextAnswer("PhD")}, true},
		{"none of values", anyOf, models.Responses{"src": models.TextAnswer("BS")}, false},
		{"numeric trigger", onScale, models.Responses{"src": models.NumberAnswer(5)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVisible(tt.q, tt.responses))
		})
	}
}

func TestValidatePageRequired(t *testing.T) {
	catalog := testCatalog()
	page := Page{Questions: []*models.Question{catalog.Question("B-1-1"), catalog.Question("B-1-2")}}

	errs := ValidatePage(page, models.Responses{}, "en")

	require.Len(t, errs, 1)
	assert.Equal(t, "B-1-1", errs[0].QuestionID)
	assert.Equal(t, ErrorRequired, errs[0].Code)
	assert.Equal(t, "This is a required question.", errs[0].Message)

	errs = ValidatePage(page, models.Responses{"B-1-1": models.TextAnswer("")}, "ko")
	require.Len(t, errs, 1)
	assert.Equal(t, "필수 응답 항목입니다.", errs[0].Message)

	assert.Empty(t, ValidatePage(page, models.Responses{"B-1-1": models.TextAnswer("Grad")}, "en"))
}

func TestValidatePageEmptySequence(t *testing.T) {
	catalog := testCatalog()
	page := Page{Questions: []*models.Question{catalog.Question("A-1-2")}}
	responses := models.Responses{
		"A-1-1": models.TextAnswer("Yes"),
		"A-1-2": models.ChoicesAnswer(),
	}

	errs := ValidatePage(page, responses, "en")

	require.Len(t, errs, 1)
	assert.Equal(t, ErrorRequired, errs[0].Code)
}

func TestValidatePageSkipsHiddenQuestions(t *testing.T) {
	catalog := testCatalog()
	page := Page{Questions: []*models.Question{catalog.Question("A-1-2")}}

	assert.Empty(t, ValidatePage(page, models.Responses{"A-1-1": models.TextAnswer("No")}, "en"))
}

func TestValidatePageRankingIncomplete(t *testing.T) {
	catalog := testCatalog()
	page := Page{Questions: []*models.Question{catalog.Question("B-1-4")}}

	errs := ValidatePage(page, models.Responses{"B-1-4": models.ChoicesAnswer("o1", "o2")}, "en")
	require.Len(t, errs, 1)
	assert.Equal(t, ErrorRankingIncomplete, errs[0].Code)
	assert.Equal(t, "Please select all 3 items.", errs[0].Message)

	errs = ValidatePage(page, models.Responses{"B-1-4": models.ChoicesAnswer("o1")}, "ko")
	require.Len(t, errs, 1)
	assert.Equal(t, "3개를 모두 선택해 주세요.", errs[0].Message)

	assert.Empty(t, ValidatePage(page, models.Responses{"B-1-4": models.ChoicesAnswer("o1", "o2", "o3")}, "en"))
}

func TestProgress(t *testing.T) {
	catalog := testCatalog()
	pages := VisiblePages(BuildPages(catalog.Questions, DefaultPageOptions()), models.Responses{})
	active := len(ActiveQuestions(catalog.Questions, models.Responses{}))
	require.Equal(t, len(catalog.Questions)-1, active)

	responses := models.Responses{
		"A-1-1": models.TextAnswer("No"),
		"A-1-3": models.TextAnswer(""),
		"A-1-6": models.TextAnswer("later page"),
	}

	assert.Equal(t, 1, AnsweredCount(pages, 0, responses))
	assert.Equal(t, 2, AnsweredCount(pages, 1, responses))
	assert.InDelta(t, 2.0/float64(active)*100, Progress(pages, 1, responses, active), 1e-9)
	assert.Zero(t, Progress(nil, 0, responses, 0))
}

package survey

import (
	"context"
	"errors"

	"github.com/terra-clan/graduate-survey/internal/models"
)

func text(id, part, section string, required bool) *models.Question {
	return &models.Question{ID: id, Type: models.QuestionText, Part: part, Section: section, Title: id, Required: required}
}

func radio(id, part, section string, required bool, options ...string) *models.Question {
	return &models.Question{ID: id, Type: models.QuestionRadio, Part: part, Section: section, Title: id, Required: required, Options: options}
}

func scale(id, part, section string, min, max int) *models.Question {
	return &models.Question{ID: id, Type: models.QuestionScale, Part: part, Section: section, Title: id, Required: true, ScaleMin: min, ScaleMax: max}
}

// testCatalog lays out three parts:
//
//	A-1: A-1-1 radio, A-1-2 checkbox (if A-1-1 = Yes), A-1-3..A-1-7 text
//	B-1: B-1-1 radio, B-1-2 text, B-1-3 radio, B-1-4 ranking, B-1-5 radio
//	B-2: B-2-1..B-2-4 scale 1-6, B-2-5 scale 1-5, B-2-6 paragraph
//	C-1: C-1-1 text
func testCatalog() *models.Catalog {
	qs := []*models.Question{
		radio("A-1-1", "A", "A-1", true, "Yes", "No"),
		{
			ID: "A-1-2", Type: models.QuestionCheckbox, Part: "A", Section: "A-1", Title: "A-1-2",
			Required: true, Options: []string{"x", "y", "z"}, MaxSelections: 2,
			ConditionalOn: &models.Condition{QuestionID: "A-1-1", Value: "Yes"},
		},
		text("A-1-3", "A", "A-1", false),
		text("A-1-4", "A", "A-1", false),
		text("A-1-5", "A", "A-1", false),
		text("A-1-6", "A", "A-1", false),
		text("A-1-7", "A", "A-1", false),

		radio("B-1-1", "B", "B-1", true, "Grad", "Other"),
		text("B-1-2", "B", "B-1", false),
		radio("B-1-3", "B", "B-1", false, "MS", "PhD"),
		{
			ID: "B-1-4", Type: models.QuestionRanking, Part: "B", Section: "B-1", Title: "B-1-4",
			Required: true, Options: []string{"o1", "o2", "o3", "o4", "o5"}, RankingCount: 3,
		},
		radio("B-1-5", "B", "B-1", false, "F", "M"),

		scale("B-2-1", "B", "B-2", 1, 6),
		scale("B-2-2", "B", "B-2", 1, 6),
		scale("B-2-3", "B", "B-2", 1, 6),
		scale("B-2-4", "B", "B-2", 1, 6),
		scale("B-2-5", "B", "B-2", 1, 5),
		{ID: "B-2-6", Type: models.QuestionParagraph, Part: "B", Section: "B-2", Title: "B-2-6"},

		text("C-1-1", "C", "C-1", false),
	}

	c := &models.Catalog{
		Language: "en",
		Parts: []*models.Part{
			{ID: "A", Title: "Part A"},
			{ID: "B", Title: "Part B", QuickNav: true},
			{ID: "C", Title: "Part C"},
		},
		Sections: []*models.Section{
			{ID: "A-1", Part: "A", Title: "Programs"},
			{ID: "B-1", Part: "B", Title: "About you"},
			{ID: "B-2", Part: "B", Title: "Satisfaction"},
			{ID: "C-1", Part: "C", Title: "Gift"},
		},
		Questions: qs,
	}
	c.Index()
	return c
}

func pageIDs(p Page) []string {
	ids := make([]string, len(p.Questions))
	for i, q := range p.Questions {
		ids[i] = q.ID
	}
	return ids
}

type recordingSaver struct {
	calls []models.SaveRequest
	ids   []string
	fail  bool
}

func (s *recordingSaver) Save(_ context.Context, req models.SaveRequest) (string, error) {
	s.calls = append(s.calls, req)
	if s.fail {
		return "", errors.New("store unreachable")
	}
	if req.ID != "" {
		return req.ID, nil
	}
	id := "sub-1"
	s.ids = append(s.ids, id)
	return id, nil
}

// answerPage fills every visible question on the current page with a valid answer.
// A second pass covers questions revealed by the first.
func answerPage(n *Navigator) {
	for pass := 0; pass < 2; pass++ {
		page, _ := n.CurrentPage()
		for _, q := range page.Questions {
			if _, ok := n.Answer(q.ID); !ok {
				answer(n, q)
			}
		}
	}
}

func answer(n *Navigator, q *models.Question) {
	switch q.Type {
	case models.QuestionRadio:
		_ = n.SetAnswer(q.ID, models.TextAnswer(q.Options[0]))
	case models.QuestionCheckbox:
		_ = n.SetAnswer(q.ID, models.ChoicesAnswer(q.Options[0]))
	case models.QuestionRanking:
		_ = n.SetAnswer(q.ID, models.ChoicesAnswer(q.Options[:q.RankingCount]...))
	case models.QuestionScale:
		_ = n.SetAnswer(q.ID, models.NumberAnswer(q.ScaleMin))
	default:
		_ = n.SetAnswer(q.ID, models.TextAnswer("ok"))
	}
}

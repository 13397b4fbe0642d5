package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/graduate-survey/internal/models"
)

func TestBuildPagesLayout(t *testing.T) {
	pages := BuildPages(testCatalog().Questions, DefaultPageOptions())

	want := [][]string{
		{"A-1-1", "A-1-2", "A-1-3", "A-1-4", "A-1-5"},
		{"A-1-6", "A-1-7"},
		{"B-1-1", "B-1-2", "B-1-3"},
		{"B-1-4"},
		{"B-1-5"},
		{"B-2-1", "B-2-2", "B-2-3", "B-2-4"},
		{"B-2-5"},
		{"B-2-6"},
		{"C-1-1"},
	}
	require.Len(t, pages, len(want))
	for i, ids := range want {
		assert.Equal(t, ids, pageIDs(pages[i]), "page %d", i)
		assert.Equal(t, i, pages[i].Index)
	}
	assert.True(t, pages[5].IsMatrix)
	assert.False(t, pages[6].IsMatrix)
	assert.Equal(t, "B", pages[5].Part)
	assert.Equal(t, "B-2", pages[5].Section)
}

func TestBuildPagesWithoutMatrix(t *testing.T) {
	opts := DefaultPageOptions()
	opts.Matrix = false
	pages := BuildPages(testCatalog().Questions, opts)

	require.Len(t, pages, 8)
	assert.Equal(t, []string{"B-2-1", "B-2-2", "B-2-3", "B-2-4", "B-2-5"}, pageIDs(pages[5]))
	for _, p := range pages {
		assert.False(t, p.IsMatrix)
	}
}

func TestBuildPagesCoversEveryQuestionOnce(t *testing.T) {
	catalog := testCatalog()
	for _, matrix := range []bool{true, false} {
		opts := DefaultPageOptions()
		opts.Matrix = matrix

		seen := map[string]int{}
		for _, p := range BuildPages(catalog.Questions, opts) {
			require.NotEmpty(t, p.Questions)
			for _, q := range p.Questions {
				seen[q.ID]++
				assert.Equal(t, p.Part, q.Part)
				assert.Equal(t, p.Section, q.Section)
			}
		}

		assert.Len(t, seen, len(catalog.Questions))
		for id, n := range seen {
			assert.Equal(t, 1, n, "question %s placed %d times", id, n)
		}
	}
}

func TestBuildPagesSizeBoundAndBigIsolation(t *testing.T) {
	var qs []*models.Question
	for i := 0; i < 12; i++ {
		qs = append(qs, text(string(rune('a'+i)), "A", "S", false))
	}
	qs = append(qs, &models.Question{
		ID: "wide", Type: models.QuestionCheckbox, Part: "A", Section: "S",
		Options: []string{"1", "2", "3", "4", "5", "6", "7"},
	})
	qs = append(qs, &models.Question{
		ID: "narrow", Type: models.QuestionCheckbox, Part: "A", Section: "S",
		Options: []string{"1", "2", "3", "4", "5", "6"},
	})

	opts := DefaultPageOptions()
	pages := BuildPages(qs, opts)

	for _, p := range pages {
		hasBig := false
		for _, q := range p.Questions {
			if IsBig(q, opts) {
				hasBig = true
			}
		}
		if hasBig {
			assert.Len(t, p.Questions, 1)
			continue
		}
		if !p.IsMatrix {
			assert.LessOrEqual(t, len(p.Questions), opts.PageSize)
		}
	}

	require.Len(t, pages, 5)
	assert.Equal(t, []string{"k", "l"}, pageIDs(pages[2]))
	assert.Equal(t, []string{"wide"}, pageIDs(pages[3]))
	assert.Equal(t, []string{"narrow"}, pageIDs(pages[4]))
}

func TestBuildPagesScaleRuns(t *testing.T) {
	qs := []*models.Question{
		scale("s1", "B", "S", 1, 5),
		scale("s2", "B", "S", 1, 5),
		text("t1", "B", "S", false),
		scale("s3", "B", "S", 1, 5),
		scale("s4", "B", "S", 1, 5),
		scale("s5", "B", "S", 1, 5),
		scale("s6", "B", "S", 1, 5),
		scale("s7", "B", "S", 1, 5),
		scale("s8", "B", "S", 1, 5),
		scale("s9", "B", "T", 1, 5),
	}

	pages := BuildPages(qs, DefaultPageOptions())

	require.Len(t, pages, 3)
	// A run of two falls back into the ordinary batch, in order
	assert.Equal(t, []string{"s1", "s2", "t1"}, pageIDs(pages[0]))
	assert.False(t, pages[0].IsMatrix)
	// Matrix pages are not capped by page size
	assert.Equal(t, []string{"s3", "s4", "s5", "s6", "s7", "s8"}, pageIDs(pages[1]))
	assert.True(t, pages[1].IsMatrix)
	// Section change ends the run
	assert.Equal(t, []string{"s9"}, pageIDs(pages[2]))
}

func TestBuildPagesConfigurableThresholds(t *testing.T) {
	qs := []*models.Question{
		scale("s1", "B", "S", 1, 5),
		scale("s2", "B", "S", 1, 5),
		text("t1", "B", "S", false),
		text("t2", "B", "S", false),
	}

	pages := BuildPages(qs, PageOptions{PageSize: 2, MatrixMinRun: 2, Matrix: true})

	require.Len(t, pages, 2)
	assert.True(t, pages[0].IsMatrix)
	assert.Equal(t, []string{"t1", "t2"}, pageIDs(pages[1]))
}

func TestVisiblePagesNeverMerge(t *testing.T) {
	qs := []*models.Question{
		radio("q1", "A", "S1", true, "Yes", "No"),
		{ID: "q2", Type: models.QuestionText, Part: "A", Section: "S2",
			ConditionalOn: &models.Condition{QuestionID: "q1", Value: "Yes"}},
		{ID: "q3", Type: models.QuestionText, Part: "A", Section: "S2",
			ConditionalOn: &models.Condition{QuestionID: "q1", Value: "Yes"}},
		text("q4", "A", "S3", false),
	}
	structural := BuildPages(qs, DefaultPageOptions())
	require.Len(t, structural, 3)

	shown := VisiblePages(structural, models.Responses{"q1": models.TextAnswer("Yes")})
	hidden := VisiblePages(structural, models.Responses{"q1": models.TextAnswer("No")})

	require.Len(t, shown, 3)
	require.Len(t, hidden, 2)
	assert.Equal(t, []string{"q1"}, pageIDs(hidden[0]))
	assert.Equal(t, []string{"q4"}, pageIDs(hidden[1]))
	assert.Equal(t, 2, hidden[1].Index)

	// Structural pages are untouched by filtering
	assert.Len(t, structural[1].Questions, 2)
}

func TestVisiblePagesRemoveOnlyHiddenQuestion(t *testing.T) {
	catalog := testCatalog()
	structural := BuildPages(catalog.Questions, DefaultPageOptions())

	with := VisiblePages(structural, models.Responses{"A-1-1": models.TextAnswer("Yes")})
	without := VisiblePages(structural, models.Responses{"A-1-1": models.TextAnswer("No")})

	require.Equal(t, len(with), len(without))
	assert.Equal(t, []string{"A-1-1", "A-1-2", "A-1-3", "A-1-4", "A-1-5"}, pageIDs(with[0]))
	assert.Equal(t, []string{"A-1-1", "A-1-3", "A-1-4", "A-1-5"}, pageIDs(without[0]))
	assert.Equal(t, pageIDs(with[1]), pageIDs(without[1]))
}

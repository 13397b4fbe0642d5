package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/terra-clan/graduate-survey/internal/models"
	"github.com/terra-clan/graduate-survey/internal/stats"
)

func testCatalog() *models.Catalog {
	c := &models.Catalog{
		Language: "ko",
		Parts:    []*models.Part{{ID: "A"}},
		Sections: []*models.Section{{ID: "A-1", Part: "A", Title: "프로그램"}},
		Questions: []*models.Question{
			{ID: "A-1-1", Type: models.QuestionRadio, Part: "A", Section: "A-1", Title: "참여", Options: []string{"예", "아니오"}},
			{ID: "A-1-2", Type: models.QuestionCheckbox, Part: "A", Section: "A-1", Title: "분야", Options: []string{"x", "y", "z"}},
			{ID: "A-1-3", Type: models.QuestionScale, Part: "A", Section: "A-1", Title: "만족", ScaleMin: 1, ScaleMax: 5},
			{ID: "A-2-1", Type: models.QuestionRanking, Part: "A", Section: "A-1", Title: "순위", Options: []string{"p", "q", "r"}, RankingCount: 2},
		},
	}
	c.Index()
	return c
}

func TestFormatAnswer(t *testing.T) {
	c := testCatalog()
	ranking := c.Question("A-2-1")

	assert.Equal(t, "1위: q, 2위: p", FormatAnswer(ranking, models.ChoicesAnswer("q", "p"), "ko"))
	assert.Equal(t, "1: q, 2: p", FormatAnswer(ranking, models.ChoicesAnswer("q", "p"), "en"))
	assert.Equal(t, "x, z", FormatAnswer(c.Question("A-1-2"), models.ChoicesAnswer("x", "z"), "ko"))
	assert.Equal(t, "4", FormatAnswer(c.Question("A-1-3"), models.NumberAnswer(4), "ko"))
	assert.Equal(t, "", FormatAnswer(c.Question("A-1-1"), models.Answer{}, "ko"))
}

func TestBuildWorkbook(t *testing.T) {
	c := testCatalog()
	at := time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)
	subs := []*models.Submission{
		{
			ID:     "s1",
			Status: models.StatusComplete,
			Responses: models.Responses{
				"A-1-1": models.TextAnswer("예"),
				"A-1-2": models.ChoicesAnswer("x", "y"),
				"A-1-3": models.NumberAnswer(5),
				"A-2-1": models.ChoicesAnswer("r", "p"),
			},
			Language:    "ko",
			SubmittedAt: at,
			UpdatedAt:   at,
		},
		{
			ID:          "s2",
			Status:      models.StatusPartial,
			Responses:   models.Responses{"A-1-1": models.TextAnswer("아니오")},
			Language:    "ko",
			SubmittedAt: at,
			UpdatedAt:   at,
		},
	}
	report := stats.Aggregate(c, subs, nil)

	wb, err := Build(c, subs, report)
	require.NoError(t, err)
	defer wb.Close()

	var buf bytes.Buffer
	_, err = wb.WriteTo(&buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ResponsesSheet, StatisticsSheet}, f.GetSheetList())

	rows, err := f.GetRows(ResponsesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Status", "Language", "Submitted At", "Updated At", "A-1-1", "A-1-2", "A-1-3", "A-2-1"}, rows[0])
	assert.Equal(t, []string{"s1", "complete", "ko", "2025-11-03 09:30:00", "2025-11-03 09:30:00", "예", "x, y", "5", "1위: r, 2위: p"}, rows[1])
	assert.Equal(t, "아니오", rows[2][5])

	statsRows, err := f.GetRows(StatisticsSheet)
	require.NoError(t, err)
	found := false
	for _, row := range statsRows {
		if len(row) >= 5 && row[0] == "A-1-3" {
			found = true
			assert.Equal(t, "5", row[4])
		}
	}
	assert.True(t, found, "scale question row missing")
}

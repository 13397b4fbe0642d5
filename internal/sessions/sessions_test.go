package sessions

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/graduate-survey/internal/models"
	"github.com/terra-clan/graduate-survey/internal/survey"
)

type catalogs map[string]*models.Catalog

func (c catalogs) Get(lang string) (*models.Catalog, error) {
	cat, ok := c[lang]
	if !ok {
		return nil, fmt.Errorf("unknown language %s", lang)
	}
	return cat, nil
}

func testCatalogs() catalogs {
	c := &models.Catalog{
		Language: "ko",
		Parts:    []*models.Part{{ID: "A"}, {ID: "B", QuickNav: true}},
		Sections: []*models.Section{{ID: "A-1", Part: "A"}, {ID: "B-1", Part: "B"}},
		Questions: []*models.Question{
			{ID: "A-1-1", Type: models.QuestionRadio, Part: "A", Section: "A-1", Required: true, Options: []string{"예", "아니오"}},
			{ID: "A-1-2", Type: models.QuestionText, Part: "A", Section: "A-1"},
			{ID: "B-1-1", Type: models.QuestionText, Part: "B", Section: "B-1", Required: true},
		},
	}
	c.Index()
	return catalogs{"ko": c}
}

type countingSaver struct {
	mu    sync.Mutex
	calls []models.SaveRequest
}

func (s *countingSaver) Save(_ context.Context, req models.SaveRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if req.ID != "" {
		return req.ID, nil
	}
	return "sub-1", nil
}

func newManager(store Store) (*Manager, *countingSaver) {
	saver := &countingSaver{}
	return NewManager(store, testCatalogs(), saver, survey.DefaultPageOptions(), time.Hour), saver
}

func TestManagerFlow(t *testing.T) {
	ctx := context.Background()
	m, saver := newManager(NewMemoryStore())

	view, err := m.Create(ctx, "ko")
	require.NoError(t, err)
	assert.Equal(t, survey.StateBrowsing, view.State)
	assert.Equal(t, 2, view.TotalPages)
	require.NotNil(t, view.Page)
	assert.Equal(t, "A-1", view.Page.Section)

	view, err = m.Next(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "A-1-1", view.FocusQuestionID)
	assert.Equal(t, 0, view.PageIndex)

	view, err = m.SetAnswer(ctx, view.ID, "A-1-1", models.TextAnswer("예"))
	require.NoError(t, err)
	assert.Empty(t, view.Errors)

	view, err = m.Next(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, survey.StatePartTransition, view.State)
	require.NotNil(t, view.NextPart)
	assert.Equal(t, "B", view.NextPart.ID)

	view, err = m.Continue(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.PageIndex)
	assert.Equal(t, "sub-1", view.SubmissionID)

	view, err = m.SetAnswer(ctx, view.ID, "B-1-1", models.TextAnswer("해양공학"))
	require.NoError(t, err)
	view, err = m.Next(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, survey.StateDone, view.State)
	assert.Nil(t, view.Page)

	require.Len(t, saver.calls, 2)
	assert.Equal(t, models.StatusPartial, saver.calls[0].Status)
	assert.Equal(t, "sub-1", saver.calls[1].ID)
	assert.Equal(t, models.StatusComplete, saver.calls[1].Status)
}

func TestManagerStepErrorsStillPersist(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(NewMemoryStore())
	view, err := m.Create(ctx, "ko")
	require.NoError(t, err)

	_, err = m.Previous(ctx, view.ID)
	assert.ErrorIs(t, err, survey.ErrNoPreviousPage)

	_, err = m.SetAnswer(ctx, view.ID, "Z-9", models.TextAnswer("x"))
	assert.ErrorIs(t, err, survey.ErrUnknownQuestion)

	view, err = m.Jump(ctx, view.ID, "B-1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.PageIndex)

	view, err = m.Reset(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.PageIndex)
}

func TestManagerUnknownSessionAndLanguage(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(NewMemoryStore())

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Create(ctx, "fr")
	assert.Error(t, err)
}

func TestManagerSerializesSameSession(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(NewMemoryStore())
	view, err := m.Create(ctx, "ko")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.SetAnswer(ctx, view.ID, "A-1-2", models.TextAnswer(fmt.Sprint(i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Every write survived on top of the previous one
	_, err = m.SetAnswer(ctx, view.ID, "A-1-1", models.TextAnswer("예"))
	require.NoError(t, err)
	got, err := m.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Len(t, got.Responses, 2)
	assert.Empty(t, m.locks)
}

func TestManagerDelete(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(NewMemoryStore())
	view, err := m.Create(ctx, "ko")
	require.NoError(t, err)

	n, err := m.ActiveCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, m.Delete(ctx, view.ID))
	_, err = m.Get(ctx, view.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put(ctx, &Record{ID: "a"}, time.Minute))
	require.NoError(t, store.Put(ctx, &Record{ID: "b"}, time.Hour))

	rec, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), rec.ExpiresAt)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)
	assert.Len(t, store.records, 1)
}

func TestRecordEncodingKeepsSnapshot(t *testing.T) {
	rec := &Record{
		ID: "s1",
		Snapshot: survey.Snapshot{
			Language:  "ko",
			State:     survey.StatePartTransition,
			PageIndex: 3,
			Responses: models.Responses{"B-1-4": models.ChoicesAnswer("x", "y")},
		},
	}

	data, err := encodeRecord(rec)
	require.NoError(t, err)
	got, err := decodeRecord(data)
	require.NoError(t, err)

	assert.Equal(t, survey.StatePartTransition, got.Snapshot.State)
	assert.Equal(t, []string{"x", "y"}, got.Snapshot.Responses["B-1-4"].Choices())
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDRESS")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDRESS not set, skipping")
	}
	ctx := context.Background()

	store, err := NewRedisStore(ctx, RedisConfig{Address: addr, Prefix: "survey:test:"})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(ctx, &Record{ID: "r1"}, time.Minute))
	rec, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", rec.ID)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	require.NoError(t, store.Delete(ctx, "r1"))
	_, err = store.Get(ctx, "r1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

package sessions

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/graduate-survey/internal/models"
	"github.com/terra-clan/graduate-survey/internal/survey"
)

// CatalogSource resolves the catalog for a language
type CatalogSource interface {
	Get(lang string) (*models.Catalog, error)
}

// View is what a respondent client sees after each step
type View struct {
	ID              string                  `json:"id"`
	Language        string                  `json:"language"`
	State           survey.State            `json:"state"`
	PageIndex       int                     `json:"page_index"`
	TotalPages      int                     `json:"total_pages"`
	Page            *survey.Page            `json:"page,omitempty"`
	IsLastPage      bool                    `json:"is_last_page"`
	Progress        float64                 `json:"progress"`
	Errors          survey.ValidationErrors `json:"errors,omitempty"`
	FocusQuestionID string                  `json:"focus_question_id,omitempty"`
	SubmissionID    string                  `json:"submission_id,omitempty"`
	NextPart        *models.Part            `json:"next_part,omitempty"`
	Responses       models.Responses        `json:"responses"`
	ExpiresAt       time.Time               `json:"expires_at"`
}

// Manager hosts navigators server-side. Each call restores the navigator from
// the store, applies one step and writes it back. Steps on the same session
// are serialized; different sessions run in parallel.
type Manager struct {
	store    Store
	catalogs CatalogSource
	saver    survey.Saver
	opts     survey.PageOptions
	ttl      time.Duration

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager creates a session manager
func NewManager(store Store, catalogs CatalogSource, saver survey.Saver, opts survey.PageOptions, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		store:    store,
		catalogs: catalogs,
		saver:    saver,
		opts:     opts,
		ttl:      ttl,
		locks:    make(map[string]*sessionLock),
	}
}

// Create starts a new session in the given language
func (m *Manager) Create(ctx context.Context, lang string) (*View, error) {
	catalog, err := m.catalogs.Get(lang)
	if err != nil {
		return nil, err
	}

	n := survey.NewNavigator(catalog, m.saver, m.opts)
	rec := &Record{
		ID:        uuid.New().String(),
		Snapshot:  n.Snapshot(),
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.Put(ctx, rec, m.ttl); err != nil {
		return nil, err
	}

	slog.Info("survey session created", "session_id", rec.ID, "language", lang)
	return buildView(rec, n), nil
}

// Get returns the current view of a session
func (m *Manager) Get(ctx context.Context, id string) (*View, error) {
	rec, n, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildView(rec, n), nil
}

// Delete ends a session
func (m *Manager) Delete(ctx context.Context, id string) error {
	unlock := m.lock(id)
	defer unlock()
	return m.store.Delete(ctx, id)
}

// ActiveCount returns the number of live sessions
func (m *Manager) ActiveCount(ctx context.Context) (int, error) {
	return m.store.Count(ctx)
}

// Apply runs fn against the session's navigator and persists the result.
// The state is written back even when fn fails, since a failed submit
// still moves the navigator.
func (m *Manager) Apply(ctx context.Context, id string, fn func(ctx context.Context, n *survey.Navigator) error) (*View, error) {
	unlock := m.lock(id)
	defer unlock()

	rec, n, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}

	stepErr := fn(ctx, n)

	rec.Snapshot = n.Snapshot()
	if err := m.store.Put(ctx, rec, m.ttl); err != nil {
		return nil, err
	}
	return buildView(rec, n), stepErr
}

// SetAnswer records one answer
func (m *Manager) SetAnswer(ctx context.Context, id, questionID string, answer models.Answer) (*View, error) {
	return m.Apply(ctx, id, func(_ context.Context, n *survey.Navigator) error {
		return n.SetAnswer(questionID, answer)
	})
}

// ClearAnswer removes one answer
func (m *Manager) ClearAnswer(ctx context.Context, id, questionID string) (*View, error) {
	return m.Apply(ctx, id, func(_ context.Context, n *survey.Navigator) error {
		return n.ClearAnswer(questionID)
	})
}

// Next validates and advances
func (m *Manager) Next(ctx context.Context, id string) (*View, error) {
	return m.Apply(ctx, id, func(ctx context.Context, n *survey.Navigator) error {
		_, err := n.Next(ctx)
		return err
	})
}

// Previous goes back one page
func (m *Manager) Previous(ctx context.Context, id string) (*View, error) {
	return m.Apply(ctx, id, func(_ context.Context, n *survey.Navigator) error {
		return n.Previous()
	})
}

// Continue leaves a part transition
func (m *Manager) Continue(ctx context.Context, id string) (*View, error) {
	return m.Apply(ctx, id, func(ctx context.Context, n *survey.Navigator) error {
		return n.Continue(ctx)
	})
}

// Jump moves to the first page of a section
func (m *Manager) Jump(ctx context.Context, id, sectionID string) (*View, error) {
	return m.Apply(ctx, id, func(_ context.Context, n *survey.Navigator) error {
		return n.JumpToSection(sectionID)
	})
}

// Reset clears the answers and starts over
func (m *Manager) Reset(ctx context.Context, id string) (*View, error) {
	return m.Apply(ctx, id, func(_ context.Context, n *survey.Navigator) error {
		n.Reset()
		return nil
	})
}

func (m *Manager) load(ctx context.Context, id string) (*Record, *survey.Navigator, error) {
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	catalog, err := m.catalogs.Get(rec.Snapshot.Language)
	if err != nil {
		return nil, nil, fmt.Errorf("session %s: %w", id, err)
	}

	n, err := survey.Restore(catalog, m.saver, m.opts, rec.Snapshot)
	if err != nil {
		return nil, nil, fmt.Errorf("session %s: %w", id, err)
	}
	return rec, n, nil
}

func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}

func buildView(rec *Record, n *survey.Navigator) *View {
	v := &View{
		ID:           rec.ID,
		Language:     n.Language(),
		State:        n.State(),
		PageIndex:    n.PageIndex(),
		TotalPages:   n.TotalPages(),
		IsLastPage:   n.IsLastPage(),
		Progress:     n.Progress(),
		Errors:       n.Errors(),
		SubmissionID: n.SubmissionID(),
		NextPart:     n.NextPart(),
		Responses:    n.Responses(),
		ExpiresAt:    rec.ExpiresAt,
	}
	if len(v.Errors) > 0 {
		v.FocusQuestionID = v.Errors[0].QuestionID
	}
	if n.State() != survey.StateDone {
		if page, ok := n.CurrentPage(); ok {
			v.Page = &page
		}
	}
	return v
}

package survey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/terra-clan/graduate-survey/internal/models"
)

// State is the navigator's position in the respondent flow
type State string

const (
	StateBrowsing       State = "browsing"        // Showing a page
	StatePartTransition State = "part_transition" // Interstitial between parts
	StateSubmitting     State = "submitting"      // Final save in flight
	StateDone           State = "done"            // Submitted
)

var (
	ErrInvalidState      = errors.New("action not allowed in current state")
	ErrNoPreviousPage    = errors.New("already on the first page")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrUnknownSection    = errors.New("unknown section")
	ErrJumpNotAllowed    = errors.New("section quick navigation not allowed for this part")
	ErrTooManySelections = errors.New("too many selections")
	ErrAnswerMismatch    = errors.New("answer does not fit question")
	ErrSaveFailed        = errors.New("an error occurred while saving")
	ErrNoSaver           = errors.New("no saver configured")
	ErrLanguageMismatch  = errors.New("snapshot language does not match catalog")
)

// Saver persists the response store.
// An empty ID creates a record; the returned id must be reused for later saves.
type Saver interface {
	Save(ctx context.Context, req models.SaveRequest) (string, error)
}

// SaverFunc adapts a function to Saver
type SaverFunc func(ctx context.Context, req models.SaveRequest) (string, error)

// Save calls f
func (f SaverFunc) Save(ctx context.Context, req models.SaveRequest) (string, error) {
	return f(ctx, req)
}

// StepResult describes the outcome of Next
type StepResult struct {
	State           State            `json:"state"`
	Errors          ValidationErrors `json:"errors,omitempty"`
	FocusQuestionID string           `json:"focus_question_id,omitempty"`
}

// Navigator drives one respondent through the catalog
type Navigator struct {
	catalog    *models.Catalog
	saver      Saver
	opts       PageOptions
	structural []Page
	visible    []Page
	store      *ResponseStore

	state        State
	pageIndex    int
	pendingIndex int
	errors       ValidationErrors
	submissionID string
}

// NewNavigator starts a session at Browsing(0)
func NewNavigator(catalog *models.Catalog, saver Saver, opts PageOptions) *Navigator {
	n := &Navigator{
		catalog:    catalog,
		saver:      saver,
		opts:       opts.withDefaults(),
		structural: BuildPages(catalog.Questions, opts),
		store:      NewResponseStore(nil),
		state:      StateBrowsing,
	}
	n.recompute()
	return n
}

// State returns the current state
func (n *Navigator) State() State { return n.state }

// Language returns the catalog language
func (n *Navigator) Language() string { return n.catalog.Language }

// PageIndex returns the index of the current visible page
func (n *Navigator) PageIndex() int { return n.pageIndex }

// PendingPageIndex is the page shown after a part transition
func (n *Navigator) PendingPageIndex() int { return n.pendingIndex }

// Errors returns the validation errors of the last Next
func (n *Navigator) Errors() ValidationErrors { return n.errors }

// SubmissionID is the identifier assigned by the first successful save
func (n *Navigator) SubmissionID() string { return n.submissionID }

// Pages returns the currently visible pages
func (n *Navigator) Pages() []Page { return n.visible }

// TotalPages is the number of visible pages
func (n *Navigator) TotalPages() int { return len(n.visible) }

// CurrentPage returns the page at the current index
func (n *Navigator) CurrentPage() (Page, bool) {
	if n.pageIndex < 0 || n.pageIndex >= len(n.visible) {
		return Page{}, false
	}
	return n.visible[n.pageIndex], true
}

// IsLastPage reports whether the current page is the final one
func (n *Navigator) IsLastPage() bool {
	return n.pageIndex == len(n.visible)-1
}

// Responses returns a copy of the answers
func (n *Navigator) Responses() models.Responses { return n.store.Snapshot() }

// Answer returns one answer
func (n *Navigator) Answer(questionID string) (models.Answer, bool) {
	return n.store.Get(questionID)
}

// Progress returns the completion percentage at the current page
func (n *Navigator) Progress() float64 {
	active := len(ActiveQuestions(n.catalog.Questions, n.store.view()))
	return Progress(n.visible, n.pageIndex, n.store.view(), active)
}

// NextPart returns the part the pending page belongs to during a transition
func (n *Navigator) NextPart() *models.Part {
	if n.state != StatePartTransition || n.pendingIndex >= len(n.visible) {
		return nil
	}
	return n.catalog.Part(n.visible[n.pendingIndex].Part)
}

// SetAnswer records an answer and recomputes visibility and pages
func (n *Navigator) SetAnswer(questionID string, answer models.Answer) error {
	if n.state != StateBrowsing {
		return ErrInvalidState
	}
	q := n.catalog.Question(questionID)
	if q == nil {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if err := checkAnswerShape(q, answer); err != nil {
		return err
	}
	if err := checkSelectionLimits(q, answer); err != nil {
		return err
	}

	n.store.Set(questionID, answer)
	n.errors = n.errors.Without(questionID)
	n.recompute()
	return nil
}

// ClearAnswer unsets an answer and recomputes visibility and pages
func (n *Navigator) ClearAnswer(questionID string) error {
	if n.state != StateBrowsing {
		return ErrInvalidState
	}
	if n.catalog.Question(questionID) == nil {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}

	n.store.Clear(questionID)
	n.errors = n.errors.Without(questionID)
	n.recompute()
	return nil
}

// checkAnswerShape rejects answers whose kind does not suit the question type,
// options outside the declared list, and scale values out of range.
// Empty text and empty choice lists pass; they read as unanswered.
func checkAnswerShape(q *models.Question, answer models.Answer) error {
	switch q.Type {
	case models.QuestionText, models.QuestionParagraph:
		if answer.Kind() != models.AnswerText {
			return fmt.Errorf("%w: %s expects text", ErrAnswerMismatch, q.ID)
		}
	case models.QuestionRadio:
		if answer.Kind() != models.AnswerText {
			return fmt.Errorf("%w: %s expects a single option", ErrAnswerMismatch, q.ID)
		}
		if v := answer.Text(); v != "" && !q.Other && !declared(q, v) {
			return fmt.Errorf("%w: %s has no option %q", ErrAnswerMismatch, q.ID, v)
		}
	case models.QuestionCheckbox, models.QuestionRanking:
		if answer.Kind() != models.AnswerChoices {
			return fmt.Errorf("%w: %s expects a list of options", ErrAnswerMismatch, q.ID)
		}
		seen := make(map[string]bool, answer.Len())
		for _, v := range answer.Choices() {
			if seen[v] {
				return fmt.Errorf("%w: %s lists %q twice", ErrAnswerMismatch, q.ID, v)
			}
			seen[v] = true
			if q.Type == models.QuestionCheckbox && q.Other {
				continue
			}
			if !declared(q, v) {
				return fmt.Errorf("%w: %s has no option %q", ErrAnswerMismatch, q.ID, v)
			}
		}
	case models.QuestionScale:
		v, ok := answer.Number()
		if !ok {
			return fmt.Errorf("%w: %s expects a number", ErrAnswerMismatch, q.ID)
		}
		if v < q.ScaleMin || v > q.ScaleMax {
			return fmt.Errorf("%w: %s takes %d..%d, got %d", ErrAnswerMismatch, q.ID, q.ScaleMin, q.ScaleMax, v)
		}
	}
	return nil
}

// declared reports whether v is one of q's options.
// A question without declared options accepts any value.
func declared(q *models.Question, v string) bool {
	if len(q.Options) == 0 {
		return true
	}
	for _, o := range q.Options {
		if o == v {
			return true
		}
	}
	return false
}

func checkSelectionLimits(q *models.Question, answer models.Answer) error {
	switch q.Type {
	case models.QuestionCheckbox:
		if q.MaxSelections > 0 && answer.Len() > q.MaxSelections {
			return fmt.Errorf("%w: %s allows at most %d", ErrTooManySelections, q.ID, q.MaxSelections)
		}
	case models.QuestionRanking:
		if q.RankingCount > 0 && answer.Len() > q.RankingCount {
			return fmt.Errorf("%w: %s ranks at most %d", ErrTooManySelections, q.ID, q.RankingCount)
		}
	}
	return nil
}

// Next validates the current page and advances, enters a part transition,
// or submits when on the last page. Validation failures are returned in the
// result, not as an error, and leave the page index unchanged.
func (n *Navigator) Next(ctx context.Context) (StepResult, error) {
	if n.state != StateBrowsing {
		return StepResult{State: n.state}, ErrInvalidState
	}

	page, ok := n.CurrentPage()
	if !ok {
		return StepResult{State: n.state}, ErrInvalidState
	}

	if errs := ValidatePage(page, n.store.view(), n.Language()); len(errs) > 0 {
		n.errors = errs
		return StepResult{
			State:           n.state,
			Errors:          errs,
			FocusQuestionID: errs[0].QuestionID,
		}, nil
	}
	n.errors = nil

	if !n.IsLastPage() {
		next := n.visible[n.pageIndex+1]
		if next.Part != page.Part {
			n.state = StatePartTransition
			n.pendingIndex = n.pageIndex + 1
		} else {
			n.pageIndex++
		}
		return StepResult{State: n.state}, nil
	}

	if err := n.submit(ctx); err != nil {
		return StepResult{State: n.state}, err
	}
	return StepResult{State: n.state}, nil
}

func (n *Navigator) submit(ctx context.Context) error {
	if n.saver == nil {
		return ErrNoSaver
	}

	n.state = StateSubmitting
	id, err := n.saver.Save(ctx, n.saveRequest(models.StatusComplete))
	if err != nil {
		n.state = StateBrowsing
		n.pageIndex = len(n.visible) - 1
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	n.submissionID = id
	n.state = StateDone
	return nil
}

// Continue leaves a part transition. It checkpoints the answers with a
// partial save and shows the pending page; a failed checkpoint is logged
// and does not block the respondent.
func (n *Navigator) Continue(ctx context.Context) error {
	if n.state != StatePartTransition {
		return ErrInvalidState
	}

	if n.saver != nil {
		id, err := n.saver.Save(ctx, n.saveRequest(models.StatusPartial))
		if err != nil {
			slog.Warn("partial save failed", "error", err, "submission_id", n.submissionID)
		} else {
			n.submissionID = id
		}
	}

	n.state = StateBrowsing
	n.pageIndex = n.pendingIndex
	return nil
}

// Previous moves back one page without validation
func (n *Navigator) Previous() error {
	if n.state != StateBrowsing {
		return ErrInvalidState
	}
	if n.pageIndex == 0 {
		return ErrNoPreviousPage
	}

	n.errors = nil
	n.pageIndex--
	return nil
}

// JumpToSection moves to the first visible page of a section without validation.
// Only parts flagged for quick navigation allow it.
func (n *Navigator) JumpToSection(sectionID string) error {
	if n.state != StateBrowsing {
		return ErrInvalidState
	}

	section := n.catalog.Section(sectionID)
	if section == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSection, sectionID)
	}
	if part := n.catalog.Part(section.Part); part == nil || !part.QuickNav {
		return ErrJumpNotAllowed
	}

	for i, p := range n.visible {
		if p.Section == sectionID {
			n.errors = nil
			n.pageIndex = i
			return nil
		}
	}
	return fmt.Errorf("%w: %s has no visible page", ErrUnknownSection, sectionID)
}

// Reset clears every answer and starts over with a fresh submission
func (n *Navigator) Reset() {
	n.store.Reset()
	n.state = StateBrowsing
	n.pageIndex = 0
	n.pendingIndex = 0
	n.errors = nil
	n.submissionID = ""
	n.recompute()
}

func (n *Navigator) saveRequest(status models.SubmissionStatus) models.SaveRequest {
	return models.SaveRequest{
		Responses: n.store.Snapshot(),
		Language:  n.Language(),
		ID:        n.submissionID,
		Status:    status,
	}
}

// recompute refreshes the visible pages after an answer change and keeps
// the respondent on the same structural page, or the next one still shown.
func (n *Navigator) recompute() {
	anchor := -1
	if n.pageIndex >= 0 && n.pageIndex < len(n.visible) {
		anchor = n.visible[n.pageIndex].Index
	}

	n.visible = VisiblePages(n.structural, n.store.view())

	if anchor < 0 {
		n.pageIndex = clamp(n.pageIndex, len(n.visible))
		return
	}
	for i, p := range n.visible {
		if p.Index >= anchor {
			n.pageIndex = i
			return
		}
	}
	n.pageIndex = clamp(len(n.visible)-1, len(n.visible))
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

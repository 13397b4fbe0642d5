package survey

import (
	"fmt"

	"github.com/terra-clan/graduate-survey/internal/models"
)

// Snapshot is the serializable state of a Navigator
type Snapshot struct {
	Language         string           `json:"language"`
	Responses        models.Responses `json:"responses"`
	State            State            `json:"state"`
	PageIndex        int              `json:"page_index"`
	PendingPageIndex int              `json:"pending_page_index"`
	SubmissionID     string           `json:"submission_id,omitempty"`
	Errors           ValidationErrors `json:"errors,omitempty"`
}

// Snapshot captures the navigator state
func (n *Navigator) Snapshot() Snapshot {
	return Snapshot{
		Language:         n.Language(),
		Responses:        n.store.Snapshot(),
		State:            n.state,
		PageIndex:        n.pageIndex,
		PendingPageIndex: n.pendingIndex,
		SubmissionID:     n.submissionID,
		Errors:           n.errors,
	}
}

// Restore rebuilds a navigator from a snapshot taken against the same catalog.
// A snapshot caught mid-submit comes back on the last page.
func Restore(catalog *models.Catalog, saver Saver, opts PageOptions, snap Snapshot) (*Navigator, error) {
	if snap.Language != "" && snap.Language != catalog.Language {
		return nil, fmt.Errorf("%w: %s != %s", ErrLanguageMismatch, snap.Language, catalog.Language)
	}

	n := &Navigator{
		catalog:      catalog,
		saver:        saver,
		opts:         opts.withDefaults(),
		structural:   BuildPages(catalog.Questions, opts),
		store:        NewResponseStore(snap.Responses),
		state:        snap.State,
		submissionID: snap.SubmissionID,
		errors:       snap.Errors,
	}
	n.visible = VisiblePages(n.structural, n.store.view())
	n.pageIndex = clamp(snap.PageIndex, len(n.visible))
	n.pendingIndex = clamp(snap.PendingPageIndex, len(n.visible))

	switch n.state {
	case StateBrowsing, StatePartTransition, StateDone:
	case StateSubmitting:
		n.state = StateBrowsing
		n.pageIndex = clamp(len(n.visible)-1, len(n.visible))
	default:
		n.state = StateBrowsing
	}

	return n, nil
}

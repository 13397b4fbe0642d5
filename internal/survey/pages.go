package survey

import "github.com/terra-clan/graduate-survey/internal/models"

// PageOptions holds the grouping thresholds used by BuildPages
type PageOptions struct {
	// PageSize caps the number of ordinary questions on one page
	PageSize int
	// BigCheckboxOptions: a checkbox with more options than this gets its own page
	BigCheckboxOptions int
	// MatrixMinRun is the shortest run of same-range scale questions shown as a grid
	MatrixMinRun int
	// Matrix enables scale-run grouping
	Matrix bool
}

// DefaultPageOptions returns the thresholds the shipped survey uses
func DefaultPageOptions() PageOptions {
	return PageOptions{
		PageSize:           5,
		BigCheckboxOptions: 6,
		MatrixMinRun:       3,
		Matrix:             true,
	}
}

func (o PageOptions) withDefaults() PageOptions {
	d := DefaultPageOptions()
	if o.PageSize <= 0 {
		o.PageSize = d.PageSize
	}
	if o.BigCheckboxOptions <= 0 {
		o.BigCheckboxOptions = d.BigCheckboxOptions
	}
	if o.MatrixMinRun <= 0 {
		o.MatrixMinRun = d.MatrixMinRun
	}
	return o
}

// Page is one screen of questions sharing a part and section
type Page struct {
	// Index is the position of the page in the structural (unfiltered) list
	Index        int                `json:"index"`
	Part         string             `json:"part"`
	Section      string             `json:"section"`
	SectionTitle string             `json:"section_title"`
	IsMatrix     bool               `json:"is_matrix"`
	Questions    []*models.Question `json:"questions"`
}

// IsBig reports whether a question must occupy a page by itself
func IsBig(q *models.Question, opts PageOptions) bool {
	opts = opts.withDefaults()
	switch q.Type {
	case models.QuestionRanking, models.QuestionParagraph:
		return true
	case models.QuestionCheckbox:
		return len(q.Options) > opts.BigCheckboxOptions
	}
	return false
}

type scaleKey struct {
	min, max int
}

type pageBuilder struct {
	opts   PageOptions
	pages  []Page
	batch  []*models.Question
	run    []*models.Question
	runKey scaleKey
}

// BuildPages partitions the full catalog, in declared order, into pages.
// It does not look at answers: page boundaries are structural and stable.
func BuildPages(questions []*models.Question, opts PageOptions) []Page {
	b := &pageBuilder{opts: opts.withDefaults()}

	var part, section string
	for i, q := range questions {
		if i == 0 || q.Part != part || q.Section != section {
			b.flushAll()
			part, section = q.Part, q.Section
		}

		if IsBig(q, b.opts) {
			b.flushAll()
			b.emit([]*models.Question{q}, false)
			continue
		}

		if b.opts.Matrix && q.Type == models.QuestionScale {
			key := scaleKey{min: q.ScaleMin, max: q.ScaleMax}
			if len(b.run) > 0 && key != b.runKey {
				b.flushRun()
			}
			b.runKey = key
			b.run = append(b.run, q)
			continue
		}

		b.flushRun()
		b.add(q)
	}
	b.flushAll()

	return b.pages
}

func (b *pageBuilder) add(q *models.Question) {
	b.batch = append(b.batch, q)
	if len(b.batch) >= b.opts.PageSize {
		b.flushBatch()
	}
}

// flushRun closes the current scale run: long runs become a matrix page,
// short ones fall back into the ordinary batch.
func (b *pageBuilder) flushRun() {
	if len(b.run) == 0 {
		return
	}
	run := b.run
	b.run = nil

	if len(run) >= b.opts.MatrixMinRun {
		b.flushBatch()
		b.emit(run, true)
		return
	}
	for _, q := range run {
		b.add(q)
	}
}

func (b *pageBuilder) flushBatch() {
	if len(b.batch) == 0 {
		return
	}
	b.emit(b.batch, false)
	b.batch = nil
}

func (b *pageBuilder) flushAll() {
	b.flushRun()
	b.flushBatch()
}

func (b *pageBuilder) emit(questions []*models.Question, matrix bool) {
	first := questions[0]
	qs := make([]*models.Question, len(questions))
	copy(qs, questions)

	b.pages = append(b.pages, Page{
		Index:        len(b.pages),
		Part:         first.Part,
		Section:      first.Section,
		SectionTitle: first.SectionTitle,
		IsMatrix:     matrix,
		Questions:    qs,
	})
}

// VisiblePages filters every structural page through IsVisible and drops
// pages left empty. Pages are never merged with their neighbours.
func VisiblePages(pages []Page, responses models.Responses) []Page {
	visible := make([]Page, 0, len(pages))
	for _, p := range pages {
		qs := ActiveQuestions(p.Questions, responses)
		if len(qs) == 0 {
			continue
		}
		p.Questions = qs
		visible = append(visible, p)
	}
	return visible
}

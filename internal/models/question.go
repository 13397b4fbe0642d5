package models

// QuestionType identifies how a question is answered and rendered
type QuestionType string

const (
	QuestionRadio     QuestionType = "radio"
	QuestionCheckbox  QuestionType = "checkbox"
	QuestionScale     QuestionType = "scale"
	QuestionText      QuestionType = "text"
	QuestionParagraph QuestionType = "paragraph"
	QuestionRanking   QuestionType = "ranking"
)

// Valid reports whether t is one of the known question types
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionRadio, QuestionCheckbox, QuestionScale, QuestionText, QuestionParagraph, QuestionRanking:
		return true
	}
	return false
}

// NotApplicableScaleMax is the reserved scaleMax value meaning
// "5-point scale plus a separate not-applicable option". The answer 6 is N/A.
const NotApplicableScaleMax = 6

// Condition makes a question visible only when an earlier answer matches
type Condition struct {
	QuestionID string   `json:"question_id" yaml:"question_id"`
	Value      string   `json:"value,omitempty" yaml:"value"`
	AnyOf      []string `json:"any_of,omitempty" yaml:"any_of"`
}

// Triggers returns every value that makes the dependent question visible
func (c *Condition) Triggers() []string {
	if c.Value == "" {
		return c.AnyOf
	}
	return append([]string{c.Value}, c.AnyOf...)
}

// Question is a single survey item
type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Part          string       `json:"part"`
	Section       string       `json:"section"`
	SectionTitle  string       `json:"section_title"`
	Title         string       `json:"title"`
	HelpText      string       `json:"help_text,omitempty"`
	Required      bool         `json:"required"`
	Options       []string     `json:"options,omitempty"`
	Other         bool         `json:"other,omitempty"`
	ScaleMin      int          `json:"scale_min,omitempty"`
	ScaleMax      int          `json:"scale_max,omitempty"`
	ScaleMinLabel string       `json:"scale_min_label,omitempty"`
	ScaleMaxLabel string       `json:"scale_max_label,omitempty"`
	RankingCount  int          `json:"ranking_count,omitempty"`
	MaxSelections int          `json:"max_selections,omitempty"`
	ConditionalOn *Condition   `json:"conditional_on,omitempty"`
}

// HasNotApplicable reports whether a scale question offers the N/A sentinel
func (q *Question) HasNotApplicable() bool {
	return q.Type == QuestionScale && q.ScaleMax == NotApplicableScaleMax
}

// EffectiveScaleMax is the top of the rated range, excluding the N/A sentinel
func (q *Question) EffectiveScaleMax() int {
	if q.HasNotApplicable() {
		return NotApplicableScaleMax - 1
	}
	return q.ScaleMax
}

// Part is a top-level grouping of the questionnaire
type Part struct {
	ID                    string `json:"id"`
	Title                 string `json:"title"`
	Description           string `json:"description,omitempty"`
	TransitionTitle       string `json:"transition_title,omitempty"`
	TransitionDescription string `json:"transition_description,omitempty"`
	QuickNav              bool   `json:"quick_nav"`
}

// Section is a named sub-group of questions within a part
type Section struct {
	ID          string `json:"id"`
	Part        string `json:"part"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Catalog is the static, ordered questionnaire for one language
type Catalog struct {
	Language  string      `json:"language"`
	Title     string      `json:"title"`
	Parts     []*Part     `json:"parts"`
	Sections  []*Section  `json:"sections"`
	Questions []*Question `json:"questions"`

	byID map[string]*Question
}

// Index builds the id lookup table. Call once after Questions is final.
func (c *Catalog) Index() {
	c.byID = make(map[string]*Question, len(c.Questions))
	for _, q := range c.Questions {
		c.byID[q.ID] = q
	}
}

// Question returns a question by id, or nil
func (c *Catalog) Question(id string) *Question {
	if c.byID == nil {
		c.Index()
	}
	return c.byID[id]
}

// Part returns a part by id, or nil
func (c *Catalog) Part(id string) *Part {
	for _, p := range c.Parts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Section returns a section by id, or nil
func (c *Catalog) Section(id string) *Section {
	for _, s := range c.Sections {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// QuestionIDs returns question ids in declared order
func (c *Catalog) QuestionIDs() []string {
	ids := make([]string, len(c.Questions))
	for i, q := range c.Questions {
		ids[i] = q.ID
	}
	return ids
}

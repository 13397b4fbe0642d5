package catalog

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/graduate-survey/internal/models"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

// Parse decodes and validates one catalog document.
// fallbackLang is used when the document does not declare a language.
func Parse(data []byte, fallbackLang string) (*models.Catalog, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	lang := cf.Language
	if lang == "" {
		lang = fallbackLang
	}
	if lang == "" {
		return nil, fmt.Errorf("%w: language is required", ErrInvalidCatalog)
	}

	c := &models.Catalog{
		Language: lang,
		Title:    cf.Title,
	}

	parts := make(map[string]*models.Part, len(cf.Parts))
	for _, pf := range cf.Parts {
		if pf.ID == "" {
			return nil, fmt.Errorf("%w: part id is required", ErrInvalidCatalog)
		}
		if _, dup := parts[pf.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate part %s", ErrInvalidCatalog, pf.ID)
		}
		p := &models.Part{
			ID:                    pf.ID,
			Title:                 pf.Title,
			Description:           pf.Description,
			TransitionTitle:       pf.TransitionTitle,
			TransitionDescription: pf.TransitionDescription,
			QuickNav:              pf.QuickNav,
		}
		parts[p.ID] = p
		c.Parts = append(c.Parts, p)
	}

	sections := make(map[string]*models.Section, len(cf.Sections))
	for _, sf := range cf.Sections {
		if sf.ID == "" {
			return nil, fmt.Errorf("%w: section id is required", ErrInvalidCatalog)
		}
		if _, dup := sections[sf.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate section %s", ErrInvalidCatalog, sf.ID)
		}
		if parts[sf.Part] == nil {
			return nil, fmt.Errorf("%w: section %s: unknown part %q", ErrInvalidCatalog, sf.ID, sf.Part)
		}
		s := &models.Section{
			ID:          sf.ID,
			Part:        sf.Part,
			Title:       sf.Title,
			Description: sf.Description,
		}
		sections[s.ID] = s
		c.Sections = append(c.Sections, s)
	}

	seen := make(map[string]*models.Question, len(cf.Questions))
	for _, qf := range cf.Questions {
		q, err := qf.toQuestion(sections, seen)
		if err != nil {
			return nil, fmt.Errorf("%w: question %s: %v", ErrInvalidCatalog, qf.ID, err)
		}
		seen[q.ID] = q
		c.Questions = append(c.Questions, q)
	}
	if len(c.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidCatalog)
	}

	c.Index()
	return c, nil
}

// toQuestion validates a question against the sections and the questions declared before it
func (qf questionFile) toQuestion(sections map[string]*models.Section, earlier map[string]*models.Question) (*models.Question, error) {
	if qf.ID == "" {
		return nil, errors.New("id is required")
	}
	if earlier[qf.ID] != nil {
		return nil, errors.New("duplicate id")
	}
	if !qf.Type.Valid() {
		return nil, fmt.Errorf("unknown type %q", qf.Type)
	}
	if qf.Title == "" {
		return nil, errors.New("title is required")
	}

	section := sections[qf.Section]
	if section == nil {
		return nil, fmt.Errorf("unknown section %q", qf.Section)
	}
	if qf.Part != "" && qf.Part != section.Part {
		return nil, fmt.Errorf("section %s belongs to part %s, not %s", section.ID, section.Part, qf.Part)
	}

	q := &models.Question{
		ID:            qf.ID,
		Type:          qf.Type,
		Part:          section.Part,
		Section:       section.ID,
		SectionTitle:  section.Title,
		Title:         qf.Title,
		HelpText:      qf.HelpText,
		Required:      qf.Required,
		Options:       qf.Options,
		Other:         qf.Other,
		RankingCount:  qf.RankingCount,
		MaxSelections: qf.MaxSelections,
	}

	switch q.Type {
	case models.QuestionRadio, models.QuestionCheckbox:
		if len(q.Options) == 0 {
			return nil, errors.New("options are required")
		}
		if q.MaxSelections < 0 || q.MaxSelections > len(q.Options) {
			return nil, fmt.Errorf("max_selections %d out of range", q.MaxSelections)
		}
	case models.QuestionScale:
		if qf.Scale == nil {
			return nil, errors.New("scale range is required")
		}
		if qf.Scale.Min >= qf.Scale.Max {
			return nil, fmt.Errorf("scale min %d must be below max %d", qf.Scale.Min, qf.Scale.Max)
		}
		q.ScaleMin = qf.Scale.Min
		q.ScaleMax = qf.Scale.Max
		q.ScaleMinLabel = qf.Scale.MinLabel
		q.ScaleMaxLabel = qf.Scale.MaxLabel
	case models.QuestionRanking:
		if q.RankingCount < 1 || q.RankingCount > len(q.Options) {
			return nil, fmt.Errorf("ranking_count %d must be within 1..%d", q.RankingCount, len(q.Options))
		}
	}

	if qf.ConditionalOn != nil {
		cond := qf.ConditionalOn
		if earlier[cond.QuestionID] == nil {
			return nil, fmt.Errorf("condition references %q which is not declared earlier", cond.QuestionID)
		}
		if len(cond.Triggers()) == 0 {
			return nil, errors.New("condition needs a value or any_of")
		}
		q.ConditionalOn = cond
	}

	return q, nil
}

// --- YAML file structs ---

// catalogFile represents the YAML structure of a catalog file
type catalogFile struct {
	Language  string         `yaml:"language"`
	Title     string         `yaml:"title"`
	Parts     []partFile     `yaml:"parts"`
	Sections  []sectionFile  `yaml:"sections"`
	Questions []questionFile `yaml:"questions"`
}

type partFile struct {
	ID                    string `yaml:"id"`
	Title                 string `yaml:"title"`
	Description           string `yaml:"description"`
	TransitionTitle       string `yaml:"transition_title"`
	TransitionDescription string `yaml:"transition_description"`
	QuickNav              bool   `yaml:"quick_nav"`
}

type sectionFile struct {
	ID          string `yaml:"id"`
	Part        string `yaml:"part"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type scaleFile struct {
	Min      int    `yaml:"min"`
	Max      int    `yaml:"max"`
	MinLabel string `yaml:"min_label"`
	MaxLabel string `yaml:"max_label"`
}

// questionFile represents one question entry. Part is optional and
// derived from the section when omitted.
type questionFile struct {
	ID            string              `yaml:"id"`
	Type          models.QuestionType `yaml:"type"`
	Part          string              `yaml:"part"`
	Section       string              `yaml:"section"`
	Title         string              `yaml:"title"`
	HelpText      string              `yaml:"help_text"`
	Required      bool                `yaml:"required"`
	Options       []string            `yaml:"options"`
	Other         bool                `yaml:"other"`
	Scale         *scaleFile          `yaml:"scale"`
	RankingCount  int                 `yaml:"ranking_count"`
	MaxSelections int                 `yaml:"max_selections"`
	ConditionalOn *models.Condition   `yaml:"conditional_on"`
}

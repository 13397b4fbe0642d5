package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/terra-clan/graduate-survey/internal/models"
)

// Fixed demographic question ids
const (
	AffiliationQuestionID = "B-1-1"
	ProgramQuestionID     = "B-1-3"
	GenderQuestionID      = "B-1-5"
)

// Report is the admin dashboard for one catalog language
type Report struct {
	Language     string          `json:"language"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Overview     Overview        `json:"overview"`
	Respondents  int             `json:"respondents"`
	Demographics Demographics    `json:"demographics"`
	Sections     []*SectionStats `json:"sections"`
}

// Overview counts every submission regardless of status or language
type Overview struct {
	Total          int             `json:"total"`
	Complete       int             `json:"complete"`
	Partial        int             `json:"partial"`
	CompletionRate decimal.Decimal `json:"completion_rate"`
	PartialRate    decimal.Decimal `json:"partial_rate"`
	Daily          []DailyCount    `json:"daily"`
}

// DailyCount is the number of submissions first saved on one calendar day
type DailyCount struct {
	Date     string `json:"date"`
	Complete int    `json:"complete"`
	Partial  int    `json:"partial"`
}

// Demographics breaks complete submissions down by fixed questions
type Demographics struct {
	Affiliation []Count `json:"affiliation"`
	Program     []Count `json:"program"`
	Gender      []Count `json:"gender"`
}

// Count is a value with its frequency and share of the respondents
type Count struct {
	Value   string          `json:"value"`
	Count   int             `json:"count"`
	Percent decimal.Decimal `json:"percent"`
}

// SectionStats groups question statistics in catalog order
type SectionStats struct {
	ID        string           `json:"id"`
	Part      string           `json:"part"`
	Title     string           `json:"title"`
	Questions []*QuestionStats `json:"questions"`
}

// QuestionStats holds the statistics for one question; which field is set depends on Type
type QuestionStats struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Type      models.QuestionType `json:"type"`
	Responded int                 `json:"responded"`
	Scale     *ScaleStats         `json:"scale,omitempty"`
	Options   []Count             `json:"options,omitempty"`
	Ranking   []RankingEntry      `json:"ranking,omitempty"`
}

// ScaleStats is the distribution and average of a scale question
type ScaleStats struct {
	Min              int          `json:"min"`
	Max              int          `json:"max"`
	EffectiveMax     int          `json:"effective_max"`
	MinLabel         string       `json:"min_label,omitempty"`
	MaxLabel         string       `json:"max_label,omitempty"`
	HasNotApplicable bool         `json:"has_not_applicable"`
	Distribution     []ScalePoint `json:"distribution"`
	// Count is the number of answers in the average
	Count int `json:"count"`
	// Average is nil when nothing was rated
	Average *decimal.Decimal `json:"average"`
}

// ScalePoint is one value of a scale distribution
type ScalePoint struct {
	Value         int             `json:"value"`
	Count         int             `json:"count"`
	Percent       decimal.Decimal `json:"percent"`
	NotApplicable bool            `json:"not_applicable,omitempty"`
}

// RankingEntry is an option's weighted score and how often it got each rank
type RankingEntry struct {
	Option string `json:"option"`
	Score  int    `json:"score"`
	// Ranks[i] counts placements at rank i+1
	Ranks []int `json:"ranks"`
}

// Question looks up the statistics of one question
func (r *Report) Question(id string) *QuestionStats {
	for _, s := range r.Sections {
		for _, q := range s.Questions {
			if q.ID == id {
				return q
			}
		}
	}
	return nil
}

func percent(count, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(count)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), 1)
}

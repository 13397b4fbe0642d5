package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/terra-clan/graduate-survey/internal/models"
)

// Aggregate builds the admin report for one catalog.
// The overview covers every submission. Demographics and question statistics
// only count complete submissions written in the catalog's language.
// Days are bucketed in loc, or UTC when loc is nil.
func Aggregate(catalog *models.Catalog, submissions []*models.Submission, loc *time.Location) *Report {
	if loc == nil {
		loc = time.UTC
	}

	report := &Report{
		Language:    catalog.Language,
		GeneratedAt: time.Now().UTC(),
		Overview:    overview(submissions, loc),
	}

	var complete []*models.Submission
	for _, s := range submissions {
		if s.IsComplete() && (s.Language == "" || s.Language == catalog.Language) {
			complete = append(complete, s)
		}
	}
	report.Respondents = len(complete)

	report.Demographics = Demographics{
		Affiliation: demographic(complete, AffiliationQuestionID),
		Program:     demographic(complete, ProgramQuestionID),
		Gender:      demographic(complete, GenderQuestionID),
	}

	for _, section := range catalog.Sections {
		ss := &SectionStats{ID: section.ID, Part: section.Part, Title: section.Title}
		for _, q := range catalog.Questions {
			if q.Section != section.ID {
				continue
			}
			if qs := Question(q, complete); qs != nil {
				ss.Questions = append(ss.Questions, qs)
			}
		}
		if len(ss.Questions) > 0 {
			report.Sections = append(report.Sections, ss)
		}
	}

	return report
}

// Question computes statistics for one question, or nil for free-text types
func Question(q *models.Question, submissions []*models.Submission) *QuestionStats {
	qs := &QuestionStats{ID: q.ID, Title: q.Title, Type: q.Type}

	switch q.Type {
	case models.QuestionScale:
		qs.Scale, qs.Responded = scaleStats(q, submissions)
	case models.QuestionRadio, models.QuestionCheckbox:
		qs.Options, qs.Responded = optionStats(q, submissions)
	case models.QuestionRanking:
		qs.Ranking, qs.Responded = rankingStats(q, submissions)
	default:
		return nil
	}
	return qs
}

func overview(submissions []*models.Submission, loc *time.Location) Overview {
	o := Overview{Total: len(submissions)}

	days := make(map[string]*DailyCount)
	for _, s := range submissions {
		day := s.SubmittedAt.In(loc).Format("2006-01-02")
		d, ok := days[day]
		if !ok {
			d = &DailyCount{Date: day}
			days[day] = d
		}
		if s.IsComplete() {
			o.Complete++
			d.Complete++
		} else {
			o.Partial++
			d.Partial++
		}
	}

	o.CompletionRate = percent(o.Complete, o.Total)
	o.PartialRate = percent(o.Partial, o.Total)

	o.Daily = make([]DailyCount, 0, len(days))
	for _, d := range days {
		o.Daily = append(o.Daily, *d)
	}
	sort.Slice(o.Daily, func(i, j int) bool { return o.Daily[i].Date < o.Daily[j].Date })
	return o
}

func demographic(submissions []*models.Submission, questionID string) []Count {
	counts := make(map[string]int)
	for _, s := range submissions {
		a, ok := s.Responses[questionID]
		if !ok || a.Kind() != models.AnswerText || a.IsEmpty() {
			continue
		}
		counts[a.Text()]++
	}

	out := make([]Count, 0, len(counts))
	for value, n := range counts {
		out = append(out, Count{Value: value, Count: n, Percent: percent(n, len(submissions))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}

func scaleStats(q *models.Question, submissions []*models.Submission) (*ScaleStats, int) {
	st := &ScaleStats{
		Min:              q.ScaleMin,
		Max:              q.ScaleMax,
		EffectiveMax:     q.EffectiveScaleMax(),
		MinLabel:         q.ScaleMinLabel,
		MaxLabel:         q.ScaleMaxLabel,
		HasNotApplicable: q.HasNotApplicable(),
	}

	dist := make(map[int]int)
	var sum int64
	responded := 0
	for _, s := range submissions {
		n, ok := s.Responses[q.ID].Number()
		if !ok {
			continue
		}
		dist[n]++
		responded++
		if st.HasNotApplicable && n == models.NotApplicableScaleMax {
			continue
		}
		sum += int64(n)
		st.Count++
	}

	for v := q.ScaleMin; v <= q.ScaleMax; v++ {
		st.Distribution = append(st.Distribution, scalePoint(st, v, dist[v], responded))
	}
	var extra []int
	for v := range dist {
		if v < q.ScaleMin || v > q.ScaleMax {
			extra = append(extra, v)
		}
	}
	sort.Ints(extra)
	for _, v := range extra {
		st.Distribution = append(st.Distribution, scalePoint(st, v, dist[v], responded))
	}

	if st.Count > 0 {
		avg := decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(int64(st.Count)), 2)
		st.Average = &avg
	}
	return st, responded
}

func scalePoint(st *ScaleStats, value, count, responded int) ScalePoint {
	return ScalePoint{
		Value:         value,
		Count:         count,
		Percent:       percent(count, responded),
		NotApplicable: st.HasNotApplicable && value == models.NotApplicableScaleMax,
	}
}

// optionStats counts each declared option, plus any other value seen.
// Checkbox answers count once per selected option.
func optionStats(q *models.Question, submissions []*models.Submission) ([]Count, int) {
	counts := make(map[string]int, len(q.Options))
	order := make([]string, 0, len(q.Options))
	bump := func(v string) {
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	for _, opt := range q.Options {
		if _, ok := counts[opt]; !ok {
			counts[opt] = 0
			order = append(order, opt)
		}
	}

	responded := 0
	for _, s := range submissions {
		a, ok := s.Responses[q.ID]
		if !ok || a.IsEmpty() {
			continue
		}
		responded++

		switch a.Kind() {
		case models.AnswerChoices:
			for _, v := range a.Choices() {
				bump(v)
			}
		default:
			bump(a.String())
		}
	}

	out := make([]Count, len(order))
	for i, v := range order {
		out[i] = Count{Value: v, Count: counts[v], Percent: percent(counts[v], responded)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, responded
}

// rankingStats scores rank r as RankingCount-r+1. Ranks beyond RankingCount are ignored.
func rankingStats(q *models.Question, submissions []*models.Submission) ([]RankingEntry, int) {
	rankCount := q.RankingCount
	if rankCount <= 0 {
		rankCount = 3
	}

	entries := make(map[string]*RankingEntry, len(q.Options))
	order := make([]string, 0, len(q.Options))
	entry := func(opt string) *RankingEntry {
		e, ok := entries[opt]
		if !ok {
			e = &RankingEntry{Option: opt, Ranks: make([]int, rankCount)}
			entries[opt] = e
			order = append(order, opt)
		}
		return e
	}
	for _, opt := range q.Options {
		entry(opt)
	}

	responded := 0
	for _, s := range submissions {
		a, ok := s.Responses[q.ID]
		if !ok || a.Kind() != models.AnswerChoices || a.IsEmpty() {
			continue
		}
		responded++

		for i, opt := range a.Choices() {
			rank := i + 1
			if rank > rankCount {
				break
			}
			e := entry(opt)
			e.Score += rankCount - rank + 1
			e.Ranks[rank-1]++
		}
	}

	out := make([]RankingEntry, len(order))
	for i, opt := range order {
		out[i] = *entries[opt]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, responded
}

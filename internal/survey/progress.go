package survey

import "github.com/terra-clan/graduate-survey/internal/models"

// AnsweredCount counts non-empty answers on pages[0..=index]
func AnsweredCount(pages []Page, index int, responses models.Responses) int {
	count := 0
	for i := 0; i <= index && i < len(pages); i++ {
		for _, q := range pages[i].Questions {
			if a, ok := responses[q.ID]; ok && !a.IsEmpty() {
				count++
			}
		}
	}
	return count
}

// Progress returns the completion percentage for the visible pages at index.
// The denominator is every currently visible question in the catalog.
func Progress(pages []Page, index int, responses models.Responses, activeTotal int) float64 {
	if activeTotal <= 0 {
		return 0
	}
	return float64(AnsweredCount(pages, index, responses)) / float64(activeTotal) * 100
}

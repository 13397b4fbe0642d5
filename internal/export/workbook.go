package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/terra-clan/graduate-survey/internal/models"
	"github.com/terra-clan/graduate-survey/internal/stats"
)

// Sheet names
const (
	ResponsesSheet  = "Responses"
	StatisticsSheet = "Statistics"
)

const timeLayout = "2006-01-02 15:04:05"

// ContentType is the MIME type of the produced workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook renders submissions and their statistics as an XLSX file
type Workbook struct {
	file *excelize.File
}

// Build creates a workbook with one row per submission and a statistics sheet.
// Columns follow the catalog's question order.
func Build(catalog *models.Catalog, submissions []*models.Submission, report *stats.Report) (*Workbook, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), ResponsesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeResponses(f, catalog, submissions); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(StatisticsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to add sheet: %w", err)
	}
	if report != nil {
		if err := writeStatistics(f, report); err != nil {
			f.Close()
			return nil, err
		}
	}

	return &Workbook{file: f}, nil
}

// WriteTo streams the XLSX bytes
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	return w.file.WriteTo(out)
}

// Close releases the workbook
func (w *Workbook) Close() error {
	return w.file.Close()
}

func writeResponses(f *excelize.File, catalog *models.Catalog, submissions []*models.Submission) error {
	header := []interface{}{"ID", "Status", "Language", "Submitted At", "Updated At"}
	for _, q := range catalog.Questions {
		header = append(header, q.ID)
	}
	if err := setRow(f, ResponsesSheet, 1, header); err != nil {
		return err
	}

	for i, s := range submissions {
		row := []interface{}{
			s.ID,
			string(s.Status),
			s.Language,
			s.SubmittedAt.Format(timeLayout),
			s.UpdatedAt.Format(timeLayout),
		}
		lang := s.Language
		if lang == "" {
			lang = catalog.Language
		}
		for _, q := range catalog.Questions {
			row = append(row, FormatAnswer(q, s.Responses[q.ID], lang))
		}
		if err := setRow(f, ResponsesSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeStatistics(f *excelize.File, report *stats.Report) error {
	rowNum := 1
	put := func(values ...interface{}) error {
		err := setRow(f, StatisticsSheet, rowNum, values)
		rowNum++
		return err
	}

	if err := put("Language", report.Language); err != nil {
		return err
	}
	if err := put("Total", report.Overview.Total, "Complete", report.Overview.Complete, "Partial", report.Overview.Partial); err != nil {
		return err
	}
	if err := put("Completion Rate (%)", report.Overview.CompletionRate.String()); err != nil {
		return err
	}
	rowNum++

	if err := put("Question", "Title", "Type", "Responded", "Average"); err != nil {
		return err
	}
	for _, section := range report.Sections {
		for _, q := range section.Questions {
			average := ""
			if q.Scale != nil && q.Scale.Average != nil {
				average = q.Scale.Average.String()
			}
			if err := put(q.ID, q.Title, string(q.Type), q.Responded, average); err != nil {
				return err
			}

			for _, o := range q.Options {
				if err := put("", o.Value, "", o.Count, o.Percent.String()+"%"); err != nil {
					return err
				}
			}
			for _, r := range q.Ranking {
				if err := put("", r.Option, "", r.Score, ""); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// FormatAnswer renders an answer for the admin views. Rankings list their
// choices with rank prefixes; everything else uses the answer's own rendering.
func FormatAnswer(q *models.Question, a models.Answer, lang string) string {
	if a.IsEmpty() {
		return ""
	}
	if q.Type != models.QuestionRanking || a.Kind() != models.AnswerChoices {
		return a.String()
	}

	choices := a.Choices()
	parts := make([]string, len(choices))
	for i, c := range choices {
		if lang == "ko" {
			parts[i] = fmt.Sprintf("%d위: %s", i+1, c)
		} else {
			parts[i] = fmt.Sprintf("%d: %s", i+1, c)
		}
	}
	return strings.Join(parts, ", ")
}

// Package export renders candidate rankings as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/terra-clan/ats-engine/internal/models"
)

// ContentType is the MIME type of the generated workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	rankingsSheet = "Rankings"
	criteriaSheet = "Criteria"
)

// Report is the data rendered into a workbook
type Report struct {
	Job         *models.Job
	Criteria    []models.Criterion
	Candidates  []*models.Candidate
	GeneratedAt time.Time
}

// Filename returns a download name for the report
func (r *Report) Filename() string {
	title := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		}
		return -1
	}, r.Job.Title)
	if title == "" {
		title = "job"
	}
	return fmt.Sprintf("%s-rankings-%s.xlsx", strings.ToLower(title), r.GeneratedAt.Format("20060102"))
}

// WriteExcel writes the rankings workbook to w. Candidates are expected in
// rank order.
func WriteExcel(w io.Writer, report *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rankingsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(criteriaSheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	if err := writeRankings(f, report, headerStyle); err != nil {
		return fmt.Errorf("failed to create rankings sheet: %w", err)
	}
	if err := writeCriteria(f, report, headerStyle); err != nil {
		return fmt.Errorf("failed to create criteria sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRankings(f *excelize.File, report *Report, headerStyle int) error {
	headers := []any{"Rank", "Name", "Email", "Phone", "Overall Score"}
	for _, c := range report.Criteria {
		headers = append(headers, c.Name)
	}
	headers = append(headers, "Summary", "Highlights")

	if err := f.SetSheetRow(rankingsSheet, "A1", &headers); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(rankingsSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for i, c := range report.Candidates {
		row := []any{i + 1, c.Name, c.Email, c.Phone, c.Score}
		for _, cr := range report.Criteria {
			row = append(row, c.Scores[cr.Name])
		}
		row = append(row, c.Summary, strings.Join(c.Highlights, "\n"))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(rankingsSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(rankingsSheet, "B", "C", 28); err != nil {
		return err
	}
	summaryCol, _ := excelize.ColumnNumberToName(len(headers) - 1)
	if err := f.SetColWidth(rankingsSheet, summaryCol, lastCol, 60); err != nil {
		return err
	}

	return f.SetPanes(rankingsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeCriteria(f *excelize.File, report *Report, headerStyle int) error {
	if err := f.SetSheetRow(criteriaSheet, "A1", &[]any{"Criterion", "Weight"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(criteriaSheet, "A1", "B1", headerStyle); err != nil {
		return err
	}

	total := 0
	for i, c := range report.Criteria {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(criteriaSheet, cell, &[]any{c.Name, c.Weight}); err != nil {
			return err
		}
		total += c.Weight
	}

	footer := len(report.Criteria) + 3
	if err := f.SetSheetRow(criteriaSheet, fmt.Sprintf("A%d", footer), &[]any{"Total", total}); err != nil {
		return err
	}
	if err := f.SetSheetRow(criteriaSheet, fmt.Sprintf("A%d", footer+1), &[]any{"Job", report.Job.Title}); err != nil {
		return err
	}
	if err := f.SetSheetRow(criteriaSheet, fmt.Sprintf("A%d", footer+2), &[]any{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05")}); err != nil {
		return err
	}

	return f.SetColWidth(criteriaSheet, "A", "A", 30)
}

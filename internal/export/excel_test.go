package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/terra-clan/ats-engine/internal/models"
)

func sampleReport() *Report {
	return &Report{
		Job: &models.Job{ID: "j1", Title: "Senior Go Engineer!"},
		Criteria: []models.Criterion{
			{Name: "Go", Weight: 60},
			{Name: "SQL", Weight: 40},
		},
		Candidates: []*models.Candidate{
			{Name: "Ada", Email: "ada@x.io", Score: 9.1, Scores: map[string]float64{"Go": 10, "SQL": 8},
				Summary: "Great", Highlights: []string{"one", "two"}},
			{Name: "Bob", Email: "bob@x.io", Score: 4, Scores: map[string]float64{"Go": 4}},
		},
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWriteExcel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Rankings", "Criteria"}, f.GetSheetList())

	rows, err := f.GetRows("Rankings")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Rank", "Name", "Email", "Phone", "Overall Score", "Go", "SQL", "Summary", "Highlights"}, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Ada", rows[1][1])
	assert.Equal(t, "9.1", rows[1][4])
	assert.Equal(t, "10", rows[1][5])
	assert.Equal(t, "one\ntwo", rows[1][8])
	assert.Equal(t, "Bob", rows[2][1])
	assert.Equal(t, "0", rows[2][6], "missing criterion score is exported as 0")

	crit, err := f.GetRows("Criteria")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "60"}, crit[1])
	assert.Equal(t, []string{"Total", "100"}, crit[4])
}

func TestReportFilename(t *testing.T) {
	assert.Equal(t, "senior-go-engineer-rankings-20260301.xlsx", sampleReport().Filename())

	r := sampleReport()
	r.Job.Title = "???"
	assert.Equal(t, "job-rankings-20260301.xlsx", r.Filename())
}

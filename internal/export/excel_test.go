package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestResultsWorkbook(t *testing.T) {
	report := Report{JobID: "j1", JobRole: "Backend Engineer", Experience: "3 years", GeneratedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	results := []resume.Result{
		{
			CandidateName:  "Ada Lovelace",
			FileName:       "ada.pdf",
			Classification: resume.Classification{Category: kernel.CategoryTech, Level: kernel.LevelSenior},
			FitScore:       91,
			MatchingSkills: []string{"Go", "SQL"},
			Recommendation: resume.RecommendationStrongFit,
		},
		{
			CandidateName:  "Alan Turing",
			FileName:       "alan.docx",
			Classification: resume.Classification{Category: kernel.CategoryTech, Level: kernel.LevelMid},
			FitScore:       55,
			Recommendation: resume.RecommendationModerateFit,
		},
	}
	summary := resume.ClassificationSummary{}
	summary.Add(kernel.CategoryTech, kernel.LevelSenior, 1)
	summary.Add(kernel.CategoryTech, kernel.LevelMid, 1)

	data, err := ResultsWorkbook(report, results, summary)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Ranked Candidates"}, f.GetSheetList())

	rows, err := f.GetRows("Ranked Candidates")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, []string{"1", "Ada Lovelace", "ada.pdf", "tech", "senior", "91"}, rows[1][:6])
	assert.Equal(t, "Go, SQL", rows[1][8])
	assert.Equal(t, "Alan Turing", rows[2][1])

	role, err := f.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", role)
}

func TestResultsWorkbookEmpty(t *testing.T) {
	data, err := ResultsWorkbook(Report{JobID: "j1", GeneratedAt: time.Now()}, nil, resume.ClassificationSummary{})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestFileName(t *testing.T) {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Backend_Engineer_results_20260301.xlsx", FileName(Report{JobRole: "Backend Engineer", GeneratedAt: at}))
	assert.Equal(t, "j9_results_20260301.xlsx", FileName(Report{JobID: "j9", GeneratedAt: at}))
}

// Package export renders screening results as spreadsheets.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet    = "Summary"
	candidatesSheet = "Ranked Candidates"
)

// Report describes the job the results belong to
type Report struct {
	JobID       kernel.JobID
	JobRole     string
	Experience  string
	GeneratedAt time.Time
}

// ResultsWorkbook builds an .xlsx with a Summary sheet and a Ranked
// Candidates sheet. Results are expected in ranking order.
func ResultsWorkbook(report Report, results []resume.Result, summary resume.ClassificationSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(candidatesSheet); err != nil {
		return nil, err
	}

	if err := createSummarySheet(f, report, results, summary); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := createRankedCandidatesSheet(f, results); err != nil {
		return nil, fmt.Errorf("failed to create ranked candidates sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName is the download name for a job's export
func FileName(report Report) string {
	role := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, report.JobRole)
	if role == "" {
		role = report.JobID.String()
	}
	return fmt.Sprintf("%s_results_%s.xlsx", role, report.GeneratedAt.Format("20060102"))
}

func createSummarySheet(f *excelize.File, report Report, results []resume.Result, summary resume.ClassificationSummary) error {
	sheet := summarySheet
	_ = f.SetColWidth(sheet, "A", "A", 28)
	_ = f.SetColWidth(sheet, "B", "D", 16)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 1
	set := func(col string, value any) {
		_ = f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), value)
	}
	heading := func(title string) {
		set("A", title)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), headerStyle)
		_ = f.MergeCell(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row))
		row++
	}
	label := func(name string, value any) {
		set("A", name)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		set("B", value)
		row++
	}

	heading("Resume Screening Report")
	row++
	label("Job Role:", report.JobRole)
	label("Required Experience:", report.Experience)
	label("Generated:", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	label("Candidates Scored:", len(results))
	row++

	heading("Recommendations")
	counts := map[resume.Recommendation]int{}
	total := 0
	for _, r := range results {
		counts[r.Recommendation]++
		total += r.FitScore
	}
	for _, rec := range []resume.Recommendation{
		resume.RecommendationStrongFit, resume.RecommendationGoodFit, resume.RecommendationModerateFit,
		resume.RecommendationWeakFit, resume.RecommendationManualReview,
	} {
		label(string(rec), counts[rec])
	}
	if len(results) > 0 {
		label("Average Fit Score:", fmt.Sprintf("%.2f", float64(total)/float64(len(results))))
	}
	row++

	heading("Classification")
	set("A", "Category")
	for i, level := range kernel.Levels {
		col, _ := excelize.ColumnNumberToName(i + 2)
		set(col, string(level))
	}
	_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), labelStyle)
	row++
	for _, category := range kernel.Categories {
		set("A", string(category))
		for i, level := range kernel.Levels {
			col, _ := excelize.ColumnNumberToName(i + 2)
			set(col, summary[category][level])
		}
		row++
	}

	return nil
}

func createRankedCandidatesSheet(f *excelize.File, results []resume.Result) error {
	sheet := candidatesSheet
	headers := []string{"Rank", "Candidate", "File", "Category", "Level", "Fit Score", "Experience", "Recommendation", "Matching Skills", "Missing Skills"}
	widths := []float64{8, 25, 25, 12, 10, 10, 12, 18, 40, 40}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return err
	}

	fills := map[resume.Recommendation]string{
		resume.RecommendationStrongFit:    "C6EFCE",
		resume.RecommendationGoodFit:      "FFEB9C",
		resume.RecommendationModerateFit:  "FFC7CE",
		resume.RecommendationWeakFit:      "FF9999",
		resume.RecommendationManualReview: "D9D9D9",
	}
	rowStyles := map[resume.Recommendation]int{}
	for rec, color := range fills {
		style, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: border,
		})
		if err != nil {
			return err
		}
		rowStyles[rec] = style
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	for i, header := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, widths[i])
		cell := col + "1"
		_ = f.SetCellValue(sheet, cell, header)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, r := range results {
		row := i + 2
		values := []any{
			i + 1,
			string(r.CandidateName),
			r.FileName,
			string(r.Classification.Category),
			string(r.Classification.Level),
			r.FitScore,
			r.ExperienceScore,
			string(r.Recommendation),
			strings.Join(r.MatchingSkills, ", "),
			strings.Join(r.MissingSkills, ", "),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		if style, ok := rowStyles[r.Recommendation]; ok {
			_ = f.SetCellStyle(sheet, cell, fmt.Sprintf("%s%d", lastCol, row), style)
		}
	}

	if len(results) > 0 {
		_ = f.AutoFilter(sheet, fmt.Sprintf("A1:%s%d", lastCol, len(results)+1), []excelize.AutoFilterOptions{})
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

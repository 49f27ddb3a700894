package resume

import (
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
)

const (
	DefaultResultLimit = 100
	MaxResultLimit     = 1000
)

// UploadedFile is one file from a multipart upload
type UploadedFile struct {
	Name string
	Data []byte
}

// UploadResponse - returned with 202 Accepted
type UploadResponse struct {
	Message        string       `json:"message"`
	JobID          kernel.JobID `json:"job_id"`
	FilesProcessed int          `json:"files_processed"`
	TotalFiles     int          `json:"total_files"`
	Batches        int          `json:"batches"`
	Skipped        []string     `json:"skipped"`
}

// ResultFilter narrows and pages GetResults
type ResultFilter struct {
	MinScore *float64
	Category *kernel.CandidateCategory
	Level    *kernel.ExperienceLevel
	Limit    int
	Offset   int
}

// Normalize applies the default limit and clamps paging values
func (f ResultFilter) Normalize() ResultFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultResultLimit
	}
	if f.Limit > MaxResultLimit {
		f.Limit = MaxResultLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ClassificationSummary counts results per category and level
type ClassificationSummary map[kernel.CandidateCategory]map[kernel.ExperienceLevel]int

func (s ClassificationSummary) Add(c kernel.CandidateCategory, l kernel.ExperienceLevel, n int) {
	if s[c] == nil {
		s[c] = map[kernel.ExperienceLevel]int{}
	}
	s[c][l] += n
}

// ResultsResponse - DTO for GET /api/jobs/:id/results
type ResultsResponse struct {
	JobID                 kernel.JobID          `json:"job_id"`
	TotalResults          int                   `json:"total_results"`
	Offset                int                   `json:"offset"`
	Limit                 int                   `json:"limit"`
	ClassificationSummary ClassificationSummary `json:"classification_summary"`
	Results               []Result              `json:"results"`
}

// RankedResult pairs a result with its semantic similarity to the job
type RankedResult struct {
	Result
	Similarity float64 `json:"similarity"`
}

type SemanticResultsResponse struct {
	JobID   kernel.JobID   `json:"job_id"`
	Results []RankedResult `json:"results"`
}

// BatchOutcome summarises one processed batch
type BatchOutcome struct {
	Processed int `json:"processed"`
	Fallbacks int `json:"fallbacks"`
	Skipped   int `json:"skipped"`
}

// ExportFile is a rendered spreadsheet ready for download
type ExportFile struct {
	FileName string
	Data     []byte
}

// QueueStats reports the batch queue depth
type QueueStats struct {
	Ready   int64 `json:"ready"`
	Delayed int64 `json:"delayed"`
}

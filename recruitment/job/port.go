package job

import (
	"context"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
)

type Repository interface {
	// Create creates a new job
	Create(ctx context.Context, job *Job) error

	// Update persists role, experience, description and status; it never
	// touches the analysis columns
	Update(ctx context.Context, job *Job) error

	// GetByID retrieves a job by ID
	GetByID(ctx context.Context, id kernel.JobID) (*Job, error)

	// Delete removes a job; dependent rows go with it
	Delete(ctx context.Context, id kernel.JobID) error

	// List retrieves jobs newest first, optionally filtered by status
	List(ctx context.Context, status *JobStatus, pagination kernel.PaginationOptions) (*kernel.Paginated[Job], error)

	// SaveAnalysis stores the analysis and the job embedding
	SaveAnalysis(ctx context.Context, id kernel.JobID, analysis *Analysis, embedding []float32) error

	// ResetAnalysis clears the analysis and the job embedding
	ResetAnalysis(ctx context.Context, id kernel.JobID) error

	// IncrementTotalResumes adds n to total_resumes
	IncrementTotalResumes(ctx context.Context, id kernel.JobID, n int) error

	// IncrementProcessedResumes adds n to processed_resumes
	IncrementProcessedResumes(ctx context.Context, id kernel.JobID, n int) error

	// CountByStatus counts jobs in a status
	CountByStatus(ctx context.Context, status JobStatus) (int, error)
}

// Analyzer turns a job posting into a structured Analysis
type Analyzer interface {
	AnalyzeJob(ctx context.Context, j *Job) (*Analysis, error)
}

package resume

import (
	"context"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
)

type Repository interface {
	// Create stores a result and its embedding. Re-delivered results with
	// an existing id are ignored; the bool reports whether a row was written.
	Create(ctx context.Context, result *Result, embedding []float32) (bool, error)

	// GetByID retrieves a result by ID
	GetByID(ctx context.Context, id kernel.ResumeID) (*Result, error)

	// ListByJob returns filtered results ordered by fit_score desc and the
	// total count matching the filter before paging
	ListByJob(ctx context.Context, jobID kernel.JobID, filter ResultFilter) ([]Result, int, error)

	// Summary counts every result of the job per category and level
	Summary(ctx context.Context, jobID kernel.JobID) (ClassificationSummary, error)

	// SemanticByJob ranks results by cosine distance to the job embedding
	SemanticByJob(ctx context.Context, jobID kernel.JobID, limit int) ([]RankedResult, error)
}

// Queue defines the interface for batch queue operations
type Queue interface {
	// Enqueue adds a batch to the queue
	Enqueue(ctx context.Context, batch *Batch) error

	// Dequeue gets a batch from the queue (blocking with timeout); nil on timeout
	Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error)

	// EnqueueDelayed schedules a batch for later processing (for retries)
	EnqueueDelayed(ctx context.Context, batch *Batch, delay time.Duration) error

	// MoveDelayedToReady moves delayed batches that are due to the main queue
	MoveDelayedToReady(ctx context.Context) (int, error)

	// Size returns ready and delayed batch counts
	Size(ctx context.Context) (ready int64, delayed int64, err error)
}

// TextExtractor turns an uploaded file into plain text
type TextExtractor interface {
	ExtractText(ctx context.Context, filename string, data []byte) (string, error)
}

// Screener runs the per-resume model calls
type Screener interface {
	ExtractName(ctx context.Context, text, filename string) kernel.CandidateName
	Classify(ctx context.Context, text string) Classification
	Analyze(ctx context.Context, text string, jobAnalysis any, jobDescription string, cls Classification) (*Analysis, map[string]any, error)
}

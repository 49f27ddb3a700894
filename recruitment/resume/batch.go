package resume

import (
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
)

// BatchItem is one parsed resume waiting for screening
type BatchItem struct {
	ResumeID kernel.ResumeID `json:"resume_id"`
	FileName string          `json:"filename"`
	FilePath string          `json:"file_path"`
	Text     string          `json:"text"`
}

// Batch is the unit pushed through the processing queue
type Batch struct {
	ID           kernel.BatchID `json:"id"`
	JobID        kernel.JobID   `json:"job_id"`
	Items        []BatchItem    `json:"items"`
	AttemptCount int            `json:"attempt_count"`
	MaxAttempts  int            `json:"max_attempts"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	NextRetryAt  *time.Time     `json:"next_retry_at,omitempty"`
}

// RetryDelay is 2^attempt minutes
func (b *Batch) RetryDelay() time.Duration {
	return time.Duration(1<<uint(b.AttemptCount)) * time.Minute
}

// CanRetry reports whether another attempt is allowed after a failure
func (b *Batch) CanRetry() bool {
	return b.AttemptCount < b.MaxAttempts
}

// SplitBatches cuts items into batches of at most size
func SplitBatches(jobID kernel.JobID, items []BatchItem, size, maxAttempts int) []*Batch {
	if size < 1 {
		size = 1
	}
	var batches []*Batch
	now := time.Now()
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, &Batch{
			ID:          kernel.NewBatchID(kernel.NewID()),
			JobID:       jobID,
			Items:       items[start:end],
			MaxAttempts: maxAttempts,
			CreatedAt:   now,
		})
	}
	return batches
}

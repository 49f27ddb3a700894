// Package resumetest provides in-memory resume adapters for tests.
package resumetest

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume"
)

// MemRepository is an in-memory resume.Repository
type MemRepository struct {
	mu         sync.Mutex
	results    map[kernel.ResumeID]resume.Result
	embeddings map[kernel.ResumeID][]float32
	jobVectors map[kernel.JobID][]float32
	FailCreate error
}

var _ resume.Repository = (*MemRepository)(nil)

func NewMemRepository() *MemRepository {
	return &MemRepository{
		results:    map[kernel.ResumeID]resume.Result{},
		embeddings: map[kernel.ResumeID][]float32{},
		jobVectors: map[kernel.JobID][]float32{},
	}
}

// SetJobEmbedding sets the vector SemanticByJob ranks against
func (r *MemRepository) SetJobEmbedding(id kernel.JobID, vec []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobVectors[id] = vec
}

func (r *MemRepository) Create(ctx context.Context, result *resume.Result, embedding []float32) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate != nil {
		return false, r.FailCreate
	}
	if _, ok := r.results[result.ID]; ok {
		return false, nil
	}
	r.results[result.ID] = *result
	if embedding != nil {
		r.embeddings[result.ID] = embedding
	}
	return true, nil
}

func (r *MemRepository) GetByID(_ context.Context, id kernel.ResumeID) (*resume.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[id]
	if !ok {
		return nil, resume.ErrResultNotFound().WithDetail("resume_id", id)
	}
	return &res, nil
}

func (r *MemRepository) ListByJob(_ context.Context, jobID kernel.JobID, filter resume.ResultFilter) ([]resume.Result, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []resume.Result
	for _, res := range r.results {
		if res.JobID != jobID {
			continue
		}
		if filter.MinScore != nil && float64(res.FitScore) < *filter.MinScore {
			continue
		}
		if filter.Category != nil && res.Classification.Category != *filter.Category {
			continue
		}
		if filter.Level != nil && res.Classification.Level != *filter.Level {
			continue
		}
		matched = append(matched, res)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].FitScore != matched[j].FitScore {
			return matched[i].FitScore > matched[j].FitScore
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return append([]resume.Result{}, matched[start:end]...), total, nil
}

func (r *MemRepository) Summary(_ context.Context, jobID kernel.JobID) (resume.ClassificationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary := resume.ClassificationSummary{}
	for _, res := range r.results {
		if res.JobID == jobID {
			summary.Add(res.Classification.Category, res.Classification.Level, 1)
		}
	}
	return summary, nil
}

func (r *MemRepository) SemanticByJob(_ context.Context, jobID kernel.JobID, limit int) ([]resume.RankedResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.jobVectors[jobID]
	if !ok {
		return nil, resume.ErrNoEmbedding().WithDetail("job_id", jobID)
	}

	var ranked []resume.RankedResult
	for id, res := range r.results {
		vec, ok := r.embeddings[id]
		if res.JobID != jobID || !ok {
			continue
		}
		ranked = append(ranked, resume.RankedResult{Result: res, Similarity: cosine(target, vec)})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Similarity > ranked[j].Similarity })
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (r *MemRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range min(len(a), len(b)) {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// MemQueue is an in-memory resume.Queue
type MemQueue struct {
	mu          sync.Mutex
	ready       [][]byte
	delayed     []*resume.Batch
	Delays      []time.Duration
	FailEnqueue error
}

var _ resume.Queue = (*MemQueue)(nil)

func NewMemQueue() *MemQueue { return &MemQueue{} }

func (q *MemQueue) Enqueue(_ context.Context, batch *resume.Batch) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.FailEnqueue != nil {
		return q.FailEnqueue
	}
	data, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	q.ready = append(q.ready, data)
	return nil
}

// Dequeue waits briefly instead of blocking for the full timeout
func (q *MemQueue) Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error) {
	q.mu.Lock()
	if len(q.ready) > 0 {
		data := q.ready[0]
		q.ready = q.ready[1:]
		q.mu.Unlock()
		return data, nil
	}
	q.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-time.After(min(timeout, 5*time.Millisecond)):
	}
	return nil, nil
}

func (q *MemQueue) EnqueueDelayed(ctx context.Context, batch *resume.Batch, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	copied := *batch
	q.delayed = append(q.delayed, &copied)
	q.Delays = append(q.Delays, delay)
	return nil
}

// MoveDelayedToReady promotes every delayed batch regardless of its due time
func (q *MemQueue) MoveDelayedToReady(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.delayed)
	for _, b := range q.delayed {
		data, err := json.Marshal(b)
		if err != nil {
			return 0, err
		}
		q.ready = append(q.ready, data)
	}
	q.delayed = nil
	return n, nil
}

func (q *MemQueue) Size(_ context.Context) (int64, int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.ready)), int64(len(q.delayed)), nil
}

// Batches decodes the ready batches without removing them
func (q *MemQueue) Batches() []resume.Batch {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]resume.Batch, 0, len(q.ready))
	for _, data := range q.ready {
		var b resume.Batch
		if err := json.Unmarshal(data, &b); err == nil {
			out = append(out, b)
		}
	}
	return out
}

// Package jobtest provides an in-memory job repository for tests.
package jobtest

import (
	"context"
	"sort"
	"sync"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
)

// MemRepository is an in-memory job.Repository for tests
type MemRepository struct {
	mu         sync.Mutex
	jobs       map[kernel.JobID]job.Job
	embeddings map[kernel.JobID][]float32

	// BeforeUpdate, when set, runs at the start of every Update
	BeforeUpdate func(id kernel.JobID)
}

var _ job.Repository = (*MemRepository)(nil)

func NewMemRepository() *MemRepository {
	return &MemRepository{jobs: map[kernel.JobID]job.Job{}, embeddings: map[kernel.JobID][]float32{}}
}

func (r *MemRepository) Create(_ context.Context, j *job.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = *j
	return nil
}

func (r *MemRepository) Update(_ context.Context, j *job.Job) error {
	if r.BeforeUpdate != nil {
		r.BeforeUpdate(j.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.jobs[j.ID]
	if !ok {
		return job.ErrJobNotFound()
	}
	stored.Role = j.Role
	stored.RequiredExperience = j.RequiredExperience
	stored.Description = j.Description
	stored.Status = j.Status
	stored.UpdatedAt = j.UpdatedAt
	r.jobs[j.ID] = stored
	return nil
}

func (r *MemRepository) GetByID(_ context.Context, id kernel.JobID) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, job.ErrJobNotFound().WithDetail("job_id", id)
	}
	return &j, nil
}

func (r *MemRepository) Delete(_ context.Context, id kernel.JobID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return job.ErrJobNotFound()
	}
	delete(r.jobs, id)
	return nil
}

func (r *MemRepository) List(_ context.Context, status *job.JobStatus, p kernel.PaginationOptions) (*kernel.Paginated[job.Job], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p = p.Normalize()
	var all []job.Job
	for _, j := range r.jobs {
		if status == nil || j.Status == *status {
			all = append(all, j)
		}
	}
	sort.Slice(all, func(a, b int) bool { return all[a].CreatedAt.After(all[b].CreatedAt) })
	total := len(all)
	start := min(p.Offset(), total)
	end := min(start+p.PageSize, total)
	return kernel.NewPaginated(all[start:end], p, total), nil
}

func (r *MemRepository) SaveAnalysis(_ context.Context, id kernel.JobID, a *job.Analysis, embedding []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return job.ErrJobNotFound()
	}
	j.SetAnalysis(a)
	r.jobs[id] = j
	r.embeddings[id] = embedding
	return nil
}

func (r *MemRepository) ResetAnalysis(_ context.Context, id kernel.JobID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return job.ErrJobNotFound()
	}
	j.ResetAnalysis()
	r.jobs[id] = j
	delete(r.embeddings, id)
	return nil
}

func (r *MemRepository) IncrementTotalResumes(_ context.Context, id kernel.JobID, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j := r.jobs[id]
	j.TotalResumes += n
	r.jobs[id] = j
	return nil
}

func (r *MemRepository) IncrementProcessedResumes(_ context.Context, id kernel.JobID, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j := r.jobs[id]
	j.ProcessedResumes += n
	r.jobs[id] = j
	return nil
}

func (r *MemRepository) CountByStatus(_ context.Context, status job.JobStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, j := range r.jobs {
		if j.Status == status {
			n++
		}
	}
	return n, nil
}

// Embedding returns the vector stored by SaveAnalysis
func (r *MemRepository) Embedding(id kernel.JobID) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.embeddings[id]
}

func (r *MemRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

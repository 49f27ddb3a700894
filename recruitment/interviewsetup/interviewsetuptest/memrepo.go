// Package interviewsetuptest provides an in-memory setup repository for tests.
package interviewsetuptest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interviewsetup"
)

type MemRepository struct {
	mu     sync.Mutex
	setups map[kernel.SetupID]interviewsetup.Setup
	seq    int
	order  map[kernel.SetupID]int
}

var _ interviewsetup.Repository = (*MemRepository)(nil)

func NewMemRepository() *MemRepository {
	return &MemRepository{
		setups: map[kernel.SetupID]interviewsetup.Setup{},
		order:  map[kernel.SetupID]int{},
	}
}

func (r *MemRepository) Create(_ context.Context, s *interviewsetup.Setup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insert(s)
	return nil
}

func (r *MemRepository) insert(s *interviewsetup.Setup) {
	r.seq++
	r.order[s.ID] = r.seq
	r.setups[s.ID] = *s
}

func (r *MemRepository) Update(_ context.Context, s *interviewsetup.Setup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.setups[s.ID]; !ok {
		return interviewsetup.ErrSetupNotFound()
	}
	r.setups[s.ID] = *s
	return nil
}

func (r *MemRepository) GetByID(_ context.Context, jobID kernel.JobID, id kernel.SetupID) (*interviewsetup.Setup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.setups[id]
	if !ok || s.JobID != jobID {
		return nil, interviewsetup.ErrSetupNotFound().WithDetail("setup_id", id)
	}
	return &s, nil
}

func (r *MemRepository) FindActive(_ context.Context, jobID kernel.JobID, roleType kernel.CandidateCategory, level kernel.ExperienceLevel) (*interviewsetup.Setup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.activeLocked(jobID) {
		if s.RoleType == roleType && s.Level == level {
			return &s, nil
		}
	}
	return nil, interviewsetup.ErrSetupNotFound().
		WithDetail("role_type", roleType).
		WithDetail("level", level)
}

func (r *MemRepository) ListActive(_ context.Context, jobID kernel.JobID) ([]interviewsetup.Setup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeLocked(jobID), nil
}

func (r *MemRepository) ReplaceAll(_ context.Context, jobID kernel.JobID, setups []*interviewsetup.Setup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, s := range r.setups {
		if s.JobID == jobID && s.IsActive {
			s.IsActive = false
			s.UpdatedAt = now
			r.setups[id] = s
		}
	}
	for _, s := range setups {
		r.insert(s)
	}
	return nil
}

// Len counts stored setups including inactive ones
func (r *MemRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.setups)
}

func (r *MemRepository) activeLocked(jobID kernel.JobID) []interviewsetup.Setup {
	var out []interviewsetup.Setup
	for _, s := range r.setups {
		if s.JobID == jobID && s.IsActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.order[out[i].ID] < r.order[out[j].ID] })
	return out
}

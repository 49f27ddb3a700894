package interviewsetup

import (
	"context"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
)

type Repository interface {
	// Create inserts a setup
	Create(ctx context.Context, s *Setup) error

	// Update persists every mutable column of a setup
	Update(ctx context.Context, s *Setup) error

	// GetByID retrieves a setup of a job, active or not
	GetByID(ctx context.Context, jobID kernel.JobID, id kernel.SetupID) (*Setup, error)

	// FindActive retrieves the active setup for a role type and level
	FindActive(ctx context.Context, jobID kernel.JobID, roleType kernel.CandidateCategory, level kernel.ExperienceLevel) (*Setup, error)

	// ListActive retrieves the active setups of a job
	ListActive(ctx context.Context, jobID kernel.JobID) ([]Setup, error)

	// ReplaceAll deactivates every setup of the job and inserts setups atomically
	ReplaceAll(ctx context.Context, jobID kernel.JobID, setups []*Setup) error
}

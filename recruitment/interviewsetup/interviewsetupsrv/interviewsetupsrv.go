package interviewsetupsrv

import (
	"context"
	"fmt"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/logx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interviewsetup"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
)

// SetupService manages the interview configuration of jobs
type SetupService struct {
	repo    interviewsetup.Repository
	jobRepo job.Repository
}

func NewSetupService(repo interviewsetup.Repository, jobRepo job.Repository) *SetupService {
	return &SetupService{repo: repo, jobRepo: jobRepo}
}

// ListSetups returns the active setups of a job
func (s *SetupService) ListSetups(ctx context.Context, jobID kernel.JobID) (*interviewsetup.SetupListResponse, error) {
	if err := s.requireJob(ctx, jobID); err != nil {
		return nil, err
	}
	setups, err := s.repo.ListActive(ctx, jobID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list interview setups", errx.TypeInternal)
	}
	return &interviewsetup.SetupListResponse{JobID: jobID, Setups: nonNil(setups)}, nil
}

// CreateSetup upserts the active setup for the input's role type and level
func (s *SetupService) CreateSetup(ctx context.Context, jobID kernel.JobID, in interviewsetup.SetupInput) (*interviewsetup.Setup, error) {
	if err := s.requireJob(ctx, jobID); err != nil {
		return nil, err
	}
	candidate := interviewsetup.NewSetup(jobID, in)
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindActive(ctx, jobID, candidate.RoleType, candidate.Level)
	if err != nil && !errx.IsCode(err, interviewsetup.CodeSetupNotFound) {
		return nil, errx.Wrap(err, "failed to look up interview setup", errx.TypeInternal)
	}

	if existing != nil {
		existing.Apply(in)
		if err := existing.Validate(); err != nil {
			return nil, err
		}
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, errx.Wrap(err, "failed to update interview setup", errx.TypeInternal)
		}
		return existing, nil
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, errx.Wrap(err, "failed to create interview setup", errx.TypeInternal)
	}
	logx.Infof("Created interview setup %s for job %s (%s/%s)", candidate.ID, jobID, candidate.RoleType, candidate.Level)
	return candidate, nil
}

// ReplaceSetups deactivates every setup of the job and stores configs in their place
func (s *SetupService) ReplaceSetups(ctx context.Context, jobID kernel.JobID, configs []interviewsetup.SetupInput) (*interviewsetup.SetupListResponse, error) {
	if err := s.requireJob(ctx, jobID); err != nil {
		return nil, err
	}
	setups, err := buildAll(jobID, configs)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceAll(ctx, jobID, setups); err != nil {
		return nil, errx.Wrap(err, "failed to replace interview setups", errx.TypeInternal)
	}

	out := make([]interviewsetup.Setup, 0, len(setups))
	for _, st := range setups {
		out = append(out, *st)
	}
	return &interviewsetup.SetupListResponse{
		JobID:   jobID,
		Setups:  out,
		Message: fmt.Sprintf("Created %d interview setup configurations", len(out)),
	}, nil
}

// UpdateSetup merges a patch and re-validates the result
func (s *SetupService) UpdateSetup(ctx context.Context, jobID kernel.JobID, id kernel.SetupID, in interviewsetup.SetupInput) (*interviewsetup.Setup, error) {
	if err := s.requireJob(ctx, jobID); err != nil {
		return nil, err
	}
	current, err := s.repo.GetByID(ctx, jobID, id)
	if err != nil {
		return nil, err
	}
	current.Apply(in)
	if err := current.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, current); err != nil {
		return nil, errx.Wrap(err, "failed to update interview setup", errx.TypeInternal)
	}
	return current, nil
}

// DeleteSetup deactivates a setup; history stays in place
func (s *SetupService) DeleteSetup(ctx context.Context, jobID kernel.JobID, id kernel.SetupID) error {
	if err := s.requireJob(ctx, jobID); err != nil {
		return err
	}
	current, err := s.repo.GetByID(ctx, jobID, id)
	if err != nil {
		return err
	}
	current.Deactivate()
	if err := s.repo.Update(ctx, current); err != nil {
		return errx.Wrap(err, "failed to delete interview setup", errx.TypeInternal)
	}
	return nil
}

// BulkSetups validates every configuration up front, then either replaces
// all setups or upserts each configuration
func (s *SetupService) BulkSetups(ctx context.Context, jobID kernel.JobID, req interviewsetup.BulkSetupRequest) (*interviewsetup.BulkSetupResponse, error) {
	if err := s.requireJob(ctx, jobID); err != nil {
		return nil, err
	}
	if len(req.Configurations) == 0 {
		return nil, interviewsetup.ErrNoConfigurations()
	}
	for i, cfg := range req.Configurations {
		if err := cfg.RequireFields(i); err != nil {
			return nil, err
		}
	}
	built, err := buildAll(jobID, req.Configurations)
	if err != nil {
		return nil, err
	}

	resp := &interviewsetup.BulkSetupResponse{JobID: jobID}

	if req.ReplaceAll {
		if err := s.repo.ReplaceAll(ctx, jobID, built); err != nil {
			return nil, errx.Wrap(err, "failed to replace interview setups", errx.TypeInternal)
		}
		for _, st := range built {
			resp.Setups = append(resp.Setups, *st)
		}
		resp.Created = len(built)
	} else {
		for i, st := range built {
			existing, err := s.repo.FindActive(ctx, jobID, st.RoleType, st.Level)
			if err != nil && !errx.IsCode(err, interviewsetup.CodeSetupNotFound) {
				return nil, errx.Wrap(err, "failed to look up interview setup", errx.TypeInternal)
			}
			if existing != nil {
				existing.Apply(req.Configurations[i])
				if err := existing.Validate(); err != nil {
					return nil, err
				}
				if err := s.repo.Update(ctx, existing); err != nil {
					return nil, errx.Wrap(err, "failed to update interview setup", errx.TypeInternal)
				}
				resp.Setups = append(resp.Setups, *existing)
				resp.Updated++
				continue
			}
			if err := s.repo.Create(ctx, st); err != nil {
				return nil, errx.Wrap(err, "failed to create interview setup", errx.TypeInternal)
			}
			resp.Setups = append(resp.Setups, *st)
			resp.Created++
		}
	}

	resp.Total = len(resp.Setups)
	resp.Message = fmt.Sprintf("Successfully processed %d interview setup configurations", resp.Total)
	return resp, nil
}

// Matrix lays the active setups over every role type and level
func (s *SetupService) Matrix(ctx context.Context, jobID kernel.JobID) (*interviewsetup.MatrixResponse, error) {
	list, err := s.ListSetups(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &interviewsetup.MatrixResponse{
		JobID:               jobID,
		Matrix:              interviewsetup.BuildMatrix(list.Setups),
		Configurations:      list.Setups,
		TotalConfigurations: len(list.Setups),
	}, nil
}

// ActiveSetup returns the setup an interview for this profile should use
func (s *SetupService) ActiveSetup(ctx context.Context, jobID kernel.JobID, roleType kernel.CandidateCategory, level kernel.ExperienceLevel) (*interviewsetup.Setup, error) {
	return s.repo.FindActive(ctx, jobID, roleType, level)
}

// ============================================================================
// Helper Functions
// ============================================================================

func (s *SetupService) requireJob(ctx context.Context, jobID kernel.JobID) error {
	_, err := s.jobRepo.GetByID(ctx, jobID)
	return err
}

func buildAll(jobID kernel.JobID, configs []interviewsetup.SetupInput) ([]*interviewsetup.Setup, error) {
	out := make([]*interviewsetup.Setup, 0, len(configs))
	for i, cfg := range configs {
		st := interviewsetup.NewSetup(jobID, cfg)
		if err := st.Validate(); err != nil {
			if e, ok := err.(*errx.Error); ok {
				return nil, e.WithDetail("configuration", fmt.Sprintf("%d (%s)", i+1, cfg.Label()))
			}
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func nonNil(setups []interviewsetup.Setup) []interviewsetup.Setup {
	if setups == nil {
		return []interviewsetup.Setup{}
	}
	return setups
}

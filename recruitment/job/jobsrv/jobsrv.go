package jobsrv

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/embeddings"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/logx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
)

const analysisTimeout = 5 * time.Minute

// JobService provides business operations for jobs
type JobService struct {
	jobRepo  job.Repository
	analyzer job.Analyzer
	embedder embeddings.Embedder

	// background analyses still running
	wg sync.WaitGroup
}

// NewJobService creates a new instance of the job service
func NewJobService(
	jobRepo job.Repository,
	analyzer job.Analyzer,
	embedder embeddings.Embedder,
) *JobService {
	return &JobService{
		jobRepo:  jobRepo,
		analyzer: analyzer,
		embedder: embedder,
	}
}

// CreateJob stores the posting and starts the analysis in the background
func (s *JobService) CreateJob(ctx context.Context, req job.CreateJobRequest) (*job.CreateJobResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	newJob := &job.Job{
		ID:                 kernel.NewJobID(kernel.NewID()),
		Role:               kernel.JobRole(strings.TrimSpace(req.JobRole)),
		RequiredExperience: strings.TrimSpace(req.RequiredExperience),
		Description:        kernel.JobDescription(req.Description),
		Status:             job.JobStatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.jobRepo.Create(ctx, newJob); err != nil {
		return nil, errx.Wrap(err, "failed to create job", errx.TypeInternal)
	}

	s.analyzeInBackground(newJob.ID)

	return &job.CreateJobResponse{
		JobID:   newJob.ID,
		Status:  "created",
		Message: "Job created and analysis started",
	}, nil
}

// GetJob retrieves a job by ID
func (s *JobService) GetJob(ctx context.Context, jobID kernel.JobID) (*job.JobResponse, error) {
	j, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	resp := job.ToJobResponse(j)
	return &resp, nil
}

// ListJobs retrieves jobs newest first
func (s *JobService) ListJobs(ctx context.Context, req job.ListJobsRequest) (*job.PaginatedJobsResponse, error) {
	jobs, err := s.jobRepo.List(ctx, req.Status, req.Pagination)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list jobs", errx.TypeInternal)
	}

	responses := make([]job.JobResponse, 0, len(jobs.Items))
	for i := range jobs.Items {
		responses = append(responses, job.ToJobResponse(&jobs.Items[i]))
	}

	return &kernel.Paginated[job.JobResponse]{
		Items: responses,
		Page:  jobs.Page,
		Empty: jobs.Empty,
	}, nil
}

// UpdateJob applies a partial update. A changed role or description
// invalidates the analysis, which is then recomputed.
func (s *JobService) UpdateJob(ctx context.Context, jobID kernel.JobID, req job.UpdateJobRequest) (*job.JobResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	j, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	reanalyze := false
	if req.JobRole != nil {
		role := kernel.JobRole(strings.TrimSpace(*req.JobRole))
		reanalyze = reanalyze || role != j.Role
		j.Role = role
	}
	if req.RequiredExperience != nil {
		j.RequiredExperience = strings.TrimSpace(*req.RequiredExperience)
	}
	if req.Description != nil {
		desc := kernel.JobDescription(*req.Description)
		reanalyze = reanalyze || desc != j.Description
		j.Description = desc
	}

	j.UpdatedAt = time.Now()

	if err := s.jobRepo.Update(ctx, j); err != nil {
		return nil, errx.Wrap(err, "failed to update job", errx.TypeInternal)
	}

	if reanalyze {
		if err := s.jobRepo.ResetAnalysis(ctx, j.ID); err != nil {
			return nil, errx.Wrap(err, "failed to reset job analysis", errx.TypeInternal)
		}
		j.ResetAnalysis()
		s.analyzeInBackground(j.ID)
		resp := job.ToJobResponse(j)
		return &resp, nil
	}

	return s.GetJob(ctx, j.ID)
}

// CloseJob stops the job from accepting resumes
func (s *JobService) CloseJob(ctx context.Context, jobID kernel.JobID) (*job.JobResponse, error) {
	return s.transition(ctx, jobID, (*job.Job).Close)
}

// ReopenJob makes a closed job accept resumes again
func (s *JobService) ReopenJob(ctx context.Context, jobID kernel.JobID) (*job.JobResponse, error) {
	return s.transition(ctx, jobID, (*job.Job).Reopen)
}

func (s *JobService) transition(ctx context.Context, jobID kernel.JobID, apply func(*job.Job) error) (*job.JobResponse, error) {
	j, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := apply(j); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Update(ctx, j); err != nil {
		return nil, errx.Wrap(err, "failed to update job status", errx.TypeInternal)
	}
	return s.GetJob(ctx, j.ID)
}

// DeleteJob removes the job and everything attached to it
func (s *JobService) DeleteJob(ctx context.Context, jobID kernel.JobID) error {
	return s.jobRepo.Delete(ctx, jobID)
}

// GetJobStatus reports resume processing progress
func (s *JobService) GetJobStatus(ctx context.Context, jobID kernel.JobID) (*job.JobStatusResponse, error) {
	j, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	progress := j.Progress()
	return &progress, nil
}

// AnalyzeJob runs the analysis synchronously and stores the outcome
func (s *JobService) AnalyzeJob(ctx context.Context, jobID kernel.JobID) (*job.JobResponse, error) {
	j, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	analysis, err := s.analyzer.AnalyzeJob(ctx, j)
	if err != nil {
		return nil, job.ErrAnalysisFailed().WithCause(err).WithDetail("job_id", jobID)
	}

	embedding := s.embed(ctx, j, analysis)
	if err := s.jobRepo.SaveAnalysis(ctx, jobID, analysis, embedding); err != nil {
		return nil, errx.Wrap(err, "failed to save job analysis", errx.TypeInternal)
	}

	j.SetAnalysis(analysis)
	resp := job.ToJobResponse(j)
	return &resp, nil
}

// Wait blocks until background analyses finish
func (s *JobService) Wait() {
	s.wg.Wait()
}

func (s *JobService) analyzeInBackground(jobID kernel.JobID) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
		defer cancel()

		if _, err := s.AnalyzeJob(ctx, jobID); err != nil {
			logx.Errorf("Error analyzing job %s: %v", jobID, err)
			return
		}
		logx.Infof("Job %s analyzed successfully", jobID)
	}()
}

// embed is best effort; semantic ranking is skipped for jobs without a vector
func (s *JobService) embed(ctx context.Context, j *job.Job, analysis *job.Analysis) []float32 {
	if s.embedder == nil {
		return nil
	}
	withAnalysis := *j
	withAnalysis.Analysis = analysis
	vec, err := s.embedder.GenerateEmbedding(ctx, withAnalysis.EmbeddingText())
	if err != nil {
		logx.Warnf("Skipping embedding for job %s: %v", j.ID, err)
		return nil
	}
	return vec
}

package jobsrv

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/llm"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job/jobtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const description = "We are looking for a backend engineer to build and operate Go services at scale."

type stubCompleter struct {
	reply string
	err   error
	calls int
	mu    sync.Mutex
}

func (s *stubCompleter) Complete(_ context.Context, _ llm.Request) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.reply, s.err
}

type stubEmbedder struct{ err error }

func (s stubEmbedder) GenerateEmbedding(context.Context, string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

const analysisReply = "```json\n" + `{
  "required_skills": {"technical": ["Go", "PostgreSQL"], "soft": ["Ownership"], "domain": []},
  "nice_to_have_skills": ["Kubernetes"],
  "key_responsibilities": ["Build services"],
  "required_qualifications": [],
  "experience_requirements": {"years": 4, "type": "backend"},
  "technology_stack": ["Go"],
  "industry_domain": "fintech",
  "job_category": "tech"
}` + "\n```"

func newService(reply string, err error, embedErr error) (*JobService, *jobtest.MemRepository) {
	repo := jobtest.NewMemRepository()
	svc := NewJobService(repo, NewLLMAnalyzer(&stubCompleter{reply: reply, err: err}), stubEmbedder{err: embedErr})
	return svc, repo
}

func TestCreateJobRunsAnalysis(t *testing.T) {
	svc, repo := newService(analysisReply, nil, nil)
	ctx := context.Background()

	resp, err := svc.CreateJob(ctx, job.CreateJobRequest{
		JobRole:            " Backend Engineer ",
		RequiredExperience: "4 years",
		Description:        description,
	})
	require.NoError(t, err)
	assert.Equal(t, "created", resp.Status)
	assert.Equal(t, "Job created and analysis started", resp.Message)

	svc.Wait()

	got, err := svc.GetJob(ctx, resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, kernel.JobRole("Backend Engineer"), got.JobRole)
	assert.Equal(t, job.JobStatusActive, got.Status)
	require.NotNil(t, got.Analysis)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, got.Analysis.RequiredSkills.Technical)
	assert.Equal(t, kernel.LooseString("4"), got.Analysis.ExperienceRequirements.Years)
	assert.Equal(t, "fintech", got.Analysis.IndustryDomain)
	assert.Equal(t, []string{}, got.Analysis.RequiredQualifications)
	assert.Len(t, repo.Embedding(resp.JobID), 3)
}

func TestCreateJobRejectsInvalidInput(t *testing.T) {
	svc, repo := newService(analysisReply, nil, nil)

	_, err := svc.CreateJob(context.Background(), job.CreateJobRequest{JobRole: "x", RequiredExperience: "1", Description: "short"})
	assert.True(t, errx.IsCode(err, job.CodeInvalidJob))
	assert.Zero(t, repo.Len())
}

func TestAnalyzeJobFallbackOnBadJSON(t *testing.T) {
	svc, repo := newService("I cannot answer that", nil, errors.New("embedding down"))
	ctx := context.Background()

	j := &job.Job{ID: "j1", Role: "Accountant", RequiredExperience: "2 years", Description: description, Status: job.JobStatusActive}
	require.NoError(t, repo.Create(ctx, j))

	resp, err := svc.AnalyzeJob(ctx, "j1")
	require.NoError(t, err)
	require.NotNil(t, resp.Analysis)
	assert.True(t, resp.Analysis.Fallback)
	assert.Equal(t, "tech", resp.Analysis.JobCategory)
	assert.Equal(t, kernel.LooseString("2 years"), resp.Analysis.ExperienceRequirements.Years)
	assert.Nil(t, repo.Embedding("j1"))
}

func TestAnalyzeJobTransportError(t *testing.T) {
	svc, repo := newService("", errors.New("timeout"), nil)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &job.Job{ID: "j1", Status: job.JobStatusActive}))

	_, err := svc.AnalyzeJob(ctx, "j1")
	assert.True(t, errx.IsCode(err, job.CodeAnalysisFailed))

	stored, _ := repo.GetByID(ctx, "j1")
	assert.Nil(t, stored.Analysis)
}

func TestUpdateJobResetsAnalysisOnDescriptionChange(t *testing.T) {
	svc, repo := newService(analysisReply, nil, nil)
	ctx := context.Background()

	j := &job.Job{ID: "j1", Role: "Engineer", RequiredExperience: "1 year", Description: description, Status: job.JobStatusActive}
	j.SetAnalysis(job.FallbackAnalysis("1 year"))
	require.NoError(t, repo.Create(ctx, j))

	resp, err := svc.UpdateJob(ctx, "j1", job.UpdateJobRequest{RequiredExperience: ptr("2 years")})
	require.NoError(t, err)
	assert.NotNil(t, resp.Analysis, "experience change keeps the analysis")

	newDesc := description + " Remote friendly."
	resp, err = svc.UpdateJob(ctx, "j1", job.UpdateJobRequest{Description: &newDesc})
	require.NoError(t, err)
	assert.Nil(t, resp.Analysis)

	svc.Wait()
	stored, _ := repo.GetByID(ctx, "j1")
	require.NotNil(t, stored.Analysis)
	assert.False(t, stored.Analysis.Fallback)
}

type gatedAnalyzer struct {
	release chan struct{}
	inner   job.Analyzer
}

func (g gatedAnalyzer) AnalyzeJob(ctx context.Context, j *job.Job) (*job.Analysis, error) {
	<-g.release
	return g.inner.AnalyzeJob(ctx, j)
}

func TestUpdateKeepsAnalysisFinishedMeanwhile(t *testing.T) {
	tests := []struct {
		name   string
		update func(svc *JobService, id kernel.JobID) (*job.JobResponse, error)
	}{
		{
			name: "experience only",
			update: func(svc *JobService, id kernel.JobID) (*job.JobResponse, error) {
				return svc.UpdateJob(context.Background(), id, job.UpdateJobRequest{RequiredExperience: ptr("6 years")})
			},
		},
		{
			name: "close",
			update: func(svc *JobService, id kernel.JobID) (*job.JobResponse, error) {
				return svc.CloseJob(context.Background(), id)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := jobtest.NewMemRepository()
			analyzer := gatedAnalyzer{
				release: make(chan struct{}),
				inner:   NewLLMAnalyzer(&stubCompleter{reply: analysisReply}),
			}
			svc := NewJobService(repo, analyzer, stubEmbedder{})

			created, err := svc.CreateJob(context.Background(), job.CreateJobRequest{
				JobRole:            "Backend Engineer",
				RequiredExperience: "4 years",
				Description:        description,
			})
			require.NoError(t, err)

			// the analysis lands between the service's read and its write
			var once sync.Once
			repo.BeforeUpdate = func(kernel.JobID) {
				once.Do(func() {
					close(analyzer.release)
					svc.Wait()
				})
			}

			resp, err := tt.update(svc, created.JobID)
			require.NoError(t, err)
			assert.NotNil(t, resp.Analysis)

			stored, err := repo.GetByID(context.Background(), created.JobID)
			require.NoError(t, err)
			require.NotNil(t, stored.Analysis)
			assert.True(t, stored.IsAnalyzed())
			assert.Len(t, repo.Embedding(created.JobID), 3)
		})
	}
}

func TestCloseAndReopen(t *testing.T) {
	svc, repo := newService(analysisReply, nil, nil)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &job.Job{ID: "j1", Status: job.JobStatusActive}))

	resp, err := svc.CloseJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, job.JobStatusClosed, resp.Status)

	_, err = svc.CloseJob(ctx, "j1")
	assert.True(t, errx.IsCode(err, job.CodeJobAlreadyClosed))

	resp, err = svc.ReopenJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, job.JobStatusActive, resp.Status)

	_, err = svc.CloseJob(ctx, "missing")
	assert.True(t, errx.IsCode(err, job.CodeJobNotFound))
}

func TestGetJobStatus(t *testing.T) {
	svc, repo := newService(analysisReply, nil, nil)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &job.Job{ID: "j1", Status: job.JobStatusActive}))
	require.NoError(t, repo.IncrementTotalResumes(ctx, "j1", 8))
	require.NoError(t, repo.IncrementProcessedResumes(ctx, "j1", 2))

	status, err := svc.GetJobStatus(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, 6, status.PendingResumes)
	assert.InDelta(t, 25.0, status.CompletionPercentage, 0.001)
}

func ptr(s string) *string { return &s }

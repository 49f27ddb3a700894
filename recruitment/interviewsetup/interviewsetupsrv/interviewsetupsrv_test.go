package interviewsetupsrv

import (
	"context"
	"testing"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interviewsetup"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interviewsetup/interviewsetuptest"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job/jobtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func input(role, level string, screening, domain, behavioral int) interviewsetup.SetupInput {
	return interviewsetup.SetupInput{
		RoleType:                     strp(role),
		Level:                        strp(level),
		ExperienceRange:              strp("2-5 years"),
		ScreeningPercentage:          intp(screening),
		DomainPercentage:             intp(domain),
		BehavioralAttitudePercentage: intp(behavioral),
	}
}

func newService(t *testing.T) (*SetupService, *interviewsetuptest.MemRepository, kernel.JobID) {
	t.Helper()
	jobs := jobtest.NewMemRepository()
	j := &job.Job{
		ID:          kernel.NewJobID(kernel.NewID()),
		Role:        "Data Engineer",
		Description: "Build pipelines",
		Status:      job.JobStatusActive,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, jobs.Create(context.Background(), j))
	repo := interviewsetuptest.NewMemRepository()
	return NewSetupService(repo, jobs), repo, j.ID
}

func TestCreateSetupUpserts(t *testing.T) {
	svc, repo, jobID := newService(t)
	ctx := context.Background()

	first, err := svc.CreateSetup(ctx, jobID, input("tech", "mid", 20, 50, 30))
	require.NoError(t, err)
	assert.Equal(t, 7, first.NumberOfQuestions)

	second, err := svc.CreateSetup(ctx, jobID, input("tech", "mid", 10, 60, 30))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 60, second.DomainPercentage)
	assert.Equal(t, 1, repo.Len())

	_, err = svc.CreateSetup(ctx, jobID, input("tech", "senior", 10, 60, 30))
	require.NoError(t, err)
	list, err := svc.ListSetups(ctx, jobID)
	require.NoError(t, err)
	assert.Len(t, list.Setups, 2)
}

func TestCreateSetupRejects(t *testing.T) {
	svc, _, jobID := newService(t)
	ctx := context.Background()

	_, err := svc.CreateSetup(ctx, jobID, input("tech", "mid", 20, 50, 20))
	assert.True(t, errx.IsCode(err, interviewsetup.CodeInvalidPercentages))

	_, err = svc.CreateSetup(ctx, "missing", input("tech", "mid", 20, 50, 30))
	assert.True(t, errx.IsCode(err, job.CodeJobNotFound))
}

func TestReplaceSetups(t *testing.T) {
	svc, repo, jobID := newService(t)
	ctx := context.Background()

	_, err := svc.CreateSetup(ctx, jobID, input("tech", "mid", 20, 50, 30))
	require.NoError(t, err)

	resp, err := svc.ReplaceSetups(ctx, jobID, []interviewsetup.SetupInput{
		input("non-tech", "entry", 40, 20, 40),
		input("semi-tech", "senior", 30, 40, 30),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Setups, 2)
	assert.Equal(t, "Created 2 interview setup configurations", resp.Message)
	assert.Equal(t, 3, repo.Len())

	list, err := svc.ListSetups(ctx, jobID)
	require.NoError(t, err)
	require.Len(t, list.Setups, 2)
	assert.Equal(t, kernel.CategoryNonTech, list.Setups[0].RoleType)

	_, err = svc.ReplaceSetups(ctx, jobID, []interviewsetup.SetupInput{input("tech", "mid", 50, 50, 50)})
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, interviewsetup.CodeInvalidPercentages))
	list, _ = svc.ListSetups(ctx, jobID)
	assert.Len(t, list.Setups, 2, "invalid replacement leaves setups untouched")
}

func TestUpdateSetupRevalidatesMergedValues(t *testing.T) {
	svc, _, jobID := newService(t)
	ctx := context.Background()

	created, err := svc.CreateSetup(ctx, jobID, input("tech", "mid", 20, 50, 30))
	require.NoError(t, err)

	_, err = svc.UpdateSetup(ctx, jobID, created.ID, interviewsetup.SetupInput{ScreeningPercentage: intp(40)})
	assert.True(t, errx.IsCode(err, interviewsetup.CodeInvalidPercentages))

	updated, err := svc.UpdateSetup(ctx, jobID, created.ID, interviewsetup.SetupInput{
		ScreeningPercentage: intp(40),
		DomainPercentage:    intp(30),
		NumberOfQuestions:   intp(10),
	})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.ScreeningPercentage)
	assert.Equal(t, 30, updated.BehavioralAttitudePercentage)
	assert.Equal(t, 10, updated.NumberOfQuestions)

	_, err = svc.UpdateSetup(ctx, jobID, "nope", interviewsetup.SetupInput{})
	assert.True(t, errx.IsCode(err, interviewsetup.CodeSetupNotFound))
}

func TestDeleteSetupIsSoft(t *testing.T) {
	svc, repo, jobID := newService(t)
	ctx := context.Background()

	created, err := svc.CreateSetup(ctx, jobID, input("tech", "mid", 20, 50, 30))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteSetup(ctx, jobID, created.ID))

	list, err := svc.ListSetups(ctx, jobID)
	require.NoError(t, err)
	assert.Empty(t, list.Setups)
	assert.Equal(t, 1, repo.Len())

	_, err = svc.ActiveSetup(ctx, jobID, kernel.CategoryTech, kernel.LevelMid)
	assert.True(t, errx.IsCode(err, interviewsetup.CodeSetupNotFound))
}

func TestBulkSetups(t *testing.T) {
	tests := []struct {
		name        string
		req         interviewsetup.BulkSetupRequest
		wantCode    errx.Code
		wantCreated int
		wantUpdated int
		wantActive  int
	}{
		{
			name:     "empty",
			req:      interviewsetup.BulkSetupRequest{},
			wantCode: interviewsetup.CodeNoConfigurations,
		},
		{
			name: "missing field",
			req: interviewsetup.BulkSetupRequest{Configurations: []interviewsetup.SetupInput{
				{RoleType: strp("tech"), Level: strp("mid")},
			}},
			wantCode: interviewsetup.CodeMissingField,
		},
		{
			name: "bad sum rejects whole batch",
			req: interviewsetup.BulkSetupRequest{Configurations: []interviewsetup.SetupInput{
				input("tech", "senior", 20, 50, 30),
				input("non-tech", "mid", 20, 20, 20),
			}},
			wantCode:   interviewsetup.CodeInvalidPercentages,
			wantActive: 1,
		},
		{
			name: "upsert",
			req: interviewsetup.BulkSetupRequest{Configurations: []interviewsetup.SetupInput{
				input("tech", "mid", 30, 40, 30),
				input("tech", "senior", 20, 60, 20),
			}},
			wantCreated: 1,
			wantUpdated: 1,
			wantActive:  2,
		},
		{
			name: "replace all",
			req: interviewsetup.BulkSetupRequest{ReplaceAll: true, Configurations: []interviewsetup.SetupInput{
				input("semi-tech", "entry", 30, 40, 30),
				input("tech", "senior", 20, 60, 20),
			}},
			wantCreated: 2,
			wantActive:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, jobID := newService(t)
			ctx := context.Background()
			_, err := svc.CreateSetup(ctx, jobID, input("tech", "mid", 20, 50, 30))
			require.NoError(t, err)

			resp, err := svc.BulkSetups(ctx, jobID, tt.req)
			if tt.wantCode != "" {
				assert.True(t, errx.IsCode(err, tt.wantCode), "got %v", err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantCreated, resp.Created)
				assert.Equal(t, tt.wantUpdated, resp.Updated)
				assert.Equal(t, tt.wantCreated+tt.wantUpdated, resp.Total)
			}

			if tt.wantActive > 0 {
				list, err := svc.ListSetups(ctx, jobID)
				require.NoError(t, err)
				assert.Len(t, list.Setups, tt.wantActive)
			}
		})
	}
}

func TestMatrix(t *testing.T) {
	svc, _, jobID := newService(t)
	ctx := context.Background()

	_, err := svc.CreateSetup(ctx, jobID, input("semi-tech", "entry", 30, 40, 30))
	require.NoError(t, err)

	resp, err := svc.Matrix(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalConfigurations)
	require.NotNil(t, resp.Matrix[kernel.CategorySemiTech][kernel.LevelEntry])
	assert.Nil(t, resp.Matrix[kernel.CategoryTech][kernel.LevelSenior])
}

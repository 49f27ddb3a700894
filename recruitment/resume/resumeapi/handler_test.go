package resumeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/textextract"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/fsx/fsxlocal"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/iam/auth"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job/jobtest"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume/resumesrv"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume/resumetest"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopScreener struct{}

func (nopScreener) ExtractName(context.Context, string, string) kernel.CandidateName {
	return "Jane Doe"
}

func (nopScreener) Classify(context.Context, string) resume.Classification {
	return resume.FallbackClassification()
}

func (nopScreener) Analyze(context.Context, string, any, string, resume.Classification) (*resume.Analysis, map[string]any, error) {
	return resume.FallbackAnalysis(), nil, nil
}

type testEnv struct {
	app   *fiber.App
	jobs  *jobtest.MemRepository
	repo  *resumetest.MemRepository
	queue *resumetest.MemQueue
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	files, err := fsxlocal.NewLocalFileSystem(t.TempDir(), "http://localhost/files")
	require.NoError(t, err)

	env := &testEnv{
		jobs:  jobtest.NewMemRepository(),
		repo:  resumetest.NewMemRepository(),
		queue: resumetest.NewMemQueue(),
	}
	svc := resumesrv.NewService(env.repo, env.jobs, env.queue, files, textextract.NewExtractor(nil), nopScreener{}, nil,
		resumesrv.Config{BatchSize: 10, MaxAttempts: 3, Concurrency: 1})

	env.app = fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *errx.Error
			if errors.As(err, &e) {
				return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	RegisterRoutes(env.app, NewHandlers(svc), auth.NewUnifiedAuthMiddleware(nil, nil))
	return env
}

func (e *testEnv) seedJob(t *testing.T) kernel.JobID {
	t.Helper()
	j := &job.Job{
		ID:                 kernel.NewJobID(kernel.NewID()),
		Role:               "Data Analyst",
		RequiredExperience: "2 years",
		Description:        "Analyse data",
		Status:             job.JobStatusActive,
		Analysis:           job.FallbackAnalysis("2 years"),
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	require.NoError(t, e.jobs.Create(context.Background(), j))
	return j.ID
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestUploadResumes(t *testing.T) {
	env := newTestEnv(t)
	jobID := env.seedJob(t)

	body, contentType := multipartBody(t, map[string]string{
		"jane.txt":  "Jane Doe, analyst with SQL and Python",
		"photo.gif": "GIF89a",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/jobs/"+jobID.String()+"/resumes", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	out := decode(t, resp)
	assert.EqualValues(t, 1, out["files_processed"])
	assert.EqualValues(t, 2, out["total_files"])
	assert.Len(t, out["skipped"], 1)

	ready, _, err := env.queue.Size(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, ready)
}

func TestUploadResumesWithoutFiles(t *testing.T) {
	env := newTestEnv(t)
	jobID := env.seedJob(t)

	body, contentType := multipartBody(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/jobs/"+jobID.String()+"/resumes", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, string(resume.CodeNoFiles), decode(t, resp)["code"])
}

func TestGetResults(t *testing.T) {
	env := newTestEnv(t)
	jobID := env.seedJob(t)
	_, err := env.repo.Create(context.Background(), &resume.Result{
		ID:             "r1",
		JobID:          jobID,
		CandidateName:  "Jane Doe",
		Classification: resume.Classification{Category: kernel.CategoryTech, Level: kernel.LevelMid},
		FitScore:       72,
		Recommendation: resume.RecommendationGoodFit,
		CreatedAt:      time.Now(),
	}, nil)
	require.NoError(t, err)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobID.String()+"/results?min_score=70&category=TECH", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode(t, resp)
	assert.EqualValues(t, 1, out["total_results"])
	assert.EqualValues(t, 100, out["limit"])

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobID.String()+"/results?level=principal", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/api/resumes/r1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Jane Doe", decode(t, resp)["candidate_name"])

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/api/resumes/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestExportResults(t *testing.T) {
	env := newTestEnv(t)
	jobID := env.seedJob(t)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobID.String()+"/results/export", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "Data_Analyst_results_")
}

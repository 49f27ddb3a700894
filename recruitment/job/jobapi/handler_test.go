package jobapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/llm"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/iam/auth"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job/jobsrv"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job/jobtest"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCompleter struct{}

func (failingCompleter) Complete(context.Context, llm.Request) (string, error) {
	return "", errors.New("offline")
}

func newTestApp(t *testing.T) (*fiber.App, *jobtest.MemRepository, *jobsrv.JobService) {
	t.Helper()
	repo := jobtest.NewMemRepository()
	svc := jobsrv.NewJobService(repo, jobsrv.NewLLMAnalyzer(failingCompleter{}), nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *errx.Error
			if errors.As(err, &e) {
				return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	RegisterRoutes(app, NewHandlers(svc), auth.NewUnifiedAuthMiddleware(nil, nil))
	return app, repo, svc
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestCreateAndGetJob(t *testing.T) {
	app, _, svc := newTestApp(t)

	payload := `{"job_role":"Backend Engineer","required_experience":"3 years","description":"We are looking for a backend engineer to build and operate Go services."}`
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode(t, resp)
	jobID, _ := created["job_id"].(string)
	require.NotEmpty(t, jobID)
	svc.Wait()

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobID, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode(t, resp)
	assert.Equal(t, "Backend Engineer", got["job_role"])
	assert.Nil(t, got["analysis"])
}

func TestCreateJobValidationError(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(`{"job_role":"x","required_experience":"1","description":"short"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, string(job.CodeInvalidJob), decode(t, resp)["code"])
}

func TestGetMissingJob(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusAndClose(t *testing.T) {
	app, repo, _ := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &job.Job{ID: "j1", Status: job.JobStatusActive}))
	require.NoError(t, repo.IncrementTotalResumes(ctx, "j1", 4))
	require.NoError(t, repo.IncrementProcessedResumes(ctx, "j1", 1))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/jobs/j1/status", nil), -1)
	require.NoError(t, err)
	status := decode(t, resp)
	assert.EqualValues(t, 3, status["pending_resumes"])
	assert.EqualValues(t, 25, status["completion_percentage"])

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/api/jobs/j1/close", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "closed", decode(t, resp)["status"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/jobs?status=closed", nil), -1)
	require.NoError(t, err)
	list := decode(t, resp)
	items, _ := list["items"].([]any)
	assert.Len(t, items, 1)
}

func TestDeleteJob(t *testing.T) {
	app, repo, _ := newTestApp(t)
	require.NoError(t, repo.Create(context.Background(), &job.Job{ID: "j1", Status: job.JobStatusActive}))

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/jobs/j1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Zero(t, repo.Len())
}

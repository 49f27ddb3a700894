package recordingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/fsx/fsxlocal"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/iam/auth"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/uploader"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview/interviewtest"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/recording/recordingsrv"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/recording/recordingtest"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app       *fiber.App
	sessionID string
	sink      *recordingtest.RecordingSink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := fsxlocal.NewLocalFileSystem(t.TempDir(), "http://files.local")
	require.NoError(t, err)

	sessions := interviewtest.NewMemSessionRepository()
	session := interview.NewSession("job-7", "resume-7", "Kim", interview.QuestionSet{}, "prompt", 10, time.Hour)
	require.NoError(t, sessions.Create(context.Background(), session))

	sink := recordingtest.NewRecordingSink()
	svc := recordingsrv.NewService(
		recordingtest.NewMemRepository(),
		sessions,
		store,
		recordingtest.NewMemLock(),
		recordingsrv.NewUploadTokenService(auth.NewJWTService("0123456789abcdef0123456789abcdef", "hire-ai")),
		sink,
		recordingsrv.Config{BlockSize: 8, MaxSize: 1024, TokenTTL: time.Hour},
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *errx.Error
			if errors.As(err, &e) {
				return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	RegisterRoutes(app, NewHandlers(svc))

	return &testEnv{app: app, sessionID: session.ID.String(), sink: sink}
}

func (e *testEnv) do(t *testing.T, method, path string, body []byte, headers ...string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (e *testEnv) init(t *testing.T, size int) (string, string) {
	t.Helper()
	body := fmt.Sprintf(`{"session_id":%q,"total_size":%d}`, e.sessionID, size)
	status, resp := e.do(t, http.MethodPost, "/api/recordings/uploads", []byte(body), "Content-Type", "application/json")
	require.Equal(t, http.StatusCreated, status, resp)
	return resp["upload_id"].(string), resp["upload_token"].(string)
}

func TestUploadLifecycle(t *testing.T) {
	env := newTestEnv(t)
	id, token := env.init(t, 12)
	base := "/api/recordings/uploads/" + id
	bearer := "Bearer " + token

	status, body := env.do(t, http.MethodPut, base+"/blocks/0", []byte("abcdefgh"), "Authorization", bearer)
	require.Equal(t, http.StatusOK, status, body)
	progress := body["progress"].(map[string]any)
	assert.Equal(t, float64(8), progress["bytes_uploaded"])
	assert.Equal(t, float64(1), progress["uploaded_blocks"])

	status, body = env.do(t, http.MethodPost, base+"/commit", nil, "Authorization", bearer)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "RECORDING_UPLOAD_INCOMPLETE", body["code"])

	status, _ = env.do(t, http.MethodPut, base+"/blocks/1", []byte("ijkl"), TokenHeader, token)
	require.Equal(t, http.StatusOK, status)

	status, body = env.do(t, http.MethodGet, base, nil, TokenHeader, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(100), body["percentage"])

	status, body = env.do(t, http.MethodPost, base+"/commit", nil, "Authorization", bearer)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "committed", body["status"])
	assert.True(t, strings.HasPrefix(body["recording_url"].(string), "http://files.local/"))

	url, ok := env.sink.URL(kernel.SessionID(env.sessionID))
	assert.True(t, ok)
	assert.Equal(t, body["recording_url"], url)
}

func TestUploadRejections(t *testing.T) {
	env := newTestEnv(t)
	id, token := env.init(t, 12)
	otherID, _ := env.init(t, 12)
	base := "/api/recordings/uploads/" + id

	tests := []struct {
		name   string
		method string
		path   string
		body   []byte
		header []string
		status int
		code   string
	}{
		{"no token", http.MethodPut, base + "/blocks/0", []byte("abcdefgh"), nil, http.StatusUnauthorized, "RECORDING_INVALID_UPLOAD_TOKEN"},
		{"token for another upload", http.MethodGet, "/api/recordings/uploads/" + otherID, nil, []string{TokenHeader, token}, http.StatusUnauthorized, "RECORDING_INVALID_UPLOAD_TOKEN"},
		{"non numeric index", http.MethodPut, base + "/blocks/x", []byte("abcdefgh"), []string{TokenHeader, token}, http.StatusBadRequest, "RECORDING_INVALID_BLOCK_INDEX"},
		{"index out of range", http.MethodPut, base + "/blocks/2", []byte("abcd"), []string{TokenHeader, token}, http.StatusBadRequest, "RECORDING_INVALID_BLOCK_INDEX"},
		{"short middle block", http.MethodPut, base + "/blocks/0", []byte("abc"), []string{TokenHeader, token}, http.StatusBadRequest, "RECORDING_INVALID_BLOCK_SIZE"},
		{"bad init body", http.MethodPost, "/api/recordings/uploads", []byte("{"), []string{"Content-Type", "application/json"}, http.StatusBadRequest, "RECORDING_INVALID_UPLOAD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, tt.method, tt.path, tt.body, tt.header...)
			assert.Equal(t, tt.status, status, body)
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestAbortThenPutIsRejected(t *testing.T) {
	env := newTestEnv(t)
	id, token := env.init(t, 12)
	base := "/api/recordings/uploads/" + id

	status, body := env.do(t, http.MethodDelete, base, nil, TokenHeader, token)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "aborted", body["status"])

	status, body = env.do(t, http.MethodPut, base+"/blocks/0", []byte("abcdefgh"), TokenHeader, token)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "RECORDING_UPLOAD_NOT_ACTIVE", body["code"])
}

func TestUploaderClientAgainstHandlers(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(adaptor.FiberApp(env.app))
	defer srv.Close()

	data := []byte(strings.Repeat("interview-", 5))
	var seen []uploader.Progress

	res, err := uploader.New(srv.URL, nil).Upload(context.Background(), bytes.NewReader(data), int64(len(data)), uploader.Options{
		SessionID:  env.sessionID,
		OnProgress: func(p uploader.Progress) { seen = append(seen, p) },
	})
	require.NoError(t, err)

	assert.Equal(t, 7, res.Blocks)
	assert.Len(t, seen, 7)
	assert.Equal(t, int64(len(data)), seen[6].Bytes)
	assert.Equal(t, float64(100), seen[6].Percent)
	assert.True(t, strings.HasPrefix(res.RecordingURL, "http://files.local/"))
}

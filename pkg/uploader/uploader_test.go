package uploader

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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer is a minimal recording upload endpoint
type fakeServer struct {
	mu        sync.Mutex
	blockSize int64
	blocks    map[int][]byte
	order     []int
	failBlock int
	aborted   bool
	committed bool
	auth      []string
}

func newFakeServer(blockSize int64) *fakeServer {
	return &fakeServer{blockSize: blockSize, blocks: map[int][]byte{}, failBlock: -1}
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path != uploadsPath {
		f.auth = append(f.auth, r.Header.Get("Authorization"))
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == uploadsPath:
		var req struct {
			TotalSize int64 `json:"total_size"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		blocks := (req.TotalSize + f.blockSize - 1) / f.blockSize
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"upload_id":"up-1","block_size":%d,"total_blocks":%d,"upload_token":"tok"}`, f.blockSize, blocks)

	case r.Method == http.MethodPut:
		var index int
		fmt.Sscanf(strings.TrimPrefix(r.URL.Path, uploadsPath+"/up-1/blocks/"), "%d", &index)
		if index == f.failBlock {
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"code":"RECORDING_UPLOAD_BUSY","message":"Another block is being uploaded"}`)
			return
		}
		data, _ := io.ReadAll(r.Body)
		f.blocks[index] = data
		f.order = append(f.order, index)
		var total int64
		for _, b := range f.blocks {
			total += int64(len(b))
		}
		fmt.Fprintf(w, `{"index":%d,"progress":{"bytes_uploaded":%d,"percentage":%d}}`, index, total, total*10)

	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/commit"):
		f.committed = true
		fmt.Fprint(w, `{"recording_url":"https://cdn/up-1.webm","status":"committed"}`)

	case r.Method == http.MethodDelete:
		f.aborted = true
		fmt.Fprint(w, `{"status":"aborted"}`)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeServer) assembled() []byte {
	var out []byte
	for i := 0; i < len(f.blocks); i++ {
		out = append(out, f.blocks[i]...)
	}
	return out
}

func TestUploadSendsBlocksInOrder(t *testing.T) {
	fake := newFakeServer(4)
	srv := httptest.NewServer(fake)
	defer srv.Close()

	data := []byte("0123456789")
	var progress []Progress

	res, err := New(srv.URL, nil).Upload(context.Background(), bytes.NewReader(data), int64(len(data)), Options{
		SessionID:  "sess-1",
		OnProgress: func(p Progress) { progress = append(progress, p) },
	})
	require.NoError(t, err)

	assert.Equal(t, "up-1", res.UploadID)
	assert.Equal(t, "https://cdn/up-1.webm", res.RecordingURL)
	assert.Equal(t, 3, res.Blocks)
	assert.Equal(t, []int{0, 1, 2}, fake.order)
	assert.Equal(t, data, fake.assembled())
	assert.True(t, fake.committed)
	assert.False(t, fake.aborted)
	for _, h := range fake.auth {
		assert.Equal(t, "Bearer tok", h)
	}

	require.Len(t, progress, 3)
	assert.Equal(t, Progress{Block: 1, Total: 3, Bytes: 4, Percent: 40}, progress[0])
	assert.Equal(t, Progress{Block: 3, Total: 3, Bytes: 10, Percent: 100}, progress[2])
}

func TestUploadAbortsOnFirstFailure(t *testing.T) {
	fake := newFakeServer(4)
	fake.failBlock = 1
	srv := httptest.NewServer(fake)
	defer srv.Close()

	_, err := New(srv.URL, nil).Upload(context.Background(), strings.NewReader("0123456789"), 10, Options{SessionID: "sess-1"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "RECORDING_UPLOAD_BUSY", apiErr.Code)
	assert.Contains(t, err.Error(), "upload block 1")

	assert.Equal(t, []int{0}, fake.order, "no retry and no later blocks")
	assert.True(t, fake.aborted)
	assert.False(t, fake.committed)
}

func TestUploadInitError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"code":"INTERVIEW_SESSION_NOT_FOUND","message":"Interview session not found"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Upload(context.Background(), strings.NewReader("abc"), 3, Options{SessionID: "missing"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "INTERVIEW_SESSION_NOT_FOUND", apiErr.Code)

	_, err = New(srv.URL, nil).Upload(context.Background(), strings.NewReader(""), 0, Options{})
	assert.Error(t, err)
}

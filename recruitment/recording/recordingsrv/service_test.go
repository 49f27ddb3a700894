package recordingsrv

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/fsx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/fsx/fsxlocal"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/iam/auth"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview/interviewtest"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/recording"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/recording/recordingtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// brokenCommitStore fails every CompleteMultipart
type brokenCommitStore struct {
	*fsxlocal.LocalFileSystem
}

func (brokenCommitStore) CompleteMultipart(context.Context, string, string, []fsx.CompletedPart) error {
	return errors.New("bucket unavailable")
}

type fixture struct {
	svc       *Service
	store     *fsxlocal.LocalFileSystem
	uploads   *recordingtest.MemRepository
	locks     *recordingtest.MemLock
	sink      *recordingtest.RecordingSink
	tokens    *UploadTokenService
	sessions  *interviewtest.MemSessionRepository
	sessionID kernel.SessionID
}

func newFixture(t *testing.T, wrap func(*fsxlocal.LocalFileSystem) fsx.MultipartStore) *fixture {
	t.Helper()
	store, err := fsxlocal.NewLocalFileSystem(t.TempDir(), "http://files.local")
	require.NoError(t, err)

	sessions := interviewtest.NewMemSessionRepository()
	session := interview.NewSession("job-1", "resume-1", "Ada", interview.QuestionSet{}, "prompt", 10, time.Hour)
	require.NoError(t, sessions.Create(context.Background(), session))

	var ms fsx.MultipartStore = store
	if wrap != nil {
		ms = wrap(store)
	}

	f := &fixture{
		store:     store,
		uploads:   recordingtest.NewMemRepository(),
		locks:     recordingtest.NewMemLock(),
		sink:      recordingtest.NewRecordingSink(),
		tokens:    NewUploadTokenService(auth.NewJWTService(testSecret, "hire-ai")),
		sessions:  sessions,
		sessionID: session.ID,
	}
	f.svc = NewService(f.uploads, sessions, ms, f.locks, f.tokens, f.sink, Config{BlockSize: 4, MaxSize: 64, TokenTTL: time.Hour})
	return f
}

func (f *fixture) init(t *testing.T, size int64) *recording.InitUploadResponse {
	t.Helper()
	resp, err := f.svc.InitUpload(context.Background(), recording.InitUploadRequest{SessionID: f.sessionID.String(), TotalSize: size})
	require.NoError(t, err)
	return resp
}

func TestInitUploadSessionStatus(t *testing.T) {
	tests := []struct {
		status  interview.SessionStatus
		wantErr bool
	}{
		{interview.StatusPending, false},
		{interview.StatusActive, false},
		{interview.StatusEnded, false},
		{interview.StatusCompleted, false},
		{interview.StatusExpired, true},
		{interview.StatusCancelled, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			f := newFixture(t, nil)
			ctx := context.Background()

			s, err := f.sessions.GetByID(ctx, f.sessionID)
			require.NoError(t, err)
			s.Status = tt.status
			require.NoError(t, f.sessions.Update(ctx, s))

			_, err = f.svc.InitUpload(ctx, recording.InitUploadRequest{SessionID: f.sessionID.String(), TotalSize: 10})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errx.IsCode(err, recording.CodeSessionClosed), "got %v", err)
			assert.Zero(t, f.uploads.Len())
		})
	}
}

func TestInitUpload(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	resp := f.init(t, 10)
	assert.Equal(t, int64(4), resp.BlockSize)
	assert.Equal(t, 3, resp.TotalBlocks)
	assert.NotEmpty(t, resp.UploadToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, time.Minute)

	u, err := f.uploads.GetByID(ctx, resp.UploadID)
	require.NoError(t, err)
	assert.Equal(t, kernel.JobID("job-1"), u.JobID)
	assert.NotEmpty(t, u.MultipartID)
	assert.True(t, strings.HasPrefix(u.ObjectPath, "recordings/job-1/"+f.sessionID.String()+"/"))

	tests := []struct {
		name string
		req  recording.InitUploadRequest
		code errx.Code
	}{
		{"missing session", recording.InitUploadRequest{TotalSize: 10}, recording.CodeInvalidUpload},
		{"zero size", recording.InitUploadRequest{SessionID: f.sessionID.String()}, recording.CodeInvalidUpload},
		{"too large", recording.InitUploadRequest{SessionID: f.sessionID.String(), TotalSize: 65}, recording.CodeUploadTooLarge},
		{"unknown session", recording.InitUploadRequest{SessionID: "nope", TotalSize: 10}, interview.CodeSessionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.InitUpload(ctx, tt.req)
			assert.True(t, errx.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestUploadAndCommit(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	resp := f.init(t, 10)
	data := []byte("0123456789")

	// blocks may arrive out of order
	for _, i := range []int{2, 0, 1} {
		start := i * 4
		end := min(start+4, len(data))
		block, err := f.svc.PutBlock(ctx, resp.UploadID, resp.UploadToken, i, data[start:end])
		require.NoError(t, err)
		assert.Equal(t, i, block.Index)
		assert.NotEmpty(t, block.ETag)
	}

	p, err := f.svc.GetProgress(ctx, resp.UploadID, resp.UploadToken)
	require.NoError(t, err)
	assert.Equal(t, 3, p.UploadedBlocks)
	assert.Equal(t, int64(10), p.BytesUploaded)
	assert.Equal(t, 100.0, p.Percentage)

	commit, err := f.svc.Commit(ctx, resp.UploadID, resp.UploadToken)
	require.NoError(t, err)
	assert.Equal(t, recording.StatusCommitted, commit.Status)
	assert.True(t, strings.HasPrefix(commit.RecordingURL, "http://files.local/recordings/job-1/"))

	u, _ := f.uploads.GetByID(ctx, resp.UploadID)
	stored, err := f.store.ReadFile(ctx, u.ObjectPath)
	require.NoError(t, err)
	assert.Equal(t, data, stored)

	url, ok := f.sink.URL(f.sessionID)
	require.True(t, ok)
	assert.Equal(t, commit.RecordingURL, url)

	_, err = f.svc.PutBlock(ctx, resp.UploadID, resp.UploadToken, 0, data[:4])
	assert.True(t, errx.IsCode(err, recording.CodeUploadNotActive))
	_, err = f.svc.Abort(ctx, resp.UploadID, resp.UploadToken)
	assert.True(t, errx.IsCode(err, recording.CodeUploadNotActive))
}

func TestPutBlockRejections(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	resp := f.init(t, 10)
	other := f.init(t, 10)

	_, err := f.svc.PutBlock(ctx, resp.UploadID, "", 0, []byte("abcd"))
	assert.True(t, errx.IsCode(err, recording.CodeInvalidUploadToken))

	_, err = f.svc.PutBlock(ctx, resp.UploadID, other.UploadToken, 0, []byte("abcd"))
	assert.True(t, errx.IsCode(err, recording.CodeInvalidUploadToken), "token for another upload")

	admin, err := auth.NewJWTService(testSecret, "hire-ai").GenerateAccessToken("admin", []string{auth.ScopeAll}, nil, time.Hour)
	require.NoError(t, err)
	_, err = f.svc.PutBlock(ctx, resp.UploadID, admin, 0, []byte("abcd"))
	assert.True(t, errx.IsCode(err, recording.CodeInvalidUploadToken), "admin token is not an upload token")

	_, err = f.svc.PutBlock(ctx, resp.UploadID, resp.UploadToken, 3, []byte("ab"))
	assert.True(t, errx.IsCode(err, recording.CodeInvalidBlockIndex))

	_, err = f.svc.PutBlock(ctx, resp.UploadID, resp.UploadToken, 0, []byte("abc"))
	assert.True(t, errx.IsCode(err, recording.CodeInvalidBlockSize))

	_, err = f.svc.Commit(ctx, resp.UploadID, resp.UploadToken)
	assert.True(t, errx.IsCode(err, recording.CodeUploadIncomplete))
}

func TestPutBlockBusy(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	resp := f.init(t, 8)

	release, ok, err := f.locks.Acquire(ctx, resp.UploadID, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.PutBlock(ctx, resp.UploadID, resp.UploadToken, 0, []byte("abcd"))
	assert.True(t, errx.IsCode(err, recording.CodeUploadBusy))

	release()
	_, err = f.svc.PutBlock(ctx, resp.UploadID, resp.UploadToken, 0, []byte("abcd"))
	require.NoError(t, err)
	assert.False(t, f.locks.Held(resp.UploadID), "lock is released after the block")
}

func TestConcurrentPutBlockOneInFlight(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	resp := f.init(t, 64)

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.PutBlock(ctx, resp.UploadID, resp.UploadToken, i, bytes.Repeat([]byte{byte(i)}, 4))
		}()
	}
	wg.Wait()

	stored := 0
	for _, err := range errs {
		if err == nil {
			stored++
			continue
		}
		assert.True(t, errx.IsCode(err, recording.CodeUploadBusy), "got %v", err)
	}
	p, err := f.svc.GetProgress(ctx, resp.UploadID, resp.UploadToken)
	require.NoError(t, err)
	assert.Equal(t, stored, p.UploadedBlocks)
	assert.Equal(t, int64(stored*4), p.BytesUploaded)
}

func TestAbort(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	resp := f.init(t, 8)

	_, err := f.svc.PutBlock(ctx, resp.UploadID, resp.UploadToken, 0, []byte("abcd"))
	require.NoError(t, err)

	p, err := f.svc.Abort(ctx, resp.UploadID, resp.UploadToken)
	require.NoError(t, err)
	assert.Equal(t, recording.StatusAborted, p.Status)

	_, err = f.svc.Commit(ctx, resp.UploadID, resp.UploadToken)
	assert.True(t, errx.IsCode(err, recording.CodeUploadNotActive))
	_, ok := f.sink.URL(f.sessionID)
	assert.False(t, ok)
}

func TestCommitStorageFailureMarksFailed(t *testing.T) {
	f := newFixture(t, func(fs *fsxlocal.LocalFileSystem) fsx.MultipartStore { return brokenCommitStore{fs} })
	ctx := context.Background()
	resp := f.init(t, 4)

	_, err := f.svc.PutBlock(ctx, resp.UploadID, resp.UploadToken, 0, []byte("abcd"))
	require.NoError(t, err)

	_, err = f.svc.Commit(ctx, resp.UploadID, resp.UploadToken)
	assert.True(t, errx.IsCode(err, recording.CodeStorageFailed))

	u, err := f.uploads.GetByID(ctx, resp.UploadID)
	require.NoError(t, err)
	assert.Equal(t, recording.StatusFailed, u.Status)
	assert.Nil(t, u.RecordingURL)

	_, err = f.svc.PutBlock(ctx, resp.UploadID, resp.UploadToken, 0, []byte("abcd"))
	assert.True(t, errx.IsCode(err, recording.CodeUploadNotActive))
}

func TestCommitSurvivesAttachFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.sink.Err = errors.New("db down")
	ctx := context.Background()
	resp := f.init(t, 4)

	_, err := f.svc.PutBlock(ctx, resp.UploadID, resp.UploadToken, 0, []byte("abcd"))
	require.NoError(t, err)

	commit, err := f.svc.Commit(ctx, resp.UploadID, resp.UploadToken)
	require.NoError(t, err)
	assert.Equal(t, recording.StatusCommitted, commit.Status)
}

package recordingsrv

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/metrics"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/fsx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/logx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/recording"
)

const defaultLockTTL = 2 * time.Minute

// SessionLookup resolves the interview session a recording belongs to
type SessionLookup interface {
	GetByID(ctx context.Context, id kernel.SessionID) (*interview.Session, error)
}

type Config struct {
	BlockSize int64
	MaxSize   int64
	TokenTTL  time.Duration
	LockTTL   time.Duration
}

type Service struct {
	uploads  recording.Repository
	sessions SessionLookup
	store    fsx.MultipartStore
	locks    recording.BlockLock
	tokens   *UploadTokenService
	attacher recording.RecordingAttacher
	cfg      Config
}

func NewService(
	uploads recording.Repository,
	sessions SessionLookup,
	store fsx.MultipartStore,
	locks recording.BlockLock,
	tokens *UploadTokenService,
	attacher recording.RecordingAttacher,
	cfg Config,
) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 2 * time.Hour
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	return &Service{
		uploads:  uploads,
		sessions: sessions,
		store:    store,
		locks:    locks,
		tokens:   tokens,
		attacher: attacher,
		cfg:      cfg,
	}
}

// InitUpload opens a multipart object for a session recording and mints its upload token
func (s *Service) InitUpload(ctx context.Context, req recording.InitUploadRequest) (*recording.InitUploadResponse, error) {
	sessionID := kernel.SessionID(strings.TrimSpace(req.SessionID))
	if sessionID.IsEmpty() {
		return nil, recording.ErrInvalidUpload().WithDetail("session_id", "required")
	}
	if req.TotalSize <= 0 {
		return nil, recording.ErrInvalidUpload().WithDetail("total_size", req.TotalSize)
	}
	if s.cfg.MaxSize > 0 && req.TotalSize > s.cfg.MaxSize {
		return nil, recording.ErrUploadTooLarge().
			WithDetail("total_size", req.TotalSize).
			WithDetail("max_size", s.cfg.MaxSize)
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsClosed() && session.Status != interview.StatusCompleted {
		return nil, recording.ErrSessionClosed().
			WithDetail("session_id", session.ID).
			WithDetail("status", session.Status)
	}

	id := kernel.NewUploadID(kernel.NewID())
	upload := recording.NewUpload(id, session.ID, session.JobID, strings.TrimSpace(req.ContentType), req.TotalSize, s.cfg.BlockSize, s.cfg.TokenTTL)

	multipartID, err := s.store.CreateMultipart(ctx, upload.ObjectPath, upload.ContentType)
	if err != nil {
		return nil, recording.ErrStorageFailed().WithDetail("operation", "create_multipart").WithCause(err)
	}
	upload.MultipartID = multipartID

	if err := s.uploads.Create(ctx, upload); err != nil {
		_ = s.store.AbortMultipart(ctx, upload.ObjectPath, multipartID)
		return nil, errx.Wrap(err, "failed to create recording upload", errx.TypeInternal)
	}

	token, err := s.tokens.Issue(id, session.ID, s.cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	logx.Infof("Recording upload %s started for session %s: %d bytes in %d blocks",
		id, session.ID, upload.TotalSize, upload.TotalBlocks)

	return &recording.InitUploadResponse{
		UploadID:    id,
		BlockSize:   upload.BlockSize,
		TotalBlocks: upload.TotalBlocks,
		UploadToken: token,
		ExpiresAt:   upload.ExpiresAt,
	}, nil
}

// PutBlock stores one block. Only one block may be in flight per upload.
func (s *Service) PutBlock(ctx context.Context, id kernel.UploadID, token string, index int, data []byte) (*recording.PutBlockResponse, error) {
	upload, err := s.authorize(ctx, id, token)
	if err != nil {
		return nil, err
	}
	if err := upload.ValidateBlock(index, int64(len(data))); err != nil {
		return nil, err
	}

	release, ok, err := s.locks.Acquire(ctx, id, s.cfg.LockTTL)
	if err != nil {
		return nil, errx.Wrap(err, "failed to lock recording upload", errx.TypeInternal)
	}
	if !ok {
		return nil, recording.ErrUploadBusy().WithDetail("upload_id", id)
	}
	defer release()

	// reload under the lock so a concurrent commit or abort is seen
	upload, err = s.uploads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := upload.ValidateBlock(index, int64(len(data))); err != nil {
		return nil, err
	}

	etag, err := s.store.UploadPart(ctx, upload.ObjectPath, upload.MultipartID, recording.PartNumber(index), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, recording.ErrStorageFailed().
			WithDetail("operation", "upload_part").
			WithDetail("index", index).
			WithCause(err)
	}

	upload.RecordPart(index, etag, int64(len(data)))
	if err := s.uploads.Update(ctx, upload); err != nil {
		return nil, errx.Wrap(err, "failed to record uploaded block", errx.TypeInternal)
	}
	metrics.RecordingBytes.Add(float64(len(data)))

	return &recording.PutBlockResponse{Index: index, ETag: etag, Progress: upload.Progress()}, nil
}

func (s *Service) GetProgress(ctx context.Context, id kernel.UploadID, token string) (*recording.Progress, error) {
	upload, err := s.authorize(ctx, id, token)
	if err != nil {
		return nil, err
	}
	p := upload.Progress()
	return &p, nil
}

// Commit assembles the blocks into the final object and hands the URL to the interview
func (s *Service) Commit(ctx context.Context, id kernel.UploadID, token string) (*recording.CommitResponse, error) {
	upload, err := s.authorize(ctx, id, token)
	if err != nil {
		return nil, err
	}

	release, ok, err := s.locks.Acquire(ctx, id, s.cfg.LockTTL)
	if err != nil {
		return nil, errx.Wrap(err, "failed to lock recording upload", errx.TypeInternal)
	}
	if !ok {
		return nil, recording.ErrUploadBusy().WithDetail("upload_id", id)
	}
	defer release()

	upload, err = s.uploads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url := s.store.URL(upload.ObjectPath)
	parts := upload.CompletedParts()
	if err := upload.Commit(url); err != nil {
		return nil, err
	}

	if err := s.store.CompleteMultipart(ctx, upload.ObjectPath, upload.MultipartID, parts); err != nil {
		upload.Fail()
		upload.RecordingURL = nil
		if uerr := s.uploads.Update(ctx, upload); uerr != nil {
			logx.Errorf("Failed to mark upload %s failed: %v", id, uerr)
		}
		return nil, recording.ErrStorageFailed().WithDetail("operation", "complete_multipart").WithCause(err)
	}

	if err := s.uploads.Update(ctx, upload); err != nil {
		return nil, errx.Wrap(err, "failed to commit recording upload", errx.TypeInternal)
	}

	if err := s.attacher.AttachRecording(ctx, upload.SessionID, url); err != nil {
		logx.Errorf("Recording %s committed but not attached to session %s: %v", id, upload.SessionID, err)
	}

	logx.Infof("Recording upload %s committed: %s", id, url)
	return &recording.CommitResponse{
		UploadID:     id,
		SessionID:    upload.SessionID,
		RecordingURL: url,
		Status:       upload.Status,
		Message:      "Recording uploaded successfully",
	}, nil
}

// Abort discards the staged blocks
func (s *Service) Abort(ctx context.Context, id kernel.UploadID, token string) (*recording.Progress, error) {
	upload, err := s.authorize(ctx, id, token)
	if err != nil {
		return nil, err
	}
	if err := upload.Abort(); err != nil {
		return nil, err
	}

	if err := s.store.AbortMultipart(ctx, upload.ObjectPath, upload.MultipartID); err != nil {
		logx.Warnf("Failed to abort multipart upload for %s: %v", id, err)
	}
	if err := s.uploads.Update(ctx, upload); err != nil {
		return nil, errx.Wrap(err, "failed to abort recording upload", errx.TypeInternal)
	}

	logx.Infof("Recording upload %s aborted", id)
	p := upload.Progress()
	return &p, nil
}

func (s *Service) authorize(ctx context.Context, id kernel.UploadID, token string) (*recording.Upload, error) {
	if _, err := s.tokens.Validate(token, id); err != nil {
		return nil, err
	}
	return s.uploads.GetByID(ctx, id)
}

package recordingtest

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/recording"
)

// MemRepository is an in-memory recording.Repository
type MemRepository struct {
	mu      sync.Mutex
	uploads map[kernel.UploadID]recording.Upload
}

var _ recording.Repository = (*MemRepository)(nil)

func NewMemRepository() *MemRepository {
	return &MemRepository{uploads: map[kernel.UploadID]recording.Upload{}}
}

func clone(u recording.Upload) recording.Upload {
	u.Parts = maps.Clone(u.Parts)
	if u.Parts == nil {
		u.Parts = map[int]recording.Part{}
	}
	return u
}

func (r *MemRepository) Create(_ context.Context, u *recording.Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads[u.ID] = clone(*u)
	return nil
}

func (r *MemRepository) Update(_ context.Context, u *recording.Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.uploads[u.ID]; !ok {
		return recording.ErrUploadNotFound().WithDetail("upload_id", u.ID)
	}
	r.uploads[u.ID] = clone(*u)
	return nil
}

func (r *MemRepository) GetByID(_ context.Context, id kernel.UploadID) (*recording.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.uploads[id]
	if !ok {
		return nil, recording.ErrUploadNotFound().WithDetail("upload_id", id)
	}
	u = clone(u)
	return &u, nil
}

func (r *MemRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.uploads)
}

// MemLock is an in-process recording.BlockLock
type MemLock struct {
	mu   sync.Mutex
	held map[kernel.UploadID]time.Time
}

var _ recording.BlockLock = (*MemLock)(nil)

func NewMemLock() *MemLock {
	return &MemLock{held: map[kernel.UploadID]time.Time{}}
}

func (l *MemLock) Acquire(_ context.Context, id kernel.UploadID, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if until, ok := l.held[id]; ok && time.Now().Before(until) {
		return func() {}, false, nil
	}
	l.held[id] = time.Now().Add(ttl)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, id)
	}, true, nil
}

// Held reports whether the lock for id is currently taken
func (l *MemLock) Held(id kernel.UploadID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	until, ok := l.held[id]
	return ok && time.Now().Before(until)
}

// RecordingSink captures attached recordings
type RecordingSink struct {
	mu       sync.Mutex
	Attached map[kernel.SessionID]string
	Err      error
}

var _ recording.RecordingAttacher = (*RecordingSink)(nil)

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{Attached: map[kernel.SessionID]string{}}
}

func (s *RecordingSink) AttachRecording(_ context.Context, id kernel.SessionID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Attached[id] = url
	return nil
}

func (s *RecordingSink) URL(id kernel.SessionID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	url, ok := s.Attached[id]
	return url, ok
}

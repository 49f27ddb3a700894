package recording

import (
	"context"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
)

// Repository persists upload state
type Repository interface {
	// Create inserts a new upload
	Create(ctx context.Context, u *Upload) error

	// Update persists parts, progress and status
	Update(ctx context.Context, u *Upload) error

	// GetByID retrieves an upload
	GetByID(ctx context.Context, id kernel.UploadID) (*Upload, error)
}

// BlockLock keeps a single block in flight per upload
type BlockLock interface {
	// Acquire returns ok=false when another holder has the lock. The
	// returned release func is a no-op when the lock was not taken.
	Acquire(ctx context.Context, id kernel.UploadID, ttl time.Duration) (release func(), ok bool, err error)
}

// RecordingAttacher hands a committed recording to the interview session
type RecordingAttacher interface {
	AttachRecording(ctx context.Context, id kernel.SessionID, url string) error
}

package recording

import (
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
)

type InitUploadRequest struct {
	SessionID   string `json:"session_id"`
	ContentType string `json:"content_type"`
	TotalSize   int64  `json:"total_size"`
}

type InitUploadResponse struct {
	UploadID    kernel.UploadID `json:"upload_id"`
	BlockSize   int64           `json:"block_size"`
	TotalBlocks int             `json:"total_blocks"`
	UploadToken string          `json:"upload_token"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// Progress is reported after each block and on demand
type Progress struct {
	UploadID       kernel.UploadID `json:"upload_id"`
	UploadedBlocks int             `json:"uploaded_blocks"`
	TotalBlocks    int             `json:"total_blocks"`
	BytesUploaded  int64           `json:"bytes_uploaded"`
	TotalSize      int64           `json:"total_size"`
	Percentage     float64         `json:"percentage"`
	Status         UploadStatus    `json:"status"`
}

type PutBlockResponse struct {
	Index    int      `json:"index"`
	ETag     string   `json:"etag"`
	Progress Progress `json:"progress"`
}

type CommitResponse struct {
	UploadID     kernel.UploadID  `json:"upload_id"`
	SessionID    kernel.SessionID `json:"session_id"`
	RecordingURL string           `json:"recording_url"`
	Status       UploadStatus     `json:"status"`
	Message      string           `json:"message"`
}

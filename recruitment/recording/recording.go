package recording

import (
	"fmt"
	"slices"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/fsx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
)

const DefaultContentType = "video/webm"

// UploadStatus is the lifecycle of a chunked upload
type UploadStatus string

const (
	StatusUploading UploadStatus = "uploading"
	StatusCommitted UploadStatus = "committed"
	StatusAborted   UploadStatus = "aborted"
	StatusFailed    UploadStatus = "failed"
)

// Part is one stored block of an upload
type Part struct {
	ETag string `json:"etag"`
	Size int64  `json:"size"`
}

// Upload is a recording being sent block by block into a multipart object
type Upload struct {
	ID            kernel.UploadID  `json:"upload_id"`
	SessionID     kernel.SessionID `json:"session_id"`
	JobID         kernel.JobID     `json:"job_id"`
	ObjectPath    string           `json:"object_path"`
	MultipartID   string           `json:"-"`
	ContentType   string           `json:"content_type"`
	TotalSize     int64            `json:"total_size"`
	BlockSize     int64            `json:"block_size"`
	TotalBlocks   int              `json:"total_blocks"`
	Parts         map[int]Part     `json:"parts"`
	BytesUploaded int64            `json:"bytes_uploaded"`
	Status        UploadStatus     `json:"status"`
	RecordingURL  *string          `json:"recording_url,omitempty"`
	ExpiresAt     time.Time        `json:"expires_at"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ObjectPath is where a session's recording lands in blob storage
func ObjectPath(jobID kernel.JobID, sessionID kernel.SessionID, uploadID kernel.UploadID) string {
	return fmt.Sprintf("recordings/%s/%s/%s.webm", jobID, sessionID, uploadID)
}

// BlockCount is ceil(size/blockSize)
func BlockCount(size, blockSize int64) int {
	return int((size + blockSize - 1) / blockSize)
}

func NewUpload(id kernel.UploadID, sessionID kernel.SessionID, jobID kernel.JobID, contentType string, totalSize, blockSize int64, ttl time.Duration) *Upload {
	now := time.Now()
	if contentType == "" {
		contentType = DefaultContentType
	}
	return &Upload{
		ID:          id,
		SessionID:   sessionID,
		JobID:       jobID,
		ObjectPath:  ObjectPath(jobID, sessionID, id),
		ContentType: contentType,
		TotalSize:   totalSize,
		BlockSize:   blockSize,
		TotalBlocks: BlockCount(totalSize, blockSize),
		Parts:       map[int]Part{},
		Status:      StatusUploading,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ============================================================================
// Domain Methods
// ============================================================================

// ExpectedSize is block_size for every block but the last, which holds the remainder
func (u *Upload) ExpectedSize(index int) int64 {
	if index == u.TotalBlocks-1 {
		return u.TotalSize - int64(u.TotalBlocks-1)*u.BlockSize
	}
	return u.BlockSize
}

func (u *Upload) ensureUploading() error {
	if u.Status != StatusUploading {
		return ErrUploadNotActive().
			WithDetail("upload_id", u.ID).
			WithDetail("status", u.Status)
	}
	return nil
}

// ValidateBlock checks a block against the upload's layout before it is stored
func (u *Upload) ValidateBlock(index int, size int64) error {
	if err := u.ensureUploading(); err != nil {
		return err
	}
	if index < 0 || index >= u.TotalBlocks {
		return ErrInvalidBlockIndex().
			WithDetail("index", index).
			WithDetail("total_blocks", u.TotalBlocks)
	}
	if want := u.ExpectedSize(index); size != want {
		return ErrInvalidBlockSize().
			WithDetail("index", index).
			WithDetail("size", size).
			WithDetail("expected", want)
	}
	return nil
}

// RecordPart stores a block's ETag. Re-sent blocks replace the earlier copy.
func (u *Upload) RecordPart(index int, etag string, size int64) {
	if old, ok := u.Parts[index]; ok {
		u.BytesUploaded -= old.Size
	}
	u.Parts[index] = Part{ETag: etag, Size: size}
	u.BytesUploaded += size
	u.UpdatedAt = time.Now()
}

// Missing lists the block indexes not yet received
func (u *Upload) Missing() []int {
	var missing []int
	for i := 0; i < u.TotalBlocks; i++ {
		if _, ok := u.Parts[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// CompletedParts returns the parts in block order with 1-based part numbers
func (u *Upload) CompletedParts() []fsx.CompletedPart {
	indexes := make([]int, 0, len(u.Parts))
	for i := range u.Parts {
		indexes = append(indexes, i)
	}
	slices.Sort(indexes)

	parts := make([]fsx.CompletedPart, 0, len(indexes))
	for _, i := range indexes {
		parts = append(parts, fsx.CompletedPart{Number: PartNumber(i), ETag: u.Parts[i].ETag})
	}
	return parts
}

// PartNumber maps a block index to a multipart part number
func PartNumber(index int) int32 { return int32(index + 1) }

func (u *Upload) Commit(url string) error {
	if err := u.ensureUploading(); err != nil {
		return err
	}
	if missing := u.Missing(); len(missing) > 0 {
		return ErrUploadIncomplete().
			WithDetail("missing_blocks", missing).
			WithDetail("uploaded_blocks", len(u.Parts)).
			WithDetail("total_blocks", u.TotalBlocks)
	}
	u.RecordingURL = &url
	u.Status = StatusCommitted
	u.UpdatedAt = time.Now()
	return nil
}

func (u *Upload) Abort() error {
	if err := u.ensureUploading(); err != nil {
		return err
	}
	u.Status = StatusAborted
	u.UpdatedAt = time.Now()
	return nil
}

func (u *Upload) Fail() {
	u.Status = StatusFailed
	u.UpdatedAt = time.Now()
}

func (u *Upload) Progress() Progress {
	pct := 100.0
	if u.TotalSize > 0 {
		pct = float64(u.BytesUploaded) / float64(u.TotalSize) * 100
	}
	return Progress{
		UploadID:       u.ID,
		UploadedBlocks: len(u.Parts),
		TotalBlocks:    u.TotalBlocks,
		BytesUploaded:  u.BytesUploaded,
		TotalSize:      u.TotalSize,
		Percentage:     float64(int(pct*100)) / 100,
		Status:         u.Status,
	}
}

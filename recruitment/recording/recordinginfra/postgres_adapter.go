package recordinginfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/recording"
	"github.com/jmoiron/sqlx"
)

// PostgresUploadRepository implements recording.Repository using PostgreSQL
type PostgresUploadRepository struct {
	db *sqlx.DB
}

var _ recording.Repository = (*PostgresUploadRepository)(nil)

func NewPostgresUploadRepository(db *sqlx.DB) *PostgresUploadRepository {
	return &PostgresUploadRepository{db: db}
}

const uploadColumns = `id, session_id, job_id, object_path, multipart_id, content_type, total_size,
	block_size, total_blocks, parts, bytes_uploaded, status, recording_url, expires_at,
	created_at, updated_at`

type uploadModel struct {
	ID            string    `db:"id"`
	SessionID     string    `db:"session_id"`
	JobID         string    `db:"job_id"`
	ObjectPath    string    `db:"object_path"`
	MultipartID   string    `db:"multipart_id"`
	ContentType   string    `db:"content_type"`
	TotalSize     int64     `db:"total_size"`
	BlockSize     int64     `db:"block_size"`
	TotalBlocks   int       `db:"total_blocks"`
	Parts         []byte    `db:"parts"`
	BytesUploaded int64     `db:"bytes_uploaded"`
	Status        string    `db:"status"`
	RecordingURL  *string   `db:"recording_url"`
	ExpiresAt     time.Time `db:"expires_at"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (m *uploadModel) toEntity() (*recording.Upload, error) {
	u := &recording.Upload{
		ID:            kernel.UploadID(m.ID),
		SessionID:     kernel.SessionID(m.SessionID),
		JobID:         kernel.JobID(m.JobID),
		ObjectPath:    m.ObjectPath,
		MultipartID:   m.MultipartID,
		ContentType:   m.ContentType,
		TotalSize:     m.TotalSize,
		BlockSize:     m.BlockSize,
		TotalBlocks:   m.TotalBlocks,
		Parts:         map[int]recording.Part{},
		BytesUploaded: m.BytesUploaded,
		Status:        recording.UploadStatus(m.Status),
		RecordingURL:  m.RecordingURL,
		ExpiresAt:     m.ExpiresAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}

	if len(m.Parts) > 0 {
		if err := json.Unmarshal(m.Parts, &u.Parts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal parts: %w", err)
		}
	}
	return u, nil
}

func partsParam(parts map[int]recording.Part) (string, error) {
	if parts == nil {
		parts = map[int]recording.Part{}
	}
	data, err := json.Marshal(parts)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (r *PostgresUploadRepository) Create(ctx context.Context, u *recording.Upload) error {
	parts, err := partsParam(u.Parts)
	if err != nil {
		return fmt.Errorf("failed to marshal parts: %w", err)
	}

	query := `
		INSERT INTO recording_uploads (` + uploadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = r.db.ExecContext(ctx, query,
		u.ID.String(), u.SessionID.String(), u.JobID.String(), u.ObjectPath, u.MultipartID,
		u.ContentType, u.TotalSize, u.BlockSize, u.TotalBlocks, parts, u.BytesUploaded,
		string(u.Status), u.RecordingURL, u.ExpiresAt, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return errx.Wrap(err, "failed to create recording upload", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresUploadRepository) Update(ctx context.Context, u *recording.Upload) error {
	parts, err := partsParam(u.Parts)
	if err != nil {
		return fmt.Errorf("failed to marshal parts: %w", err)
	}

	query := `
		UPDATE recording_uploads SET
			parts = $2,
			bytes_uploaded = $3,
			status = $4,
			recording_url = $5,
			updated_at = $6
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		u.ID.String(), parts, u.BytesUploaded, string(u.Status), u.RecordingURL, u.UpdatedAt,
	)
	if err != nil {
		return errx.Wrap(err, "failed to update recording upload", errx.TypeInternal)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return recording.ErrUploadNotFound().WithDetail("upload_id", u.ID)
	}
	return nil
}

func (r *PostgresUploadRepository) GetByID(ctx context.Context, id kernel.UploadID) (*recording.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM recording_uploads WHERE id = $1`

	var model uploadModel
	if err := r.db.GetContext(ctx, &model, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recording.ErrUploadNotFound().WithDetail("upload_id", id)
		}
		return nil, errx.Wrap(err, "failed to get recording upload", errx.TypeInternal)
	}
	return model.toEntity()
}

package fsx

import (
	"context"
	"io"
)

// FileReader reads whole objects
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// FileWriter writes whole objects
type FileWriter interface {
	WriteFile(ctx context.Context, path string, data []byte) error
	WriteFileStream(ctx context.Context, path string, r io.Reader) error
}

// FileSystem is the blob storage used for raw uploads
type FileSystem interface {
	FileReader
	FileWriter
	DeleteFile(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	Join(elem ...string) string
	URL(path string) string
}

// CompletedPart identifies one uploaded block of a multipart object
type CompletedPart struct {
	Number int32
	ETag   string
}

// MultipartStore stages fixed-size blocks and commits them as one object
type MultipartStore interface {
	CreateMultipart(ctx context.Context, path, contentType string) (string, error)
	UploadPart(ctx context.Context, path, uploadID string, number int32, r io.ReadSeeker, size int64) (string, error)
	CompleteMultipart(ctx context.Context, path, uploadID string, parts []CompletedPart) error
	AbortMultipart(ctx context.Context, path, uploadID string) error
	URL(path string) string
}

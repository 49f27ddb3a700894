package fsxlocal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/fsx"
	"github.com/google/uuid"
)

// LocalFileSystem keeps objects on disk below a root directory.
// Used when no bucket is configured.
type LocalFileSystem struct {
	root    string
	baseURL string
}

var (
	_ fsx.FileSystem     = (*LocalFileSystem)(nil)
	_ fsx.MultipartStore = (*LocalFileSystem)(nil)
)

func NewLocalFileSystem(root, baseURL string) (*LocalFileSystem, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create root %s: %w", root, err)
	}
	return &LocalFileSystem{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (fs *LocalFileSystem) abs(p string) (string, error) {
	clean := filepath.Clean("/" + p)
	full := filepath.Join(fs.root, clean)
	if !strings.HasPrefix(full, filepath.Clean(fs.root)) {
		return "", fmt.Errorf("path escapes root: %s", p)
	}
	return full, nil
}

func (fs *LocalFileSystem) Join(elem ...string) string {
	return filepath.ToSlash(filepath.Join(elem...))
}

func (fs *LocalFileSystem) URL(p string) string {
	return fs.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(p), "/")
}

func (fs *LocalFileSystem) ReadFile(_ context.Context, p string) ([]byte, error) {
	full, err := fs.abs(p)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

func (fs *LocalFileSystem) WriteFile(_ context.Context, p string, data []byte) error {
	full, err := fs.abs(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func (fs *LocalFileSystem) WriteFileStream(ctx context.Context, p string, r io.Reader) error {
	full, err := fs.abs(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	f, err := os.Create(full)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}

func (fs *LocalFileSystem) DeleteFile(_ context.Context, p string) error {
	full, err := fs.abs(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (fs *LocalFileSystem) Exists(_ context.Context, p string) (bool, error) {
	full, err := fs.abs(p)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// ============================================================================
// Multipart: parts are staged in a hidden directory next to the target
// ============================================================================

func (fs *LocalFileSystem) stagingDir(uploadID string) string {
	return filepath.Join(fs.root, ".multipart", uploadID)
}

func (fs *LocalFileSystem) CreateMultipart(_ context.Context, _ string, _ string) (string, error) {
	id := uuid.NewString()
	if err := os.MkdirAll(fs.stagingDir(id), 0o755); err != nil {
		return "", err
	}
	return id, nil
}

func (fs *LocalFileSystem) UploadPart(_ context.Context, _ string, uploadID string, number int32, r io.ReadSeeker, _ int64) (string, error) {
	dir := fs.stagingDir(uploadID)
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("unknown upload %s: %w", uploadID, err)
	}
	f, err := os.Create(filepath.Join(dir, fmt.Sprintf("%05d", number)))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return fmt.Sprintf("\"%s-%d\"", uploadID, number), nil
}

func (fs *LocalFileSystem) CompleteMultipart(ctx context.Context, p, uploadID string, parts []fsx.CompletedPart) error {
	dir := fs.stagingDir(uploadID)
	sorted := make([]fsx.CompletedPart, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	readers := make([]io.Reader, 0, len(sorted))
	var files []*os.File
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	for _, part := range sorted {
		f, err := os.Open(filepath.Join(dir, fmt.Sprintf("%05d", part.Number)))
		if err != nil {
			return fmt.Errorf("missing part %d: %w", part.Number, err)
		}
		files = append(files, f)
		readers = append(readers, f)
	}

	if err := fs.WriteFileStream(ctx, p, io.MultiReader(readers...)); err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

func (fs *LocalFileSystem) AbortMultipart(_ context.Context, _ string, uploadID string) error {
	return os.RemoveAll(fs.stagingDir(uploadID))
}

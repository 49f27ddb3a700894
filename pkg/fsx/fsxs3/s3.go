package fsxs3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/fsx"
)

// S3FileSystem stores objects under a key prefix of one bucket
type S3FileSystem struct {
	client *s3.Client
	bucket string
	prefix string
	region string
}

var (
	_ fsx.FileSystem     = (*S3FileSystem)(nil)
	_ fsx.MultipartStore = (*S3FileSystem)(nil)
)

func NewS3FileSystem(client *s3.Client, bucket, prefix string) *S3FileSystem {
	return &S3FileSystem{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		region: client.Options().Region,
	}
}

func (fs *S3FileSystem) key(p string) string {
	p = strings.TrimLeft(p, "/")
	if fs.prefix == "" {
		return p
	}
	return fs.prefix + "/" + p
}

func (fs *S3FileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}

// URL returns the virtual-hosted style object URL
func (fs *S3FileSystem) URL(p string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", fs.bucket, fs.region, fs.key(p))
}

func (fs *S3FileSystem) ReadFile(ctx context.Context, p string) ([]byte, error) {
	out, err := fs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(p)),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", p, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (fs *S3FileSystem) WriteFile(ctx context.Context, p string, data []byte) error {
	_, err := fs.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(fs.bucket),
		Key:           aws.String(fs.key(p)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", p, err)
	}
	return nil
}

// WriteFileStream buffers the reader since PutObject needs a seekable body
func (fs *S3FileSystem) WriteFileStream(ctx context.Context, p string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return fs.WriteFile(ctx, p, data)
}

func (fs *S3FileSystem) DeleteFile(ctx context.Context, p string) error {
	_, err := fs.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(p)),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", p, err)
	}
	return nil
}

func (fs *S3FileSystem) Exists(ctx context.Context, p string) (bool, error) {
	_, err := fs.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(p)),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("head object %s: %w", p, err)
	}
	return true, nil
}

// ============================================================================
// Multipart
// ============================================================================

func (fs *S3FileSystem) CreateMultipart(ctx context.Context, p, contentType string) (string, error) {
	out, err := fs.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(fs.bucket),
		Key:         aws.String(fs.key(p)),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("create multipart upload %s: %w", p, err)
	}
	return aws.ToString(out.UploadId), nil
}

func (fs *S3FileSystem) UploadPart(ctx context.Context, p, uploadID string, number int32, r io.ReadSeeker, size int64) (string, error) {
	out, err := fs.client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:        aws.String(fs.bucket),
		Key:           aws.String(fs.key(p)),
		UploadId:      aws.String(uploadID),
		PartNumber:    aws.Int32(number),
		Body:          r,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("upload part %d of %s: %w", number, p, err)
	}
	return aws.ToString(out.ETag), nil
}

func (fs *S3FileSystem) CompleteMultipart(ctx context.Context, p, uploadID string, parts []fsx.CompletedPart) error {
	sorted := make([]fsx.CompletedPart, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	completed := make([]types.CompletedPart, 0, len(sorted))
	for _, part := range sorted {
		completed = append(completed, types.CompletedPart{
			ETag:       aws.String(part.ETag),
			PartNumber: aws.Int32(part.Number),
		})
	}

	_, err := fs.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(fs.bucket),
		Key:             aws.String(fs.key(p)),
		UploadId:        aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		return fmt.Errorf("complete multipart upload %s: %w", p, err)
	}
	return nil
}

func (fs *S3FileSystem) AbortMultipart(ctx context.Context, p, uploadID string) error {
	_, err := fs.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(fs.bucket),
		Key:      aws.String(fs.key(p)),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		return fmt.Errorf("abort multipart upload %s: %w", p, err)
	}
	return nil
}

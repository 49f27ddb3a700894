// Package uploader sends an interview recording to the server in fixed-size
// blocks, one block in flight at a time, and commits it.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const uploadsPath = "/api/recordings/uploads"

// Progress is reported after every stored block
type Progress struct {
	Block   int     `json:"block"`
	Total   int     `json:"total"`
	Bytes   int64   `json:"bytes"`
	Percent float64 `json:"percent"`
}

type Options struct {
	SessionID   string
	ContentType string
	OnProgress  func(Progress)
}

type Result struct {
	UploadID     string
	RecordingURL string
	Blocks       int
	Bytes        int64
}

// APIError is a non-2xx reply from the server
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upload api: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("upload api: %d %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type initResponse struct {
	UploadID    string `json:"upload_id"`
	BlockSize   int64  `json:"block_size"`
	TotalBlocks int    `json:"total_blocks"`
	UploadToken string `json:"upload_token"`
}

type blockResponse struct {
	Progress struct {
		BytesUploaded int64   `json:"bytes_uploaded"`
		Percentage    float64 `json:"percentage"`
	} `json:"progress"`
}

type commitResponse struct {
	RecordingURL string `json:"recording_url"`
}

// Upload sends size bytes of r. The first failed request aborts the upload
// and its error is returned; nothing is retried.
func (c *Client) Upload(ctx context.Context, r io.ReaderAt, size int64, opts Options) (*Result, error) {
	if size <= 0 {
		return nil, errors.New("upload: size must be positive")
	}

	var init initResponse
	err := c.do(ctx, http.MethodPost, uploadsPath, "", "application/json", mustJSON(map[string]any{
		"session_id":   opts.SessionID,
		"content_type": opts.ContentType,
		"total_size":   size,
	}), &init)
	if err != nil {
		return nil, fmt.Errorf("init upload: %w", err)
	}
	if init.BlockSize <= 0 || init.TotalBlocks <= 0 {
		return nil, fmt.Errorf("init upload: invalid layout %d x %d", init.TotalBlocks, init.BlockSize)
	}

	result, err := c.send(ctx, r, size, init, opts)
	if err != nil {
		c.abort(ctx, init)
		return nil, err
	}
	return result, nil
}

func (c *Client) send(ctx context.Context, r io.ReaderAt, size int64, init initResponse, opts Options) (*Result, error) {
	base := uploadsPath + "/" + init.UploadID
	buf := make([]byte, init.BlockSize)

	for i := 0; i < init.TotalBlocks; i++ {
		off := int64(i) * init.BlockSize
		n := min(init.BlockSize, size-off)
		if _, err := io.ReadFull(io.NewSectionReader(r, off, n), buf[:n]); err != nil {
			return nil, fmt.Errorf("read block %d: %w", i, err)
		}

		var block blockResponse
		path := fmt.Sprintf("%s/blocks/%d", base, i)
		if err := c.do(ctx, http.MethodPut, path, init.UploadToken, "application/octet-stream", buf[:n], &block); err != nil {
			return nil, fmt.Errorf("upload block %d: %w", i, err)
		}

		if opts.OnProgress != nil {
			opts.OnProgress(Progress{
				Block:   i + 1,
				Total:   init.TotalBlocks,
				Bytes:   block.Progress.BytesUploaded,
				Percent: block.Progress.Percentage,
			})
		}
	}

	var commit commitResponse
	if err := c.do(ctx, http.MethodPost, base+"/commit", init.UploadToken, "", nil, &commit); err != nil {
		return nil, fmt.Errorf("commit upload: %w", err)
	}

	return &Result{
		UploadID:     init.UploadID,
		RecordingURL: commit.RecordingURL,
		Blocks:       init.TotalBlocks,
		Bytes:        size,
	}, nil
}

// abort is best effort; the caller's context may already be done
func (c *Client) abort(ctx context.Context, init initResponse) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	_ = c.do(ctx, http.MethodDelete, uploadsPath+"/"+init.UploadID, init.UploadToken, "", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token, contentType string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

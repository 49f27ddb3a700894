package voiceagent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchTranscript(t *testing.T) {
	var gotKey, gotPath, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("xi-api-key")
		gotPath = r.URL.Path
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[
			{"created_at":"2026-03-01T10:00:00Z","source":"ai","message":"Hello, tell me about yourself."},
			{"created_at":"2026-03-01T10:00:20Z","source":"user","message":"I build APIs in Go."},
			{"created_at":"2026-03-01T10:05:00Z","source":"ai","message":"Thanks."}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-1", srv.Client())
	tr, err := c.FetchTranscript(context.Background(), "conv-9")
	require.NoError(t, err)

	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, "/v1/conversations/conv-9/messages", gotPath)
	assert.Equal(t, "1000", gotLimit)

	require.Len(t, tr.Lines, 3)
	assert.Equal(t, SpeakerAgent, tr.Lines[0].Speaker)
	assert.Equal(t, SpeakerCandidate, tr.Lines[1].Speaker)
	assert.Equal(t, "AI: Hello, tell me about yourself.\nUSER: I build APIs in Go.\nAI: Thanks.", tr.Text)
	assert.Equal(t, 5*time.Minute, tr.Duration())
}

func TestFetchTranscriptEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"messages":[]}`))
	}))
	defer srv.Close()

	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewClient(srv.URL, "k", srv.Client())
	c.now = func() time.Time { return fixed }

	tr, err := c.FetchTranscript(context.Background(), "conv")
	require.NoError(t, err)
	assert.Empty(t, tr.Text)
	assert.Equal(t, fixed, tr.StartedAt)
	assert.Equal(t, fixed, tr.EndedAt)
}

func TestFetchTranscriptErrors(t *testing.T) {
	_, err := NewClient("", "", nil).FetchTranscript(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conversation not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err = NewClient(srv.URL, "k", srv.Client()).FetchTranscript(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

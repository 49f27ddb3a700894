// Package voiceagent talks to the ElevenLabs conversational agent that runs
// the spoken interview: transcript retrieval and webhook verification.
package voiceagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	messageLimit   = 1000
)

var ErrNotConfigured = errors.New("voice agent api key is not configured")

// Speaker labels a transcript line
type Speaker string

const (
	SpeakerAgent     Speaker = "AI"
	SpeakerCandidate Speaker = "USER"
)

type Line struct {
	Speaker Speaker
	Text    string
	At      time.Time
}

// Transcript is a finished conversation flattened to "AI: ..." / "USER: ..." lines
type Transcript struct {
	Text      string
	Lines     []Line
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration is the span between the first and last line
func (t *Transcript) Duration() time.Duration {
	if t.StartedAt.IsZero() || t.EndedAt.IsZero() {
		return 0
	}
	return t.EndedAt.Sub(t.StartedAt)
}

func render(lines []Line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s: %s", l.Speaker, l.Text))
	}
	return strings.Join(parts, "\n")
}

// Client calls the ElevenLabs REST API
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	now     func() time.Time
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
		now:     time.Now,
	}
}

func (c *Client) Configured() bool { return c.apiKey != "" }

type messagesResponse struct {
	Messages []struct {
		CreatedAt string `json:"created_at"`
		Source    string `json:"source"`
		Message   string `json:"message"`
	} `json:"messages"`
}

// FetchTranscript downloads every message of a conversation. A conversation
// without messages yields an empty transcript stamped with the current time.
func (c *Client) FetchTranscript(ctx context.Context, conversationID string) (*Transcript, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/v1/conversations/%s/messages?limit=%d",
		c.baseURL, url.PathEscape(conversationID), messageLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build transcript request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch transcript: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}

	if len(payload.Messages) == 0 {
		now := c.now().UTC()
		return &Transcript{StartedAt: now, EndedAt: now}, nil
	}

	t := &Transcript{Lines: make([]Line, 0, len(payload.Messages))}
	for _, m := range payload.Messages {
		at, err := time.Parse(time.RFC3339, m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("message timestamp %q: %w", m.CreatedAt, err)
		}
		speaker := SpeakerCandidate
		if m.Source == "ai" {
			speaker = SpeakerAgent
		}
		t.Lines = append(t.Lines, Line{Speaker: speaker, Text: m.Message, At: at})
	}
	t.StartedAt = t.Lines[0].At
	t.EndedAt = t.Lines[len(t.Lines)-1].At
	t.Text = render(t.Lines)
	return t, nil
}

package voiceagent

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Webhook event types
const (
	EventPostCallTranscription = "post_call_transcription"
	EventConversationEnded     = "conversation_ended"

	StatusDone = "done"
)

const SignatureTolerance = 30 * time.Minute

var (
	ErrMissingSignature = errors.New("webhook signature header missing")
	ErrInvalidSignature = errors.New("webhook signature mismatch")
	ErrStaleSignature   = errors.New("webhook signature timestamp too old")
)

// Event is a conversational agent webhook delivery
type Event struct {
	Type           string    `json:"type"`
	EventTimestamp int64     `json:"event_timestamp,omitempty"`
	Data           EventData `json:"data"`
}

type EventData struct {
	AgentID        string         `json:"agent_id"`
	ConversationID string         `json:"conversation_id"`
	Status         string         `json:"status"`
	Transcript     []Turn         `json:"transcript"`
	Metadata       map[string]any `json:"metadata"`
	Analysis       map[string]any `json:"analysis"`
}

type Turn struct {
	Role           string  `json:"role"`
	Message        string  `json:"message"`
	TimeInCallSecs float64 `json:"time_in_call_secs"`
}

func ParseEvent(body []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	return &e, nil
}

// Transcript renders the turns carried by the event. Start and end come from
// metadata.start_time_unix_secs and call_duration_secs when present.
func (e *Event) Transcript() *Transcript {
	t := &Transcript{}

	if start, ok := metadataNumber(e.Data.Metadata, "start_time_unix_secs"); ok && start > 0 {
		t.StartedAt = time.Unix(int64(start), 0).UTC()
		if d, ok := metadataNumber(e.Data.Metadata, "call_duration_secs"); ok {
			t.EndedAt = t.StartedAt.Add(time.Duration(d * float64(time.Second)))
		}
	}

	for _, turn := range e.Data.Transcript {
		if strings.TrimSpace(turn.Message) == "" {
			continue
		}
		speaker := SpeakerCandidate
		if turn.Role == "agent" {
			speaker = SpeakerAgent
		}
		line := Line{Speaker: speaker, Text: turn.Message}
		if !t.StartedAt.IsZero() {
			line.At = t.StartedAt.Add(time.Duration(turn.TimeInCallSecs * float64(time.Second)))
		}
		t.Lines = append(t.Lines, line)
	}
	t.Text = render(t.Lines)
	return t
}

// Cost is the billed cost reported in metadata, zero when absent
func (e *Event) Cost() float64 {
	v, _ := metadataNumber(e.Data.Metadata, "cost")
	return v
}

// CallSuccessful echoes analysis.call_successful, "unknown" when absent
func (e *Event) CallSuccessful() string {
	if v, ok := e.Data.Analysis["call_successful"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return "unknown"
}

func metadataNumber(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// VerifySignature checks an ElevenLabs-Signature header against the raw
// body. Accepted forms are "t=<unix>,v0=<hex>", "v0=<hex>" and "sha256=<hex>".
// With a timestamp the signed payload is "<t>.<body>".
func VerifySignature(body []byte, header, secret string, now time.Time) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return ErrMissingSignature
	}

	var timestamp string
	digest := header
	switch {
	case strings.Contains(header, ","):
		for _, part := range strings.Split(header, ",") {
			part = strings.TrimSpace(part)
			switch {
			case strings.HasPrefix(part, "t="):
				timestamp = strings.TrimPrefix(part, "t=")
			case strings.HasPrefix(part, "v0="):
				digest = strings.TrimPrefix(part, "v0=")
			}
		}
	case strings.HasPrefix(header, "v0="):
		digest = strings.TrimPrefix(header, "v0=")
	case strings.HasPrefix(header, "sha256="):
		digest = strings.TrimPrefix(header, "sha256=")
	}

	signed := body
	if timestamp != "" {
		if ts, err := strconv.ParseInt(timestamp, 10, 64); err == nil {
			if now.Sub(time.Unix(ts, 0)) > SignatureTolerance {
				return ErrStaleSignature
			}
			signed = append([]byte(timestamp+"."), body...)
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(signed)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(digest))) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign produces a "t=<unix>,v0=<hex>" header for body
func Sign(body []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "."))
	mac.Write(body)
	return fmt.Sprintf("t=%s,v0=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

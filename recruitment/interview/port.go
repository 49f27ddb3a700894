package interview

import (
	"context"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/voiceagent"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
)

type SessionRepository interface {
	// Create inserts a session
	Create(ctx context.Context, s *Session) error

	// Update persists status, conversation, recording and timestamps. A nil
	// recording url keeps the stored one.
	Update(ctx context.Context, s *Session) error

	// SetRecordingURL updates only the recording url of a session
	SetRecordingURL(ctx context.Context, id kernel.SessionID, url string) error

	// GetByID retrieves a session by ID
	GetByID(ctx context.Context, id kernel.SessionID) (*Session, error)

	// GetByConversationID retrieves the session bound to a voice agent conversation
	GetByConversationID(ctx context.Context, conversationID string) (*Session, error)
}

type ResultRepository interface {
	// Save inserts or replaces the result of a session. A stored recording
	// url or security record survives a save that carries none.
	Save(ctx context.Context, r *Result) error

	// GetBySession retrieves the result of a session
	GetBySession(ctx context.Context, sessionID kernel.SessionID) (*Result, error)

	// ListByJob returns a job's results, newest first
	ListByJob(ctx context.Context, jobID kernel.JobID) ([]Result, error)

	// ListWithTranscript returns every result holding a non-empty transcript
	ListWithTranscript(ctx context.Context) ([]Result, error)

	// SetRecordingURL updates the recording of a session's result and
	// reports whether a result existed
	SetRecordingURL(ctx context.Context, sessionID kernel.SessionID, url string) (bool, error)
}

// QuestionGenerator builds the interview plan. It never fails: unusable
// model output is replaced by the question bank.
type QuestionGenerator interface {
	Generate(ctx context.Context, req QuestionRequest) QuestionSet
}

// TranscriptAnalyzer scores a transcript. Unparseable replies produce a
// fallback analysis; only transport failures are returned.
type TranscriptAnalyzer interface {
	Analyze(ctx context.Context, transcript string, candidate kernel.CandidateName, role kernel.JobRole) (*Analysis, error)
}

// VoiceAgent reads finished conversations
type VoiceAgent interface {
	Configured() bool
	FetchTranscript(ctx context.Context, conversationID string) (*voiceagent.Transcript, error)
}

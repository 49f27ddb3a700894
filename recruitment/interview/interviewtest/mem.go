// Package interviewtest provides in-memory interview adapters for tests.
package interviewtest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/voiceagent"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview"
)

// MemSessionRepository is an in-memory interview.SessionRepository
type MemSessionRepository struct {
	mu       sync.Mutex
	sessions map[kernel.SessionID]interview.Session
}

var _ interview.SessionRepository = (*MemSessionRepository)(nil)

func NewMemSessionRepository() *MemSessionRepository {
	return &MemSessionRepository{sessions: map[kernel.SessionID]interview.Session{}}
}

func (r *MemSessionRepository) Create(_ context.Context, s *interview.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *MemSessionRepository) Update(_ context.Context, s *interview.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.sessions[s.ID]
	if !ok {
		return interview.ErrSessionNotFound()
	}
	saved := *s
	if saved.RecordingURL == nil {
		saved.RecordingURL = old.RecordingURL
	}
	r.sessions[s.ID] = saved
	return nil
}

func (r *MemSessionRepository) SetRecordingURL(_ context.Context, id kernel.SessionID, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return interview.ErrSessionNotFound()
	}
	s.AttachRecording(url)
	r.sessions[id] = s
	return nil
}

func (r *MemSessionRepository) GetByID(_ context.Context, id kernel.SessionID) (*interview.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, interview.ErrSessionNotFound().WithDetail("session_id", id)
	}
	return &s, nil
}

func (r *MemSessionRepository) GetByConversationID(_ context.Context, conversationID string) (*interview.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ConversationID != nil && *s.ConversationID == conversationID {
			return &s, nil
		}
	}
	return nil, interview.ErrSessionNotFound().WithDetail("conversation_id", conversationID)
}

// MemResultRepository is an in-memory interview.ResultRepository
type MemResultRepository struct {
	mu      sync.Mutex
	results map[kernel.SessionID]interview.Result
	order   []kernel.SessionID
}

var _ interview.ResultRepository = (*MemResultRepository)(nil)

func NewMemResultRepository() *MemResultRepository {
	return &MemResultRepository{results: map[kernel.SessionID]interview.Result{}}
}

func (r *MemResultRepository) Save(_ context.Context, res *interview.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := *res
	if old, ok := r.results[res.SessionID]; ok {
		saved.ID = old.ID
		saved.CreatedAt = old.CreatedAt
		if saved.RecordingURL == nil {
			saved.RecordingURL = old.RecordingURL
		}
		if saved.SecurityViolations == nil {
			saved.SecurityViolations = old.SecurityViolations
		}
	} else {
		r.order = append(r.order, res.SessionID)
	}
	r.results[res.SessionID] = saved
	return nil
}

func (r *MemResultRepository) GetBySession(_ context.Context, id kernel.SessionID) (*interview.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[id]
	if !ok {
		return nil, interview.ErrResultNotFound().WithDetail("session_id", id)
	}
	return &res, nil
}

func (r *MemResultRepository) ListByJob(_ context.Context, jobID kernel.JobID) ([]interview.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []interview.Result
	for i := len(r.order) - 1; i >= 0; i-- {
		if res := r.results[r.order[i]]; res.JobID == jobID {
			out = append(out, res)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemResultRepository) ListWithTranscript(_ context.Context) ([]interview.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []interview.Result
	for _, id := range r.order {
		if res := r.results[id]; res.Transcript != "" {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *MemResultRepository) SetRecordingURL(_ context.Context, id kernel.SessionID, url string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[id]
	if !ok {
		return false, nil
	}
	res.RecordingURL = &url
	r.results[id] = res
	return true, nil
}

func (r *MemResultRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

// StubVoiceAgent serves canned transcripts keyed by conversation id
type StubVoiceAgent struct {
	mu          sync.Mutex
	Transcripts map[string]*voiceagent.Transcript
	Calls       []string
	Disabled    bool
}

var _ interview.VoiceAgent = (*StubVoiceAgent)(nil)

func NewStubVoiceAgent() *StubVoiceAgent {
	return &StubVoiceAgent{Transcripts: map[string]*voiceagent.Transcript{}}
}

func (v *StubVoiceAgent) Configured() bool { return !v.Disabled }

func (v *StubVoiceAgent) FetchTranscript(_ context.Context, conversationID string) (*voiceagent.Transcript, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Calls = append(v.Calls, conversationID)
	tr, ok := v.Transcripts[conversationID]
	if !ok {
		return nil, errors.New("conversation not found")
	}
	return tr, nil
}

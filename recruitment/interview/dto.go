package interview

import (
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview/anticheat"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interviewsetup"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume"
)

// QuestionRequest is the input of question generation
type QuestionRequest struct {
	Setup     *interviewsetup.Setup
	Candidate *resume.Result
	Job       *job.Job
}

// GenerateLinkResponse - returned with 201 Created
type GenerateLinkResponse struct {
	SessionID      kernel.SessionID     `json:"session_id"`
	SessionURL     string               `json:"session_url"`
	CandidateName  kernel.CandidateName `json:"candidate_name"`
	JobRole        kernel.JobRole       `json:"job_role"`
	QuestionsCount int                  `json:"questions_count"`
	ExpiresAt      time.Time            `json:"expires_at"`
	InterviewFocus string               `json:"interview_focus"`
	Message        string               `json:"message"`
}

// SessionResponse is what the interview page loads
type SessionResponse struct {
	*Session
	Monitor *anticheat.Snapshot `json:"monitor,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type UpdateConversationRequest struct {
	ConversationID string `json:"conversation_id"`
}

type CompleteRequest struct {
	ConversationID string `json:"conversation_id"`
}

// CompleteWithTranscriptRequest carries the transcript captured by the browser
type CompleteWithTranscriptRequest struct {
	Transcript          string            `json:"transcript"`
	TranscriptEntries   []TranscriptEntry `json:"transcript_entries"`
	RecordingURL        *string           `json:"recording_url,omitempty"`
	CheatingFlags       []string          `json:"cheating_flags"`
	FullscreenExitCount int               `json:"fullscreen_exit_count"`
	StartedAt           *time.Time        `json:"started_at,omitempty"`
	EndedAt             *time.Time        `json:"ended_at,omitempty"`
}

// Minimal transcript stored when the browser captured nothing
const (
	EarlyEndMarker     = "Interview ended before substantial conversation"
	MinimalTranscript  = "USER: " + EarlyEndMarker + ".\nAI: Interview was terminated early."
	minimalCandidateID = "minimal-1"
	minimalAgentID     = "minimal-2"
)

// MinimalEntries are the entries paired with MinimalTranscript
func MinimalEntries(at time.Time) []TranscriptEntry {
	ts := at.UTC().Format(time.RFC3339)
	return []TranscriptEntry{
		{ID: minimalCandidateID, Speaker: "USER", Text: EarlyEndMarker + ".", Timestamp: ts},
		{ID: minimalAgentID, Speaker: "AI", Text: "Interview was terminated early.", Timestamp: ts},
	}
}

type CompleteResponse struct {
	Message              string                   `json:"message"`
	SessionID            kernel.SessionID         `json:"session_id"`
	ResultID             kernel.InterviewResultID `json:"result_id"`
	TranscriptSource     string                   `json:"transcript_source"`
	OverallScore         int                      `json:"overall_score"`
	SystemRecommendation Recommendation           `json:"system_recommendation"`
}

type TranscriptResponse struct {
	SessionID          kernel.SessionID     `json:"session_id"`
	Transcript         string               `json:"transcript"`
	TranscriptEntries  []TranscriptEntry    `json:"transcript_entries"`
	TranscriptSource   string               `json:"transcript_source"`
	DurationSeconds    int                  `json:"duration_seconds"`
	StartedAt          *time.Time           `json:"started_at,omitempty"`
	EndedAt            *time.Time           `json:"ended_at,omitempty"`
	SecurityViolations *SecurityViolations  `json:"security_violations,omitempty"`
	CandidateName      kernel.CandidateName `json:"candidate_name"`
}

const DefaultReanalysisReason = "Manual re-analysis"

type AnalyzeStoredRequest struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

type ReanalyzeAllResponse struct {
	Message    string `json:"message"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
	Total      int    `json:"total"`
}

type JobResultsResponse struct {
	JobID   kernel.JobID `json:"job_id"`
	Results []Result     `json:"results"`
	Total   int          `json:"total"`
}

type MonitorEventRequest struct {
	Type string `json:"type"`
}

// WebhookResponse acknowledges a voice agent delivery
type WebhookResponse struct {
	Status    string           `json:"status"`
	Message   string           `json:"message"`
	SessionID kernel.SessionID `json:"session_id,omitempty"`
}

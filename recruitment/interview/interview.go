package interview

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interviewsetup"
)

// SessionStatus is the lifecycle state of an interview session
type SessionStatus string

const (
	StatusPending   SessionStatus = "pending"   // link generated, not opened
	StatusActive    SessionStatus = "active"    // candidate opened the link
	StatusEnded     SessionStatus = "ended"     // call over, result not stored yet
	StatusCompleted SessionStatus = "completed" // result stored
	StatusCancelled SessionStatus = "cancelled"
	StatusExpired   SessionStatus = "expired"
)

var SessionStatuses = []SessionStatus{StatusPending, StatusActive, StatusCompleted, StatusCancelled, StatusExpired, StatusEnded}

func ParseSessionStatus(s string) (SessionStatus, bool) {
	st := SessionStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, slices.Contains(SessionStatuses, st)
}

var validTransitions = map[SessionStatus][]SessionStatus{
	StatusPending: {StatusActive, StatusCompleted, StatusCancelled, StatusExpired, StatusEnded},
	StatusActive:  {StatusPending, StatusCompleted, StatusCancelled, StatusExpired, StatusEnded},
	StatusEnded:   {StatusCompleted, StatusCancelled},
}

// Transcript sources
const (
	SourceVoiceAgentAPI   = "elevenlabs_api"
	SourceFrontendCapture = "frontend_capture"
	SourceWebhook         = "webhook"
)

// Question is one interview question
type Question struct {
	ID               int                             `json:"id"`
	Category         interviewsetup.QuestionCategory `json:"category"`
	Question         string                          `json:"question"`
	Purpose          string                          `json:"purpose"`
	ExpectedDuration int                             `json:"expected_duration"`
	ExpectedDepth    string                          `json:"expected_depth,omitempty"`
}

// QuestionSet is the generated interview plan stored on the session
type QuestionSet struct {
	Questions         []Question                  `json:"questions"`
	Distribution      interviewsetup.Distribution `json:"distribution"`
	InterviewFocus    string                      `json:"interview_focus"`
	SuccessCriteria   string                      `json:"success_criteria"`
	TotalQuestions    int                         `json:"total_questions"`
	EstimatedDuration int                         `json:"estimated_duration"`
	Generated         bool                        `json:"generated"`
}

// CountByCategory tallies the questions per category
func (q *QuestionSet) CountByCategory() interviewsetup.Distribution {
	d := interviewsetup.Distribution{}
	for _, question := range q.Questions {
		d[question.Category]++
	}
	return d
}

// Session is one candidate's interview link
type Session struct {
	ID              kernel.SessionID     `db:"id" json:"session_id"`
	JobID           kernel.JobID         `db:"job_id" json:"job_id"`
	ResumeID        kernel.ResumeID      `db:"resume_id" json:"resume_id"`
	SetupID         *kernel.SetupID      `db:"setup_id" json:"setup_id,omitempty"`
	CandidateName   kernel.CandidateName `db:"candidate_name" json:"candidate_name"`
	JobRole         kernel.JobRole       `db:"-" json:"job_role,omitempty"`
	Status          SessionStatus        `db:"status" json:"status"`
	SessionURL      string               `db:"session_url" json:"session_url"`
	Questions       QuestionSet          `db:"-" json:"questions"`
	InterviewPrompt string               `db:"interview_prompt" json:"interview_prompt"`
	DurationMinutes int                  `db:"duration_minutes" json:"duration_minutes"`
	ConversationID  *string              `db:"conversation_id" json:"conversation_id,omitempty"`
	RecordingURL    *string              `db:"recording_url" json:"recording_url,omitempty"`
	ExpiresAt       time.Time            `db:"expires_at" json:"expires_at"`
	StartedAt       *time.Time           `db:"started_at" json:"started_at,omitempty"`
	CompletedAt     *time.Time           `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time            `db:"updated_at" json:"updated_at"`
}

// NewSession builds a pending session valid for ttl
func NewSession(jobID kernel.JobID, resumeID kernel.ResumeID, name kernel.CandidateName, questions QuestionSet, prompt string, durationMinutes int, ttl time.Duration) *Session {
	now := time.Now()
	id := kernel.NewSessionID(kernel.NewID())
	return &Session{
		ID:              id,
		JobID:           jobID,
		ResumeID:        resumeID,
		CandidateName:   name,
		Status:          StatusPending,
		SessionURL:      "/video-interview?session=" + id.String(),
		Questions:       questions,
		InterviewPrompt: prompt,
		DurationMinutes: durationMinutes,
		ExpiresAt:       now.Add(ttl),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// ============================================================================
// Domain Methods
// ============================================================================

func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// IsClosed reports whether the session accepts no further transitions
func (s *Session) IsClosed() bool {
	_, ok := validTransitions[s.Status]
	return !ok
}

func (s *Session) CanTransition(to SessionStatus) bool {
	if s.Status == to {
		return true
	}
	return slices.Contains(validTransitions[s.Status], to)
}

func (s *Session) UpdateStatus(to SessionStatus) error {
	if !s.CanTransition(to) {
		return ErrInvalidStatusTransition().
			WithDetail("current_status", s.Status).
			WithDetail("new_status", to)
	}
	now := time.Now()
	if to == StatusActive && s.StartedAt == nil {
		s.StartedAt = &now
	}
	if to == StatusCompleted && s.CompletedAt == nil {
		s.CompletedAt = &now
	}
	s.Status = to
	s.UpdatedAt = now
	return nil
}

// Open is called when the candidate loads the link. It reports whether the
// session just became active.
func (s *Session) Open(now time.Time) (bool, error) {
	if s.Status == StatusExpired || (s.IsExpired(now) && !s.IsClosed()) {
		if s.Status != StatusExpired {
			s.Status = StatusExpired
			s.UpdatedAt = now
		}
		return false, ErrSessionExpired().WithDetail("expired_at", s.ExpiresAt)
	}
	if s.Status != StatusPending {
		return false, nil
	}
	if err := s.UpdateStatus(StatusActive); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) AttachConversation(conversationID string) {
	s.ConversationID = &conversationID
	s.UpdatedAt = time.Now()
}

func (s *Session) AttachRecording(url string) {
	s.RecordingURL = &url
	s.UpdatedAt = time.Now()
}

// ============================================================================
// Result
// ============================================================================

// Recommendation is the hiring verdict of an interview
type Recommendation string

const (
	RecommendStrongHire Recommendation = "Strong Hire"
	RecommendHire       Recommendation = "Hire"
	RecommendMaybe      Recommendation = "Maybe"
	RecommendNoHire     Recommendation = "No Hire"
	RecommendIncomplete Recommendation = "Incomplete - Reschedule Interview"
)

// NormalizeRecommendation maps free model text onto a known verdict
func NormalizeRecommendation(s string) Recommendation {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strong hire":
		return RecommendStrongHire
	case "hire":
		return RecommendHire
	case "no hire":
		return RecommendNoHire
	case "incomplete - reschedule interview", "incomplete":
		return RecommendIncomplete
	default:
		return RecommendMaybe
	}
}

// TranscriptEntry is one captured utterance
type TranscriptEntry struct {
	ID        string `json:"id"`
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// SecurityViolations summarises anti-cheat findings for a result
type SecurityViolations struct {
	CheatingFlags       []string `json:"cheating_flags"`
	FullscreenExitCount int      `json:"fullscreen_exit_count"`
	TabSwitches         int      `json:"tab_switches"`
	SecurityScore       int      `json:"security_score"`
}

// CheatingExitThreshold is the number of fullscreen exits tolerated
const CheatingExitThreshold = 2

func NewSecurityViolations(flags []string, exits, tabSwitches int) *SecurityViolations {
	if flags == nil {
		flags = []string{}
	}
	return &SecurityViolations{
		CheatingFlags:       flags,
		FullscreenExitCount: exits,
		TabSwitches:         tabSwitches,
		SecurityScore:       SecurityScore(exits),
	}
}

// SecurityScore is 100 minus 10 per fullscreen exit, floored at 0
func SecurityScore(exits int) int {
	return max(0, 100-10*exits)
}

func (v *SecurityViolations) CheatingSuspected() bool {
	return v != nil && v.FullscreenExitCount > CheatingExitThreshold
}

type BehavioralAnalysis struct {
	ConfidenceLevel  string `json:"confidence_level"`
	CheatingDetected bool   `json:"cheating_detected"`
	BodyLanguage     string `json:"body_language"`
	SpeechPattern    string `json:"speech_pattern"`
}

type TechnicalCompetency struct {
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	DepthRating string   `json:"depth_rating"`
}

type PerformanceMetrics struct {
	ResponseQuality      string `json:"response_quality"`
	TechnicalAccuracy    string `json:"technical_accuracy"`
	ExamplesProvided     string `json:"examples_provided"`
	ClarityOfExplanation string `json:"clarity_of_explanation"`
}

// Analysis is the scored assessment of a transcript
type Analysis struct {
	DomainScore                  int                 `json:"domain_score"`
	BehavioralScore              int                 `json:"behavioral_score"`
	CommunicationScore           int                 `json:"communication_score"`
	OverallScore                 int                 `json:"overall_score"`
	BehavioralAnalysis           BehavioralAnalysis  `json:"behavioral_analysis"`
	DomainKnowledgeInsights      string              `json:"domain_knowledge_insights"`
	TechnicalCompetencyAnalysis  TechnicalCompetency `json:"technical_competency_analysis"`
	ProblemSolvingApproach       string              `json:"problem_solving_approach"`
	RelevantExperienceAssessment string              `json:"relevant_experience_assessment"`
	KnowledgeGaps                []string            `json:"knowledge_gaps"`
	InterviewPerformanceMetrics  PerformanceMetrics  `json:"interview_performance_metrics"`
	AreasOfImprovement           []string            `json:"areas_of_improvement"`
	SystemRecommendation         Recommendation      `json:"system_recommendation"`
}

// ApplySecurity marks cheating when the violations cross the exit threshold
func (a *Analysis) ApplySecurity(v *SecurityViolations) {
	if !v.CheatingSuspected() {
		return
	}
	a.BehavioralAnalysis.CheatingDetected = true
	a.BehavioralAnalysis.BodyLanguage = fmt.Sprintf("Multiple fullscreen exits detected (%d times)", v.FullscreenExitCount)
}

// Result is the stored outcome of a completed interview
type Result struct {
	ID                 kernel.InterviewResultID `json:"id"`
	SessionID          kernel.SessionID         `json:"session_id"`
	JobID              kernel.JobID             `json:"job_id"`
	ResumeID           kernel.ResumeID          `json:"resume_id"`
	CandidateName      kernel.CandidateName     `json:"candidate_name"`
	Transcript         string                   `json:"transcript"`
	TranscriptEntries  []TranscriptEntry        `json:"transcript_entries,omitempty"`
	TranscriptSource   string                   `json:"transcript_source"`
	ConversationStart  *time.Time               `json:"conversation_start,omitempty"`
	ConversationEnd    *time.Time               `json:"conversation_end,omitempty"`
	Analysis           Analysis                 `json:"analysis"`
	SecurityViolations *SecurityViolations      `json:"security_violations,omitempty"`
	RecordingURL       *string                  `json:"recording_url,omitempty"`
	RawAnalysis        map[string]any           `json:"raw_analysis,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// NewResult builds a result for session from an analysed transcript
func NewResult(s *Session, transcript string, source string, analysis *Analysis) *Result {
	now := time.Now()
	return &Result{
		ID:               kernel.NewInterviewResultID(kernel.NewID()),
		SessionID:        s.ID,
		JobID:            s.JobID,
		ResumeID:         s.ResumeID,
		CandidateName:    s.CandidateName,
		Transcript:       transcript,
		TranscriptSource: source,
		Analysis:         *analysis,
		RecordingURL:     s.RecordingURL,
		RawAnalysis:      map[string]any{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// DurationSeconds is the conversation length, zero when either end is unknown
func (r *Result) DurationSeconds() int {
	if r.ConversationStart == nil || r.ConversationEnd == nil {
		return 0
	}
	return int(r.ConversationEnd.Sub(*r.ConversationStart).Seconds())
}

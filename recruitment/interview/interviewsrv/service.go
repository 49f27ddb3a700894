package interviewsrv

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/metrics"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/voiceagent"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/logx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview/anticheat"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interviewsetup"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume"
)

const (
	bulkReanalysisReason = "Bulk re-analysis"
	callbackTimeout      = 10 * time.Second
)

// SetupLookup finds the active interview setup for a candidate profile
type SetupLookup interface {
	ActiveSetup(ctx context.Context, jobID kernel.JobID, roleType kernel.CandidateCategory, level kernel.ExperienceLevel) (*interviewsetup.Setup, error)
}

type Config struct {
	SessionTTL      time.Duration
	GracePeriod     time.Duration
	DefaultDuration time.Duration
	WebhookSecret   string
}

type Service struct {
	sessions  interview.SessionRepository
	results   interview.ResultRepository
	resumes   resume.Repository
	jobs      job.Repository
	setups    SetupLookup
	questions interview.QuestionGenerator
	analyzer  interview.TranscriptAnalyzer
	voice     interview.VoiceAgent
	monitors  *anticheat.Registry
	cfg       Config
	now       func() time.Time
}

func NewService(
	sessions interview.SessionRepository,
	results interview.ResultRepository,
	resumes resume.Repository,
	jobs job.Repository,
	setups SetupLookup,
	questions interview.QuestionGenerator,
	analyzer interview.TranscriptAnalyzer,
	voice interview.VoiceAgent,
	cfg Config,
) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = interviewsetup.DefaultInterviewDuration * time.Minute
	}
	s := &Service{
		sessions:  sessions,
		results:   results,
		resumes:   resumes,
		jobs:      jobs,
		setups:    setups,
		questions: questions,
		analyzer:  analyzer,
		voice:     voice,
		cfg:       cfg,
		now:       time.Now,
	}
	s.monitors = anticheat.NewRegistry(cfg.GracePeriod, anticheat.Callbacks{
		OnExpire:    s.onCountdownExpired,
		OnViolation: s.onViolation,
	})
	return s
}

// Shutdown cancels every running monitor
func (s *Service) Shutdown() {
	s.monitors.StopAll()
}

// ============================================================================
// Sessions
// ============================================================================

// GenerateInterviewLink creates a session with personalised questions for a screened candidate
func (s *Service) GenerateInterviewLink(ctx context.Context, resumeID kernel.ResumeID) (*interview.GenerateLinkResponse, error) {
	candidate, err := s.resumes.GetByID(ctx, resumeID)
	if err != nil {
		return nil, err
	}

	j, err := s.jobs.GetByID(ctx, candidate.JobID)
	if err != nil {
		return nil, err
	}

	cls := candidate.Classification
	setup, err := s.setups.ActiveSetup(ctx, j.ID, cls.Category, cls.Level)
	if err != nil {
		if errx.IsCode(err, interviewsetup.CodeSetupNotFound) {
			return nil, interview.ErrNoInterviewSetup().
				WithDetail("role_type", cls.Category).
				WithDetail("level", cls.Level)
		}
		return nil, err
	}

	questions := s.questions.Generate(ctx, interview.QuestionRequest{Setup: setup, Candidate: candidate, Job: j})
	prompt := BuildInterviewPrompt(questions, candidate.CandidateName, j.Role)

	session := interview.NewSession(j.ID, candidate.ID, candidate.CandidateName, questions, prompt, setup.InterviewDuration, s.cfg.SessionTTL)
	setupID := setup.ID
	session.SetupID = &setupID
	session.JobRole = j.Role

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, errx.Wrap(err, "failed to create interview session", errx.TypeInternal)
	}

	logx.Infof("Interview session %s created for %s (%d questions)", session.ID, candidate.CandidateName, len(questions.Questions))

	return &interview.GenerateLinkResponse{
		SessionID:      session.ID,
		SessionURL:     session.SessionURL,
		CandidateName:  session.CandidateName,
		JobRole:        j.Role,
		QuestionsCount: len(questions.Questions),
		ExpiresAt:      session.ExpiresAt,
		InterviewFocus: questions.InterviewFocus,
		Message:        "Interview link generated successfully",
	}, nil
}

// GetSession loads a session for the interview page, activating it on first open
func (s *Service) GetSession(ctx context.Context, id kernel.SessionID) (*interview.SessionResponse, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := session.Status
	activated, err := session.Open(s.now())
	if err != nil {
		if session.Status != before {
			if uerr := s.sessions.Update(ctx, session); uerr != nil {
				logx.Errorf("Failed to mark session %s expired: %v", id, uerr)
			}
			s.monitors.Stop(id)
		}
		return nil, err
	}

	if activated {
		if err := s.sessions.Update(ctx, session); err != nil {
			return nil, errx.Wrap(err, "failed to activate interview session", errx.TypeInternal)
		}
	}
	if session.Status == interview.StatusActive {
		s.ensureMonitor(session)
	}

	if j, err := s.jobs.GetByID(ctx, session.JobID); err == nil {
		session.JobRole = j.Role
	}

	resp := &interview.SessionResponse{Session: session}
	if snap, ok := s.monitors.Snapshot(id); ok {
		resp.Monitor = &snap
	}
	return resp, nil
}

// UpdateStatus moves a session to one of the known statuses
func (s *Service) UpdateStatus(ctx context.Context, id kernel.SessionID, status string) (*interview.Session, error) {
	to, ok := interview.ParseSessionStatus(status)
	if !ok {
		return nil, interview.ErrInvalidStatus().
			WithDetail("status", status).
			WithDetail("allowed", interview.SessionStatuses)
	}

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := session.UpdateStatus(to); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, errx.Wrap(err, "failed to update interview status", errx.TypeInternal)
	}

	if to == interview.StatusActive {
		s.ensureMonitor(session)
	} else if to != interview.StatusPending {
		s.monitors.Stop(id)
	}
	return session, nil
}

// UpdateConversation binds the voice agent conversation to the session
func (s *Service) UpdateConversation(ctx context.Context, id kernel.SessionID, conversationID string) (*interview.Session, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, interview.ErrMissingConversation()
	}

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	session.AttachConversation(conversationID)
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, errx.Wrap(err, "failed to store conversation id", errx.TypeInternal)
	}
	return session, nil
}

// AttachRecording stores a committed recording on the session and on the
// session's result when one exists
func (s *Service) AttachRecording(ctx context.Context, id kernel.SessionID, url string) error {
	if _, err := s.sessions.GetByID(ctx, id); err != nil {
		return err
	}

	// session first: a completion that saves its result after this point
	// picks the url up from the session
	if err := s.sessions.SetRecordingURL(ctx, id, url); err != nil {
		return errx.Wrap(err, "failed to attach recording to interview session", errx.TypeInternal)
	}

	found, err := s.results.SetRecordingURL(ctx, id, url)
	if err != nil {
		return errx.Wrap(err, "failed to attach recording to interview result", errx.TypeInternal)
	}

	logx.Infof("Recording attached to session %s (result updated: %t)", id, found)
	return nil
}

// ============================================================================
// Completion
// ============================================================================

type completion struct {
	transcript   string
	entries      []interview.TranscriptEntry
	source       string
	start        *time.Time
	end          *time.Time
	recordingURL *string
	security     *interview.SecurityViolations
	raw          map[string]any
}

// Complete fetches the transcript from the voice agent and stores the analysed result
func (s *Service) Complete(ctx context.Context, id kernel.SessionID, conversationID string) (*interview.CompleteResponse, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, interview.ErrMissingConversation()
	}
	if !s.voice.Configured() {
		return nil, interview.ErrVoiceAgentNotConfigured()
	}

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	session.AttachConversation(conversationID)

	tr, err := s.voice.FetchTranscript(ctx, conversationID)
	if err != nil {
		return nil, interview.ErrTranscriptFetchFailed().
			WithDetail("conversation_id", conversationID).
			WithCause(err)
	}

	result, err := s.finish(ctx, session, completion{
		transcript: tr.Text,
		entries:    entriesFrom(tr),
		source:     interview.SourceVoiceAgentAPI,
		start:      timePtr(tr.StartedAt),
		end:        timePtr(tr.EndedAt),
		raw: map[string]any{
			"total_messages":  len(tr.Lines),
			"conversation_id": conversationID,
		},
	})
	if err != nil {
		return nil, err
	}
	return completeResponse(result), nil
}

// CompleteWithTranscript stores the transcript captured by the browser
func (s *Service) CompleteWithTranscript(ctx context.Context, id kernel.SessionID, req interview.CompleteWithTranscriptRequest) (*interview.CompleteResponse, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	transcript := strings.TrimSpace(req.Transcript)
	entries := req.TranscriptEntries
	if transcript == "" {
		transcript = interview.MinimalTranscript
		entries = interview.MinimalEntries(now)
	}

	start := req.StartedAt
	if start == nil {
		start = session.StartedAt
	}
	end := req.EndedAt
	if end == nil {
		end = &now
	}

	recordingURL := req.RecordingURL
	if recordingURL == nil {
		recordingURL = session.RecordingURL
	}

	result, err := s.finish(ctx, session, completion{
		transcript:   transcript,
		entries:      entries,
		source:       interview.SourceFrontendCapture,
		start:        start,
		end:          end,
		recordingURL: recordingURL,
		security:     interview.NewSecurityViolations(req.CheatingFlags, req.FullscreenExitCount, 0),
		raw: map[string]any{
			"total_messages": len(entries),
			"source":         interview.SourceFrontendCapture,
			"session_data": map[string]any{
				"cheating_flags":        req.CheatingFlags,
				"fullscreen_exit_count": req.FullscreenExitCount,
				"recording_url":         recordingURL,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return completeResponse(result), nil
}

// finish analyses a transcript, stores the result and completes the session
func (s *Service) finish(ctx context.Context, session *interview.Session, c completion) (*interview.Result, error) {
	role := s.jobRole(ctx, session.JobID)

	analysis, err := s.analyzer.Analyze(ctx, c.transcript, session.CandidateName, role)
	if err != nil {
		return nil, interview.ErrAnalysisFailed().
			WithDetail("session_id", session.ID).
			WithCause(err)
	}

	security := c.security
	if snap, ok := s.monitors.Stop(session.ID); ok {
		security = mergeSecurity(security, snap)
	}
	analysis.ApplySecurity(security)

	result := interview.NewResult(session, c.transcript, c.source, analysis)
	result.TranscriptEntries = c.entries
	result.ConversationStart = c.start
	result.ConversationEnd = c.end
	result.SecurityViolations = security
	if c.recordingURL != nil {
		result.RecordingURL = c.recordingURL
	}
	if c.raw != nil {
		result.RawAnalysis = c.raw
	}

	if err := s.results.Save(ctx, result); err != nil {
		return nil, errx.Wrap(err, "failed to store interview result", errx.TypeInternal)
	}

	if session.CanTransition(interview.StatusCompleted) {
		_ = session.UpdateStatus(interview.StatusCompleted)
	} else {
		logx.Warnf("Interview result stored for session %s in status %s", session.ID, session.Status)
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, errx.Wrap(err, "failed to complete interview session", errx.TypeInternal)
	}

	if result.RecordingURL == nil {
		s.adoptSessionRecording(ctx, result)
	}

	metrics.InterviewsCompleted.WithLabelValues(c.source).Inc()
	logx.Infof("Interview %s analysed from %s: overall %d (%s)",
		session.ID, c.source, analysis.OverallScore, analysis.SystemRecommendation)
	return result, nil
}

// adoptSessionRecording copies a recording committed while the transcript
// was being analysed onto the freshly stored result
func (s *Service) adoptSessionRecording(ctx context.Context, result *interview.Result) {
	fresh, err := s.sessions.GetByID(ctx, result.SessionID)
	if err != nil || fresh.RecordingURL == nil {
		return
	}
	if _, err := s.results.SetRecordingURL(ctx, result.SessionID, *fresh.RecordingURL); err != nil {
		logx.Warnf("Recording of session %s not copied to its result: %v", result.SessionID, err)
		return
	}
	result.RecordingURL = fresh.RecordingURL
}

// mergeSecurity combines reported violations with a monitor snapshot:
// the larger counts win and flags are unioned
func mergeSecurity(reported *interview.SecurityViolations, snap anticheat.Snapshot) *interview.SecurityViolations {
	var flags []string
	exits, tabs := snap.FullscreenExitCount, snap.TabSwitches
	if reported != nil {
		flags = append(flags, reported.CheatingFlags...)
		exits = max(exits, reported.FullscreenExitCount)
		tabs = max(tabs, reported.TabSwitches)
	}
	for _, f := range snap.Flags {
		if !slices.Contains(flags, f) {
			flags = append(flags, f)
		}
	}
	return interview.NewSecurityViolations(flags, exits, tabs)
}

// ============================================================================
// Results
// ============================================================================

func (s *Service) GetResult(ctx context.Context, id kernel.SessionID) (*interview.Result, error) {
	return s.results.GetBySession(ctx, id)
}

func (s *Service) GetTranscript(ctx context.Context, id kernel.SessionID) (*interview.TranscriptResponse, error) {
	r, err := s.results.GetBySession(ctx, id)
	if err != nil {
		return nil, err
	}
	entries := r.TranscriptEntries
	if entries == nil {
		entries = []interview.TranscriptEntry{}
	}
	return &interview.TranscriptResponse{
		SessionID:          r.SessionID,
		Transcript:         r.Transcript,
		TranscriptEntries:  entries,
		TranscriptSource:   r.TranscriptSource,
		DurationSeconds:    r.DurationSeconds(),
		StartedAt:          r.ConversationStart,
		EndedAt:            r.ConversationEnd,
		SecurityViolations: r.SecurityViolations,
		CandidateName:      r.CandidateName,
	}, nil
}

// ListJobResults returns a job's interview results, newest first
func (s *Service) ListJobResults(ctx context.Context, jobID kernel.JobID) (*interview.JobResultsResponse, error) {
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	results, err := s.results.ListByJob(ctx, jobID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list interview results", errx.TypeInternal)
	}
	if results == nil {
		results = []interview.Result{}
	}
	return &interview.JobResultsResponse{JobID: jobID, Results: results, Total: len(results)}, nil
}

// AnalyzeStoredTranscript re-runs the analysis over a stored transcript
func (s *Service) AnalyzeStoredTranscript(ctx context.Context, req interview.AnalyzeStoredRequest) (*interview.Result, error) {
	id := kernel.NewSessionID(strings.TrimSpace(req.SessionID))
	if id.IsEmpty() {
		return nil, interview.ErrMissingSessionID()
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = interview.DefaultReanalysisReason
	}

	r, err := s.results.GetBySession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.reanalyze(ctx, r, reason); err != nil {
		return nil, err
	}
	return r, nil
}

// ReanalyzeAll re-runs the analysis over every stored transcript
func (s *Service) ReanalyzeAll(ctx context.Context) (*interview.ReanalyzeAllResponse, error) {
	results, err := s.results.ListWithTranscript(ctx)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list interview results", errx.TypeInternal)
	}

	resp := &interview.ReanalyzeAllResponse{Total: len(results)}
	for i := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.reanalyze(ctx, &results[i], bulkReanalysisReason); err != nil {
			logx.Errorf("Re-analysis failed for session %s: %v", results[i].SessionID, err)
			resp.Failed++
			continue
		}
		resp.Successful++
	}
	resp.Message = fmt.Sprintf("Re-analyzed %d of %d interview results", resp.Successful, resp.Total)
	return resp, nil
}

func (s *Service) reanalyze(ctx context.Context, r *interview.Result, reason string) error {
	if strings.TrimSpace(r.Transcript) == "" {
		return interview.ErrNoTranscript().WithDetail("session_id", r.SessionID)
	}

	analysis, err := s.analyzer.Analyze(ctx, r.Transcript, r.CandidateName, s.jobRole(ctx, r.JobID))
	if err != nil {
		return interview.ErrAnalysisFailed().
			WithDetail("session_id", r.SessionID).
			WithCause(err)
	}
	analysis.ApplySecurity(r.SecurityViolations)

	raw := map[string]any{}
	maps.Copy(raw, r.RawAnalysis)
	raw["reanalyzed_at"] = s.now().UTC().Format(time.RFC3339)
	raw["reason"] = reason

	r.Analysis = *analysis
	r.RawAnalysis = raw
	r.UpdatedAt = s.now()

	if err := s.results.Save(ctx, r); err != nil {
		return errx.Wrap(err, "failed to store re-analysed result", errx.TypeInternal)
	}
	return nil
}

// ============================================================================
// Webhook
// ============================================================================

// HandleWebhook verifies and applies a voice agent delivery
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) (*interview.WebhookResponse, error) {
	if s.cfg.WebhookSecret == "" {
		logx.Warn("Voice agent webhook secret not configured, skipping signature verification")
	} else if err := voiceagent.VerifySignature(body, signature, s.cfg.WebhookSecret, s.now()); err != nil {
		return nil, interview.ErrInvalidWebhookSignature().WithCause(err)
	}

	event, err := voiceagent.ParseEvent(body)
	if err != nil {
		return nil, interview.ErrInvalidWebhookPayload().WithCause(err)
	}

	switch event.Type {
	case voiceagent.EventPostCallTranscription:
		if event.Data.Status != voiceagent.StatusDone {
			return &interview.WebhookResponse{Status: "ok", Message: "Call not completed yet"}, nil
		}
		return s.webhookTranscription(ctx, event)

	case voiceagent.EventConversationEnded:
		session, err := s.sessionForConversation(ctx, event.Data.ConversationID)
		if err != nil {
			return nil, err
		}
		if session.Status != interview.StatusEnded && session.CanTransition(interview.StatusEnded) {
			_ = session.UpdateStatus(interview.StatusEnded)
			if err := s.sessions.Update(ctx, session); err != nil {
				return nil, errx.Wrap(err, "failed to end interview session", errx.TypeInternal)
			}
		}
		return &interview.WebhookResponse{Status: "ok", Message: "Conversation ended", SessionID: session.ID}, nil

	default:
		logx.Infof("Ignoring voice agent webhook event %q", event.Type)
		return &interview.WebhookResponse{Status: "ignored", Message: fmt.Sprintf("Event type %s ignored", event.Type)}, nil
	}
}

func (s *Service) webhookTranscription(ctx context.Context, event *voiceagent.Event) (*interview.WebhookResponse, error) {
	session, err := s.sessionForConversation(ctx, event.Data.ConversationID)
	if err != nil {
		return nil, err
	}

	tr := event.Transcript()
	if strings.TrimSpace(tr.Text) == "" && s.voice.Configured() {
		fetched, err := s.voice.FetchTranscript(ctx, event.Data.ConversationID)
		if err != nil {
			logx.Warnf("Webhook carried no transcript and fetch failed for %s: %v", event.Data.ConversationID, err)
		} else {
			tr = fetched
		}
	}
	if strings.TrimSpace(tr.Text) == "" {
		logx.Warnf("No transcript available for conversation %s", event.Data.ConversationID)
		return &interview.WebhookResponse{Status: "ok", Message: "No transcript available", SessionID: session.ID}, nil
	}

	_, err = s.finish(ctx, session, completion{
		transcript:   tr.Text,
		entries:      entriesFrom(tr),
		source:       interview.SourceWebhook,
		start:        timePtr(tr.StartedAt),
		end:          timePtr(tr.EndedAt),
		recordingURL: session.RecordingURL,
		raw: map[string]any{
			"webhook_metadata": event.Data.Metadata,
			"webhook_analysis": event.Data.Analysis,
			"elevenlabs_cost":  event.Cost(),
			"call_successful":  event.CallSuccessful(),
		},
	})
	if err != nil {
		return nil, err
	}
	return &interview.WebhookResponse{Status: "success", Message: "Interview analysis completed", SessionID: session.ID}, nil
}

func (s *Service) sessionForConversation(ctx context.Context, conversationID string) (*interview.Session, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, interview.ErrInvalidWebhookPayload().WithDetail("conversation_id", "missing")
	}
	return s.sessions.GetByConversationID(ctx, conversationID)
}

// ============================================================================
// Monitor
// ============================================================================

// ReportEvent feeds a browser event into the session's monitor
func (s *Service) ReportEvent(ctx context.Context, id kernel.SessionID, eventType string) (*anticheat.Snapshot, error) {
	event, ok := anticheat.ParseEvent(eventType)
	if !ok {
		return nil, interview.ErrInvalidMonitorEvent().
			WithDetail("type", eventType).
			WithDetail("allowed", anticheat.EventTypes)
	}

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != interview.StatusActive {
		return nil, interview.ErrMonitorNotRunning().WithDetail("status", session.Status)
	}
	s.ensureMonitor(session)

	snap, err := s.monitors.Report(id, event)
	if err != nil {
		return nil, interview.ErrMonitorNotRunning()
	}
	return &snap, nil
}

func (s *Service) MonitorSnapshot(id kernel.SessionID) (*anticheat.Snapshot, error) {
	snap, ok := s.monitors.Snapshot(id)
	if !ok {
		return nil, interview.ErrMonitorNotRunning()
	}
	return &snap, nil
}

// ensureMonitor starts the countdown for an active session that has none,
// e.g. after a restart, with whatever time is left
func (s *Service) ensureMonitor(session *interview.Session) {
	if s.monitors.Running(session.ID) {
		return
	}
	remaining := s.interviewDuration(session)
	if session.StartedAt != nil {
		remaining -= s.now().Sub(*session.StartedAt)
	}
	s.monitors.Start(session.ID, max(remaining, time.Millisecond))
}

func (s *Service) interviewDuration(session *interview.Session) time.Duration {
	if session.DurationMinutes > 0 {
		return time.Duration(session.DurationMinutes) * time.Minute
	}
	return s.cfg.DefaultDuration
}

func (s *Service) onCountdownExpired(id kernel.SessionID) {
	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		logx.Errorf("Interview countdown expired for unknown session %s: %v", id, err)
		return
	}
	if session.Status != interview.StatusActive {
		return
	}
	_ = session.UpdateStatus(interview.StatusEnded)
	if err := s.sessions.Update(ctx, session); err != nil {
		logx.Errorf("Failed to end session %s after countdown: %v", id, err)
		return
	}
	logx.Infof("Interview session %s ended: time limit reached", id)
}

func (s *Service) onViolation(id kernel.SessionID, snap anticheat.Snapshot) {
	logx.With(
		"session_id", id,
		"fullscreen_exits", snap.FullscreenExitCount,
		"tab_switches", snap.TabSwitches,
		"flags", snap.Flags,
	).Warn("Candidate stayed out of fullscreen past the grace period")
}

// ============================================================================
// Helper Functions
// ============================================================================

func (s *Service) jobRole(ctx context.Context, jobID kernel.JobID) kernel.JobRole {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		logx.Warnf("Job %s unavailable for interview analysis: %v", jobID, err)
		return "the role"
	}
	return j.Role
}

func entriesFrom(tr *voiceagent.Transcript) []interview.TranscriptEntry {
	entries := make([]interview.TranscriptEntry, 0, len(tr.Lines))
	for i, l := range tr.Lines {
		e := interview.TranscriptEntry{
			ID:      fmt.Sprintf("msg-%d", i+1),
			Speaker: string(l.Speaker),
			Text:    l.Text,
		}
		if !l.At.IsZero() {
			e.Timestamp = l.At.UTC().Format(time.RFC3339)
		}
		entries = append(entries, e)
	}
	return entries
}

func completeResponse(r *interview.Result) *interview.CompleteResponse {
	return &interview.CompleteResponse{
		Message:              "Interview completed and analysed successfully",
		SessionID:            r.SessionID,
		ResultID:             r.ID,
		TranscriptSource:     r.TranscriptSource,
		OverallScore:         r.Analysis.OverallScore,
		SystemRecommendation: r.Analysis.SystemRecommendation,
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

package interview

import (
	"net/http"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("INTERVIEW")

// Error codes
var (
	CodeSessionNotFound         = ErrRegistry.Register("SESSION_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Interview session not found")
	CodeResultNotFound          = ErrRegistry.Register("RESULT_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Interview result not found")
	CodeSessionExpired          = ErrRegistry.Register("SESSION_EXPIRED", errx.TypeBusiness, http.StatusGone, "Interview session has expired")
	CodeInvalidStatus           = ErrRegistry.Register("INVALID_STATUS", errx.TypeValidation, http.StatusBadRequest, "Invalid interview status")
	CodeInvalidStatusTransition = ErrRegistry.Register("INVALID_STATUS_TRANSITION", errx.TypeConflict, http.StatusConflict, "Invalid interview status transition")
	CodeNoInterviewSetup        = ErrRegistry.Register("NO_INTERVIEW_SETUP", errx.TypeBusiness, http.StatusBadRequest, "No interview setup found for this candidate type and level")
	CodeMissingSessionID        = ErrRegistry.Register("MISSING_SESSION_ID", errx.TypeValidation, http.StatusBadRequest, "session_id is required")
	CodeMissingConversation     = ErrRegistry.Register("MISSING_CONVERSATION", errx.TypeValidation, http.StatusBadRequest, "conversation_id is required")
	CodeVoiceAgentNotConfigured = ErrRegistry.Register("VOICE_AGENT_NOT_CONFIGURED", errx.TypeBusiness, http.StatusServiceUnavailable, "Voice agent is not configured")
	CodeTranscriptFetchFailed   = ErrRegistry.Register("TRANSCRIPT_FETCH_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to fetch interview transcript")
	CodeAnalysisFailed          = ErrRegistry.Register("ANALYSIS_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to analyse interview transcript")
	CodeNoTranscript            = ErrRegistry.Register("NO_TRANSCRIPT", errx.TypeBusiness, http.StatusBadRequest, "No transcript stored for this session")
	CodeInvalidWebhookSignature = ErrRegistry.Register("INVALID_WEBHOOK_SIGNATURE", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid webhook signature")
	CodeInvalidWebhookPayload   = ErrRegistry.Register("INVALID_WEBHOOK_PAYLOAD", errx.TypeValidation, http.StatusBadRequest, "Invalid webhook payload")
	CodeInvalidMonitorEvent     = ErrRegistry.Register("INVALID_MONITOR_EVENT", errx.TypeValidation, http.StatusBadRequest, "Invalid monitor event")
	CodeMonitorNotRunning       = ErrRegistry.Register("MONITOR_NOT_RUNNING", errx.TypeNotFound, http.StatusNotFound, "No monitor is running for this session")
)

// Helper functions
func ErrSessionNotFound() *errx.Error {
	return ErrRegistry.New(CodeSessionNotFound)
}

func ErrResultNotFound() *errx.Error {
	return ErrRegistry.New(CodeResultNotFound)
}

func ErrSessionExpired() *errx.Error {
	return ErrRegistry.New(CodeSessionExpired)
}

func ErrInvalidStatus() *errx.Error {
	return ErrRegistry.New(CodeInvalidStatus)
}

func ErrInvalidStatusTransition() *errx.Error {
	return ErrRegistry.New(CodeInvalidStatusTransition)
}

func ErrNoInterviewSetup() *errx.Error {
	return ErrRegistry.New(CodeNoInterviewSetup)
}

func ErrMissingSessionID() *errx.Error {
	return ErrRegistry.New(CodeMissingSessionID)
}

func ErrMissingConversation() *errx.Error {
	return ErrRegistry.New(CodeMissingConversation)
}

func ErrVoiceAgentNotConfigured() *errx.Error {
	return ErrRegistry.New(CodeVoiceAgentNotConfigured)
}

func ErrTranscriptFetchFailed() *errx.Error {
	return ErrRegistry.New(CodeTranscriptFetchFailed)
}

func ErrAnalysisFailed() *errx.Error {
	return ErrRegistry.New(CodeAnalysisFailed)
}

func ErrNoTranscript() *errx.Error {
	return ErrRegistry.New(CodeNoTranscript)
}

func ErrInvalidWebhookSignature() *errx.Error {
	return ErrRegistry.New(CodeInvalidWebhookSignature)
}

func ErrInvalidWebhookPayload() *errx.Error {
	return ErrRegistry.New(CodeInvalidWebhookPayload)
}

func ErrInvalidMonitorEvent() *errx.Error {
	return ErrRegistry.New(CodeInvalidMonitorEvent)
}

func ErrMonitorNotRunning() *errx.Error {
	return ErrRegistry.New(CodeMonitorNotRunning)
}

package interviewapi

import (
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/iam/auth"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview/interviewsrv"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume"
	"github.com/gofiber/fiber/v2"
)

// SignatureHeader carries the voice agent webhook HMAC
const SignatureHeader = "ElevenLabs-Signature"

// Handlers provides HTTP handlers for interviews
type Handlers struct {
	service *interviewsrv.Service
}

func NewHandlers(service *interviewsrv.Service) *Handlers {
	return &Handlers{service: service}
}

// ============================================================================
// Recruiter endpoints
// ============================================================================

// GenerateLink creates an interview session for a screened candidate
// POST /api/candidates/:id/generate-interview-link
func (h *Handlers) GenerateLink(c *fiber.Ctx) error {
	resumeID := kernel.ResumeID(c.Params("id"))
	if resumeID.IsEmpty() {
		return resume.ErrResultNotFound().WithDetail("resume_id", "missing or empty")
	}

	resp, err := h.service.GenerateInterviewLink(c.Context(), resumeID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GET /api/interviews/:id/transcript
func (h *Handlers) GetTranscript(c *fiber.Ctx) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return err
	}

	resp, err := h.service.GetTranscript(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// GET /api/interviews/:id/results
func (h *Handlers) GetResult(c *fiber.Ctx) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return err
	}

	result, err := h.service.GetResult(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// AnalyzeStoredTranscript re-runs the analysis for one session
// POST /api/interviews/analyze-stored-transcript
func (h *Handlers) AnalyzeStoredTranscript(c *fiber.Ctx) error {
	var req interview.AnalyzeStoredRequest
	if err := c.BodyParser(&req); err != nil {
		return interview.ErrMissingSessionID().WithDetail("parse_error", err.Error())
	}

	result, err := h.service.AnalyzeStoredTranscript(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":      "Transcript re-analyzed successfully",
		"session_id":   result.SessionID,
		"result_id":    result.ID,
		"analysis":     result.Analysis,
		"raw_analysis": result.RawAnalysis,
	})
}

// POST /api/interviews/reanalyze-all
func (h *Handlers) ReanalyzeAll(c *fiber.Ctx) error {
	resp, err := h.service.ReanalyzeAll(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// ListJobResults lists a job's interview results, newest first
// GET /api/jobs/:id/interview-results
func (h *Handlers) ListJobResults(c *fiber.Ctx) error {
	jobID := kernel.JobID(c.Params("id"))
	if jobID.IsEmpty() {
		return job.ErrJobNotFound().WithDetail("id", "missing or empty")
	}

	resp, err := h.service.ListJobResults(c.Context(), jobID)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// ============================================================================
// Candidate endpoints
// ============================================================================

// GetSession returns the session, activating it on first open
// GET /api/interviews/:id
func (h *Handlers) GetSession(c *fiber.Ctx) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return err
	}

	resp, err := h.service.GetSession(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// PATCH /api/interviews/:id/status
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return err
	}

	var req interview.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return interview.ErrInvalidStatus().WithDetail("parse_error", err.Error())
	}

	session, err := h.service.UpdateStatus(c.Context(), id, req.Status)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":    "Interview status updated",
		"session_id": session.ID,
		"status":     session.Status,
	})
}

// PATCH /api/interviews/:id/update-conversation
func (h *Handlers) UpdateConversation(c *fiber.Ctx) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return err
	}

	var req interview.UpdateConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return interview.ErrMissingConversation().WithDetail("parse_error", err.Error())
	}

	session, err := h.service.UpdateConversation(c.Context(), id, req.ConversationID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":         "Conversation ID updated",
		"session_id":      session.ID,
		"conversation_id": session.ConversationID,
	})
}

// Complete fetches the transcript from the voice agent and analyses it
// POST /api/interviews/:id/complete
func (h *Handlers) Complete(c *fiber.Ctx) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return err
	}

	var req interview.CompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return interview.ErrMissingConversation().WithDetail("parse_error", err.Error())
	}

	resp, err := h.service.Complete(c.Context(), id, req.ConversationID)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// CompleteWithTranscript analyses a transcript captured in the browser
// POST /api/interviews/:id/complete-with-transcript
func (h *Handlers) CompleteWithTranscript(c *fiber.Ctx) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return err
	}

	var req interview.CompleteWithTranscriptRequest
	if err := c.BodyParser(&req); err != nil {
		return interview.ErrNoTranscript().WithDetail("parse_error", err.Error())
	}

	resp, err := h.service.CompleteWithTranscript(c.Context(), id, req)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// ReportEvent feeds a fullscreen or visibility change into the monitor
// POST /api/interviews/:id/events
func (h *Handlers) ReportEvent(c *fiber.Ctx) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return err
	}

	var req interview.MonitorEventRequest
	if err := c.BodyParser(&req); err != nil {
		return interview.ErrInvalidMonitorEvent().WithDetail("parse_error", err.Error())
	}

	snap, err := h.service.ReportEvent(c.Context(), id, req.Type)
	if err != nil {
		return err
	}

	return c.JSON(snap)
}

// GET /api/interviews/:id/monitor
func (h *Handlers) Monitor(c *fiber.Ctx) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return err
	}

	snap, err := h.service.MonitorSnapshot(id)
	if err != nil {
		return err
	}

	return c.JSON(snap)
}

// Webhook receives post-call deliveries from the voice agent
// POST /api/convai-webhook
func (h *Handlers) Webhook(c *fiber.Ctx) error {
	body := append([]byte(nil), c.Body()...)

	resp, err := h.service.HandleWebhook(c.Context(), body, c.Get(SignatureHeader))
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

func sessionIDParam(c *fiber.Ctx) (kernel.SessionID, error) {
	id := kernel.SessionID(c.Params("id"))
	if id.IsEmpty() {
		return "", interview.ErrMissingSessionID()
	}
	return id, nil
}

// RegisterRoutes registers the interview routes. Candidate and webhook
// routes are reached through the session id and carry no admin auth.
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.UnifiedAuthMiddleware) {
	app.Post("/api/candidates/:id/generate-interview-link",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeInterviewsSchedule),
		handlers.GenerateLink,
	)

	app.Get("/api/jobs/:id/interview-results",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeInterviewsRead),
		handlers.ListJobResults,
	)

	app.Post("/api/convai-webhook", handlers.Webhook)

	interviews := app.Group("/api/interviews")

	interviews.Post("/analyze-stored-transcript",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeInterviewsAnalyze),
		handlers.AnalyzeStoredTranscript,
	)

	interviews.Post("/reanalyze-all",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeInterviewsAnalyze),
		handlers.ReanalyzeAll,
	)

	interviews.Get("/:id/transcript",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeInterviewsRead),
		handlers.GetTranscript,
	)

	interviews.Get("/:id/results",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeInterviewsRead),
		handlers.GetResult,
	)

	interviews.Get("/:id", handlers.GetSession)
	interviews.Get("/:id/monitor", handlers.Monitor)
	interviews.Patch("/:id/status", handlers.UpdateStatus)
	interviews.Patch("/:id/update-conversation", handlers.UpdateConversation)
	interviews.Post("/:id/complete", handlers.Complete)
	interviews.Post("/:id/complete-with-transcript", handlers.CompleteWithTranscript)
	interviews.Post("/:id/events", handlers.ReportEvent)
}

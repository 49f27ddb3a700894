package interviewsetupapi

import (
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/iam/auth"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interviewsetup"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interviewsetup/interviewsetupsrv"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for interview setups
type Handlers struct {
	service *interviewsetupsrv.SetupService
}

func NewHandlers(service *interviewsetupsrv.SetupService) *Handlers {
	return &Handlers{service: service}
}

// ListSetups returns the job's active setups
// GET /api/jobs/:id/interview-setup
func (h *Handlers) ListSetups(c *fiber.Ctx) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return err
	}

	resp, err := h.service.ListSetups(c.Context(), jobID)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// CreateSetup upserts one setup, or replaces all when "configurations" is sent
// POST /api/jobs/:id/interview-setup
func (h *Handlers) CreateSetup(c *fiber.Ctx) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return err
	}

	var req interviewsetup.CreateSetupRequest
	if err := c.BodyParser(&req); err != nil {
		return interviewsetup.ErrInvalidSetup().WithDetail("parse_error", err.Error())
	}

	if req.Configurations != nil {
		resp, err := h.service.ReplaceSetups(c.Context(), jobID, req.Configurations)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}

	setup, err := h.service.CreateSetup(c.Context(), jobID, req.SetupInput)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(setup)
}

// UpdateSetup patches a setup
// PUT /api/jobs/:id/interview-setup/:setup_id
func (h *Handlers) UpdateSetup(c *fiber.Ctx) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return err
	}

	var req interviewsetup.SetupInput
	if err := c.BodyParser(&req); err != nil {
		return interviewsetup.ErrInvalidSetup().WithDetail("parse_error", err.Error())
	}

	setup, err := h.service.UpdateSetup(c.Context(), jobID, kernel.SetupID(c.Params("setup_id")), req)
	if err != nil {
		return err
	}

	return c.JSON(setup)
}

// DeleteSetup deactivates a setup
// DELETE /api/jobs/:id/interview-setup/:setup_id
func (h *Handlers) DeleteSetup(c *fiber.Ctx) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteSetup(c.Context(), jobID, kernel.SetupID(c.Params("setup_id"))); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Interview setup deleted successfully"})
}

// BulkSetups creates or updates many setups at once
// POST /api/jobs/:id/interview-setup/bulk
func (h *Handlers) BulkSetups(c *fiber.Ctx) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return err
	}

	var req interviewsetup.BulkSetupRequest
	if err := c.BodyParser(&req); err != nil {
		return interviewsetup.ErrInvalidSetup().WithDetail("parse_error", err.Error())
	}

	resp, err := h.service.BulkSetups(c.Context(), jobID, req)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// Matrix returns every role type and level with its active setup
// GET /api/jobs/:id/interview-setup/matrix
func (h *Handlers) Matrix(c *fiber.Ctx) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return err
	}

	resp, err := h.service.Matrix(c.Context(), jobID)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

func jobIDParam(c *fiber.Ctx) (kernel.JobID, error) {
	jobID := kernel.JobID(c.Params("id"))
	if jobID.IsEmpty() {
		return "", job.ErrJobNotFound().WithDetail("id", "missing or empty")
	}
	return jobID, nil
}

// RegisterRoutes registers the interview setup routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.UnifiedAuthMiddleware) {
	setups := app.Group("/api/jobs/:id/interview-setup")

	setups.Get("/",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeJobsRead),
		handlers.ListSetups,
	)

	setups.Get("/matrix",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeJobsRead),
		handlers.Matrix,
	)

	setups.Post("/",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeJobsWrite),
		handlers.CreateSetup,
	)

	setups.Post("/bulk",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeJobsWrite),
		handlers.BulkSetups,
	)

	setups.Put("/:setup_id",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeJobsWrite),
		handlers.UpdateSetup,
	)

	setups.Delete("/:setup_id",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeJobsWrite),
		handlers.DeleteSetup,
	)
}

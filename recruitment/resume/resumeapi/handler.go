package resumeapi

import (
	"io"
	"strconv"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/iam/auth"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume/resumesrv"
	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers provides HTTP handlers for resume screening
type Handlers struct {
	service *resumesrv.Service
}

func NewHandlers(service *resumesrv.Service) *Handlers {
	return &Handlers{service: service}
}

// UploadResumes queues resumes for screening against a job
// POST /api/jobs/:id/resumes (multipart, field "files")
func (h *Handlers) UploadResumes(c *fiber.Ctx) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return resume.ErrNoFiles().WithDetail("parse_error", err.Error())
	}

	headers := form.File["files"]
	files := make([]resume.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return resume.ErrStorageFailed().WithCause(err).WithDetail("filename", fh.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return resume.ErrStorageFailed().WithCause(err).WithDetail("filename", fh.Filename)
		}
		files = append(files, resume.UploadedFile{Name: fh.Filename, Data: data})
	}

	resp, err := h.service.UploadResumes(c.Context(), jobID, files)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// GetResults lists the job's results, best fit first
// GET /api/jobs/:id/results?min_score=70&category=tech&level=mid&limit=100&offset=0
func (h *Handlers) GetResults(c *fiber.Ctx) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return err
	}
	filter, err := parseResultFilter(c)
	if err != nil {
		return err
	}

	resp, err := h.service.GetResults(c.Context(), jobID, filter)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// GetSemanticResults ranks results by embedding similarity
// GET /api/jobs/:id/results/semantic?limit=20
func (h *Handlers) GetSemanticResults(c *fiber.Ctx) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return err
	}

	resp, err := h.service.SemanticResults(c.Context(), jobID, c.QueryInt("limit", 0))
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// ExportResults downloads the results as a spreadsheet
// GET /api/jobs/:id/results/export
func (h *Handlers) ExportResults(c *fiber.Ctx) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return err
	}
	filter, err := parseResultFilter(c)
	if err != nil {
		return err
	}

	file, err := h.service.ExportResults(c.Context(), jobID, filter)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Attachment(file.FileName)
	return c.Send(file.Data)
}

// GetResult retrieves a single result
// GET /api/resumes/:id
func (h *Handlers) GetResult(c *fiber.Ctx) error {
	id := kernel.ResumeID(c.Params("id"))
	if id.IsEmpty() {
		return resume.ErrResultNotFound().WithDetail("id", "missing or empty")
	}

	result, err := h.service.GetResult(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// QueueStats reports the batch queue depth
// GET /api/resumes/queue
func (h *Handlers) QueueStats(c *fiber.Ctx) error {
	stats, err := h.service.QueueStats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// ============================================================================
// Helper Functions
// ============================================================================

func jobIDParam(c *fiber.Ctx) (kernel.JobID, error) {
	jobID := kernel.JobID(c.Params("id"))
	if jobID.IsEmpty() {
		return "", job.ErrJobNotFound().WithDetail("id", "missing or empty")
	}
	return jobID, nil
}

func parseResultFilter(c *fiber.Ctx) (resume.ResultFilter, error) {
	filter := resume.ResultFilter{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}

	if raw := c.Query("min_score"); raw != "" {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, resume.ErrInvalidFilter().WithDetail("min_score", raw)
		}
		filter.MinScore = &score
	}
	if raw := c.Query("category"); raw != "" {
		category, ok := kernel.ParseCategory(raw)
		if !ok {
			return filter, resume.ErrInvalidFilter().WithDetail("category", raw)
		}
		filter.Category = &category
	}
	if raw := c.Query("level"); raw != "" {
		level, ok := kernel.ParseLevel(raw)
		if !ok {
			return filter, resume.ErrInvalidFilter().WithDetail("level", raw)
		}
		filter.Level = &level
	}

	return filter, nil
}

// RegisterRoutes registers all resume routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.UnifiedAuthMiddleware) {
	jobs := app.Group("/api/jobs/:id")

	jobs.Post("/resumes",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeResumesWrite),
		handlers.UploadResumes,
	)

	jobs.Get("/results",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeResumesRead),
		handlers.GetResults,
	)

	jobs.Get("/results/semantic",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeResumesRead),
		handlers.GetSemanticResults,
	)

	jobs.Get("/results/export",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeResumesExport),
		handlers.ExportResults,
	)

	resumes := app.Group("/api/resumes")

	resumes.Get("/queue",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeResumesRead),
		handlers.QueueStats,
	)

	resumes.Get("/:id",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeResumesRead),
		handlers.GetResult,
	)
}

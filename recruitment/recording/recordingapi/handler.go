package recordingapi

import (
	"strings"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/recording"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/recording/recordingsrv"
	"github.com/gofiber/fiber/v2"
)

// TokenHeader is accepted in place of a bearer Authorization header
const TokenHeader = "X-Upload-Token"

// Handlers provides HTTP handlers for chunked recording uploads
type Handlers struct {
	service *recordingsrv.Service
}

func NewHandlers(service *recordingsrv.Service) *Handlers {
	return &Handlers{service: service}
}

// InitUpload starts a multipart upload for an interview session
// POST /api/recordings/uploads
func (h *Handlers) InitUpload(c *fiber.Ctx) error {
	var req recording.InitUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return recording.ErrInvalidUpload().WithDetail("parse_error", err.Error())
	}

	resp, err := h.service.InitUpload(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// PutBlock stores one block; the body is the raw bytes
// PUT /api/recordings/uploads/:id/blocks/:index
func (h *Handlers) PutBlock(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return recording.ErrInvalidBlockIndex().WithDetail("index", c.Params("index"))
	}

	// fiber reuses the body buffer after the handler returns
	data := append([]byte(nil), c.Body()...)

	resp, err := h.service.PutBlock(c.Context(), uploadID(c), uploadToken(c), index, data)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// GET /api/recordings/uploads/:id
func (h *Handlers) GetProgress(c *fiber.Ctx) error {
	resp, err := h.service.GetProgress(c.Context(), uploadID(c), uploadToken(c))
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// POST /api/recordings/uploads/:id/commit
func (h *Handlers) Commit(c *fiber.Ctx) error {
	resp, err := h.service.Commit(c.Context(), uploadID(c), uploadToken(c))
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// DELETE /api/recordings/uploads/:id
func (h *Handlers) Abort(c *fiber.Ctx) error {
	resp, err := h.service.Abort(c.Context(), uploadID(c), uploadToken(c))
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

func uploadID(c *fiber.Ctx) kernel.UploadID {
	return kernel.UploadID(c.Params("id"))
}

// uploadToken reads "Bearer <token>" or the X-Upload-Token header
func uploadToken(c *fiber.Ctx) string {
	if token := c.Get(TokenHeader); token != "" {
		return token
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RegisterRoutes registers the recording routes. They are reached by the
// candidate's browser and authorised by the upload token, not admin auth.
func RegisterRoutes(app *fiber.App, handlers *Handlers) {
	uploads := app.Group("/api/recordings/uploads")

	uploads.Post("/", handlers.InitUpload)
	uploads.Get("/:id", handlers.GetProgress)
	uploads.Put("/:id/blocks/:index", handlers.PutBlock)
	uploads.Post("/:id/commit", handlers.Commit)
	uploads.Delete("/:id", handlers.Abort)
}

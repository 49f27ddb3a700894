package resume

import (
	"net/http"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("RESUME")

// Error codes
var (
	CodeResultNotFound     = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Resume result not found")
	CodeNoFiles            = ErrRegistry.Register("NO_FILES", errx.TypeValidation, http.StatusBadRequest, "No files uploaded")
	CodeNoReadableFiles    = ErrRegistry.Register("NO_READABLE_FILES", errx.TypeValidation, http.StatusBadRequest, "No valid files could be read")
	CodeInvalidFilter      = ErrRegistry.Register("INVALID_FILTER", errx.TypeValidation, http.StatusBadRequest, "Invalid result filter")
	CodeStorageFailed      = ErrRegistry.Register("STORAGE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to store resume file")
	CodeQueueEnqueueFailed = ErrRegistry.Register("QUEUE_ENQUEUE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to queue resumes for processing")
	CodeBatchFailed        = ErrRegistry.Register("BATCH_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Resume batch failed")
	CodeBatchMaxRetries    = ErrRegistry.Register("BATCH_MAX_RETRIES", errx.TypeInternal, http.StatusInternalServerError, "Resume batch failed after maximum retries")
	CodeExportFailed       = ErrRegistry.Register("EXPORT_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to export results")
	CodeNoEmbedding        = ErrRegistry.Register("NO_EMBEDDING", errx.TypeBusiness, http.StatusBadRequest, "Job has no embedding for semantic ranking")
)

// Helper functions
func ErrResultNotFound() *errx.Error {
	return ErrRegistry.New(CodeResultNotFound)
}

func ErrNoFiles() *errx.Error {
	return ErrRegistry.New(CodeNoFiles)
}

func ErrNoReadableFiles() *errx.Error {
	return ErrRegistry.New(CodeNoReadableFiles)
}

func ErrInvalidFilter() *errx.Error {
	return ErrRegistry.New(CodeInvalidFilter)
}

func ErrStorageFailed() *errx.Error {
	return ErrRegistry.New(CodeStorageFailed)
}

func ErrQueueEnqueueFailed() *errx.Error {
	return ErrRegistry.New(CodeQueueEnqueueFailed)
}

func ErrBatchFailed() *errx.Error {
	return ErrRegistry.New(CodeBatchFailed)
}

func ErrBatchMaxRetries() *errx.Error {
	return ErrRegistry.New(CodeBatchMaxRetries)
}

func ErrExportFailed() *errx.Error {
	return ErrRegistry.New(CodeExportFailed)
}

func ErrNoEmbedding() *errx.Error {
	return ErrRegistry.New(CodeNoEmbedding)
}

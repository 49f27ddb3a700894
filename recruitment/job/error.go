package job

import (
	"net/http"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("JOB")

// Error codes
var (
	CodeJobNotFound       = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Job not found")
	CodeInvalidJob        = ErrRegistry.Register("INVALID_INPUT", errx.TypeValidation, http.StatusBadRequest, "Invalid job posting")
	CodeJobClosed         = ErrRegistry.Register("CLOSED", errx.TypeBusiness, http.StatusConflict, "Job is closed")
	CodeJobAlreadyClosed  = ErrRegistry.Register("ALREADY_CLOSED", errx.TypeBusiness, http.StatusConflict, "Job is already closed")
	CodeJobNotClosed      = ErrRegistry.Register("NOT_CLOSED", errx.TypeBusiness, http.StatusBadRequest, "Job is not closed")
	CodeAnalysisPending   = ErrRegistry.Register("ANALYSIS_PENDING", errx.TypeBusiness, http.StatusBadRequest, "Job analysis not completed yet")
	CodeAnalysisFailed    = ErrRegistry.Register("ANALYSIS_FAILED", errx.TypeExternal, http.StatusBadGateway, "Job analysis failed")
	CodeJobAlreadyExists  = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "Job already exists")
)

// Helper functions
func ErrJobNotFound() *errx.Error {
	return ErrRegistry.New(CodeJobNotFound)
}

func ErrInvalidJob() *errx.Error {
	return ErrRegistry.New(CodeInvalidJob)
}

func ErrJobClosed() *errx.Error {
	return ErrRegistry.New(CodeJobClosed)
}

func ErrJobAlreadyClosed() *errx.Error {
	return ErrRegistry.New(CodeJobAlreadyClosed)
}

func ErrJobNotClosed() *errx.Error {
	return ErrRegistry.New(CodeJobNotClosed)
}

func ErrAnalysisPending() *errx.Error {
	return ErrRegistry.New(CodeAnalysisPending)
}

func ErrAnalysisFailed() *errx.Error {
	return ErrRegistry.New(CodeAnalysisFailed)
}

func ErrJobAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeJobAlreadyExists)
}

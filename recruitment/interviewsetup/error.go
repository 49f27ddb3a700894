package interviewsetup

import (
	"net/http"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("SETUP")

// Error codes
var (
	CodeSetupNotFound      = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Interview setup not found")
	CodeInvalidSetup       = ErrRegistry.Register("INVALID_INPUT", errx.TypeValidation, http.StatusBadRequest, "Invalid interview setup")
	CodeInvalidPercentages = ErrRegistry.Register("INVALID_PERCENTAGES", errx.TypeValidation, http.StatusBadRequest, "Percentages must sum to 100")
	CodeMissingField       = ErrRegistry.Register("MISSING_FIELD", errx.TypeValidation, http.StatusBadRequest, "Configuration is missing a required field")
	CodeNoConfigurations   = ErrRegistry.Register("NO_CONFIGURATIONS", errx.TypeValidation, http.StatusBadRequest, "No configurations provided")
)

// Helper functions
func ErrSetupNotFound() *errx.Error {
	return ErrRegistry.New(CodeSetupNotFound)
}

func ErrInvalidSetup() *errx.Error {
	return ErrRegistry.New(CodeInvalidSetup)
}

func ErrInvalidPercentages() *errx.Error {
	return ErrRegistry.New(CodeInvalidPercentages)
}

func ErrMissingField() *errx.Error {
	return ErrRegistry.New(CodeMissingField)
}

func ErrNoConfigurations() *errx.Error {
	return ErrRegistry.New(CodeNoConfigurations)
}

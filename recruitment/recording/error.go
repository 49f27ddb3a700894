package recording

import (
	"net/http"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("RECORDING")

var (
	CodeUploadNotFound     = ErrRegistry.Register("UPLOAD_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Recording upload not found")
	CodeInvalidUpload      = ErrRegistry.Register("INVALID_UPLOAD", errx.TypeValidation, http.StatusBadRequest, "Invalid recording upload request")
	CodeUploadTooLarge     = ErrRegistry.Register("UPLOAD_TOO_LARGE", errx.TypeValidation, http.StatusRequestEntityTooLarge, "Recording exceeds the maximum size")
	CodeInvalidBlockIndex  = ErrRegistry.Register("INVALID_BLOCK_INDEX", errx.TypeValidation, http.StatusBadRequest, "Block index out of range")
	CodeInvalidBlockSize   = ErrRegistry.Register("INVALID_BLOCK_SIZE", errx.TypeValidation, http.StatusBadRequest, "Block size does not match the upload layout")
	CodeUploadBusy         = ErrRegistry.Register("UPLOAD_BUSY", errx.TypeConflict, http.StatusConflict, "Another block is being uploaded")
	CodeUploadIncomplete   = ErrRegistry.Register("UPLOAD_INCOMPLETE", errx.TypeValidation, http.StatusBadRequest, "Not every block has been uploaded")
	CodeUploadNotActive    = ErrRegistry.Register("UPLOAD_NOT_ACTIVE", errx.TypeConflict, http.StatusConflict, "Upload is no longer accepting changes")
	CodeInvalidUploadToken = ErrRegistry.Register("INVALID_UPLOAD_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid or expired upload token")
	CodeSessionClosed      = ErrRegistry.Register("SESSION_CLOSED", errx.TypeConflict, http.StatusConflict, "Interview session no longer accepts recordings")
	CodeStorageFailed      = ErrRegistry.Register("STORAGE_FAILED", errx.TypeExternal, http.StatusBadGateway, "Blob storage request failed")
)

func ErrUploadNotFound() *errx.Error {
	return ErrRegistry.New(CodeUploadNotFound)
}

func ErrInvalidUpload() *errx.Error {
	return ErrRegistry.New(CodeInvalidUpload)
}

func ErrUploadTooLarge() *errx.Error {
	return ErrRegistry.New(CodeUploadTooLarge)
}

func ErrInvalidBlockIndex() *errx.Error {
	return ErrRegistry.New(CodeInvalidBlockIndex)
}

func ErrInvalidBlockSize() *errx.Error {
	return ErrRegistry.New(CodeInvalidBlockSize)
}

func ErrUploadBusy() *errx.Error {
	return ErrRegistry.New(CodeUploadBusy)
}

func ErrUploadIncomplete() *errx.Error {
	return ErrRegistry.New(CodeUploadIncomplete)
}

func ErrUploadNotActive() *errx.Error {
	return ErrRegistry.New(CodeUploadNotActive)
}

func ErrInvalidUploadToken() *errx.Error {
	return ErrRegistry.New(CodeInvalidUploadToken)
}

func ErrSessionClosed() *errx.Error {
	return ErrRegistry.New(CodeSessionClosed)
}

func ErrStorageFailed() *errx.Error {
	return ErrRegistry.New(CodeStorageFailed)
}

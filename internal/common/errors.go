package common

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline failure kinds. The orchestrator exits with exactly one of these
// wrapped around the underlying cause.
var (
	ErrMissingImage    = errors.New("no image data provided")
	ErrNoTextExtracted = errors.New("no text extracted from the image")
	ErrGeneration      = errors.New("generation failed")
	ErrNoContent       = errors.New("model response had no candidates or content")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInternal        = errors.New("internal error")
)

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// HTTPStatus maps a pipeline error to the client-visible status code.
// Generation failures are deliberately 502: the upstream model is the one
// that failed, and a silent 200-with-null would hide it from the client.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingImage), errors.Is(err, ErrNoTextExtracted), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrGeneration), errors.Is(err, ErrNoContent):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the error body text documented for each failure
// kind. Internal details stay in the logs.
func ClientMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingImage):
		return "No image data provided"
	case errors.Is(err, ErrNoTextExtracted):
		return "No text extracted from the image"
	case errors.Is(err, ErrInvalidInput):
		return "Invalid request"
	case errors.Is(err, ErrGeneration), errors.Is(err, ErrNoContent):
		return "Listing generation failed"
	default:
		return "Internal error"
	}
}

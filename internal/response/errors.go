package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/cohorts-backend/internal/apperror"
)

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrCohortNotFound  ErrCode = "COHORT_NOT_FOUND"
	ErrStudentNotFound ErrCode = "STUDENT_NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrServiceUnavailable ErrCode = "SERVICE_UNAVAILABLE"
	ErrInternal           ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	case ErrNotFound:
		return "Resource not found."
	case ErrCohortNotFound:
		return "Cohort not found."
	case ErrStudentNotFound:
		return "Student not found."
	case ErrConflict:
		return "Resource already exists."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrServiceUnavailable:
		return "Service is temporarily unavailable."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}

// FailFromError maps a service or repository error onto the HTTP error
// envelope. Data-access and unrecognised errors are logged and reported as
// INTERNAL_ERROR without their details.
func FailFromError(c *gin.Context, log zerolog.Logger, err error) {
	var (
		validation *apperror.ValidationError
		notFound   *apperror.NotFoundError
		conflict   *apperror.ConflictError
	)

	switch {
	case errors.As(err, &validation):
		FailWithFields(c, http.StatusBadRequest, ErrValidation, validation.Fields)
	case errors.As(err, &notFound):
		Fail(c, http.StatusNotFound, notFoundCode(notFound.Resource))
	case errors.As(err, &conflict):
		FailWithFields(c, http.StatusConflict, ErrConflict, map[string]string{
			conflict.Field: conflict.Field + " is already taken",
		})
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString(ContextKeyRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		Fail(c, http.StatusInternalServerError, ErrInternal)
	}
}

func notFoundCode(resource string) ErrCode {
	switch resource {
	case apperror.ResourceCohort:
		return ErrCohortNotFound
	case apperror.ResourceStudent:
		return ErrStudentNotFound
	default:
		return ErrNotFound
	}
}

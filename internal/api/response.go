package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ritujaab/workout-planner/internal/service"
)

// errorResponse is the body of every failed request. EmptyFields names the
// inputs the client should highlight.
type errorResponse struct {
	Error       string               `json:"error"`
	EmptyFields []string             `json:"emptyFields,omitempty"`
	Details     []service.FieldError `json:"details,omitempty"`
	RequestID   string               `json:"request_id,omitempty"`
}

const msgValidationFailed = "Validation failed"

// abortWithError writes a JSON error and stops the handler chain.
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, errorResponse{
		Error:     message,
		RequestID: c.GetString(ContextRequestIDKey),
	})
}

// writeServiceError maps a service error onto a status code. Anything
// unrecognised is logged and reported as a 500 without internals.
func writeServiceError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
			Error:       verr.Summary(),
			EmptyFields: verr.EmptyFields,
			Details:     verr.Details,
			RequestID:   c.GetString(ContextRequestIDKey),
		})
	case errors.Is(err, service.ErrDuplicateWorkout):
		c.AbortWithStatusJSON(http.StatusConflict, errorResponse{
			Error:       err.Error(),
			EmptyFields: []string{"title"},
			RequestID:   c.GetString(ContextRequestIDKey),
		})
	case errors.Is(err, service.ErrWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, "No such workout")
	case errors.Is(err, service.ErrUserAlreadyExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInvalidResetToken):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrExportUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		_ = c.Error(err)
		LoggerFrom(c).Error().Err(err).Msg("request failed")
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// badID rejects a malformed :id path parameter.
func badID(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Error:       msgValidationFailed,
		EmptyFields: []string{"id"},
		Details:     []service.FieldError{{Field: "id", Message: "id is not a valid workout id"}},
		RequestID:   c.GetString(ContextRequestIDKey),
	})
}

package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emberwell/pulsecheck-backend/internal/data/dataerr"
	"github.com/emberwell/pulsecheck-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError translates a service-layer error into an HTTP
// response: an explicit apierr.Error wins, otherwise the dataerr sentinel
// taxonomy decides the status.
func RespondServiceError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondError(c, ae.StatusOrDefault(), ae.Code, err)
		return
	}
	switch {
	case errors.Is(err, dataerr.ErrValidation):
		RespondError(c, http.StatusUnprocessableEntity, "validation_failed", err)
	case errors.Is(err, dataerr.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, dataerr.ErrConflict):
		RespondError(c, http.StatusConflict, "conflict", err)
	case errors.Is(err, dataerr.ErrRetryable):
		RespondError(c, http.StatusServiceUnavailable, "retry_later", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}

package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"smallbiz-crm/internal/domain"
	"smallbiz-crm/internal/importer"
)

type errorEnvelope struct {
	Error     errorBody `json:"error"`
	RequestID string    `json:"requestId"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeError(c *gin.Context, status int, code, message string, details any) {
	c.AbortWithStatusJSON(status, errorEnvelope{
		Error:     errorBody{Code: code, Message: message, Details: details},
		RequestID: requestIDFrom(c),
	})
}

func badRequest(c *gin.Context, message string) {
	writeError(c, http.StatusBadRequest, "invalid_input", message, nil)
}

// respondError maps service errors to statuses. Unexpected errors keep their
// message, so a 500 says what failed.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(c, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error(), gin.H{"limitBytes": tooLarge.Limit})
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, importer.ErrEmptyHeader),
		errors.Is(err, importer.ErrUnsupportedFormat):
		badRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrInUse):
		writeError(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", requestIDFrom(c),
			"error", err,
		)
		writeError(c, http.StatusInternalServerError, "internal", err.Error(), nil)
	}
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

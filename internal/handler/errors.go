package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

// statusFor maps the domain error taxonomy to an HTTP status and a message
// safe to show the client.
func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "link not found"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "record source unavailable"
	case errors.Is(err, domain.ErrAssistantUnavailable):
		return http.StatusServiceUnavailable, "assistant unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func respondError(c *gin.Context, op string, err error) {
	status, msg := statusFor(err)
	log := infralogger.FromContext(c.Request.Context())
	fields := []infralogger.Field{
		infralogger.String("operation", op),
		infralogger.Int("status", status),
		infralogger.Error(err),
	}
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", fields...)
	} else {
		log.Debug("Request rejected", fields...)
	}
	c.JSON(status, gin.H{"error": msg})
}

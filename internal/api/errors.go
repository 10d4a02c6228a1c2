package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hammamikhairi/simmr/internal/domain"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrSessionNotActive),
		errors.Is(err, domain.ErrSessionPaused),
		errors.Is(err, domain.ErrSessionOpen),
		errors.Is(err, domain.ErrNoMoreSteps),
		errors.Is(err, domain.ErrFirstStep):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotImplemented):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// fail writes err as a JSON error body. Internal errors are logged and
// hidden from the client.
func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		s.log.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/td-airways/flightdesk/internal/domain"
)

// writeError maps the domain error taxonomy to HTTP statuses. Every error is
// surfaced with its message; nothing is swallowed.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrNoAvailability),
		errors.Is(err, domain.ErrFlightUnavailable),
		errors.Is(err, domain.ErrInvalidCode):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrRecipientNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrPrecondition):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrDependency):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

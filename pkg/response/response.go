package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"friendship-service/internal/models"
)

// Error maps a domain error onto its HTTP status. NotFound is a 404;
// integrity failures (duplicate, reference, constraint) are 403 — the
// operation is forbidden given the current data state; bad input is 400;
// anything else is a 500.
func Error(c *gin.Context, err error) {
	c.JSON(statusOf(err), gin.H{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateKey),
		errors.Is(err, models.ErrReferenceViolation),
		errors.Is(err, models.ErrConstraintViolation):
		return http.StatusForbidden
	case errors.Is(err, models.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/ensemble/internal/ensemble"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ensemble.ErrNoAPIKey):
		return http.StatusPreconditionFailed
	case errors.Is(err, ensemble.ErrTurnInFlight),
		errors.Is(err, ensemble.ErrLastAgent),
		errors.Is(err, ensemble.ErrDuplicateAgent):
		return http.StatusConflict
	case errors.Is(err, ensemble.ErrAgentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ensemble.ErrEmptyMessage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

func fail(c *gin.Context, err error) {
	abort(c, statusFor(err), err)
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/finbook/services/ledger/domain"
)

// respondError maps the core's error taxonomy to HTTP status codes. Conflict
// responses tell the caller to recompute and retry; validation responses do
// not.
func respondError(c *gin.Context, err error) {
	switch {
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "retryable": false})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "retryable": false})
	case domain.IsProjectionFatal(err):
		// The event is durable; only the read model is stale.
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "event recorded but read model is stale; a rebuild is required",
			"retryable": false,
		})
	default:
		log.Error().Err(err).Msg("Unhandled API error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "retryable": false})
	}
}

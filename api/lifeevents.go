package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/finbook/services/ledger/handlers"
)

// addLifeEvent records a new life event
func (s *Server) addLifeEvent(c *gin.Context) {
	var cmd handlers.AddLifeEventCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd.Source = apiSource
	cmd.IdempotencyKey = c.GetHeader(idempotencyKeyHeader)

	row, err := s.lifeEventHandler.HandleAdd(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, row)
}

// listLifeEvents returns all active life events
func (s *Server) listLifeEvents(c *gin.Context) {
	rows, err := s.lifeEventRepo.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// getProfile returns the life-event profile consumed by advisory callers
func (s *Server) getProfile(c *gin.Context) {
	profile, err := s.lifeEventRepo.GetProfile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// updateLifeEvent changes a subset of a life event's fields
func (s *Server) updateLifeEvent(c *gin.Context) {
	var cmd handlers.UpdateLifeEventCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd.Source = apiSource
	cmd.IdempotencyKey = c.GetHeader(idempotencyKeyHeader)

	row, err := s.lifeEventHandler.HandleUpdate(c.Request.Context(), c.Param("id"), cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, row)
}

// deleteLifeEvent soft-deletes a life event
func (s *Server) deleteLifeEvent(c *gin.Context) {
	if err := s.lifeEventHandler.HandleDelete(c.Request.Context(), c.Param("id"), apiSource); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

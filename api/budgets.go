package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/finbook/services/ledger/handlers"
	"example.com/finbook/services/ledger/repositories"
)

// createBudget sets a monthly limit for a category
func (s *Server) createBudget(c *gin.Context) {
	var cmd handlers.CreateBudgetCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd.Source = apiSource
	cmd.IdempotencyKey = c.GetHeader(idempotencyKeyHeader)

	status, err := s.budgetHandler.HandleCreate(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, status)
}

// listBudgets returns all active budgets with usage and alert levels
func (s *Server) listBudgets(c *gin.Context) {
	statuses, err := s.budgetRepo.Statuses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, statuses)
}

// getBudgetAlerts returns only budgets that are at warning level or above
func (s *Server) getBudgetAlerts(c *gin.Context) {
	statuses, err := s.budgetRepo.Statuses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	alerts := make([]repositories.BudgetStatus, 0, len(statuses))
	for _, status := range statuses {
		if status.AlertLevel != repositories.AlertLevelOK {
			alerts = append(alerts, status)
		}
	}

	c.JSON(http.StatusOK, alerts)
}

// updateBudget changes a budget's monthly limit
func (s *Server) updateBudget(c *gin.Context) {
	var cmd handlers.UpdateBudgetCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd.Source = apiSource
	cmd.IdempotencyKey = c.GetHeader(idempotencyKeyHeader)

	status, err := s.budgetHandler.HandleUpdate(c.Request.Context(), c.Param("id"), cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// deleteBudget deactivates a budget
func (s *Server) deleteBudget(c *gin.Context) {
	if err := s.budgetHandler.HandleDelete(c.Request.Context(), c.Param("id"), apiSource); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

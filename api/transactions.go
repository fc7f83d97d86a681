package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"example.com/finbook/services/ledger/handlers"
	"example.com/finbook/services/ledger/repositories"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	apiSource            = "api"
)

// createTransaction records a new transaction
func (s *Server) createTransaction(c *gin.Context) {
	var cmd handlers.CreateTransactionCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd.Source = apiSource
	cmd.IdempotencyKey = c.GetHeader(idempotencyKeyHeader)

	row, err := s.transactionHandler.HandleCreate(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, row)
}

// getTransaction returns a transaction by ID
func (s *Server) getTransaction(c *gin.Context) {
	row, err := s.transactionRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if row.IsDeleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}

	c.JSON(http.StatusOK, row)
}

// listTransactions returns transactions matching the query filters
func (s *Server) listTransactions(c *gin.Context) {
	filter := repositories.TransactionFilter{
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		Category: c.Query("category"),
		Type:     c.Query("type"),
		Limit:    intQuery(c, "limit", 50),
		Offset:   intQuery(c, "offset", 0),
	}

	rows, err := s.transactionRepo.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// updateTransaction changes a subset of a transaction's fields
func (s *Server) updateTransaction(c *gin.Context) {
	var cmd handlers.UpdateTransactionCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd.Source = apiSource
	cmd.IdempotencyKey = c.GetHeader(idempotencyKeyHeader)

	row, err := s.transactionHandler.HandleUpdate(c.Request.Context(), c.Param("id"), cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, row)
}

// deleteTransaction soft-deletes a transaction
func (s *Server) deleteTransaction(c *gin.Context) {
	if err := s.transactionHandler.HandleDelete(c.Request.Context(), c.Param("id"), apiSource); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// getMonthlySummary returns monthly summary rows, optionally for one month
func (s *Server) getMonthlySummary(c *gin.Context) {
	rows, err := s.transactionRepo.Summary(c.Request.Context(), c.Query("year_month"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// getRecentTransactions returns transactions from the last N months
func (s *Server) getRecentTransactions(c *gin.Context) {
	rows, err := s.transactionRepo.Recent(c.Request.Context(), intQuery(c, "months", 3))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// getSpendingTrend returns a category's monthly totals over the last N months
func (s *Server) getSpendingTrend(c *gin.Context) {
	rows, err := s.transactionRepo.SpendingTrend(
		c.Request.Context(),
		c.Param("category"),
		intQuery(c, "months", 6),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// getSavingsRate returns income vs expenses over the last N months
func (s *Server) getSavingsRate(c *gin.Context) {
	result, err := s.transactionRepo.SavingsRate(c.Request.Context(), intQuery(c, "months", 3))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	value := c.Query(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

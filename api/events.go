package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/finbook/services/ledger/domain"
	"example.com/finbook/services/ledger/utils"
)

// listEvents returns events in global append order for audit display
func (s *Server) listEvents(c *gin.Context) {
	aggregateType := c.Query("aggregate_type")
	if aggregateType != "" {
		if _, ok := domain.EventTypesByAggregate[aggregateType]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown aggregate type"})
			return
		}
	}

	events, err := s.store.ListAll(c.Request.Context(), aggregateType, intQuery(c, "limit", 100))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// getAggregateEvents streams an aggregate's events in ascending version
// order
func (s *Server) getAggregateEvents(c *gin.Context) {
	aggregateID := c.Param("aggregateId")
	if !utils.IsValidUUID(aggregateID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid aggregate ID"})
		return
	}

	var events []domain.Event
	err := s.store.StreamEvents(c.Request.Context(), aggregateID, 0, func(event domain.Event) error {
		events = append(events, event)
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if len(events) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "aggregate not found"})
		return
	}

	c.JSON(http.StatusOK, events)
}

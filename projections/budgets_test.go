package projections

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"example.com/finbook/services/ledger/domain"
	"example.com/finbook/services/ledger/models"
)

func TestBudgetLifecycle(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t)

	aggregateID := uuid.New().String()
	require.NoError(t, engine.Project(db, budgetCreatedEvent(t, aggregateID, 1, "groceries", "400")))

	update := makeEvent(t, domain.AggregateBudget, aggregateID, domain.BudgetUpdated, 2,
		domain.BudgetUpdatedPayload{MonthlyLimit: decimal.RequireFromString("450")})
	require.NoError(t, engine.Project(db, update))

	var row models.BudgetProjection
	require.NoError(t, db.Where("id = ?", aggregateID).First(&row).Error)
	require.True(t, row.IsActive)
	require.True(t, row.MonthlyLimit.Equal(decimal.RequireFromString("450")))

	deleted := makeEvent(t, domain.AggregateBudget, aggregateID, domain.BudgetDeleted, 3,
		domain.BudgetDeletedPayload{IsActive: false})
	require.NoError(t, engine.Project(db, deleted))

	require.NoError(t, db.Where("id = ?", aggregateID).First(&row).Error)
	require.False(t, row.IsActive)
}

func TestLifeEventLifecycle(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t)

	aggregateID := uuid.New().String()
	created := makeEvent(t, domain.AggregateLifeEvent, aggregateID, domain.LifeEventCreated, 1,
		domain.LifeEventCreatedPayload{
			EventType:   domain.LifeEventExpectingBaby,
			Description: "due in March",
			Date:        "2026-09-01",
			Impact:      "high",
		})
	require.NoError(t, engine.Project(db, created))

	impact := "medium"
	update := makeEvent(t, domain.AggregateLifeEvent, aggregateID, domain.LifeEventUpdated, 2,
		domain.LifeEventUpdatedPayload{Impact: &impact})
	require.NoError(t, engine.Project(db, update))

	var row models.LifeEventProjection
	require.NoError(t, db.Where("id = ?", aggregateID).First(&row).Error)
	require.Equal(t, domain.LifeEventExpectingBaby, row.EventType)
	require.Equal(t, "medium", row.Impact)
	require.Equal(t, "due in March", row.Description)

	deleted := makeEvent(t, domain.AggregateLifeEvent, aggregateID, domain.LifeEventDeleted, 3,
		domain.LifeEventDeletedPayload{Deleted: true})
	require.NoError(t, engine.Project(db, deleted))

	require.NoError(t, db.Where("id = ?", aggregateID).First(&row).Error)
	require.True(t, row.IsDeleted)
}

// Updates and deletes for rows that never materialized are skipped, not
// failed, so a rebuild never trips over them.
func TestProjectionHandlersTolerateMissingRows(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t)

	missing := uuid.New().String()

	update := makeEvent(t, domain.AggregateBudget, missing, domain.BudgetUpdated, 2,
		domain.BudgetUpdatedPayload{MonthlyLimit: decimal.RequireFromString("100")})
	require.NoError(t, engine.Project(db, update))

	deleted := makeEvent(t, domain.AggregateLifeEvent, missing, domain.LifeEventDeleted, 2,
		domain.LifeEventDeletedPayload{Deleted: true})
	require.NoError(t, engine.Project(db, deleted))
}

package handlers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"example.com/finbook/services/ledger/domain"
	"example.com/finbook/services/ledger/eventstore"
	"example.com/finbook/services/ledger/models"
	"example.com/finbook/services/ledger/projections"
	"example.com/finbook/services/ledger/repositories"
)

type testStack struct {
	db          *gorm.DB
	store       *eventstore.GormStore
	transaction *TransactionHandler
	budget      *BudgetHandler
	lifeEvent   *LifeEventHandler
}

func setupStack(t *testing.T) *testStack {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	engine, err := projections.NewEngine()
	require.NoError(t, err)
	store := eventstore.NewGormStore(db, engine)

	return &testStack{
		db:          db,
		store:       store,
		transaction: NewTransactionHandler(store, repositories.NewTransactionRepository(db)),
		budget:      NewBudgetHandler(store, repositories.NewBudgetRepository(db)),
		lifeEvent:   NewLifeEventHandler(store, repositories.NewLifeEventRepository(db)),
	}
}

// Projection is synchronous with the append, so the created row must be
// readable immediately.
func TestTransactionCreateReadAfterWrite(t *testing.T) {
	stack := setupStack(t)
	ctx := context.Background()

	row, err := stack.transaction.HandleCreate(ctx, CreateTransactionCommand{
		Type:        "expense",
		Amount:      decimal.RequireFromString("89.90"),
		Category:    "groceries",
		Description: "weekly shop",
		Date:        "2026-08-20",
		Source:      "test",
	})
	require.NoError(t, err)
	require.True(t, row.Amount.Equal(decimal.RequireFromString("89.90")))
	require.Equal(t, "groceries", row.Category)
	require.Equal(t, "EUR", row.Currency)
	require.False(t, row.IsDeleted)
}

func TestTransactionCreateValidation(t *testing.T) {
	stack := setupStack(t)
	ctx := context.Background()

	_, err := stack.transaction.HandleCreate(ctx, CreateTransactionCommand{
		Type:     "transfer",
		Amount:   decimal.RequireFromString("10"),
		Category: "misc",
		Date:     "2026-08-20",
	})
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))

	_, err = stack.transaction.HandleCreate(ctx, CreateTransactionCommand{
		Type:     "expense",
		Amount:   decimal.RequireFromString("-5"),
		Category: "misc",
		Date:     "2026-08-20",
	})
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))

	_, err = stack.transaction.HandleCreate(ctx, CreateTransactionCommand{
		Type:     "expense",
		Amount:   decimal.RequireFromString("5"),
		Category: "misc",
		Date:     "20-08-2026",
	})
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))
}

func TestTransactionUpdateRequiresFields(t *testing.T) {
	stack := setupStack(t)

	_, err := stack.transaction.HandleUpdate(context.Background(), uuid.New().String(), UpdateTransactionCommand{})
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))
}

func TestTransactionDeleteThenUpdateNotFound(t *testing.T) {
	stack := setupStack(t)
	ctx := context.Background()

	row, err := stack.transaction.HandleCreate(ctx, CreateTransactionCommand{
		Type:     "expense",
		Amount:   decimal.RequireFromString("30"),
		Category: "transport",
		Date:     "2026-08-05",
	})
	require.NoError(t, err)

	require.NoError(t, stack.transaction.HandleDelete(ctx, row.ID, "test"))

	newCategory := "travel"
	_, err = stack.transaction.HandleUpdate(ctx, row.ID, UpdateTransactionCommand{Category: &newCategory})
	require.Error(t, err)
	require.True(t, domain.IsNotFound(err))

	err = stack.transaction.HandleDelete(ctx, row.ID, "test")
	require.Error(t, err)
	require.True(t, domain.IsNotFound(err))
}

// The idempotency key flows from the command through the store: a retried
// create returns the same row instead of a duplicate.
func TestTransactionCreateIdempotent(t *testing.T) {
	stack := setupStack(t)
	ctx := context.Background()

	cmd := CreateTransactionCommand{
		Type:           "expense",
		Amount:         decimal.RequireFromString("12.34"),
		Category:       "groceries",
		Date:           "2026-08-20",
		Source:         "test",
		IdempotencyKey: "create-once",
	}

	first, err := stack.transaction.HandleCreate(ctx, cmd)
	require.NoError(t, err)
	second, err := stack.transaction.HandleCreate(ctx, cmd)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, stack.db.Model(&models.TransactionProjection{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestBudgetCreateDuplicateCategoryConflicts(t *testing.T) {
	stack := setupStack(t)
	ctx := context.Background()

	_, err := stack.budget.HandleCreate(ctx, CreateBudgetCommand{
		Category:     "groceries",
		MonthlyLimit: decimal.RequireFromString("400"),
	})
	require.NoError(t, err)

	_, err = stack.budget.HandleCreate(ctx, CreateBudgetCommand{
		Category:     "groceries",
		MonthlyLimit: decimal.RequireFromString("500"),
	})
	require.Error(t, err)
	require.True(t, domain.IsConflict(err))
}

func TestBudgetUpdateAfterDeleteRejected(t *testing.T) {
	stack := setupStack(t)
	ctx := context.Background()

	status, err := stack.budget.HandleCreate(ctx, CreateBudgetCommand{
		Category:     "transport",
		MonthlyLimit: decimal.RequireFromString("150"),
	})
	require.NoError(t, err)

	budgetID := status.Budget.ID
	require.NoError(t, stack.budget.HandleDelete(ctx, budgetID, "test"))

	_, err = stack.budget.HandleUpdate(ctx, budgetID, UpdateBudgetCommand{
		MonthlyLimit: decimal.RequireFromString("200"),
	})
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))
}

func TestLifeEventRejectsUnknownType(t *testing.T) {
	stack := setupStack(t)

	_, err := stack.lifeEvent.HandleAdd(context.Background(), AddLifeEventCommand{
		EventType: "lottery_win",
		Date:      "2026-08-01",
	})
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))
}

func TestLifeEventAddAndUpdate(t *testing.T) {
	stack := setupStack(t)
	ctx := context.Background()

	row, err := stack.lifeEvent.HandleAdd(ctx, AddLifeEventCommand{
		EventType:   domain.LifeEventMajorPurchase,
		Description: "house deposit",
		Date:        "2026-10-01",
		Impact:      "high",
	})
	require.NoError(t, err)
	require.Equal(t, domain.LifeEventMajorPurchase, row.EventType)

	description := "house deposit, moved up"
	updated, err := stack.lifeEvent.HandleUpdate(ctx, row.ID, UpdateLifeEventCommand{
		Description: &description,
	})
	require.NoError(t, err)
	require.Equal(t, description, updated.Description)
	require.Equal(t, "high", updated.Impact)
}

package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"example.com/finbook/services/ledger/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestAlertLevels(t *testing.T) {
	budget := models.BudgetProjection{
		ID:           uuid.New().String(),
		Category:     "groceries",
		MonthlyLimit: decimal.RequireFromString("100"),
		IsActive:     true,
	}

	cases := []struct {
		usage string
		level string
	}{
		{"0", AlertLevelOK},
		{"79.99", AlertLevelOK},
		{"80.00", AlertLevelWarning},
		{"99.99", AlertLevelWarning},
		{"100.00", AlertLevelExceeded},
		{"119.99", AlertLevelExceeded},
		{"120.00", AlertLevelCritical},
		{"250.00", AlertLevelCritical},
	}
	for _, tc := range cases {
		status := NewBudgetStatus(budget, decimal.RequireFromString(tc.usage))
		require.Equal(t, tc.level, status.AlertLevel, "usage %s", tc.usage)
	}
}

func TestAlertLevelZeroLimit(t *testing.T) {
	budget := models.BudgetProjection{
		ID:           uuid.New().String(),
		Category:     "misc",
		MonthlyLimit: decimal.Zero,
		IsActive:     true,
	}

	status := NewBudgetStatus(budget, decimal.RequireFromString("50"))
	require.True(t, status.UtilizationPct.IsZero())
	require.Equal(t, AlertLevelOK, status.AlertLevel)
}

func TestStatusesUseCurrentMonthUsage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBudgetRepository(db)
	ctx := context.Background()

	currentMonth := time.Now().UTC().Format("2006-01")

	require.NoError(t, db.Create(&models.BudgetProjection{
		ID:           uuid.New().String(),
		Category:     "groceries",
		MonthlyLimit: decimal.RequireFromString("400"),
		IsActive:     true,
	}).Error)
	require.NoError(t, db.Create(&models.MonthlySummaryProjection{
		YearMonth:        currentMonth,
		Category:         "groceries",
		TotalIncome:      decimal.Zero,
		TotalExpenses:    decimal.RequireFromString("360"),
		TransactionCount: 4,
	}).Error)

	// Usage from a past month must not count
	require.NoError(t, db.Create(&models.MonthlySummaryProjection{
		YearMonth:        "2020-01",
		Category:         "groceries",
		TotalIncome:      decimal.Zero,
		TotalExpenses:    decimal.RequireFromString("9999"),
		TransactionCount: 1,
	}).Error)

	statuses, err := repo.Statuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	require.True(t, statuses[0].CurrentUsage.Equal(decimal.RequireFromString("360")))
	require.True(t, statuses[0].UtilizationPct.Equal(decimal.RequireFromString("90")))
	require.Equal(t, AlertLevelWarning, statuses[0].AlertLevel)
}

func TestGetActiveByCategoryReturnsNilWhenAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBudgetRepository(db)

	budget, err := repo.GetActiveByCategory(context.Background(), "nonexistent")
	require.NoError(t, err)
	require.Nil(t, budget)
}

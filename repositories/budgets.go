package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"example.com/finbook/services/ledger/domain"
	"example.com/finbook/services/ledger/models"
)

// Alert levels, by utilization of the monthly limit
const (
	AlertLevelOK       = "ok"
	AlertLevelWarning  = "warning"  // >= 80%
	AlertLevelExceeded = "exceeded" // >= 100%
	AlertLevelCritical = "critical" // >= 120%
)

// BudgetStatus pairs a budget with its current-month usage
type BudgetStatus struct {
	Budget         models.BudgetProjection `json:"budget"`
	CurrentUsage   decimal.Decimal         `json:"current_usage"`
	UtilizationPct decimal.Decimal         `json:"utilization_pct"`
	AlertLevel     string                  `json:"alert_level"`
}

// BudgetRepository queries the budget projection and current-month usage
type BudgetRepository struct {
	db *gorm.DB
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *gorm.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// GetByID returns a budget by aggregate ID
func (r *BudgetRepository) GetByID(ctx context.Context, id string) (*models.BudgetProjection, error) {
	var row models.BudgetProjection
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("Budget", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}
	return &row, nil
}

// GetActiveByCategory returns the active budget for a category, or nil
func (r *BudgetRepository) GetActiveByCategory(ctx context.Context, category string) (*models.BudgetProjection, error) {
	var row models.BudgetProjection
	err := r.db.WithContext(ctx).
		Where("category = ? AND is_active = ?", category, true).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load budget by category: %w", err)
	}
	return &row, nil
}

// ListActive returns all active budgets ordered by category
func (r *BudgetRepository) ListActive(ctx context.Context) ([]models.BudgetProjection, error) {
	var rows []models.BudgetProjection
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("category").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return rows, nil
}

// CurrentUsage returns a category's expenses for the current month
func (r *BudgetRepository) CurrentUsage(ctx context.Context, category string) (decimal.Decimal, error) {
	yearMonth := time.Now().UTC().Format("2006-01")

	var row models.MonthlySummaryProjection
	err := r.db.WithContext(ctx).
		Where("year_month = ? AND category = ?", yearMonth, category).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load current usage: %w", err)
	}
	return row.TotalExpenses, nil
}

// Statuses returns every active budget with its current-month usage and
// alert level
func (r *BudgetRepository) Statuses(ctx context.Context) ([]BudgetStatus, error) {
	budgets, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, budget := range budgets {
		usage, err := r.CurrentUsage(ctx, budget.Category)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, NewBudgetStatus(budget, usage))
	}
	return statuses, nil
}

// NewBudgetStatus computes utilization and alert level for a budget
func NewBudgetStatus(budget models.BudgetProjection, usage decimal.Decimal) BudgetStatus {
	pct := decimal.Zero
	if budget.MonthlyLimit.IsPositive() {
		pct = usage.Div(budget.MonthlyLimit).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return BudgetStatus{
		Budget:         budget,
		CurrentUsage:   usage,
		UtilizationPct: pct,
		AlertLevel:     alertLevel(pct),
	}
}

func alertLevel(utilizationPct decimal.Decimal) string {
	switch {
	case utilizationPct.GreaterThanOrEqual(decimal.NewFromInt(120)):
		return AlertLevelCritical
	case utilizationPct.GreaterThanOrEqual(decimal.NewFromInt(100)):
		return AlertLevelExceeded
	case utilizationPct.GreaterThanOrEqual(decimal.NewFromInt(80)):
		return AlertLevelWarning
	default:
		return AlertLevelOK
	}
}

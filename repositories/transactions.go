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

// TransactionFilter narrows a transaction listing
type TransactionFilter struct {
	DateFrom string
	DateTo   string
	Category string
	Type     string
	Limit    int
	Offset   int
}

// SavingsRate summarizes income vs expenses over a trailing window
type SavingsRate struct {
	Months        int             `json:"months"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Savings       decimal.Decimal `json:"savings"`
	RatePct       decimal.Decimal `json:"rate_pct"`
}

// TransactionRepository queries the transaction projection tables
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// GetByID returns the projection row for a transaction, deleted or not.
// Callers decide whether a soft-deleted row counts as found.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*models.TransactionProjection, error) {
	var row models.TransactionProjection
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("Transaction", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	return &row, nil
}

// List returns active transactions matching the filter, newest date first
func (r *TransactionRepository) List(ctx context.Context, filter TransactionFilter) ([]models.TransactionProjection, error) {
	query := r.db.WithContext(ctx).Where("is_deleted = ?", false)

	if filter.DateFrom != "" {
		query = query.Where("date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("date <= ?", filter.DateTo)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var rows []models.TransactionProjection
	if err := query.Order("date DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return rows, nil
}

// Recent returns active transactions from the last N months, newest first
func (r *TransactionRepository) Recent(ctx context.Context, months int) ([]models.TransactionProjection, error) {
	cutoff := monthsAgo(months).Format("2006-01-02")

	var rows []models.TransactionProjection
	if err := r.db.WithContext(ctx).
		Where("is_deleted = ? AND date >= ?", false, cutoff).
		Order("date DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent transactions: %w", err)
	}
	return rows, nil
}

// Summary returns monthly summary rows, for one month or all
func (r *TransactionRepository) Summary(ctx context.Context, yearMonth string) ([]models.MonthlySummaryProjection, error) {
	query := r.db.WithContext(ctx)
	if yearMonth != "" {
		query = query.Where("year_month = ?", yearMonth).Order("category")
	} else {
		query = query.Order("year_month DESC, category")
	}

	var rows []models.MonthlySummaryProjection
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load monthly summary: %w", err)
	}
	return rows, nil
}

// SpendingTrend returns a category's summary rows over the last N months,
// oldest first
func (r *TransactionRepository) SpendingTrend(ctx context.Context, category string, months int) ([]models.MonthlySummaryProjection, error) {
	cutoff := monthsAgo(months).Format("2006-01")

	var rows []models.MonthlySummaryProjection
	if err := r.db.WithContext(ctx).
		Where("category = ? AND year_month >= ?", category, cutoff).
		Order("year_month ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load spending trend: %w", err)
	}
	return rows, nil
}

// SavingsRate computes income, expenses and the savings rate over the last
// N months using decimal arithmetic
func (r *TransactionRepository) SavingsRate(ctx context.Context, months int) (SavingsRate, error) {
	cutoff := monthsAgo(months).Format("2006-01")

	var rows []models.MonthlySummaryProjection
	if err := r.db.WithContext(ctx).
		Where("year_month >= ?", cutoff).
		Find(&rows).Error; err != nil {
		return SavingsRate{}, fmt.Errorf("failed to load summaries: %w", err)
	}

	result := SavingsRate{
		Months:        months,
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		Savings:       decimal.Zero,
		RatePct:       decimal.Zero,
	}
	for _, row := range rows {
		result.TotalIncome = result.TotalIncome.Add(row.TotalIncome)
		result.TotalExpenses = result.TotalExpenses.Add(row.TotalExpenses)
	}
	result.Savings = result.TotalIncome.Sub(result.TotalExpenses)
	if result.TotalIncome.IsPositive() {
		result.RatePct = result.Savings.
			Div(result.TotalIncome).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	return result, nil
}

// monthsAgo returns the moment `months` months before now (UTC), clamped to
// day 28 to avoid month-length overflow
func monthsAgo(months int) time.Time {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())-months
	for month < 1 {
		month += 12
		year--
	}
	day := now.Day()
	if day > 28 {
		day = 28
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

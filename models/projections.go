package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionProjection is the current-state read model for a transaction
// aggregate. Owned exclusively by the projection engine; disposable and
// rebuildable from the event log.
type TransactionProjection struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	Type          string          `gorm:"size:16" json:"type"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	Currency      string          `gorm:"size:8" json:"currency"`
	Category      string          `gorm:"index;size:64" json:"category"`
	Description   string          `json:"description"`
	Date          string          `gorm:"index;size:10" json:"date"`
	IsDeleted     bool            `gorm:"index" json:"is_deleted"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// MonthlySummaryProjection aggregates transactions per (year-month, category).
// Totals are maintained with decimal arithmetic in the handlers, never via
// SQL float SUM, so incremental application and replay agree exactly.
type MonthlySummaryProjection struct {
	YearMonth        string          `gorm:"primaryKey;size:7" json:"year_month"`
	Category         string          `gorm:"primaryKey;size:64" json:"category"`
	TotalIncome      decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_income"`
	TotalExpenses    decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_expenses"`
	TransactionCount int             `json:"transaction_count"`
}

// BudgetProjection is the current-state read model for a budget aggregate
type BudgetProjection struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	Category     string          `gorm:"uniqueIndex;size:64" json:"category"`
	MonthlyLimit decimal.Decimal `gorm:"type:decimal(15,2)" json:"monthly_limit"`
	IsActive     bool            `gorm:"index" json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// LifeEventProjection is the current-state read model for a life event
// aggregate
type LifeEventProjection struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	EventType   string    `gorm:"index;size:32" json:"event_type"`
	Description string    `json:"description"`
	Date        string    `gorm:"size:10" json:"date"`
	Impact      string    `json:"impact"`
	IsDeleted   bool      `gorm:"index" json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// All returns every model the service migrates
func All() []any {
	return []any{
		&Event{},
		&IdempotencyRecord{},
		&ProjectionWatermark{},
		&TransactionProjection{},
		&MonthlySummaryProjection{},
		&BudgetProjection{},
		&LifeEventProjection{},
	}
}

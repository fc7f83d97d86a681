package projections

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"example.com/finbook/services/ledger/domain"
	"example.com/finbook/services/ledger/models"
)

// projectTransactionCreated inserts the transaction row and adds it to the
// monthly summary
func projectTransactionCreated(tx *gorm.DB, event domain.Event) error {
	var data domain.TransactionCreatedPayload
	if err := json.Unmarshal(event.Payload, &data); err != nil {
		return fmt.Errorf("failed to unmarshal event payload: %w", err)
	}

	currency := data.Currency
	if currency == "" {
		currency = "EUR"
	}

	row := models.TransactionProjection{
		ID:          event.AggregateID,
		Type:        data.Type,
		Amount:      data.Amount,
		Currency:    currency,
		Category:    data.Category,
		Description: data.Description,
		Date:        data.Date,
		IsDeleted:   false,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.CreatedAt,
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create transaction projection: %w", err)
	}

	return adjustMonthlySummary(tx, data.Date, data.Category, data.Type, data.Amount, 1)
}

// projectTransactionUpdated reverses the old amounts out of the monthly
// summary, applies the changed fields, and re-applies the new amounts.
// A missing or deleted row means the update arrived out of band; nothing to
// project.
func projectTransactionUpdated(tx *gorm.DB, event domain.Event) error {
	var data domain.TransactionUpdatedPayload
	if err := json.Unmarshal(event.Payload, &data); err != nil {
		return fmt.Errorf("failed to unmarshal event payload: %w", err)
	}

	var row models.TransactionProjection
	err := tx.Where("id = ? AND is_deleted = ?", event.AggregateID, false).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load transaction projection: %w", err)
	}

	if err := adjustMonthlySummary(tx, row.Date, row.Category, row.Type, row.Amount, -1); err != nil {
		return err
	}

	if data.Amount != nil {
		row.Amount = *data.Amount
	}
	if data.Category != nil {
		row.Category = *data.Category
	}
	if data.Description != nil {
		row.Description = *data.Description
	}
	if data.Date != nil {
		row.Date = *data.Date
	}
	row.UpdatedAt = event.CreatedAt

	if err := tx.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to update transaction projection: %w", err)
	}

	return adjustMonthlySummary(tx, row.Date, row.Category, row.Type, row.Amount, 1)
}

// projectTransactionDeleted soft-deletes the row and reverses it out of the
// monthly summary. The event log keeps the full history.
func projectTransactionDeleted(tx *gorm.DB, event domain.Event) error {
	var row models.TransactionProjection
	err := tx.Where("id = ? AND is_deleted = ?", event.AggregateID, false).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load transaction projection: %w", err)
	}

	row.IsDeleted = true
	row.UpdatedAt = event.CreatedAt
	if err := tx.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to soft-delete transaction projection: %w", err)
	}

	return adjustMonthlySummary(tx, row.Date, row.Category, row.Type, row.Amount, -1)
}

// adjustMonthlySummary applies (direction=1) or reverses (direction=-1) a
// transaction's contribution to its (year-month, category) summary row.
// Totals are decimal read-modify-write so incremental application and
// rebuild produce identical values.
func adjustMonthlySummary(tx *gorm.DB, date, category, txnType string, amount decimal.Decimal, direction int) error {
	if len(date) < 7 {
		return fmt.Errorf("invalid transaction date: %q", date)
	}
	yearMonth := date[:7]

	var row models.MonthlySummaryProjection
	found := true
	err := tx.Where("year_month = ? AND category = ?", yearMonth, category).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		found = false
		row = models.MonthlySummaryProjection{
			YearMonth:     yearMonth,
			Category:      category,
			TotalIncome:   decimal.Zero,
			TotalExpenses: decimal.Zero,
		}
	} else if err != nil {
		return fmt.Errorf("failed to load monthly summary: %w", err)
	}

	delta := amount
	if direction < 0 {
		delta = amount.Neg()
	}

	switch txnType {
	case "income":
		row.TotalIncome = row.TotalIncome.Add(delta)
	case "expense":
		row.TotalExpenses = row.TotalExpenses.Add(delta)
	default:
		return fmt.Errorf("unknown transaction type: %q", txnType)
	}
	row.TransactionCount += direction

	if found {
		err = tx.Save(&row).Error
	} else {
		err = tx.Create(&row).Error
	}
	if err != nil {
		return fmt.Errorf("failed to write monthly summary: %w", err)
	}

	return nil
}

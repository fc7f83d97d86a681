package projections

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"example.com/finbook/services/ledger/domain"
	"example.com/finbook/services/ledger/models"
)

// projectBudgetCreated inserts the budget row
func projectBudgetCreated(tx *gorm.DB, event domain.Event) error {
	var data domain.BudgetCreatedPayload
	if err := json.Unmarshal(event.Payload, &data); err != nil {
		return fmt.Errorf("failed to unmarshal event payload: %w", err)
	}

	row := models.BudgetProjection{
		ID:           event.AggregateID,
		Category:     data.Category,
		MonthlyLimit: data.MonthlyLimit,
		IsActive:     true,
		CreatedAt:    event.CreatedAt,
		UpdatedAt:    event.CreatedAt,
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create budget projection: %w", err)
	}

	return nil
}

// projectBudgetUpdated updates the monthly limit
func projectBudgetUpdated(tx *gorm.DB, event domain.Event) error {
	var data domain.BudgetUpdatedPayload
	if err := json.Unmarshal(event.Payload, &data); err != nil {
		return fmt.Errorf("failed to unmarshal event payload: %w", err)
	}

	var row models.BudgetProjection
	err := tx.Where("id = ?", event.AggregateID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load budget projection: %w", err)
	}

	row.MonthlyLimit = data.MonthlyLimit
	row.UpdatedAt = event.CreatedAt
	if err := tx.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to update budget projection: %w", err)
	}

	return nil
}

// projectBudgetDeleted deactivates the budget
func projectBudgetDeleted(tx *gorm.DB, event domain.Event) error {
	var row models.BudgetProjection
	err := tx.Where("id = ?", event.AggregateID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load budget projection: %w", err)
	}

	row.IsActive = false
	row.UpdatedAt = event.CreatedAt
	if err := tx.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to deactivate budget projection: %w", err)
	}

	return nil
}

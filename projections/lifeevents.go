package projections

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"example.com/finbook/services/ledger/domain"
	"example.com/finbook/services/ledger/models"
)

// projectLifeEventCreated inserts the life event row
func projectLifeEventCreated(tx *gorm.DB, event domain.Event) error {
	var data domain.LifeEventCreatedPayload
	if err := json.Unmarshal(event.Payload, &data); err != nil {
		return fmt.Errorf("failed to unmarshal event payload: %w", err)
	}

	row := models.LifeEventProjection{
		ID:          event.AggregateID,
		EventType:   data.EventType,
		Description: data.Description,
		Date:        data.Date,
		Impact:      data.Impact,
		IsDeleted:   false,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.CreatedAt,
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create life event projection: %w", err)
	}

	return nil
}

// projectLifeEventUpdated applies the changed fields
func projectLifeEventUpdated(tx *gorm.DB, event domain.Event) error {
	var data domain.LifeEventUpdatedPayload
	if err := json.Unmarshal(event.Payload, &data); err != nil {
		return fmt.Errorf("failed to unmarshal event payload: %w", err)
	}

	var row models.LifeEventProjection
	err := tx.Where("id = ? AND is_deleted = ?", event.AggregateID, false).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load life event projection: %w", err)
	}

	if data.EventType != nil {
		row.EventType = *data.EventType
	}
	if data.Description != nil {
		row.Description = *data.Description
	}
	if data.Date != nil {
		row.Date = *data.Date
	}
	if data.Impact != nil {
		row.Impact = *data.Impact
	}
	row.UpdatedAt = event.CreatedAt

	if err := tx.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to update life event projection: %w", err)
	}

	return nil
}

// projectLifeEventDeleted soft-deletes the life event row
func projectLifeEventDeleted(tx *gorm.DB, event domain.Event) error {
	var row models.LifeEventProjection
	err := tx.Where("id = ? AND is_deleted = ?", event.AggregateID, false).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load life event projection: %w", err)
	}

	row.IsDeleted = true
	row.UpdatedAt = event.CreatedAt
	if err := tx.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to soft-delete life event projection: %w", err)
	}

	return nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"example.com/finbook/services/ledger/domain"
	"example.com/finbook/services/ledger/models"
)

// Profile is the life-event view of the user consumed by advisory callers
type Profile struct {
	LifeEvents []models.LifeEventProjection `json:"life_events"`
	Summary    string                       `json:"summary"`
}

// LifeEventRepository queries the life event projection
type LifeEventRepository struct {
	db *gorm.DB
}

// NewLifeEventRepository creates a new life event repository
func NewLifeEventRepository(db *gorm.DB) *LifeEventRepository {
	return &LifeEventRepository{db: db}
}

// GetByID returns a life event by aggregate ID, deleted or not
func (r *LifeEventRepository) GetByID(ctx context.Context, id string) (*models.LifeEventProjection, error) {
	var row models.LifeEventProjection
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("LifeEvent", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load life event: %w", err)
	}
	return &row, nil
}

// ListActive returns non-deleted life events, newest date first
func (r *LifeEventRepository) ListActive(ctx context.Context) ([]models.LifeEventProjection, error) {
	var rows []models.LifeEventProjection
	if err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("date DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list life events: %w", err)
	}
	return rows, nil
}

// GetProfile returns the active life events with a one-line summary
func (r *LifeEventRepository) GetProfile(ctx context.Context) (Profile, error) {
	events, err := r.ListActive(ctx)
	if err != nil {
		return Profile{}, err
	}

	if len(events) == 0 {
		return Profile{LifeEvents: events, Summary: "No recorded life events"}, nil
	}

	seen := map[string]bool{}
	var types []string
	for _, event := range events {
		if !seen[event.EventType] {
			seen[event.EventType] = true
			types = append(types, event.EventType)
		}
	}

	summary := fmt.Sprintf("%d life events on record: %s", len(events), strings.Join(types, ", "))
	return Profile{LifeEvents: events, Summary: summary}, nil
}

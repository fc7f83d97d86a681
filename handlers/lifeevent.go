package handlers

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"example.com/finbook/services/ledger/domain"
	"example.com/finbook/services/ledger/eventstore"
	"example.com/finbook/services/ledger/models"
	"example.com/finbook/services/ledger/repositories"
	"example.com/finbook/services/ledger/utils"
)

// AddLifeEventCommand records a life event shaping the user's finances
type AddLifeEventCommand struct {
	EventType   string `json:"event_type" validate:"required"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Impact      string `json:"impact"`

	Source         string `json:"-"`
	IdempotencyKey string `json:"-"`
}

// UpdateLifeEventCommand changes a subset of a life event's fields
type UpdateLifeEventCommand struct {
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Impact      *string `json:"impact,omitempty"`

	Source         string `json:"-"`
	IdempotencyKey string `json:"-"`
}

// LifeEventHandler handles life event commands
type LifeEventHandler struct {
	store eventstore.Store
	repo  *repositories.LifeEventRepository
}

// NewLifeEventHandler creates a new life event handler
func NewLifeEventHandler(store eventstore.Store, repo *repositories.LifeEventRepository) *LifeEventHandler {
	return &LifeEventHandler{store: store, repo: repo}
}

// HandleAdd appends a life_event_created event
func (h *LifeEventHandler) HandleAdd(ctx context.Context, cmd AddLifeEventCommand) (*models.LifeEventProjection, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, domain.NewValidationError("invalid life event: %v", err)
	}
	if !slices.Contains(domain.LifeEventTypes, cmd.EventType) {
		return nil, domain.NewValidationError("unknown life event type: %q", cmd.EventType)
	}

	payload := domain.LifeEventCreatedPayload{
		EventType:   cmd.EventType,
		Description: cmd.Description,
		Date:        cmd.Date,
		Impact:      cmd.Impact,
	}

	event, err := h.store.Append(
		ctx,
		domain.AggregateLifeEvent,
		uuid.New().String(),
		domain.LifeEventCreated,
		payload,
		eventMetadata(cmd.Source, cmd.IdempotencyKey),
	)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("lifeEventID", event.AggregateID).
		Str("eventType", cmd.EventType).
		Msg("Life event added")

	return h.repo.GetByID(ctx, event.AggregateID)
}

// HandleUpdate appends a life_event_updated event carrying only the changed
// fields
func (h *LifeEventHandler) HandleUpdate(ctx context.Context, id string, cmd UpdateLifeEventCommand) (*models.LifeEventProjection, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, domain.NewValidationError("invalid life event update: %v", err)
	}
	if cmd.Description == nil && cmd.Date == nil && cmd.Impact == nil {
		return nil, domain.NewValidationError("no fields to update")
	}

	existing, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.IsDeleted {
		return nil, domain.NewNotFoundError("LifeEvent", id)
	}

	payload := domain.LifeEventUpdatedPayload{
		Description: cmd.Description,
		Date:        cmd.Date,
		Impact:      cmd.Impact,
	}

	if _, err := h.store.Append(
		ctx,
		domain.AggregateLifeEvent,
		id,
		domain.LifeEventUpdated,
		payload,
		eventMetadata(cmd.Source, cmd.IdempotencyKey),
	); err != nil {
		return nil, err
	}

	log.Info().Str("lifeEventID", id).Msg("Life event updated")

	return h.repo.GetByID(ctx, id)
}

// HandleDelete appends a life_event_deleted event
func (h *LifeEventHandler) HandleDelete(ctx context.Context, id string, source string) error {
	existing, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsDeleted {
		return domain.NewNotFoundError("LifeEvent", id)
	}

	if _, err := h.store.Append(
		ctx,
		domain.AggregateLifeEvent,
		id,
		domain.LifeEventDeleted,
		domain.LifeEventDeletedPayload{Deleted: true},
		eventMetadata(source, ""),
	); err != nil {
		return err
	}

	log.Info().Str("lifeEventID", id).Msg("Life event deleted")
	return nil
}

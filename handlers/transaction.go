package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"example.com/finbook/services/ledger/domain"
	"example.com/finbook/services/ledger/eventstore"
	"example.com/finbook/services/ledger/models"
	"example.com/finbook/services/ledger/repositories"
	"example.com/finbook/services/ledger/utils"
)

// CreateTransactionCommand records a new income or expense
type CreateTransactionCommand struct {
	Type        string          `json:"type" validate:"required,oneof=income expense"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category" validate:"required"`
	Description string          `json:"description"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`

	// Set by the transport layer, not part of the request body
	Source         string `json:"-"`
	IdempotencyKey string `json:"-"`
}

// UpdateTransactionCommand changes a subset of a transaction's fields
type UpdateTransactionCommand struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	Date        *string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`

	Source         string `json:"-"`
	IdempotencyKey string `json:"-"`
}

// TransactionHandler handles transaction commands
type TransactionHandler struct {
	store eventstore.Store
	repo  *repositories.TransactionRepository
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(store eventstore.Store, repo *repositories.TransactionRepository) *TransactionHandler {
	return &TransactionHandler{store: store, repo: repo}
}

// HandleCreate appends a transaction_created event and returns the projected
// row. Projection is synchronous with the append, so the row is always
// readable here.
func (h *TransactionHandler) HandleCreate(ctx context.Context, cmd CreateTransactionCommand) (*models.TransactionProjection, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, domain.NewValidationError("invalid transaction: %v", err)
	}
	if !cmd.Amount.IsPositive() {
		return nil, domain.NewValidationError("amount must be positive")
	}

	payload := domain.TransactionCreatedPayload{
		Type:        cmd.Type,
		Amount:      cmd.Amount,
		Currency:    cmd.Currency,
		Category:    cmd.Category,
		Description: cmd.Description,
		Date:        cmd.Date,
	}

	event, err := h.store.Append(
		ctx,
		domain.AggregateTransaction,
		uuid.New().String(),
		domain.TransactionCreated,
		payload,
		eventMetadata(cmd.Source, cmd.IdempotencyKey),
	)
	if err != nil {
		return nil, err
	}

	log.Info().Str("transactionID", event.AggregateID).Msg("Transaction created")

	// Read back via the event's aggregate ID: an idempotent replay returns
	// the original event, not a new aggregate.
	return h.repo.GetByID(ctx, event.AggregateID)
}

// HandleUpdate appends a transaction_updated event carrying only the changed
// fields
func (h *TransactionHandler) HandleUpdate(ctx context.Context, id string, cmd UpdateTransactionCommand) (*models.TransactionProjection, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, domain.NewValidationError("invalid transaction update: %v", err)
	}
	if cmd.Amount == nil && cmd.Category == nil && cmd.Description == nil && cmd.Date == nil {
		return nil, domain.NewValidationError("no fields to update")
	}
	if cmd.Amount != nil && !cmd.Amount.IsPositive() {
		return nil, domain.NewValidationError("amount must be positive")
	}

	existing, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.IsDeleted {
		return nil, domain.NewNotFoundError("Transaction", id)
	}

	payload := domain.TransactionUpdatedPayload{
		Amount:      cmd.Amount,
		Category:    cmd.Category,
		Description: cmd.Description,
		Date:        cmd.Date,
	}

	if _, err := h.store.Append(
		ctx,
		domain.AggregateTransaction,
		id,
		domain.TransactionUpdated,
		payload,
		eventMetadata(cmd.Source, cmd.IdempotencyKey),
	); err != nil {
		return nil, err
	}

	log.Info().Str("transactionID", id).Msg("Transaction updated")

	return h.repo.GetByID(ctx, id)
}

// HandleDelete appends a transaction_deleted event. The projection row is
// soft-deleted; the log keeps the full history.
func (h *TransactionHandler) HandleDelete(ctx context.Context, id string, source string) error {
	existing, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsDeleted {
		return domain.NewNotFoundError("Transaction", id)
	}

	if _, err := h.store.Append(
		ctx,
		domain.AggregateTransaction,
		id,
		domain.TransactionDeleted,
		domain.TransactionDeletedPayload{Deleted: true},
		eventMetadata(source, ""),
	); err != nil {
		return err
	}

	log.Info().Str("transactionID", id).Msg("Transaction deleted")
	return nil
}

package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"example.com/finbook/services/ledger/domain"
	"example.com/finbook/services/ledger/eventstore"
	"example.com/finbook/services/ledger/repositories"
	"example.com/finbook/services/ledger/utils"
)

// CreateBudgetCommand sets a monthly spending limit for a category
type CreateBudgetCommand struct {
	Category     string          `json:"category" validate:"required"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`

	Source         string `json:"-"`
	IdempotencyKey string `json:"-"`
}

// UpdateBudgetCommand changes a budget's monthly limit
type UpdateBudgetCommand struct {
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`

	Source         string `json:"-"`
	IdempotencyKey string `json:"-"`
}

// BudgetHandler handles budget commands
type BudgetHandler struct {
	store eventstore.Store
	repo  *repositories.BudgetRepository
}

// NewBudgetHandler creates a new budget handler
func NewBudgetHandler(store eventstore.Store, repo *repositories.BudgetRepository) *BudgetHandler {
	return &BudgetHandler{store: store, repo: repo}
}

// HandleCreate appends a budget_created event. Only one active budget per
// category is allowed.
func (h *BudgetHandler) HandleCreate(ctx context.Context, cmd CreateBudgetCommand) (*repositories.BudgetStatus, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, domain.NewValidationError("invalid budget: %v", err)
	}
	if !cmd.MonthlyLimit.IsPositive() {
		return nil, domain.NewValidationError("monthly limit must be positive")
	}

	existing, err := h.repo.GetActiveByCategory(ctx, cmd.Category)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewConflictError("budget for category %q already exists", cmd.Category)
	}

	payload := domain.BudgetCreatedPayload{
		Category:     cmd.Category,
		MonthlyLimit: cmd.MonthlyLimit,
		IsActive:     true,
	}

	event, err := h.store.Append(
		ctx,
		domain.AggregateBudget,
		uuid.New().String(),
		domain.BudgetCreated,
		payload,
		eventMetadata(cmd.Source, cmd.IdempotencyKey),
	)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("budgetID", event.AggregateID).
		Str("category", cmd.Category).
		Msg("Budget created")

	return h.status(ctx, event.AggregateID)
}

// HandleUpdate appends a budget_updated event with the new limit
func (h *BudgetHandler) HandleUpdate(ctx context.Context, id string, cmd UpdateBudgetCommand) (*repositories.BudgetStatus, error) {
	if !cmd.MonthlyLimit.IsPositive() {
		return nil, domain.NewValidationError("monthly limit must be positive")
	}

	budget, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !budget.IsActive {
		return nil, domain.NewValidationError("budget %q is deactivated", id)
	}

	if _, err := h.store.Append(
		ctx,
		domain.AggregateBudget,
		id,
		domain.BudgetUpdated,
		domain.BudgetUpdatedPayload{MonthlyLimit: cmd.MonthlyLimit},
		eventMetadata(cmd.Source, cmd.IdempotencyKey),
	); err != nil {
		return nil, err
	}

	log.Info().Str("budgetID", id).Msg("Budget updated")

	return h.status(ctx, id)
}

// HandleDelete appends a budget_deleted event, deactivating the budget
func (h *BudgetHandler) HandleDelete(ctx context.Context, id string, source string) error {
	if _, err := h.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if _, err := h.store.Append(
		ctx,
		domain.AggregateBudget,
		id,
		domain.BudgetDeleted,
		domain.BudgetDeletedPayload{IsActive: false},
		eventMetadata(source, ""),
	); err != nil {
		return err
	}

	log.Info().Str("budgetID", id).Msg("Budget deleted")
	return nil
}

func (h *BudgetHandler) status(ctx context.Context, id string) (*repositories.BudgetStatus, error) {
	budget, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	usage, err := h.repo.CurrentUsage(ctx, budget.Category)
	if err != nil {
		return nil, err
	}
	status := repositories.NewBudgetStatus(*budget, usage)
	return &status, nil
}

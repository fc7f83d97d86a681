package projections

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/finbook/services/ledger/domain"
	"example.com/finbook/services/ledger/models"
)

// HandlerFunc applies one event to the projection tables. Handlers are pure
// row transforms: they read and write projection rows through tx and perform
// no other I/O, so replaying the log reproduces identical state.
type HandlerFunc func(tx *gorm.DB, event domain.Event) error

type handlerKey struct {
	aggregateType string
	eventType     string
}

// Engine dispatches events to projection handlers by
// (aggregate type, event type)
type Engine struct {
	handlers map[handlerKey]HandlerFunc
}

// NewEngine creates the projection engine with all handlers registered.
// It fails if any declared event type has no handler, so an un-projectable
// event type is caught at startup instead of corrupting the read model later.
func NewEngine() (*Engine, error) {
	e := &Engine{handlers: map[handlerKey]HandlerFunc{}}

	e.register(domain.AggregateTransaction, domain.TransactionCreated, projectTransactionCreated)
	e.register(domain.AggregateTransaction, domain.TransactionUpdated, projectTransactionUpdated)
	e.register(domain.AggregateTransaction, domain.TransactionDeleted, projectTransactionDeleted)

	e.register(domain.AggregateBudget, domain.BudgetCreated, projectBudgetCreated)
	e.register(domain.AggregateBudget, domain.BudgetUpdated, projectBudgetUpdated)
	e.register(domain.AggregateBudget, domain.BudgetDeleted, projectBudgetDeleted)

	e.register(domain.AggregateLifeEvent, domain.LifeEventCreated, projectLifeEventCreated)
	e.register(domain.AggregateLifeEvent, domain.LifeEventUpdated, projectLifeEventUpdated)
	e.register(domain.AggregateLifeEvent, domain.LifeEventDeleted, projectLifeEventDeleted)

	if err := e.checkExhaustive(); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Engine) register(aggregateType, eventType string, handler HandlerFunc) {
	e.handlers[handlerKey{aggregateType, eventType}] = handler
}

// checkExhaustive verifies every declared event type has a handler
func (e *Engine) checkExhaustive() error {
	for aggregateType, eventTypes := range domain.EventTypesByAggregate {
		for _, eventType := range eventTypes {
			if _, ok := e.handlers[handlerKey{aggregateType, eventType}]; !ok {
				return fmt.Errorf("no projection handler registered for (%s, %s)", aggregateType, eventType)
			}
		}
	}
	return nil
}

// Project applies the handler registered for the event and advances the
// aggregate's projection watermark in the same transaction. A missing
// handler is a fatal inconsistency, not a per-request error.
func (e *Engine) Project(tx *gorm.DB, event domain.Event) error {
	handler, ok := e.handlers[handlerKey{event.AggregateType, event.Type}]
	if !ok {
		return domain.NewProjectionFatalError(
			event.ID,
			fmt.Errorf("no handler registered for (%s, %s)", event.AggregateType, event.Type),
		)
	}

	if err := handler(tx, event); err != nil {
		return domain.NewProjectionFatalError(event.ID, err)
	}

	if err := e.advanceWatermark(tx, event); err != nil {
		return domain.NewProjectionFatalError(event.ID, fmt.Errorf("failed to advance watermark: %w", err))
	}

	log.Debug().
		Str("aggregateID", event.AggregateID).
		Str("eventType", event.Type).
		Int("version", event.Version).
		Msg("Projection applied")

	return nil
}

func (e *Engine) advanceWatermark(tx *gorm.DB, event domain.Event) error {
	watermark := models.ProjectionWatermark{
		AggregateID: event.AggregateID,
		Version:     event.Version,
		UpdatedAt:   time.Now().UTC(),
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "aggregate_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "updated_at"}),
	}).Create(&watermark).Error
}

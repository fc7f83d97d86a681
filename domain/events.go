package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// AggregateType constants
const (
	AggregateTransaction = "transaction"
	AggregateBudget      = "budget"
	AggregateLifeEvent   = "life_event"
)

// EventType constants
const (
	// Transaction events
	TransactionCreated = "transaction_created"
	TransactionUpdated = "transaction_updated"
	TransactionDeleted = "transaction_deleted"

	// Budget events
	BudgetCreated = "budget_created"
	BudgetUpdated = "budget_updated"
	BudgetDeleted = "budget_deleted"

	// Life event events
	LifeEventCreated = "life_event_created"
	LifeEventUpdated = "life_event_updated"
	LifeEventDeleted = "life_event_deleted"
)

// EventTypesByAggregate maps each aggregate type to the event types it can
// emit. The projection engine checks its dispatch table against this registry
// at startup, and the event store rejects appends outside of it.
var EventTypesByAggregate = map[string][]string{
	AggregateTransaction: {TransactionCreated, TransactionUpdated, TransactionDeleted},
	AggregateBudget:      {BudgetCreated, BudgetUpdated, BudgetDeleted},
	AggregateLifeEvent:   {LifeEventCreated, LifeEventUpdated, LifeEventDeleted},
}

// ValidateEventType checks that the aggregate type is known and that the
// event type belongs to it.
func ValidateEventType(aggregateType, eventType string) error {
	eventTypes, ok := EventTypesByAggregate[aggregateType]
	if !ok {
		return NewValidationError("unknown aggregate type: %s", aggregateType)
	}
	for _, et := range eventTypes {
		if et == eventType {
			return nil
		}
	}
	return NewValidationError("unknown event type %q for aggregate type %q", eventType, aggregateType)
}

// Metadata carries event provenance and the optional idempotency key
type Metadata struct {
	Source         string `json:"source,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// Event represents an immutable domain event
type Event struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	Type          string          `json:"type"`
	Version       int             `json:"version"`
	Position      uint64          `json:"position"`
	Payload       json.RawMessage `json:"payload"`
	Metadata      *Metadata       `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Transaction payloads

// TransactionCreatedPayload represents a transaction created event
type TransactionCreatedPayload struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date"`
}

// TransactionUpdatedPayload carries only the fields being changed
type TransactionUpdatedPayload struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	Date        *string          `json:"date,omitempty"`
}

// TransactionDeletedPayload represents a transaction deleted event
type TransactionDeletedPayload struct {
	Deleted bool `json:"deleted"`
}

// Budget payloads

// BudgetCreatedPayload represents a budget created event
type BudgetCreatedPayload struct {
	Category     string          `json:"category"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
	IsActive     bool            `json:"is_active"`
}

// BudgetUpdatedPayload represents a budget updated event
type BudgetUpdatedPayload struct {
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
}

// BudgetDeletedPayload represents a budget deactivation event
type BudgetDeletedPayload struct {
	IsActive bool `json:"is_active"`
}

// Life event payloads

// LifeEventType constants
const (
	LifeEventExpectingBaby      = "expecting_baby"
	LifeEventJobChange          = "job_change"
	LifeEventRetirementPlanning = "retirement_planning"
	LifeEventMajorPurchase      = "major_purchase"
	LifeEventDebtPayoff         = "debt_payoff"
	LifeEventEducation          = "education"
	LifeEventRelocation         = "relocation"
	LifeEventMarriage           = "marriage"
	LifeEventHealthEvent        = "health_event"
	LifeEventOther              = "other"
)

// LifeEventTypes lists the recognized life event categories
var LifeEventTypes = []string{
	LifeEventExpectingBaby,
	LifeEventJobChange,
	LifeEventRetirementPlanning,
	LifeEventMajorPurchase,
	LifeEventDebtPayoff,
	LifeEventEducation,
	LifeEventRelocation,
	LifeEventMarriage,
	LifeEventHealthEvent,
	LifeEventOther,
}

// LifeEventCreatedPayload represents a life event created event
type LifeEventCreatedPayload struct {
	EventType   string `json:"event_type"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	Impact      string `json:"impact,omitempty"`
}

// LifeEventUpdatedPayload carries only the fields being changed
type LifeEventUpdatedPayload struct {
	EventType   *string `json:"event_type,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	Impact      *string `json:"impact,omitempty"`
}

// LifeEventDeletedPayload represents a life event deleted event
type LifeEventDeletedPayload struct {
	Deleted bool `json:"deleted"`
}

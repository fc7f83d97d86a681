package eventstore

import (
	"context"

	"example.com/finbook/services/ledger/domain"
)

// Store is the single write path into the event log. All projection state
// changes happen as a side effect of Append; reads of current state go to
// the projection tables, never to the log.
type Store interface {
	// Append validates, sequences, persists and projects one event as a
	// single unit of work. A metadata idempotency key makes retries return
	// the original event. Returns ConflictError on a version race and
	// ValidationError for unrecognized aggregate or event types.
	Append(ctx context.Context, aggregateType, aggregateID, eventType string, payload any, metadata *domain.Metadata) (*domain.Event, error)

	// ListByAggregate returns all events for an aggregate in ascending
	// version order. Returns NotFoundError if the aggregate has no events.
	ListByAggregate(ctx context.Context, aggregateID string) ([]domain.Event, error)

	// ListAll returns events in ascending global append order, optionally
	// filtered by aggregate type, for audit and rebuild use.
	ListAll(ctx context.Context, aggregateType string, limit int) ([]domain.Event, error)

	// StreamEvents iterates an aggregate's events in ascending version
	// order in batches, calling fn for each. The iteration is lazy, finite
	// and restartable.
	StreamEvents(ctx context.Context, aggregateID string, batchSize int, fn func(domain.Event) error) error
}

package models

import (
	"encoding/json"
	"time"

	"example.com/finbook/services/ledger/domain"
)

// Event represents a domain event in the database. Rows are append-only:
// never updated, never deleted. Position is the global append order used for
// projection rebuild; the composite unique index on (aggregate_id, version)
// enforces optimistic concurrency per aggregate.
type Event struct {
	Position      uint64    `gorm:"primaryKey;autoIncrement" json:"position"`
	EventID       string    `gorm:"uniqueIndex;size:36" json:"event_id"`
	AggregateType string    `gorm:"index;size:32" json:"aggregate_type"`
	AggregateID   string    `gorm:"uniqueIndex:idx_aggregate_version;size:36" json:"aggregate_id"`
	EventType     string    `gorm:"size:64" json:"event_type"`
	Payload       []byte    `json:"payload"`
	Metadata      []byte    `json:"metadata"`
	Version       int       `gorm:"uniqueIndex:idx_aggregate_version" json:"version"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToDomain converts the stored row to the domain event value
func (e *Event) ToDomain() (domain.Event, error) {
	event := domain.Event{
		ID:            e.EventID,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		Type:          e.EventType,
		Version:       e.Version,
		Position:      e.Position,
		Payload:       json.RawMessage(e.Payload),
		CreatedAt:     e.CreatedAt,
	}
	if len(e.Metadata) > 0 {
		var meta domain.Metadata
		if err := json.Unmarshal(e.Metadata, &meta); err != nil {
			return domain.Event{}, err
		}
		event.Metadata = &meta
	}
	return event, nil
}

// IdempotencyRecord maps a caller-supplied idempotency key to the event it
// produced. Created in the same transaction as the event, read-only after.
// Retention is unbounded; rows are small and write rates are personal-scale.
type IdempotencyRecord struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	EventID   string    `gorm:"size:36" json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectionWatermark records the last projected version per aggregate,
// advanced in the same transaction as each projection. A watermark behind
// the log's max version means the read model diverged and needs a rebuild.
type ProjectionWatermark struct {
	AggregateID string    `gorm:"primaryKey;size:36" json:"aggregate_id"`
	Version     int       `json:"version"`
	UpdatedAt   time.Time `json:"updated_at"`
}

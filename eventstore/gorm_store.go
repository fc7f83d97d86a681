package eventstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/finbook/services/ledger/domain"
	"example.com/finbook/services/ledger/models"
	"example.com/finbook/services/ledger/projections"
)

// GormStore implements Store using GORM. Concurrency control is optimistic:
// version assignment and persistence run in one transaction, and the unique
// index on (aggregate_id, version) turns a lost race into a ConflictError at
// commit time. There is no lock table; appends to different aggregates never
// contend.
type GormStore struct {
	db     *gorm.DB
	engine *projections.Engine
}

// NewGormStore creates a new GORM-backed event store
func NewGormStore(db *gorm.DB, engine *projections.Engine) *GormStore {
	return &GormStore{db: db, engine: engine}
}

// Append validates, sequences, persists and projects one event as a single
// unit of work
func (s *GormStore) Append(ctx context.Context, aggregateType, aggregateID, eventType string, payload any, metadata *domain.Metadata) (*domain.Event, error) {
	if aggregateID == "" {
		return nil, domain.NewValidationError("aggregate ID cannot be empty")
	}
	if err := domain.ValidateEventType(aggregateType, eventType); err != nil {
		return nil, err
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.NewValidationError("failed to encode event payload: %v", err)
	}

	var metaBytes []byte
	idempotencyKey := ""
	if metadata != nil {
		idempotencyKey = metadata.IdempotencyKey
		metaBytes, err = json.Marshal(metadata)
		if err != nil {
			return nil, domain.NewValidationError("failed to encode event metadata: %v", err)
		}
	}

	var result domain.Event
	var replayed bool
	var projErr error

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if idempotencyKey != "" {
			prior, found, err := s.lookupIdempotency(tx, idempotencyKey)
			if err != nil {
				return err
			}
			if found {
				// Retried submission: return the original event untouched.
				// No version is consumed and nothing is re-projected.
				result = prior
				replayed = true
				return nil
			}
		}

		version, err := s.nextVersion(tx, aggregateID)
		if err != nil {
			return err
		}

		dbEvent := models.Event{
			EventID:       uuid.New().String(),
			AggregateType: aggregateType,
			AggregateID:   aggregateID,
			EventType:     eventType,
			Payload:       payloadBytes,
			Metadata:      metaBytes,
			Version:       version,
			CreatedAt:     time.Now().UTC(),
		}
		if err := s.insertEvent(tx, &dbEvent); err != nil {
			return err
		}

		if idempotencyKey != "" {
			// Reserved in the same transaction as the log write: a crash
			// before commit leaves no reservation behind.
			if err := s.reserveIdempotency(tx, idempotencyKey, dbEvent.EventID); err != nil {
				return err
			}
		}

		event, err := dbEvent.ToDomain()
		if err != nil {
			return fmt.Errorf("failed to decode stored event: %w", err)
		}
		result = event

		// The event must stay durable even if projection fails, so the
		// handler runs under a savepoint. On failure the partial projection
		// writes are rolled back, the watermark stays behind the log, and
		// the transaction still commits the event.
		if err := tx.SavePoint("projection").Error; err != nil {
			return fmt.Errorf("failed to create savepoint: %w", err)
		}
		if err := s.engine.Project(tx, event); err != nil {
			if rbErr := tx.RollbackTo("projection").Error; rbErr != nil {
				return fmt.Errorf("failed to roll back to savepoint: %w", rbErr)
			}
			projErr = err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if projErr != nil {
		log.WithLevel(zerolog.FatalLevel).
			Err(projErr).
			Str("eventID", result.ID).
			Str("aggregateID", aggregateID).
			Str("eventType", eventType).
			Msg("Event persisted but not projected; read model is stale until rebuild")
		return &result, projErr
	}

	if replayed {
		log.Info().
			Str("eventID", result.ID).
			Str("idempotencyKey", idempotencyKey).
			Msg("Duplicate append resolved by idempotency key")
		return &result, nil
	}

	log.Info().
		Str("aggregateID", aggregateID).
		Str("eventType", eventType).
		Int("version", result.Version).
		Msg("Event appended")

	return &result, nil
}

// nextVersion computes one plus the highest existing version for the
// aggregate. It must run inside the same transaction as the insert; the
// unique index catches any interleaving writer.
func (s *GormStore) nextVersion(tx *gorm.DB, aggregateID string) (int, error) {
	var current int
	if err := tx.Model(&models.Event{}).
		Where("aggregate_id = ?", aggregateID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&current).Error; err != nil {
		return 0, fmt.Errorf("failed to read latest version: %w", err)
	}
	return current + 1, nil
}

// insertEvent persists the event row, mapping a duplicate
// (aggregate_id, version) to ConflictError
func (s *GormStore) insertEvent(tx *gorm.DB, dbEvent *models.Event) error {
	if err := tx.Create(dbEvent).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError(
				"version %d already exists for aggregate %s",
				dbEvent.Version, dbEvent.AggregateID,
			)
		}
		return fmt.Errorf("failed to persist event: %w", err)
	}
	return nil
}

// ListByAggregate returns all events for an aggregate in ascending version
// order
func (s *GormStore) ListByAggregate(ctx context.Context, aggregateID string) ([]domain.Event, error) {
	var dbEvents []models.Event
	if err := s.db.WithContext(ctx).
		Where("aggregate_id = ?", aggregateID).
		Order("version ASC").
		Find(&dbEvents).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if len(dbEvents) == 0 {
		return nil, domain.NewNotFoundError("Aggregate", aggregateID)
	}
	return toDomainEvents(dbEvents)
}

// ListAll returns events in ascending global append order
func (s *GormStore) ListAll(ctx context.Context, aggregateType string, limit int) ([]domain.Event, error) {
	query := s.db.WithContext(ctx).Order("position ASC")
	if aggregateType != "" {
		query = query.Where("aggregate_type = ?", aggregateType)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var dbEvents []models.Event
	if err := query.Find(&dbEvents).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return toDomainEvents(dbEvents)
}

// StreamEvents iterates an aggregate's events in ascending version order in
// batches
func (s *GormStore) StreamEvents(ctx context.Context, aggregateID string, batchSize int, fn func(domain.Event) error) error {
	if batchSize <= 0 {
		batchSize = 100
	}

	lastVersion := 0
	for {
		var batch []models.Event
		if err := s.db.WithContext(ctx).
			Where("aggregate_id = ? AND version > ?", aggregateID, lastVersion).
			Order("version ASC").
			Limit(batchSize).
			Find(&batch).Error; err != nil {
			return fmt.Errorf("failed to read event batch: %w", err)
		}
		if len(batch) == 0 {
			return nil
		}

		for _, dbEvent := range batch {
			event, err := dbEvent.ToDomain()
			if err != nil {
				return fmt.Errorf("failed to decode event %s: %w", dbEvent.EventID, err)
			}
			if err := fn(event); err != nil {
				return err
			}
			lastVersion = dbEvent.Version
		}
	}
}

func toDomainEvents(dbEvents []models.Event) ([]domain.Event, error) {
	events := make([]domain.Event, len(dbEvents))
	for i, dbEvent := range dbEvents {
		event, err := dbEvent.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode event %s: %w", dbEvent.EventID, err)
		}
		events[i] = event
	}
	return events, nil
}

package eventstore

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"example.com/finbook/services/ledger/domain"
	"example.com/finbook/services/ledger/models"
)

// lookupIdempotency returns the event previously produced for the key, if
// any. Runs inside the append transaction so the check and the eventual
// reservation are atomic with the log write.
func (s *GormStore) lookupIdempotency(tx *gorm.DB, key string) (domain.Event, bool, error) {
	var record models.IdempotencyRecord
	err := tx.Where("key = ?", key).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Event{}, false, nil
	}
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("failed to look up idempotency key: %w", err)
	}

	var dbEvent models.Event
	if err := tx.Where("event_id = ?", record.EventID).First(&dbEvent).Error; err != nil {
		return domain.Event{}, false, fmt.Errorf("failed to load event for idempotency key %q: %w", key, err)
	}

	event, err := dbEvent.ToDomain()
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("failed to decode event %s: %w", dbEvent.EventID, err)
	}
	return event, true, nil
}

// reserveIdempotency records the key → event mapping. Two writers racing on
// the same unseen key both pass the lookup; the primary key on the record
// lets exactly one reservation commit, the other surfaces as a conflict and
// its whole append rolls back so a retry resolves via the committed key.
func (s *GormStore) reserveIdempotency(tx *gorm.DB, key, eventID string) error {
	record := models.IdempotencyRecord{
		Key:       key,
		EventID:   eventID,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("idempotency key %q already reserved", key)
		}
		return fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	return nil
}

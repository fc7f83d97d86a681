package projections

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/finbook/services/ledger/models"
)

const rebuildBatchSize = 500

// Rebuild drops all projection rows and watermarks, then replays the full
// event log in ascending global append order. Deterministic handlers make
// the result identical to the incrementally maintained state.
//
// Rebuild is a maintenance operation: it must not run concurrently with live
// appends.
func (e *Engine) Rebuild(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projectionModels := []any{
			&models.TransactionProjection{},
			&models.MonthlySummaryProjection{},
			&models.BudgetProjection{},
			&models.LifeEventProjection{},
			&models.ProjectionWatermark{},
		}
		for _, model := range projectionModels {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to drop projection rows: %w", err)
			}
		}

		var replayed int
		var lastPosition uint64
		for {
			var batch []models.Event
			if err := tx.Where("position > ?", lastPosition).
				Order("position ASC").
				Limit(rebuildBatchSize).
				Find(&batch).Error; err != nil {
				return fmt.Errorf("failed to read event batch: %w", err)
			}
			if len(batch) == 0 {
				break
			}

			for _, dbEvent := range batch {
				event, err := dbEvent.ToDomain()
				if err != nil {
					return fmt.Errorf("failed to decode event %s: %w", dbEvent.EventID, err)
				}
				if err := e.Project(tx, event); err != nil {
					return err
				}
				lastPosition = dbEvent.Position
				replayed++
			}
		}

		log.Info().Int("events", replayed).Msg("Projection rebuild complete")
		return nil
	})
}

// Divergence reports an aggregate whose projection watermark is behind the
// event log
type Divergence struct {
	AggregateID      string `json:"aggregate_id"`
	LogVersion       int    `json:"log_version"`
	ProjectedVersion int    `json:"projected_version"`
}

// Verify compares each aggregate's max log version against its projection
// watermark. A non-empty result means an event was persisted but never
// projected (e.g. a crash mid-append) and the read model needs a rebuild.
func Verify(ctx context.Context, db *gorm.DB) ([]Divergence, error) {
	type logRow struct {
		AggregateID string
		Version     int
	}
	var logRows []logRow
	if err := db.WithContext(ctx).
		Model(&models.Event{}).
		Select("aggregate_id, MAX(version) AS version").
		Group("aggregate_id").
		Scan(&logRows).Error; err != nil {
		return nil, fmt.Errorf("failed to read log versions: %w", err)
	}

	var watermarks []models.ProjectionWatermark
	if err := db.WithContext(ctx).Find(&watermarks).Error; err != nil {
		return nil, fmt.Errorf("failed to read watermarks: %w", err)
	}
	projected := make(map[string]int, len(watermarks))
	for _, w := range watermarks {
		projected[w.AggregateID] = w.Version
	}

	var divergences []Divergence
	for _, row := range logRows {
		if projected[row.AggregateID] < row.Version {
			divergences = append(divergences, Divergence{
				AggregateID:      row.AggregateID,
				LogVersion:       row.Version,
				ProjectedVersion: projected[row.AggregateID],
			})
		}
	}

	return divergences, nil
}

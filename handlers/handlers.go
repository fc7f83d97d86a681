// Package handlers holds the command side of the service: each handler
// validates a command, builds the event payload, and appends it through the
// event store facade. Handlers never write projection tables directly.
package handlers

import (
	"example.com/finbook/services/ledger/domain"
)

// eventMetadata builds event metadata, or nil when there is nothing to carry
func eventMetadata(source, idempotencyKey string) *domain.Metadata {
	if source == "" && idempotencyKey == "" {
		return nil
	}
	return &domain.Metadata{Source: source, IdempotencyKey: idempotencyKey}
}

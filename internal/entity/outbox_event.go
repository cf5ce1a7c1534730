package entity

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is a card.detected notification written in the same
// transaction as the card upsert and published by the relay worker.
type OutboxEvent struct {
	ID          uuid.UUID  `json:"id"`
	AggregateID string     `json:"aggregate_id"` // card_id
	Payload     []byte     `json:"payload"`
	Status      Status     `json:"status"` // pending, processing, processed, failed
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	RetryCount  int        `json:"retry_count"`
}

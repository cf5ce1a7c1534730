package card

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/andreyxaxa/Print-Detection/internal/entity"
	"github.com/google/uuid"
)

func detectedImageURL(cardID string) string {
	return "/v1/cards/" + cardID + "/image"
}

func (uc *CardUseCase) createOutboxEvent(card *entity.Card) (*entity.OutboxEvent, error) {
	payload := map[string]interface{}{
		"card_id":            card.CardID,
		"status":             card.Status,
		"scores":             card.Scores,
		"model":              card.Model,
		"updated_at":         card.UpdatedAt.Format(time.RFC3339),
		"detected_image_url": card.DetectedImageURL,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("CardUseCase - createOutboxEvent - json.Marshal: %w", err)
	}

	return &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: card.CardID,
		Payload:     b,
		Status:      entity.Pending,
		CreatedAt:   uc.now(),
		RetryCount:  0,
	}, nil
}

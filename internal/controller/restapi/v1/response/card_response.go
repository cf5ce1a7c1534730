package response

import (
	"time"

	"github.com/andreyxaxa/Print-Detection/internal/entity"
)

type Card struct {
	CardID           string             `json:"card_id"`
	DetectedImageURL string             `json:"detected_image_url"`
	Status           string             `json:"status"`
	Scores           map[string]float64 `json:"scores"`
	UpdatedAt        string             `json:"updated_at"`
	Model            string             `json:"model"`
}

func NewCard(card *entity.Card) Card {
	return Card{
		CardID:           card.CardID,
		DetectedImageURL: card.DetectedImageURL,
		Status:           string(card.Status),
		Scores:           card.Scores,
		UpdatedAt:        card.UpdatedAt.Format(time.RFC3339),
		Model:            card.Model,
	}
}

type CardList struct {
	Items      []Card  `json:"items"`
	NextCursor *string `json:"next_cursor"`
}

func NewCardList(cards []*entity.Card, nextCursor string) CardList {
	items := make([]Card, 0, len(cards))
	for _, card := range cards {
		items = append(items, NewCard(card))
	}

	list := CardList{Items: items}
	if nextCursor != "" {
		list.NextCursor = &nextCursor
	}

	return list
}

package response

import (
	"time"

	"github.com/andreyxaxa/Print-Detection/internal/entity"
)

type AccessKey struct {
	APIKey    string `json:"api_key"`
	CardID    string `json:"card_id"`
	ExpiresAt string `json:"expires_at"`
}

func NewAccessKey(key *entity.AccessKey) AccessKey {
	return AccessKey{
		APIKey:    key.APIKey,
		CardID:    key.CardID,
		ExpiresAt: key.ExpiresAt.Format(time.RFC3339),
	}
}

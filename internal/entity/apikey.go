package entity

import "time"

// AccessKey authorizes the replace mutation for a single card until
// ExpiresAt (inclusive). Used is reserved for one-time-key policies
// and is not consulted by the default verification path.
type AccessKey struct {
	APIKey    string    `json:"api_key"`
	CardID    string    `json:"card_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
}

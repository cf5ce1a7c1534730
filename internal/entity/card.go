package entity

import "time"

type CardStatus string

const (
	StatusGood CardStatus = "GOOD"
	StatusFail CardStatus = "FAIL"
)

// Scores maps a detection-class label to its confidence in [0,1].
type Scores map[string]float64

// Card is the stored detection result for one uploaded print image.
// Exactly one row exists per CardID; a re-detection replaces every
// field at once.
type Card struct {
	CardID           string     `json:"card_id"`
	DetectedImageURL string     `json:"detected_image_url"`
	Status           CardStatus `json:"status"`
	Scores           Scores     `json:"scores"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Model            string     `json:"model"`
}

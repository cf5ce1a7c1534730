package v1

import (
	"time"

	"github.com/andreyxaxa/Print-Detection/internal/usecase"
	"github.com/andreyxaxa/Print-Detection/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

// Options carries the protocol constants the handlers enforce.
type Options struct {
	KeyTTL        time.Duration
	MaxUploadSize int64
}

func NewCardRoutes(apiV1Group fiber.Router, cards usecase.CardUseCase, keys usecase.AccessKeyUseCase, opts Options, l logger.Interface) {
	r := &V1{cards: cards, keys: keys, opts: opts, logger: l}

	{
		// API
		apiV1Group.Post("/cards", r.createCard)
		apiV1Group.Get("/cards", r.listCards)
		apiV1Group.Get("/cards/:card_id", r.getCard)
		apiV1Group.Get("/cards/:card_id/image", r.getDetectedImage)
		apiV1Group.Post("/cards/:card_id/apikey", r.issueAPIKey)
		apiV1Group.Post("/cards/:card_id/replace", r.replaceCard)
	}
}

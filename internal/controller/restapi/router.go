package restapi

import (
	"github.com/andreyxaxa/Print-Detection/config"
	v1 "github.com/andreyxaxa/Print-Detection/internal/controller/restapi/v1"
	"github.com/andreyxaxa/Print-Detection/internal/usecase"
	"github.com/andreyxaxa/Print-Detection/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// @title Print detection cards
// @version 1.0.0
// @host localhost:8080
// @BasePath /v1
func NewRouter(app *fiber.App, cfg *config.Config, cards usecase.CardUseCase, keys usecase.AccessKeyUseCase, l logger.Interface) {
	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Routers
	apiV1Group := app.Group("/v1")
	{
		v1.NewCardRoutes(apiV1Group, cards, keys, v1.Options{
			KeyTTL:        cfg.Card.KeyTTL,
			MaxUploadSize: cfg.Card.MaxUploadSize,
		}, l)
	}
}

package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/andreyxaxa/Print-Detection/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Print-Detection/internal/controller/restapi/v1/validate"
	"github.com/andreyxaxa/Print-Detection/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

const (
	apiKeyHeader = "X-API-Key"

	defaultListLimit = 50
	maxListLimit     = 200
)

// @Summary  	Upload a print image and create a card
// @Description Validates the upload, stores it, runs detection and persists the result
// @Tags 		cards
// @Accept 		mpfd
// @Produce 	json
// @Param 		image formData file true "Print image (jpeg, png)"
// @Success 	201 {object} response.Card
// @Failure 	400 {object} response.Error "Bad content type or size"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/cards [post]
func (r *V1) createCard(ctx *fiber.Ctx) error {
	data, contentType, ok, err := r.readUpload(ctx)
	if !ok {
		return err
	}

	card, err := r.cards.Create(ctx.UserContext(), data, contentType, int64(len(data)))
	if err != nil {
		r.logger.Error(err, "restapi - v1 - createCard")

		return errorResponse(ctx, http.StatusInternalServerError, "detection problems")
	}

	return ctx.Status(http.StatusCreated).JSON(response.NewCard(card))
}

// @Summary  	Re-run detection for an existing card
// @Description Requires an X-API-Key issued for this card; replaces the stored result
// @Tags 		cards
// @Accept 		mpfd
// @Produce 	json
// @Param 		card_id path string true "Card ID"
// @Param 		image formData file true "Print image (jpeg, png)"
// @Success 	200 {object} response.Card
// @Failure 	400 {object} response.Error "Bad content type or size"
// @Failure 	401 {object} response.Error "Missing or invalid API key"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/cards/{card_id}/replace [post]
func (r *V1) replaceCard(ctx *fiber.Ctx) error {
	cardID := ctx.Params("card_id")

	apiKey := ctx.Get(apiKeyHeader)
	if apiKey == "" {
		return errorResponse(ctx, http.StatusUnauthorized, "missing API key")
	}

	ok, err := r.keys.Verify(ctx.UserContext(), apiKey, cardID)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - replaceCard")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}
	// one message for unknown key, wrong card and expiry alike
	if !ok {
		return errorResponse(ctx, http.StatusUnauthorized, "API key expired/invalid")
	}

	data, contentType, ok, err := r.readUpload(ctx)
	if !ok {
		return err
	}

	card, err := r.cards.Replace(ctx.UserContext(), cardID, data, contentType, int64(len(data)))
	if err != nil {
		r.logger.Error(err, "restapi - v1 - replaceCard")

		return errorResponse(ctx, http.StatusInternalServerError, "detection problems")
	}

	return ctx.Status(http.StatusOK).JSON(response.NewCard(card))
}

// @Summary  	Get a card
// @Tags 		cards
// @Produce 	json
// @Param 		card_id path string true "Card ID"
// @Success 	200 {object} response.Card
// @Failure 	404 {object} response.Error "Card not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/cards/{card_id} [get]
func (r *V1) getCard(ctx *fiber.Ctx) error {
	cardID := ctx.Params("card_id")

	card, err := r.cards.Get(ctx.UserContext(), cardID)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "card not found")
		}
		r.logger.Error(err, "restapi - v1 - getCard")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	return ctx.Status(http.StatusOK).JSON(response.NewCard(card))
}

// @Summary  	List cards
// @Description Most recently updated first; keyset pagination via cursor
// @Tags 		cards
// @Produce 	json
// @Param 		limit query int false "Page size (default 50, max 200)"
// @Param 		cursor query string false "Cursor from the previous page"
// @Success 	200 {object} response.CardList
// @Failure 	400 {object} response.Error "Invalid cursor"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/cards [get]
func (r *V1) listCards(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", defaultListLimit)
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	cursor := ctx.Query("cursor")

	cards, nextCursor, err := r.cards.List(ctx.UserContext(), limit, cursor)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCursor) {
			return errorResponse(ctx, http.StatusBadRequest, "invalid cursor")
		}
		r.logger.Error(err, "restapi - v1 - listCards")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	return ctx.Status(http.StatusOK).JSON(response.NewCardList(cards, nextCursor))
}

// @Summary  	Download the annotated result image
// @Tags 		cards
// @Produce 	image/jpeg,image/png
// @Param 		card_id path string true "Card ID"
// @Success 	200 {file} 	binary
// @Failure 	404 {object} response.Error "Card not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/cards/{card_id}/image [get]
func (r *V1) getDetectedImage(ctx *fiber.Ctx) error {
	cardID := ctx.Params("card_id")

	body, contentType, err := r.cards.DownloadDetectedImage(ctx.UserContext(), cardID)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "card not found")
		}
		r.logger.Error(err, "restapi - v1 - getDetectedImage")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	ctx.Set(fiber.HeaderContentType, contentType)

	return ctx.SendStream(body)
}

// readUpload pulls the multipart image out of the request and applies
// the protocol validation: allow-listed content type, non-empty body,
// size at most the configured maximum (boundary inclusive). When ok is
// false the response has already been written.
func (r *V1) readUpload(ctx *fiber.Ctx) ([]byte, string, bool, error) {
	file, err := ctx.FormFile("image")
	if err != nil {
		return nil, "", false, errorResponse(ctx, http.StatusBadRequest, "image is required")
	}

	if file.Size == 0 {
		return nil, "", false, errorResponse(ctx, http.StatusBadRequest, "image is empty")
	}

	if file.Size > r.opts.MaxUploadSize {
		return nil, "", false, errorResponse(ctx, http.StatusBadRequest,
			fmt.Sprintf("file size cant be more than %d bytes", r.opts.MaxUploadSize))
	}

	contentType := file.Header.Get("Content-Type")
	if !validate.AllowedContentTypes[contentType] {
		return nil, "", false, errorResponse(ctx, http.StatusBadRequest, "unsupported file type. Allowed: jpeg, png")
	}

	fileReader, err := file.Open()
	if err != nil {
		r.logger.Error(err, "restapi - v1 - readUpload")

		return nil, "", false, errorResponse(ctx, http.StatusInternalServerError, "problems with opening the file")
	}
	defer fileReader.Close()

	data, err := io.ReadAll(fileReader)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - readUpload")

		return nil, "", false, errorResponse(ctx, http.StatusInternalServerError, "problems with reading the file")
	}

	return data, contentType, true, nil
}

package v1

import (
	"errors"
	"net/http"

	"github.com/andreyxaxa/Print-Detection/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Print-Detection/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

// @Summary  	Issue an API key for a card
// @Description Mints a short-lived key scoped to this card; anyone who knows the card_id may request one
// @Tags 		apikeys
// @Produce 	json
// @Param 		card_id path string true "Card ID"
// @Success 	200 {object} response.AccessKey
// @Failure 	404 {object} response.Error "Card not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/cards/{card_id}/apikey [post]
func (r *V1) issueAPIKey(ctx *fiber.Ctx) error {
	cardID := ctx.Params("card_id")

	key, err := r.keys.Issue(ctx.UserContext(), cardID, r.opts.KeyTTL)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "card not found")
		}
		r.logger.Error(err, "restapi - v1 - issueAPIKey")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	return ctx.Status(http.StatusOK).JSON(response.NewAccessKey(key))
}

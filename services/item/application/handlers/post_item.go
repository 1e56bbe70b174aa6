package handlers

import (
	"fmt"
	"net/http"

	"github.com/ghuser/itemtracker/pkg/errhttp"
	"github.com/ghuser/itemtracker/pkg/httpx"
	"github.com/ghuser/itemtracker/pkg/logger"
	pkgvalidator "github.com/ghuser/itemtracker/pkg/validator"
	appsvcs "github.com/ghuser/itemtracker/services/item/application/services"
	itemdomain "github.com/ghuser/itemtracker/services/item/domain"
)

// CreateItemRequest is the request body for POST /items.
type CreateItemRequest struct {
	Name string `json:"name" validate:"notblank" example:"Widget"`
} // @name CreateItemRequest

// PostItemHandler handles POST /items requests.
type PostItemHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(svc *appsvcs.Services, log logger.Logger) *PostItemHandler {
	return &PostItemHandler{svc: svc, log: log}
}

// Execute creates a new item.
//
//	@Summary		Create item
//	@Description	Creates a new item stamped with the current time
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateItemRequest	true	"Item creation request"
//	@Success		201		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/items [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	// A missing, non-string or blank name and an unreadable body all mean
	// the same thing to the caller.
	req, err := pkgvalidator.DecodeAndValidate[CreateItemRequest](r)
	if err != nil {
		h.log.DebugContext(r.Context(), "create item rejected",
			"fields", pkgvalidator.FormatValidationErrors(err), "error", err)
		errhttp.WriteError(w, r, h.log, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemName, err), msgCreateFailed)
		return
	}

	item, err := h.svc.Item.Create(r.Context(), req.Name)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err, msgCreateFailed)
		return
	}

	httpx.JSON(w, http.StatusCreated, toItemResponse(item))
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/itemtracker/pkg/errhttp"
	"github.com/ghuser/itemtracker/pkg/httpx"
	"github.com/ghuser/itemtracker/pkg/logger"
	appsvcs "github.com/ghuser/itemtracker/services/item/application/services"
)

// DeleteItemResponse is returned when an item is deleted.
type DeleteItemResponse struct {
	Message     string       `json:"message"     example:"Item deleted successfully"`
	DeletedItem ItemResponse `json:"deletedItem"`
} // @name DeleteItemResponse

// DeleteItemHandler handles DELETE /items/{id} requests.
type DeleteItemHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewDeleteItemHandler returns a DeleteItemHandler backed by the given services.
func NewDeleteItemHandler(svc *appsvcs.Services, log logger.Logger) *DeleteItemHandler {
	return &DeleteItemHandler{svc: svc, log: log}
}

// Execute deletes an item that has reached the minimum deletion age.
//
//	@Summary		Delete item
//	@Description	Deletes an item once it is old enough. Younger items are refused with their age.
//	@Tags			items
//	@Produce		json
//	@Param			id	path		string	true	"Item ID"
//	@Success		200	{object}	DeleteItemResponse
//	@Failure		400	{object}	errhttp.TooYoungResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/items/{id} [delete]
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Item.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		errhttp.WriteError(w, r, h.log, err, msgDeleteFailed)
		return
	}

	httpx.JSON(w, http.StatusOK, DeleteItemResponse{
		Message:     msgDeleted,
		DeletedItem: toItemResponse(item),
	})
}

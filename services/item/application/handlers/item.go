package handlers

import (
	"time"

	"github.com/ghuser/itemtracker/services/item/domain/models"
)

// Fallback messages for internal faults, one per operation.
const (
	msgListFailed   = "Failed to fetch items"
	msgGetFailed    = "Failed to fetch item"
	msgCreateFailed = "Failed to create item"
	msgDeleteFailed = "Failed to delete item"

	msgDeleted = "Item deleted successfully"
)

// ItemResponse is the wire form of an Item.
type ItemResponse struct {
	ID        int64     `json:"id"        example:"1"`
	Name      string    `json:"name"      example:"Widget"`
	CreatedAt time.Time `json:"createdAt" example:"2024-01-15T10:30:00Z"`
} // @name Item

// ErrorResponse is returned on all error responses except age refusals.
type ErrorResponse struct {
	Error string `json:"error" example:"Item not found"`
} // @name ErrorResponse

func toItemResponse(it *models.Item) ItemResponse {
	return ItemResponse{
		ID:        it.ID.Int64(),
		Name:      it.Name.String(),
		CreatedAt: it.CreatedAt,
	}
}

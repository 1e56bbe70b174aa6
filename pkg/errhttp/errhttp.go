// Package errhttp maps domain sentinel errors to HTTP responses.
// Add a case to mapError for each new domain sentinel error.
package errhttp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ghuser/itemtracker/pkg/httpx"
	"github.com/ghuser/itemtracker/pkg/logger"
	"github.com/ghuser/itemtracker/pkg/telemetry"
	itemdomain "github.com/ghuser/itemtracker/services/item/domain"
)

// Client-facing messages for domain errors.
const (
	MsgNameRequired = "Item name is required"
	MsgInvalidID    = "Invalid item ID"
	MsgNotFound     = "Item not found"
)

// TooYoungResponse is the body of a deletion refused by the age rule.
type TooYoungResponse struct {
	Error       string `json:"error"       example:"Item must be older than 5 days to delete"`
	ItemAge     int    `json:"itemAge"     example:"2"`
	RequiredAge int    `json:"requiredAge" example:"5"`
} // @name TooYoungResponse

// TooYoungMessage is the error text for an item younger than requiredAge days.
func TooYoungMessage(requiredAge int) string {
	return fmt.Sprintf("Item must be older than %d days to delete", requiredAge)
}

// WriteError maps err to an HTTP status and writes a JSON error response.
// Uses errors.Is()/errors.As() so wrapped domain errors are matched.
// Unrecognized errors become 500 with fallback as the message; the cause is
// logged and reported to Sentry but never sent to the client.
func WriteError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error, fallback string) {
	var tooYoung *itemdomain.TooYoungError
	if errors.As(err, &tooYoung) {
		httpx.JSON(w, http.StatusBadRequest, TooYoungResponse{
			Error:       TooYoungMessage(tooYoung.RequiredAge),
			ItemAge:     tooYoung.Age,
			RequiredAge: tooYoung.RequiredAge,
		})
		return
	}

	status, msg := mapError(err)
	if status == http.StatusInternalServerError {
		log.ErrorContext(r.Context(), fallback, "error", err)
		telemetry.CaptureError(r.Context(), err)
		msg = fallback
	}
	httpx.JSONError(w, status, msg)
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, itemdomain.ErrInvalidItemName):
		return http.StatusBadRequest, MsgNameRequired // 400
	case errors.Is(err, itemdomain.ErrInvalidItemID):
		return http.StatusBadRequest, MsgInvalidID // 400
	case errors.Is(err, itemdomain.ErrItemNotFound):
		return http.StatusNotFound, MsgNotFound // 404
	default:
		return http.StatusInternalServerError, "" // 500
	}
}

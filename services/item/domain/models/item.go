package models

import (
	"time"
)

// Item is the core aggregate for this bounded context.
// ID and CreatedAt are zero until the Store assigns them.
type Item struct {
	ID        ItemID
	Name      ItemName
	CreatedAt time.Time
}

// NewItem constructs an unsaved Item.
func NewItem(name ItemName) *Item {
	return &Item{Name: name}
}

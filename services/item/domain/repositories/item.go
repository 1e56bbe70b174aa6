package repositories

import (
	"context"

	"github.com/ghuser/itemtracker/pkg/clock"
	"github.com/ghuser/itemtracker/services/item/domain/models"
)

// ItemRepository is the Store: the authoritative persistence interface for
// the Item aggregate. The domain layer owns this interface; infrastructure
// implements it. Implementations must apply each operation atomically.
type ItemRepository interface {
	// Save inserts an unsaved Item, assigning its ID and stamping CreatedAt
	// from clk. The clock is read inside the same serialized section as the
	// insert, so a higher ID never carries an earlier CreatedAt when clk is
	// monotonic. IDs are never reused.
	Save(ctx context.Context, item *models.Item, clk clock.Clock) error

	// GetByID returns ErrItemNotFound when no item has the given ID.
	GetByID(ctx context.Context, id models.ItemID) (*models.Item, error)

	// List returns every item, newest CreatedAt first. Ties are broken by
	// descending ID so the order is stable.
	List(ctx context.Context) ([]*models.Item, error)

	// Delete removes the item and returns it as it was stored.
	// Returns ErrItemNotFound when no row matched.
	Delete(ctx context.Context, id models.ItemID) (*models.Item, error)
}

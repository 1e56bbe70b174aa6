// Package sqlite implements the item Store on the embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ghuser/itemtracker/pkg/clock"
	"github.com/ghuser/itemtracker/pkg/database"
	itemdomain "github.com/ghuser/itemtracker/services/item/domain"
	"github.com/ghuser/itemtracker/services/item/domain/models"
)

// createdAtLayout is fixed-width UTC so lexical order on the column equals
// chronological order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

const (
	insertItemSQL = `INSERT INTO items (name, created_at) VALUES (?, ?) RETURNING id`
	getItemSQL    = `SELECT id, name, created_at FROM items WHERE id = ?`
	listItemsSQL  = `SELECT id, name, created_at FROM items ORDER BY created_at DESC, id DESC`
	deleteItemSQL = `DELETE FROM items WHERE id = ? RETURNING id, name, created_at`
)

// ItemRepository implements repositories.ItemRepository against SQLite.
type ItemRepository struct {
	db *database.Database
}

// NewItemRepository returns an ItemRepository backed by db. The items table
// must already exist (see migrations/item).
func NewItemRepository(db *database.Database) *ItemRepository {
	return &ItemRepository{db: db}
}

// Save inserts item and sets item.ID and item.CreatedAt to the stored values.
// The database holds a single connection, so the clock read inside the
// transaction is ordered with every other insert.
func (r *ItemRepository) Save(ctx context.Context, item *models.Item, clk clock.Clock) error {
	var (
		id        int64
		createdAt time.Time
	)
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		createdAt = clk.Now().UTC()
		if err := tx.QueryRowContext(ctx, insertItemSQL,
			item.Name.String(),
			formatCreatedAt(createdAt),
		).Scan(&id); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	item.ID = models.ItemID(id)
	item.CreatedAt = createdAt
	return nil
}

// GetByID retrieves an Item by ID. Returns ErrItemNotFound if not found.
func (r *ItemRepository) GetByID(ctx context.Context, id models.ItemID) (*models.Item, error) {
	item, err := scanItem(r.db.DB().QueryRowContext(ctx, getItemSQL, id.Int64()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, itemdomain.ErrItemNotFound
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

// List returns all items, newest first.
func (r *ItemRepository) List(ctx context.Context) ([]*models.Item, error) {
	rows, err := r.db.DB().QueryContext(ctx, listItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	items := make([]*models.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Delete removes the item with the given ID in a single statement and returns
// the removed row. Returns ErrItemNotFound when nothing matched, so of two
// concurrent deletes of the same ID only one succeeds.
func (r *ItemRepository) Delete(ctx context.Context, id models.ItemID) (*models.Item, error) {
	item, err := scanItem(r.db.DB().QueryRowContext(ctx, deleteItemSQL, id.Int64()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, itemdomain.ErrItemNotFound
		}
		return nil, fmt.Errorf("delete item: %w", err)
	}
	return item, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		id        int64
		name      string
		createdAt string
	)
	if err := row.Scan(&id, &name, &createdAt); err != nil {
		return nil, err
	}
	ts, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	return &models.Item{
		ID:        models.ItemID(id),
		Name:      models.ItemName(name),
		CreatedAt: ts,
	}, nil
}

func formatCreatedAt(t time.Time) string {
	return t.UTC().Format(createdAtLayout)
}

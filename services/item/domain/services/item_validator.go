// Package services contains stateless domain services for the item bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"fmt"
	"strings"

	"github.com/ghuser/itemtracker/services/item/domain/models"
)

// ValidateName enforces the ItemName invariant for values that did not come
// through models.NewItemName (for example rows read back from storage).
func ValidateName(name models.ItemName) error {
	if strings.TrimSpace(name.String()) == "" {
		return fmt.Errorf("item name must not be only whitespace")
	}
	return nil
}

// ValidateItemForCreation checks an unsaved Item before it is persisted.
func ValidateItemForCreation(item *models.Item) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil")
	}

	if err := ValidateName(item.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	if item.ID != 0 {
		return fmt.Errorf("id must not be set before save")
	}

	if !item.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is assigned by the store")
	}

	return nil
}

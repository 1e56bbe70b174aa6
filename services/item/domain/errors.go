package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the item domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates the requested item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidItemName indicates the item name is missing or blank.
	ErrInvalidItemName = errors.New("invalid item name")

	// ErrInvalidItemID indicates a malformed item identifier.
	ErrInvalidItemID = errors.New("invalid item id")

	// ErrItemTooYoung indicates the item has not yet reached the minimum age for deletion.
	ErrItemTooYoung = errors.New("item too young to delete")
)

// TooYoungError reports a rejected deletion together with the item's age and
// the age the deletion policy requires, both in whole days.
// It matches ErrItemTooYoung under errors.Is.
type TooYoungError struct {
	Age         int
	RequiredAge int
}

func (e *TooYoungError) Error() string {
	return fmt.Sprintf("item must be older than %d days to delete (age %d)", e.RequiredAge, e.Age)
}

func (e *TooYoungError) Unwrap() error {
	return ErrItemTooYoung
}

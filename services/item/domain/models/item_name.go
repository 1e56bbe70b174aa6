package models

import (
	"errors"
	"strings"
)

// ItemName is a value object representing a valid item name:
// non-empty after trimming surrounding whitespace.
type ItemName string

// NewItemName trims s and returns it as an ItemName, or an error when nothing
// but whitespace remains.
func NewItemName(s string) (ItemName, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", errors.New("item name must not be empty")
	}
	return ItemName(trimmed), nil
}

// String returns the underlying string value.
func (n ItemName) String() string {
	return string(n)
}

package models

import (
	"errors"
	"regexp"
	"strconv"
)

// ItemID is the Store-assigned positive integer identity of an Item.
type ItemID int64

var itemIDPattern = regexp.MustCompile(`^\d+$`)

// ParseItemID parses a path identifier. raw must be one or more ASCII digits
// with no sign, decimal point or surrounding characters, and must denote a
// positive value that fits in an int64.
func ParseItemID(raw string) (ItemID, error) {
	if !itemIDPattern.MatchString(raw) {
		return 0, errors.New("item id must be a decimal integer")
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("item id out of range")
	}
	if n <= 0 {
		return 0, errors.New("item id must be positive")
	}
	return ItemID(n), nil
}

// Int64 returns the underlying integer.
func (id ItemID) Int64() int64 {
	return int64(id)
}

// String returns the decimal form of id.
func (id ItemID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

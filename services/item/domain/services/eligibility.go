package services

import (
	"fmt"
	"time"

	itemdomain "github.com/ghuser/itemtracker/services/item/domain"
	"github.com/ghuser/itemtracker/services/item/domain/models"
)

// Day is the unit item ages are measured in.
const Day = 24 * time.Hour

// DefaultMinAgeDays is the deletion threshold used when none is configured.
const DefaultMinAgeDays = 5

// AgeInWholeDays returns the number of whole days elapsed between createdAt
// and now, rounded down. A createdAt in the future yields 0.
func AgeInWholeDays(createdAt, now time.Time) int {
	elapsed := now.Sub(createdAt)
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / Day)
}

// IsEligibleForDeletion reports whether at least thresholdDays full days have
// elapsed since createdAt. An item exactly thresholdDays old is eligible.
func IsEligibleForDeletion(createdAt, now time.Time, thresholdDays int) bool {
	return now.Sub(createdAt) >= time.Duration(thresholdDays)*Day
}

// DeletionPolicy gates item deletion by age. Both the API layer (which
// enforces it) and the client (which only uses it to decide what to display)
// evaluate the same policy.
type DeletionPolicy struct {
	MinAgeDays int
}

// NewDeletionPolicy returns a policy requiring minAgeDays of age.
func NewDeletionPolicy(minAgeDays int) DeletionPolicy {
	return DeletionPolicy{MinAgeDays: minAgeDays}
}

// Check returns nil when item may be deleted at now, or a *TooYoungError
// carrying the floored age and the required age.
func (p DeletionPolicy) Check(item *models.Item, now time.Time) error {
	if IsEligibleForDeletion(item.CreatedAt, now, p.MinAgeDays) {
		return nil
	}
	return &itemdomain.TooYoungError{
		Age:         AgeInWholeDays(item.CreatedAt, now),
		RequiredAge: p.MinAgeDays,
	}
}

// Eligibility is the display-side reading of the policy for one item.
type Eligibility struct {
	Eligible    bool
	AgeDays     int
	RequiredAge int
	Reason      string
}

// Describe evaluates the policy for display. It never replaces the
// server's verdict.
func (p DeletionPolicy) Describe(createdAt, now time.Time) Eligibility {
	e := Eligibility{
		Eligible:    IsEligibleForDeletion(createdAt, now, p.MinAgeDays),
		AgeDays:     AgeInWholeDays(createdAt, now),
		RequiredAge: p.MinAgeDays,
	}
	if e.Eligible {
		e.Reason = "Delete this item"
	} else {
		e.Reason = fmt.Sprintf("Items can only be deleted once they are %d days old (this one is %d)", p.MinAgeDays, e.AgeDays)
	}
	return e
}

package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	itemdomain "github.com/ghuser/itemtracker/services/item/domain"
	"github.com/ghuser/itemtracker/services/item/domain/models"
)

var now = time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

func TestAgeInWholeDays(t *testing.T) {
	tests := []struct {
		name      string
		createdAt time.Time
		want      int
	}{
		{"just created", now, 0},
		{"one second ago", now.Add(-time.Second), 0},
		{"23h59m ago", now.Add(-(Day - time.Minute)), 0},
		{"exactly one day", now.Add(-Day), 1},
		{"four days 23h", now.Add(-(5*Day - time.Hour)), 4},
		{"exactly five days", now.Add(-5 * Day), 5},
		{"ten days", now.Add(-10 * Day), 10},
		{"future timestamp clamps", now.Add(time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgeInWholeDays(tt.createdAt, now); got != tt.want {
				t.Fatalf("AgeInWholeDays = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsEligibleForDeletion_Boundary(t *testing.T) {
	tests := []struct {
		name      string
		createdAt time.Time
		want      bool
	}{
		{"created now", now, false},
		{"one second short of five days", now.Add(-5*Day + time.Second), false},
		{"one nanosecond short of five days", now.Add(-5*Day + time.Nanosecond), false},
		{"exactly five days", now.Add(-5 * Day), true},
		{"five days and a second", now.Add(-5*Day - time.Second), true},
		{"ten days", now.Add(-10 * Day), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEligibleForDeletion(tt.createdAt, now, DefaultMinAgeDays); got != tt.want {
				t.Fatalf("IsEligibleForDeletion = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsEligibleForDeletion_ZeroThreshold(t *testing.T) {
	if !IsEligibleForDeletion(now, now, 0) {
		t.Fatal("zero threshold must accept an item created now")
	}
}

func TestDeletionPolicy_Check(t *testing.T) {
	policy := NewDeletionPolicy(DefaultMinAgeDays)

	t.Run("eligible item", func(t *testing.T) {
		item := &models.Item{ID: 1, Name: "Old", CreatedAt: now.Add(-10 * Day)}
		if err := policy.Check(item, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("young item carries age payload", func(t *testing.T) {
		item := &models.Item{ID: 1, Name: "Young", CreatedAt: now.Add(-(3*Day + 20*time.Hour))}
		err := policy.Check(item, now)
		if !errors.Is(err, itemdomain.ErrItemTooYoung) {
			t.Fatalf("expected ErrItemTooYoung, got %v", err)
		}
		var tyErr *itemdomain.TooYoungError
		if !errors.As(err, &tyErr) {
			t.Fatalf("expected *TooYoungError, got %T", err)
		}
		if tyErr.Age != 3 {
			t.Errorf("Age: got %d, want 3", tyErr.Age)
		}
		if tyErr.RequiredAge != 5 {
			t.Errorf("RequiredAge: got %d, want 5", tyErr.RequiredAge)
		}
	})

	t.Run("just under threshold reports four days", func(t *testing.T) {
		item := &models.Item{ID: 1, Name: "Almost", CreatedAt: now.Add(-5*Day + time.Second)}
		var tyErr *itemdomain.TooYoungError
		if !errors.As(policy.Check(item, now), &tyErr) {
			t.Fatal("expected *TooYoungError")
		}
		if tyErr.Age != 4 {
			t.Errorf("Age: got %d, want 4", tyErr.Age)
		}
	})
}

func TestDeletionPolicy_Describe(t *testing.T) {
	policy := NewDeletionPolicy(DefaultMinAgeDays)

	young := policy.Describe(now.Add(-2*Day), now)
	if young.Eligible {
		t.Fatal("expected two-day-old item to be ineligible")
	}
	if young.AgeDays != 2 || young.RequiredAge != 5 {
		t.Fatalf("unexpected eligibility: %+v", young)
	}
	if !strings.Contains(young.Reason, "5 days") {
		t.Errorf("expected threshold in reason, got %q", young.Reason)
	}

	old := policy.Describe(now.Add(-6*Day), now)
	if !old.Eligible {
		t.Fatal("expected six-day-old item to be eligible")
	}
}

package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/ghuser/itemtracker/pkg/clock"
	domainsvcs "github.com/ghuser/itemtracker/services/item/domain/services"
)

// Error message prefixes shown to the user, one per action.
const (
	prefixLoad   = "Failed to fetch data: "
	prefixCreate = "Error adding item: "
	prefixDelete = "Error deleting item: "
)

// API is the server surface the State drives. *Client implements it.
type API interface {
	List(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, name string) (*Item, error)
	Delete(ctx context.Context, id int64) (*Item, error)
}

// State is the client-side mirror of the server's item list together with
// the pending input, loading flag and the current error message.
//
// The mirror is never re-fetched after a mutation; it is patched from
// response payloads only. State is safe for concurrent use.
type State struct {
	api    API
	clock  clock.Clock
	policy domainsvcs.DeletionPolicy

	mu      sync.Mutex
	items   []Item
	input   string
	errMsg  string
	loading bool
	loaded  bool
}

// NewState returns a State that has not loaded yet. Loading reports true
// until the first Load completes.
func NewState(api API, clk clock.Clock, policy domainsvcs.DeletionPolicy) *State {
	return &State{
		api:     api,
		clock:   clk,
		policy:  policy,
		items:   []Item{},
		loading: true,
	}
}

// Load replaces the mirror with the server's list. On failure the error is
// surfaced and the list view stays hidden until a later Load succeeds.
func (s *State) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	items, err := s.api.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.loaded = false
		s.errMsg = prefixLoad + err.Error()
		return err
	}
	s.items = items
	s.loaded = true
	s.errMsg = ""
	return nil
}

// SetInput records the pending item name.
func (s *State) SetInput(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = v
}

// Input returns the pending item name.
func (s *State) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Submit creates an item from the pending input. A blank input is ignored
// without contacting the server. On success the created item is appended to
// the mirror and the input cleared; on failure the input is kept.
func (s *State) Submit(ctx context.Context) error {
	s.mu.Lock()
	name := s.input
	s.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		return nil
	}

	it, err := s.api.Create(ctx, name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.errMsg = prefixCreate + err.Error()
		return err
	}
	s.items = append(s.items, *it)
	s.input = ""
	return nil
}

// Delete asks the server to delete id, whatever Affordance says, and applies
// the verdict: success removes the item and clears the error, any refusal
// leaves the mirror unchanged and surfaces a message.
func (s *State) Delete(ctx context.Context, id int64) error {
	_, err := s.api.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.errMsg = prefixDelete + deleteMessage(err)
		return err
	}
	s.items = slices.DeleteFunc(s.items, func(it Item) bool { return it.ID == id })
	s.errMsg = ""
	return nil
}

func deleteMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.TooYoung() {
		return fmt.Sprintf("%s (item is %d days old, %d required)",
			apiErr.Message, *apiErr.ItemAge, *apiErr.RequiredAge)
	}
	return err.Error()
}

// Items returns a copy of the mirror.
func (s *State) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Error returns the message to surface, or "" when there is none.
func (s *State) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Loading reports whether a Load is in progress or none has completed.
func (s *State) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// ListVisible reports whether the list view should be shown: not loading,
// and the most recent Load succeeded.
func (s *State) ListVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.loading && s.loaded
}

// Affordance is the advisory delete eligibility of it at the current time.
// It only decides what to display; Delete always defers to the server.
func (s *State) Affordance(it Item) domainsvcs.Eligibility {
	return s.policy.Describe(it.CreatedAt, s.clock.Now())
}

package sqlite

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ghuser/itemtracker/migrations/item"
	"github.com/ghuser/itemtracker/pkg/clock"
	"github.com/ghuser/itemtracker/pkg/database"
	"github.com/ghuser/itemtracker/pkg/logger"
	"github.com/ghuser/itemtracker/pkg/migrator"
	itemdomain "github.com/ghuser/itemtracker/services/item/domain"
	"github.com/ghuser/itemtracker/services/item/domain/models"
)

var base = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *ItemRepository {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:", logger.Discard())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrator.RunMigrations(db.DB(), item.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewItemRepository(db)
}

func save(t *testing.T, repo *ItemRepository, name string, createdAt time.Time) *models.Item {
	t.Helper()
	it := models.NewItem(models.ItemName(name))
	if err := repo.Save(context.Background(), it, clock.Fixed(createdAt)); err != nil {
		t.Fatalf("save %q: %v", name, err)
	}
	return it
}

func TestSave_AssignsIncreasingIDs(t *testing.T) {
	repo := newTestRepo(t)

	first := save(t, repo, "Widget", base)
	if first.ID != 1 {
		t.Fatalf("expected first ID 1 in a fresh store, got %d", first.ID)
	}

	prev := first.ID
	for i := 0; i < 5; i++ {
		it := save(t, repo, "Gadget", base.Add(time.Duration(i)*time.Minute))
		if it.ID <= prev {
			t.Fatalf("ID %d not greater than previous %d", it.ID, prev)
		}
		prev = it.ID
	}
}

func TestSave_IDsNotReusedAfterDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	save(t, repo, "One", base)
	second := save(t, repo, "Two", base)

	if _, err := repo.Delete(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	third := save(t, repo, "Three", base)
	if third.ID <= second.ID {
		t.Fatalf("ID %d reused or lower than deleted ID %d", third.ID, second.ID)
	}
}

func TestSave_RejectsBlankNameAtomically(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.Save(ctx, &models.Item{Name: "   "}, clock.Fixed(base))
	if err == nil {
		t.Fatal("expected CHECK constraint violation for blank name")
	}

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty store after failed save, got %d items", len(items))
	}
}

func TestGetByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	created := base.Add(123456789 * time.Nanosecond)
	saved := save(t, repo, "Widget", created)

	got, err := repo.GetByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Widget" {
		t.Errorf("Name: got %q", got.Name)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, created)
	}

	if _, err := repo.GetByID(ctx, 999); !errors.Is(err, itemdomain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestList_NewestFirstWithStableTies(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	oldest := save(t, repo, "oldest", base.Add(-48*time.Hour))
	tieA := save(t, repo, "tie-a", base)
	tieB := save(t, repo, "tie-b", base)
	newest := save(t, repo, "newest", base.Add(time.Hour))
	// Inserted last but created earliest.
	backdated := save(t, repo, "backdated", base.Add(-240*time.Hour))

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := []models.ItemID{newest.ID, tieB.ID, tieA.ID, oldest.ID, backdated.ID}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("position %d: got ID %d, want %d", i, items[i].ID, id)
		}
	}

	again, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i := range items {
		if items[i].ID != again[i].ID {
			t.Fatalf("order not stable at position %d", i)
		}
	}
}

func TestList_EmptyStoreReturnsEmptySlice(t *testing.T) {
	repo := newTestRepo(t)

	items, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected non-nil empty slice, got %#v", items)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	saved := save(t, repo, "Widget", base)

	removed, err := repo.Delete(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed.ID != saved.ID || removed.Name != "Widget" || !removed.CreatedAt.Equal(base) {
		t.Fatalf("unexpected removed snapshot: %+v", removed)
	}

	if _, err := repo.GetByID(ctx, saved.ID); !errors.Is(err, itemdomain.ErrItemNotFound) {
		t.Fatalf("expected item gone, got %v", err)
	}
	if _, err := repo.Delete(ctx, saved.ID); !errors.Is(err, itemdomain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound on second delete, got %v", err)
	}
}

func TestDelete_ConcurrentSameIDSucceedsOnce(t *testing.T) {
	repo := newTestRepo(t)
	saved := save(t, repo, "Contended", base)

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		notFound  atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Delete(context.Background(), saved.ID)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, itemdomain.ErrItemNotFound):
				notFound.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes.Load() != 1 {
		t.Fatalf("expected exactly one successful delete, got %d", successes.Load())
	}
	if notFound.Load() != 9 {
		t.Fatalf("expected 9 not-found results, got %d", notFound.Load())
	}
}

func TestConcurrentSaveAndList(t *testing.T) {
	repo := newTestRepo(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			it := models.NewItem("concurrent")
			if err := repo.Save(context.Background(), it, clock.Fixed(base.Add(time.Duration(i)*time.Second))); err != nil {
				t.Errorf("save: %v", err)
			}
		}(i)
		go func() {
			defer wg.Done()
			items, err := repo.List(context.Background())
			if err != nil {
				t.Errorf("list: %v", err)
				return
			}
			for _, it := range items {
				if it.ID <= 0 || it.Name == "" || it.CreatedAt.IsZero() {
					t.Errorf("observed partial record: %+v", it)
				}
			}
		}()
	}
	wg.Wait()

	items, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 20 {
		t.Fatalf("expected 20 items, got %d", len(items))
	}
}

// tickingClock returns a strictly later instant on every call.
type tickingClock struct {
	mu   sync.Mutex
	next time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(time.Second)
	return t
}

func TestSave_ConcurrentCreatedAtFollowsIDOrder(t *testing.T) {
	repo := newTestRepo(t)
	clk := &tickingClock{next: base}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Save(context.Background(), models.NewItem("concurrent"), clk); err != nil {
				t.Errorf("save: %v", err)
			}
		}()
	}
	wg.Wait()

	items, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 50 {
		t.Fatalf("expected 50 items, got %d", len(items))
	}
	// Newest first by CreatedAt must also be highest ID first.
	for i := 1; i < len(items); i++ {
		if items[i].ID >= items[i-1].ID {
			t.Fatalf("item %d (%v) listed after item %d (%v): later insert has earlier CreatedAt",
				items[i].ID, items[i].CreatedAt, items[i-1].ID, items[i-1].CreatedAt)
		}
	}
}

func TestSave_StampsCreatedAtFromClock(t *testing.T) {
	repo := newTestRepo(t)
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))

	it := models.NewItem("Widget")
	if err := repo.Save(context.Background(), it, clock.Fixed(at)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !it.CreatedAt.Equal(at) || it.CreatedAt.Location() != time.UTC {
		t.Fatalf("CreatedAt: got %v, want %v in UTC", it.CreatedAt, at)
	}
}

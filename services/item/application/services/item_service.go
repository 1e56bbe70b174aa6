package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	pkgcache "github.com/ghuser/itemtracker/pkg/cache"
	"github.com/ghuser/itemtracker/pkg/clock"
	"github.com/ghuser/itemtracker/pkg/logger"
	"github.com/ghuser/itemtracker/pkg/telemetry"
	itemdomain "github.com/ghuser/itemtracker/services/item/domain"
	domainevents "github.com/ghuser/itemtracker/services/item/domain/events"
	"github.com/ghuser/itemtracker/services/item/domain/models"
	"github.com/ghuser/itemtracker/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/itemtracker/services/item/domain/services"
)

const (
	eventVersion = 1
	cacheTimeout = 2 * time.Second
)

var tracer = otel.Tracer("github.com/ghuser/itemtracker/services/item")

// Publisher is the subset of events.EventBus the service needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// Option configures optional ItemService collaborators.
type Option func(*ItemService)

// ItemCache is the read model GetByID reads through. *cache.ItemCache
// implements it; Get returns redis.Nil on a miss.
type ItemCache interface {
	Get(ctx context.Context, itemID int64) (*pkgcache.CachedItem, error)
	Set(ctx context.Context, item *pkgcache.CachedItem) error
	Delete(ctx context.Context, itemID int64) error
}

// WithCache enables the Redis read-through cache for GetByID.
func WithCache(c ItemCache) Option {
	return func(s *ItemService) { s.cache = c }
}

// WithPublisher publishes item.created and item.deleted after each commit.
func WithPublisher(p Publisher) Option {
	return func(s *ItemService) { s.bus = p }
}

// WithMetrics records item lifecycle counters.
func WithMetrics(m *telemetry.ItemMetrics) Option {
	return func(s *ItemService) { s.metrics = m }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l logger.Logger) Option {
	return func(s *ItemService) {
		if l != nil {
			s.log = l
		}
	}
}

// ItemService orchestrates listing, creation and deletion of Items.
// The repository is authoritative; events, cache and metrics are side effects
// applied after a successful commit and never fail the operation.
type ItemService struct {
	repo    repositories.ItemRepository
	clock   clock.Clock
	policy  domainsvcs.DeletionPolicy
	cache   ItemCache
	bus     Publisher
	metrics *telemetry.ItemMetrics
	log     logger.Logger
}

// NewItemService returns an ItemService that reads the current time from clk
// and gates deletion with policy.
func NewItemService(repo repositories.ItemRepository, clk clock.Clock, policy domainsvcs.DeletionPolicy, opts ...Option) *ItemService {
	s := &ItemService{
		repo:   repo,
		clock:  clk,
		policy: policy,
		log:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every item, newest first.
func (s *ItemService) List(ctx context.Context) ([]*models.Item, error) {
	ctx, span := tracer.Start(ctx, "ItemService.List")
	defer span.End()

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fail(span, fmt.Errorf("list items: %w", err))
	}
	span.SetAttributes(attribute.Int("item.count", len(items)))
	return items, nil
}

// Create validates name and persists a new Item stamped with the current time.
// Blank names return ErrInvalidItemName and leave the store untouched.
func (s *ItemService) Create(ctx context.Context, name string) (*models.Item, error) {
	ctx, span := tracer.Start(ctx, "ItemService.Create")
	defer span.End()

	itemName, err := models.NewItemName(name)
	if err != nil {
		return nil, fail(span, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemName, err))
	}

	item := models.NewItem(itemName)
	if err := domainsvcs.ValidateItemForCreation(item); err != nil {
		return nil, fail(span, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemName, err))
	}

	if err := s.repo.Save(ctx, item, s.clock); err != nil {
		return nil, fail(span, fmt.Errorf("save item: %w", err))
	}
	span.SetAttributes(attribute.Int64("item.id", item.ID.Int64()))

	s.metrics.ItemCreated(ctx)
	s.publish(ctx, domainevents.TopicItemCreated, domainevents.ItemCreatedEvent{
		EventID:    uuid.New(),
		Version:    eventVersion,
		ItemID:     item.ID.Int64(),
		Name:       item.Name.String(),
		OccurredAt: item.CreatedAt,
	})
	s.log.InfoContext(ctx, "item created", "item_id", item.ID.Int64())

	return item, nil
}

// Seed creates one item per name when the store is empty, in order, and
// reports how many were created. A non-empty store is left alone so restarts
// against a file-backed database do not duplicate the seed set.
func (s *ItemService) Seed(ctx context.Context, names []string) (int, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i, name := range names {
		if _, err := s.Create(ctx, name); err != nil {
			return i, fmt.Errorf("seed %q: %w", name, err)
		}
	}
	return len(names), nil
}

// GetByID retrieves an Item using a read-through cache pattern:
//  1. Check Redis cache first.
//  2. On cache miss (or cache error), query the store.
//  3. Warm the cache with the store result before returning.
func (s *ItemService) GetByID(ctx context.Context, rawID string) (*models.Item, error) {
	ctx, span := tracer.Start(ctx, "ItemService.GetByID")
	defer span.End()

	id, err := models.ParseItemID(rawID)
	if err != nil {
		return nil, fail(span, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemID, err))
	}
	span.SetAttributes(attribute.Int64("item.id", id.Int64()))

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id.Int64())
		if err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &models.Item{
				ID:        models.ItemID(cached.ID),
				Name:      models.ItemName(cached.Name),
				CreatedAt: cached.CreatedAt,
			}, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "item cache read failed", "item_id", id.Int64(), "error", err)
		}
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fail(span, fmt.Errorf("get item: %w", err))
	}

	if s.cache != nil {
		if err := s.storeInCache(context.WithoutCancel(ctx), item); err != nil {
			s.log.WarnContext(ctx, "item cache warm failed", "item_id", id.Int64(), "error", err)
		}
	}

	return item, nil
}

// WarmCache loads the item from the store into the read cache. It is a no-op
// without a cache or when the item no longer exists.
func (s *ItemService) WarmCache(ctx context.Context, id int64) error {
	if s.cache == nil {
		return nil
	}
	item, err := s.repo.GetByID(ctx, models.ItemID(id))
	if errors.Is(err, itemdomain.ErrItemNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get item: %w", err)
	}
	return s.storeInCache(ctx, item)
}

// Delete removes the item identified by rawID if the deletion policy allows it,
// returning the item as it was before deletion.
//
// Outcomes, in evaluation order:
//   - ErrInvalidItemID when rawID is not a positive decimal integer
//   - ErrItemNotFound when no such item exists, including when a concurrent
//     delete removed it after the lookup
//   - *TooYoungError (ErrItemTooYoung) when the item is younger than the policy allows
//   - any other error is internal
//
// Rejected requests leave the store unchanged.
func (s *ItemService) Delete(ctx context.Context, rawID string) (*models.Item, error) {
	ctx, span := tracer.Start(ctx, "ItemService.Delete")
	defer span.End()

	id, err := models.ParseItemID(rawID)
	if err != nil {
		s.metrics.DeleteRejected(ctx, telemetry.ReasonInvalidID)
		return nil, fail(span, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemID, err))
	}
	span.SetAttributes(attribute.Int64("item.id", id.Int64()))

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, itemdomain.ErrItemNotFound) {
			s.metrics.DeleteRejected(ctx, telemetry.ReasonNotFound)
		}
		return nil, fail(span, fmt.Errorf("get item: %w", err))
	}

	now := s.clock.Now()
	if err := s.policy.Check(item, now); err != nil {
		s.metrics.DeleteRejected(ctx, telemetry.ReasonTooYoung)
		s.log.InfoContext(ctx, "item delete refused", "item_id", id.Int64(), "reason", err.Error())
		return nil, fail(span, err)
	}

	if _, err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, itemdomain.ErrItemNotFound) {
			s.metrics.DeleteRejected(ctx, telemetry.ReasonNotFound)
		}
		return nil, fail(span, fmt.Errorf("delete item: %w", err))
	}

	if s.cache != nil {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheTimeout)
		if err := s.cache.Delete(cctx, id.Int64()); err != nil {
			s.log.WarnContext(ctx, "item cache invalidate failed", "item_id", id.Int64(), "error", err)
		}
		cancel()
	}

	s.metrics.ItemDeleted(ctx)
	s.publish(ctx, domainevents.TopicItemDeleted, domainevents.ItemDeletedEvent{
		EventID:    uuid.New(),
		Version:    eventVersion,
		ItemID:     item.ID.Int64(),
		Name:       item.Name.String(),
		AgeDays:    domainsvcs.AgeInWholeDays(item.CreatedAt, now),
		OccurredAt: now,
	})
	s.log.InfoContext(ctx, "item deleted", "item_id", id.Int64())

	return item, nil
}

// storeInCache writes item to the cache, then re-reads the store. A delete
// that committed between the caller's read and the write has already run its
// own invalidation, so the entry is evicted again here.
func (s *ItemService) storeInCache(ctx context.Context, item *models.Item) error {
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()
	if err := s.cache.Set(ctx, &pkgcache.CachedItem{
		ID:        item.ID.Int64(),
		Name:      item.Name.String(),
		CreatedAt: item.CreatedAt,
	}); err != nil {
		return err
	}

	_, err := s.repo.GetByID(ctx, item.ID)
	if err == nil {
		return nil
	}
	if delErr := s.cache.Delete(ctx, item.ID.Int64()); delErr != nil {
		return delErr
	}
	if errors.Is(err, itemdomain.ErrItemNotFound) {
		return nil
	}
	return fmt.Errorf("recheck item: %w", err)
}

// publish marshals event onto topic. Failures are logged: the store has
// already committed and the event is informational.
func (s *ItemService) publish(ctx context.Context, topic string, event any) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.log.ErrorContext(ctx, "marshal event", "topic", topic, "error", err)
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_version", fmt.Sprint(eventVersion))
	if err := s.bus.Publish(ctx, topic, msg); err != nil {
		s.log.WarnContext(ctx, "publish event failed", "topic", topic, "error", err)
	}
}

// fail marks span as errored for unexpected faults and returns err unchanged.
// Expected outcomes are recorded as span events only.
func fail(span trace.Span, err error) error {
	switch {
	case errors.Is(err, itemdomain.ErrInvalidItemName),
		errors.Is(err, itemdomain.ErrInvalidItemID),
		errors.Is(err, itemdomain.ErrItemNotFound),
		errors.Is(err, itemdomain.ErrItemTooYoung):
		span.AddEvent("rejected", trace.WithAttributes(attribute.String("reason", err.Error())))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

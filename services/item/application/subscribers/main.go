// Package subscribers holds the in-process handlers for item domain events.
package subscribers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/itemtracker/pkg/app"
	"github.com/ghuser/itemtracker/pkg/cache"
	"github.com/ghuser/itemtracker/pkg/logger"
	appsvcs "github.com/ghuser/itemtracker/services/item/application/services"
	itemEvents "github.com/ghuser/itemtracker/services/item/domain/events"
)

// cacheWarmer loads an item from the store into the read cache.
type cacheWarmer interface {
	WarmCache(ctx context.Context, id int64) error
}

// Register wires all item event handlers onto a.EventBus.
// Add new topics here as more services publish events.
func Register(ctx context.Context, a *app.Application) error {
	itemCache := cache.NewItemCache(a.Redis)
	var warmer cacheWarmer
	if itemCache != nil {
		warmer = appsvcs.New(a).Item
	}
	handlers := map[string]func(context.Context, *message.Message) error{
		itemEvents.TopicItemCreated: handleItemCreated(a.Logger, warmer),
		itemEvents.TopicItemDeleted: handleItemDeleted(a.Logger, itemCache),
	}

	topics := make([]string, 0, len(handlers))
	for topic, h := range handlers {
		errCh, err := a.EventBus.Subscribe(ctx, topic, h)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}

		// Drain subscriber errors in background so the channel never blocks.
		go func() {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}()
		topics = append(topics, topic)
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

// handleItemCreated returns a handler for item.created events.
// Handlers must be idempotent: EventBus retries up to 3× on failure.
// Warms the Redis read-model cache from the store so subsequent GetByID calls
// are served from cache. The store is re-read rather than trusting the payload,
// so an item deleted before delivery is not cached.
func handleItemCreated(log logger.Logger, warmer cacheWarmer) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt itemEvents.ItemCreatedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return fmt.Errorf("decode %s: %w", itemEvents.TopicItemCreated, err)
		}

		log.InfoContext(ctx, "audit: item created",
			"event_id", evt.EventID, "item_id", evt.ItemID, "name", evt.Name)

		if warmer == nil {
			return nil
		}
		if err := warmer.WarmCache(ctx, evt.ItemID); err != nil {
			// Cache warming is best-effort; log but do not fail the handler.
			log.WarnContext(ctx, "cache warm failed for item.created",
				"item_id", evt.ItemID, "error", err)
		}
		return nil
	}
}

// handleItemDeleted returns a handler for item.deleted events. It records the
// deletion and drops any cache entry the request path may have missed.
func handleItemDeleted(log logger.Logger, itemCache *cache.ItemCache) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt itemEvents.ItemDeletedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return fmt.Errorf("decode %s: %w", itemEvents.TopicItemDeleted, err)
		}

		log.InfoContext(ctx, "audit: item deleted",
			"event_id", evt.EventID, "item_id", evt.ItemID, "name", evt.Name, "age_days", evt.AgeDays)

		if itemCache == nil {
			return nil
		}
		if err := itemCache.Delete(ctx, evt.ItemID); err != nil {
			return fmt.Errorf("invalidate item %d: %w", evt.ItemID, err)
		}
		return nil
	}
}

package app

import (
	"github.com/ghuser/itemtracker/pkg/cache"
	"github.com/ghuser/itemtracker/pkg/clock"
	"github.com/ghuser/itemtracker/pkg/database"
	"github.com/ghuser/itemtracker/pkg/events"
	"github.com/ghuser/itemtracker/pkg/logger"
	"github.com/ghuser/itemtracker/pkg/telemetry"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to all service ItemRoutes calls during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler — use slog's context methods
// and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "processing item", "item_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Db       *database.Database
	Logger   logger.Logger
	EventBus *events.EventBus
	Redis    *cache.RedisClient // nil when REDIS_URL is unset
	Clock    clock.Clock
	Metrics  *telemetry.ItemMetrics // nil disables item counters

	// DeletionMinAgeDays is the age, in whole days, an item must reach
	// before it may be deleted.
	DeletionMinAgeDays int
}

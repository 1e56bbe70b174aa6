package httpx

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (database.Database, cache.RedisClient, events.EventBus).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks holds the set of dependencies to probe in the health endpoint.
// Redis is optional: leave it nil when the cache is disabled.
type HealthChecks struct {
	Database HealthChecker
	Redis    HealthChecker
	EventBus HealthChecker
}

const (
	statusOK          = "ok"
	statusDegraded    = "degraded"
	statusUnreachable = "unreachable"
	statusDisabled    = "disabled"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
	EventBus string `json:"event_bus"`
}

// HealthHandler returns an http.HandlerFunc that probes all registered
// HealthCheckers and reports degraded status if any of them fail.
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{
			Status:   statusOK,
			Database: statusOK,
			Redis:    statusOK,
			EventBus: statusOK,
		}

		if err := checks.Database.Ping(ctx); err != nil {
			resp.Status = statusDegraded
			resp.Database = statusUnreachable
		}
		if checks.Redis == nil {
			resp.Redis = statusDisabled
		} else if err := checks.Redis.Ping(ctx); err != nil {
			resp.Status = statusDegraded
			resp.Redis = statusUnreachable
		}
		if err := checks.EventBus.Ping(ctx); err != nil {
			resp.Status = statusDegraded
			resp.EventBus = statusUnreachable
		}

		status := http.StatusOK
		if resp.Status != statusOK {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}

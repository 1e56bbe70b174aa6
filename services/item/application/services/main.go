package services

import (
	"github.com/ghuser/itemtracker/pkg/app"
	"github.com/ghuser/itemtracker/pkg/cache"
	"github.com/ghuser/itemtracker/pkg/clock"
	domainsvcs "github.com/ghuser/itemtracker/services/item/domain/services"
	"github.com/ghuser/itemtracker/services/item/infrastructure/persistence/sqlite"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Item *ItemService
}

// New wires all item application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := sqlite.NewItemRepository(a.Db)
	clk := a.Clock
	if clk == nil {
		clk = clock.System{}
	}
	opts := []Option{
		WithLogger(a.Logger),
		WithMetrics(a.Metrics),
	}
	if a.EventBus != nil {
		opts = append(opts, WithPublisher(a.EventBus))
	}
	if itemCache := cache.NewItemCache(a.Redis); itemCache != nil {
		opts = append(opts, WithCache(itemCache))
	}
	return &Services{
		Item: NewItemService(repo, clk, domainsvcs.NewDeletionPolicy(a.DeletionMinAgeDays), opts...),
	}
}

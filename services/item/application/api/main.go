package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/itemtracker/pkg/app"
	"github.com/ghuser/itemtracker/services/item/application/handlers"
	appsvcs "github.com/ghuser/itemtracker/services/item/application/services"
)

// ItemRoutes registers item endpoints on the provided chi router, under
// /api/items and mirrored at /items.
func ItemRoutes(r chi.Router, a *app.Application) {
	items := itemRouter(appsvcs.New(a), a)
	r.Mount("/api/items", items)
	r.Mount("/items", items)
}

func itemRouter(svcs *appsvcs.Services, a *app.Application) http.Handler {
	r := chi.NewRouter()
	r.Get("/", handlers.NewListItemsHandler(svcs, a.Logger).Execute)
	r.Post("/", handlers.NewPostItemHandler(svcs, a.Logger).Execute)
	r.Get("/{id}", handlers.NewGetItemHandler(svcs, a.Logger).Execute)
	r.Delete("/{id}", handlers.NewDeleteItemHandler(svcs, a.Logger).Execute)
	return r
}

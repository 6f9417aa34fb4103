package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/restaurant-checkout/internal/gateway/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.Tracing)
	r.Use(middlewares.IdempotencyKey)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Health)
	r.Get("/menu", handler.Menu)
	r.Post("/offline-orders", handler.CreateOfflineOrder)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", handler.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handler.GetSession)
			r.Get("/history", handler.History)
			r.Post("/events", handler.Dispatch)
			r.Post("/submit", handler.Submit)

			r.Post("/cart/items", handler.AddItem)
			r.Patch("/cart/items/{lineID}", handler.UpdateItem)
			r.Delete("/cart/items/{lineID}", handler.RemoveItem)
			r.Delete("/cart", handler.ClearCart)
		})
	})
	return r
}

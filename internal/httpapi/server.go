package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/park285/cheese-arena/internal/arena"
	"github.com/park285/cheese-arena/internal/obslog"
	"go.uber.org/zap"
)

// NewRouter exposes the arena over JSON and a websocket event stream.
func NewRouter(a *arena.Arena, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = obslog.L()
	}
	h := &handlers{arena: a, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.Metrics().Middleware)

	r.Get("/healthz", h.health)
	r.Handle("/metrics", a.Metrics().Handler())
	r.Get("/events", h.events)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/modes", h.modes)
		r.Get("/opponents", h.opponents)
		r.Get("/profile", h.profile)
		r.Post("/profile/reset", h.resetProfile)
		r.Get("/history", h.history)

		r.Get("/search", h.searchState)
		r.Post("/search", h.startSearch)
		r.Post("/search/cancel", h.cancelSearch)

		r.Route("/match", func(r chi.Router) {
			r.Get("/", h.matchState)
			r.Post("/select", h.selectSquare)
			r.Post("/move", h.move)
			r.Post("/resign", h.resign)
			r.Post("/draw/offer", h.offerDraw)
			r.Post("/draw/accept", h.acceptDraw)
			r.Post("/draw/decline", h.declineDraw)
		})
	})
	return r
}

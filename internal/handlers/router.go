package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ukydev/spatial-data/internal/middleware"
)

// NewRouter wires the spatial handlers and returns an http.Handler.
// Static paths under /spatial_data take precedence over /spatial_data/{type}.
func NewRouter(h *SpatialHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recover)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/spatial_data", func(r chi.Router) {
		r.Post("/point", h.StorePoint)
		r.Post("/polygon", h.StorePolygon)
		r.Put("/point/{name}", h.UpdatePoint)
		r.Put("/polygon/{name}", h.UpdatePolygon)
		r.Get("/near_point", h.NearPoint)
		r.Get("/containing_point", h.ContainingPoint)
		r.Get("/{type}", h.List)
	})

	return r
}

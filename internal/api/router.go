package api

import (
	"net/http"

	"roadtrip-route-service/internal/api/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/exp/slog"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(svc handlers.RouteService, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	routeHandler := &handlers.RouteHandler{Service: svc}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))

	r.Get("/health", handlers.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/locations", routeHandler.Locations)

	r.Get("/route", routeHandler.Route)
	r.Get("/route.geojson", routeHandler.GeoJSON)
	r.Get("/route/itinerary", routeHandler.Itinerary)
	r.Post("/route/optimize", routeHandler.Optimize)
	r.Post("/route/sort", routeHandler.Sort)
	r.Post("/route/swap", routeHandler.Swap)

	r.Put("/settings/temp-range", routeHandler.SetTempRange)

	return r
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"roadtrip-route-service/internal/api/dto"
	"roadtrip-route-service/internal/domain"
	"roadtrip-route-service/internal/platform/obs"
	"roadtrip-route-service/internal/ports"
	"roadtrip-route-service/internal/services"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/exp/slog"
)

// RouteService is the slice of services.RouteService the HTTP layer uses.
type RouteService interface {
	Locations(ctx context.Context) ([]domain.Location, error)
	CurrentRoute(ctx context.Context) (*domain.RouteSnapshot, error)
	Optimize(ctx context.Context, radius float64) (*services.OptimizeResult, error)
	SortNearest(ctx context.Context) (*domain.RouteSnapshot, error)
	SwapStops(ctx context.Context, i, j int) (*domain.RouteSnapshot, error)
	SetTempRange(ctx context.Context, band domain.TempRange) (*domain.RouteSnapshot, error)
	Itinerary(ctx context.Context) (*domain.Itinerary, *domain.RouteSnapshot, error)
}

type RouteHandler struct {
	Service RouteService
}

func (h *RouteHandler) Locations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.Service.Locations(r.Context())
	if err != nil {
		h.fail(w, r, "list locations", err)
		return
	}

	res := dto.ListLocationsResponse{Locations: toLocations(locs)}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *RouteHandler) Route(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Service.CurrentRoute(r.Context())
	if err != nil {
		h.fail(w, r, "current route", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toRoute(snap))
}

// Optimize runs the full search. The body is optional: {"radius": 800}.
func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req dto.OptimizeRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	radius := 0.0
	if req.Radius != nil {
		if *req.Radius <= 0 {
			writeError(w, r, http.StatusBadRequest, "radius must be positive")
			return
		}
		radius = *req.Radius
	}

	res, err := h.Service.Optimize(r.Context(), radius)
	if err != nil {
		h.fail(w, r, "optimize route", err)
		return
	}

	snap, err := h.Service.CurrentRoute(r.Context())
	if err != nil {
		h.fail(w, r, "current route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.OptimizeResponse{
		Route:         toRoute(snap),
		Attempts:      res.Attempts,
		Radius:        res.Radius,
		Refined:       res.Refined,
		SearchedMiles: res.SearchedMiles,
		ImprovedMiles: res.ImprovedMiles,
	})
}

func (h *RouteHandler) Sort(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Service.SortNearest(r.Context())
	if err != nil {
		h.fail(w, r, "sort route", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toRoute(snap))
}

func (h *RouteHandler) Swap(w http.ResponseWriter, r *http.Request) {
	var req dto.SwapRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.From == nil || req.To == nil {
		writeError(w, r, http.StatusBadRequest, "from and to are required")
		return
	}

	snap, err := h.Service.SwapStops(r.Context(), *req.From, *req.To)
	if err != nil {
		h.fail(w, r, "swap stops", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toRoute(snap))
}

func (h *RouteHandler) SetTempRange(w http.ResponseWriter, r *http.Request) {
	var req dto.TempRangeRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Min == nil || req.Max == nil {
		writeError(w, r, http.StatusBadRequest, "min and max are required")
		return
	}

	band := domain.TempRange{Min: *req.Min, Max: *req.Max}
	if err := band.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, "min must not exceed max")
		return
	}

	snap, err := h.Service.SetTempRange(r.Context(), band)
	if err != nil {
		h.fail(w, r, "set temp range", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toRoute(snap))
}

func (h *RouteHandler) Itinerary(w http.ResponseWriter, r *http.Request) {
	it, snap, err := h.Service.Itinerary(r.Context())
	if err != nil {
		h.fail(w, r, "itinerary", err)
		return
	}

	res := dto.ItineraryResponse{
		Stops:      make([]dto.ItineraryStopResponse, 0, len(it.Stops)),
		Legs:       make([]dto.ItineraryLegResponse, 0, len(it.Legs)),
		TotalMiles: it.TotalMiles,
		TempRange:  dto.TempRange{Min: snap.TempRange.Min, Max: snap.TempRange.Max},
	}
	for _, s := range it.Stops {
		res.Stops = append(res.Stops, dto.ItineraryStopResponse{
			Index:   s.Index,
			Name:    s.Name,
			Date:    s.Date.Format("2006-01-02"),
			TempC:   s.TempC,
			TempF:   s.TempF,
			InRange: s.InRange,
		})
	}
	for _, l := range it.Legs {
		res.Legs = append(res.Legs, dto.ItineraryLegResponse{
			From:  l.From,
			To:    l.To,
			Month: l.Month.String(),
			Miles: l.Miles,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// GeoJSON exports the route as a LineString followed by one Point per stop.
func (h *RouteHandler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Service.CurrentRoute(r.Context())
	if err != nil {
		h.fail(w, r, "route geojson", err)
		return
	}

	fc := geojson.NewFeatureCollection()
	if len(snap.Stops) >= 2 {
		line := make(orb.LineString, 0, len(snap.Stops))
		for _, l := range snap.Stops {
			line = append(line, l.Coordinates().Point())
		}
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "route"
		f.Properties["total_miles"] = snap.Stops.TotalDistance()
		fc.Append(f)
	}
	for i, l := range snap.Stops {
		f := geojson.NewFeature(l.Coordinates().Point())
		f.Properties["kind"] = "stop"
		f.Properties["index"] = i
		f.Properties["name"] = l.Name
		fc.Append(f)
	}

	raw, err := fc.MarshalJSON()
	if err != nil {
		h.fail(w, r, "route geojson", err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// fail maps service errors to HTTP statuses. Unexpected errors are logged
// and reported without detail.
func (h *RouteHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrIndexOutOfRange):
		writeError(w, r, http.StatusBadRequest, "stop index out of range")
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "unknown location")
	case errors.Is(err, services.ErrNoFeasibleRoute):
		writeError(w, r, http.StatusUnprocessableEntity, "no feasible route")
	case errors.Is(err, domain.ErrInvalidLocation), errors.Is(err, domain.ErrDuplicateLocation):
		writeError(w, r, http.StatusUnprocessableEntity, "invalid location data")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusServiceUnavailable, "request cancelled")
	default:
		slog.Error(op+" failed", "req_id", obs.RequestID(r.Context()), "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func toLocations(locs []domain.Location) []dto.LocationResponse {
	out := make([]dto.LocationResponse, 0, len(locs))
	for _, l := range locs {
		out = append(out, dto.LocationResponse{Name: l.Name, Lat: l.Lat, Lon: l.Lon})
	}
	return out
}

func toRoute(snap *domain.RouteSnapshot) dto.RouteResponse {
	res := dto.RouteResponse{
		Stops:      toLocations(snap.Stops),
		TotalMiles: snap.Stops.TotalDistance(),
		TempRange:  dto.TempRange{Min: snap.TempRange.Min, Max: snap.TempRange.Max},
	}
	if !snap.UpdatedAt.IsZero() {
		t := snap.UpdatedAt
		res.UpdatedAt = &t
	}
	return res
}

package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"roadtrip-route-service/internal/adapters/repositories"
	"roadtrip-route-service/internal/api/dto"
	"roadtrip-route-service/internal/domain"
	"roadtrip-route-service/internal/services"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
	_ "modernc.org/sqlite"
)

var newEngland = []domain.Location{
	{Name: "Massachusetts", Lat: 42.3601, Lon: -71.0589},
	{Name: "Vermont", Lat: 44.2601, Lon: -72.5754},
	{Name: "Rhode Island", Lat: 41.8240, Lon: -71.4128},
	{Name: "Maine", Lat: 44.3106, Lon: -69.7795},
	{Name: "Connecticut", Lat: 41.7658, Lon: -72.6734},
	{Name: "New Hampshire", Lat: 43.2081, Lon: -71.5376},
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, repositories.InitSchema(db))
	require.NoError(t, repositories.SeedLocations(db, newEngland))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := services.NewRouteService(services.RouteServiceConfig{
		Repo:      repositories.NewSqliteRouteRepository(db),
		Optimizer: services.NewOptimizer(services.OptimizerOptions{Seed: 7, Logger: log}),
		Season:    domain.Season{Year: 2026},
		Logger:    log,
	})
	require.NoError(t, err)

	return NewRouter(svc, log)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func names(stops []dto.LocationResponse) []string {
	out := make([]string, len(stops))
	for i, s := range stops {
		out[i] = s.Name
	}
	return out
}

func TestHealth_RequestID(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, id)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
}

func TestLocations(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/locations", "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[dto.ListLocationsResponse](t, rec)
	assert.Equal(t, domain.Route(newEngland).Names(), names(res.Locations))

	rec = do(t, h, http.MethodPost, "/locations", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRoute_DefaultsToCatalogue(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/route", "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[dto.RouteResponse](t, rec)
	assert.Equal(t, domain.Route(newEngland).Names(), names(res.Stops))
	assert.Equal(t, dto.TempRange{Min: 65, Max: 75}, res.TempRange)
	assert.Nil(t, res.UpdatedAt)
	assert.InDelta(t, domain.Route(newEngland).TotalDistance(), res.TotalMiles, 1e-6)
}

func TestOptimize(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/route/optimize", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[dto.OptimizeResponse](t, rec)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, services.DefaultRadius, res.Radius)
	assert.True(t, res.Refined)
	assert.ElementsMatch(t, domain.Route(newEngland).Names(), names(res.Route.Stops))
	assert.NotNil(t, res.Route.UpdatedAt)
	assert.LessOrEqual(t, res.Route.TotalMiles, res.SearchedMiles+1e-9)

	// The optimized order is persisted.
	rec = do(t, h, http.MethodGet, "/route", "")
	saved := decode[dto.RouteResponse](t, rec)
	assert.Equal(t, names(res.Route.Stops), names(saved.Stops))
}

func TestOptimize_WithRadius(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/route/optimize", `{"radius": 900}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 900.0, decode[dto.OptimizeResponse](t, rec).Radius)

	// Larger than the relaxation ceiling, still a single attempt.
	rec = do(t, h, http.MethodPost, "/route/optimize", `{"radius": 20000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[dto.OptimizeResponse](t, rec)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 20000.0, res.Radius)
}

func TestOptimize_BadRequest(t *testing.T) {
	h := newTestRouter(t)

	for _, body := range []string{`{"radius": -1}`, `{"radius": 0}`, `{"nope": 1}`, `{`, `{} {}`} {
		rec := do(t, h, http.MethodPost, "/route/optimize", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestSwap(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/route/swap", `{"from": 0, "to": 5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[dto.RouteResponse](t, rec)
	want := domain.Route(newEngland).Names()
	want[0], want[5] = want[5], want[0]
	assert.Equal(t, want, names(res.Stops))

	rec = do(t, h, http.MethodPost, "/route/swap", `{"from": 0, "to": 6}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/route/swap", `{"from": 0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSort(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/route/sort", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[dto.RouteResponse](t, rec)
	want := services.NearestNeighborRoute(newEngland).Names()
	assert.Equal(t, want, names(res.Stops))
	assert.Equal(t, "Massachusetts", res.Stops[0].Name)
}

func TestSetTempRange(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPut, "/settings/temp-range", `{"min": 50, "max": 60}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, dto.TempRange{Min: 50, Max: 60}, decode[dto.RouteResponse](t, rec).TempRange)

	rec = do(t, h, http.MethodPut, "/settings/temp-range", `{"min": 70, "max": 60}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/settings/temp-range", `{"min": 70}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItinerary(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPut, "/settings/temp-range", `{"min": 45, "max": 55}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/route/itinerary", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[dto.ItineraryResponse](t, rec)
	require.Len(t, res.Stops, 6)
	require.Len(t, res.Legs, 5)

	// 244 days between 1 April and 1 December, five gaps of 48 days.
	assert.Equal(t, "2026-04-01", res.Stops[0].Date)
	assert.Equal(t, "2026-05-19", res.Stops[1].Date)
	assert.Equal(t, "April", res.Legs[0].Month)

	// No temperature series: every stop falls back to 10 °C.
	for _, s := range res.Stops {
		assert.InDelta(t, 10.0, s.TempC, 1e-9)
		assert.InDelta(t, 50.0, s.TempF, 1e-9)
		assert.True(t, s.InRange)
	}
	assert.Equal(t, dto.TempRange{Min: 45, Max: 55}, res.TempRange)
}

func TestGeoJSON(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/route.geojson", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 1+len(newEngland))

	assert.Equal(t, "LineString", fc.Features[0].Geometry.GeoJSONType())
	assert.Equal(t, "route", fc.Features[0].Properties["kind"])

	first := fc.Features[1]
	assert.Equal(t, "Point", first.Geometry.GeoJSONType())
	assert.Equal(t, "Massachusetts", first.Properties["name"])
}

func TestMetrics(t *testing.T) {
	h := newTestRouter(t)

	do(t, h, http.MethodGet, "/health", "")
	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

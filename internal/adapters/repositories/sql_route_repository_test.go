package repositories

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"roadtrip-route-service/internal/domain"
	"roadtrip-route-service/internal/ports"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openPostgres connects to DATABASE_URL inside a fresh schema that is dropped
// when the test ends. The test is skipped without DATABASE_URL.
func openPostgres(t *testing.T) *sql.DB {
	t.Helper()

	raw := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if raw == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()

	admin, err := sql.Open("pgx", raw)
	require.NoError(t, err)
	t.Cleanup(func() { _ = admin.Close() })

	schema := "route_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	_, err = admin.ExecContext(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = admin.ExecContext(ctx, "DROP SCHEMA "+schema+" CASCADE") })

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()

	conn, err := sql.Open("pgx", u.String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitPostgresSchema(ctx, conn))
	return conn
}

func seededPostgresRepo(t *testing.T) (*SQLRouteRepository, []domain.Location) {
	t.Helper()

	locs := []domain.Location{
		{Name: "Texas", Lat: 30.2672, Lon: -97.7431, Temperatures: []float64{10, 11}},
		{Name: "Alabama", Lat: 32.3668, Lon: -86.3},
		{Name: "Maine", Lat: 44.3106, Lon: -69.7795, Temperatures: []float64{-3.5}},
	}
	conn := openPostgres(t)
	require.NoError(t, SeedPostgresLocations(context.Background(), conn, locs))
	return NewSQLRouteRepository(conn), locs
}

func TestSQLRouteRepository_ListLocations(t *testing.T) {
	repo, locs := seededPostgresRepo(t)

	got, err := repo.ListLocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Route(locs).Names(), domain.Route(got).Names())
	assert.Equal(t, []float64{10, 11}, got[0].Temperatures)

	// Reseeding in a new order upserts in place.
	require.NoError(t, SeedPostgresLocations(context.Background(), repo.DB, []domain.Location{locs[2], locs[0], locs[1]}))
	got, err = repo.ListLocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Maine", "Texas", "Alabama"}, domain.Route(got).Names())
}

func TestSQLRouteRepository_SaveAndLoad(t *testing.T) {
	repo, locs := seededPostgresRepo(t)
	ctx := context.Background()

	_, err := repo.LoadSnapshot(ctx)
	require.ErrorIs(t, err, ports.ErrNotFound)

	at := time.Date(2026, 4, 1, 12, 30, 0, 0, time.UTC)
	snap := &domain.RouteSnapshot{
		Stops:     domain.Route{locs[2], locs[0], locs[1]},
		TempRange: domain.TempRange{Min: 60, Max: 80},
		UpdatedAt: at,
	}
	require.NoError(t, repo.SaveSnapshot(ctx, snap))

	got, err := repo.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Maine", "Texas", "Alabama"}, got.Stops.Names())
	assert.Equal(t, snap.TempRange, got.TempRange)
	assert.True(t, at.Equal(got.UpdatedAt), "got %s", got.UpdatedAt)
	assert.Equal(t, time.UTC, got.UpdatedAt.Location())
}

func TestSQLRouteRepository_SaveRejectsUnknownStop(t *testing.T) {
	repo, locs := seededPostgresRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSnapshot(ctx, &domain.RouteSnapshot{
		Stops:     domain.Route(locs),
		TempRange: domain.DefaultTempRange(),
	}))

	err := repo.SaveSnapshot(ctx, &domain.RouteSnapshot{
		Stops:     domain.Route{locs[0], {Name: "Atlantis"}},
		TempRange: domain.DefaultTempRange(),
	})
	assert.ErrorIs(t, err, ports.ErrNotFound)

	got, err := repo.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Route(locs).Names(), got.Stops.Names())
}

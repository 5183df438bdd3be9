package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"roadtrip-route-service/internal/domain"
	"roadtrip-route-service/internal/platform/obs"
	"roadtrip-route-service/internal/ports"
)

// SQLite-backed implementation of the RouteRepository port.
type SqliteRouteRepository struct{ DB *sql.DB }

func NewSqliteRouteRepository(db *sql.DB) *SqliteRouteRepository {
	return &SqliteRouteRepository{DB: db}
}

// Return all locations stored in the database, in catalogue order.
func (s *SqliteRouteRepository) ListLocations(ctx context.Context) (_ []domain.Location, err error) {
	defer obs.Time(ctx, "sqlite.ListLocations")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite route repository: DB is nil")
	}

	query := `
	SELECT
		name,
		lat,
		lon,
		temperatures
	FROM locations
	ORDER BY seq, name;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list locations: query locations table: %w", err)
	}
	defer rows.Close()

	return scanLocations(rows, "list locations")
}

// Load the saved route in stop order together with its settings.
func (s *SqliteRouteRepository) LoadSnapshot(ctx context.Context) (_ *domain.RouteSnapshot, err error) {
	defer obs.Time(ctx, "sqlite.LoadSnapshot")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite route repository: DB is nil")
	}

	var (
		snap    domain.RouteSnapshot
		updated string
	)
	err = s.DB.QueryRowContext(ctx, `
	SELECT temp_min, temp_max, updated_at
	FROM route_settings
	WHERE id = 1;
	`).Scan(&snap.TempRange.Min, &snap.TempRange.Max, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: query route_settings table: %w", err)
	}

	if snap.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("load snapshot: parse updated_at %q: %w", updated, err)
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		l.name,
		l.lat,
		l.lon,
		l.temperatures
	FROM route_stops s
	JOIN locations l ON l.name = s.name
	ORDER BY s.position;
	`)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: query route_stops table: %w", err)
	}
	defer rows.Close()

	stops, err := scanLocations(rows, "load snapshot")
	if err != nil {
		return nil, err
	}
	snap.Stops = domain.Route(stops)

	return &snap, nil
}

// Replace the saved route and settings in a single transaction.
func (s *SqliteRouteRepository) SaveSnapshot(ctx context.Context, snap *domain.RouteSnapshot) (err error) {
	defer obs.Time(ctx, "sqlite.SaveSnapshot")(&err)

	if s.DB == nil {
		return errors.New("sqlite route repository: DB is nil")
	}
	if snap == nil {
		return errors.New("save snapshot: snapshot is nil")
	}
	if err := snap.TempRange.Validate(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save snapshot: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.checkKnown(ctx, tx, snap.Stops.Names()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM route_stops;`); err != nil {
		return fmt.Errorf("save snapshot: clear route_stops: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_stops (position, name)
	VALUES (?, ?);
	`)
	if err != nil {
		return fmt.Errorf("save snapshot: db prepare: %w", err)
	}
	defer stmt.Close()

	for i, l := range snap.Stops {
		if _, err := stmt.ExecContext(ctx, i, l.Name); err != nil {
			return fmt.Errorf("save snapshot: insert stop %d name=%q: %w", i, l.Name, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO route_settings (id, temp_min, temp_max, updated_at)
	VALUES (1, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET temp_min = excluded.temp_min,
		temp_max = excluded.temp_max,
		updated_at = excluded.updated_at;
	`, snap.TempRange.Min, snap.TempRange.Max, snap.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save snapshot: upsert route_settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save snapshot: commit: %w", err)
	}
	return nil
}

// checkKnown fails with ports.ErrNotFound when a name is missing from the catalogue.
func (s *SqliteRouteRepository) checkKnown(ctx context.Context, tx *sql.Tx, names []string) error {
	uniq := uniqueNames(names)
	if len(uniq) == 0 {
		return nil
	}

	ph := make([]string, len(uniq))
	args := make([]any, len(uniq))
	for i, n := range uniq {
		ph[i] = "?"
		args[i] = n
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT name
	FROM locations
	WHERE name IN (%s);
	`, strings.Join(ph, ","))

	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("query locations table: %w", err)
	}
	defer rows.Close()

	return compareKnown(rows, uniq)
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roadtrip-route-service/internal/domain"
	"roadtrip-route-service/internal/platform/obs"
	"roadtrip-route-service/internal/ports"
)

// SQLRouteRepository is a Postgres-backed RouteRepository (pgx stdlib driver).
type SQLRouteRepository struct {
	DB *sql.DB
}

func NewSQLRouteRepository(db *sql.DB) *SQLRouteRepository {
	return &SQLRouteRepository{DB: db}
}

func (s *SQLRouteRepository) ListLocations(ctx context.Context) (_ []domain.Location, err error) {
	defer obs.Time(ctx, "sql.ListLocations")(&err)

	if s.DB == nil {
		return nil, errors.New("sql route repository: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT name, lat, lon, temperatures
	FROM locations
	ORDER BY seq, name;
	`)
	if err != nil {
		return nil, fmt.Errorf("list locations: query locations table: %w", err)
	}
	defer rows.Close()

	return scanLocations(rows, "list locations")
}

func (s *SQLRouteRepository) LoadSnapshot(ctx context.Context) (_ *domain.RouteSnapshot, err error) {
	defer obs.Time(ctx, "sql.LoadSnapshot")(&err)

	if s.DB == nil {
		return nil, errors.New("sql route repository: db is nil")
	}

	var snap domain.RouteSnapshot
	err = s.DB.QueryRowContext(ctx, `
	SELECT temp_min, temp_max, updated_at
	FROM route_settings
	WHERE id = $1;
	`, 1).Scan(&snap.TempRange.Min, &snap.TempRange.Max, &snap.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: query route_settings table: %w", err)
	}
	snap.UpdatedAt = snap.UpdatedAt.UTC()

	rows, err := s.DB.QueryContext(ctx, `
	SELECT l.name, l.lat, l.lon, l.temperatures
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

func (s *SQLRouteRepository) SaveSnapshot(ctx context.Context, snap *domain.RouteSnapshot) (err error) {
	defer obs.Time(ctx, "sql.SaveSnapshot")(&err)

	if s.DB == nil {
		return errors.New("sql route repository: db is nil")
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

	if uniq := uniqueNames(snap.Stops.Names()); len(uniq) > 0 {
		rows, err := tx.QueryContext(ctx, `
		SELECT name
		FROM locations
		WHERE name = ANY($1::text[]);
		`, uniq)
		if err != nil {
			return fmt.Errorf("save snapshot: query locations table: %w", err)
		}
		err = compareKnown(rows, uniq)
		rows.Close()
		if err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM route_stops;`); err != nil {
		return fmt.Errorf("save snapshot: clear route_stops: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_stops (position, name)
	VALUES ($1, $2);
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
	VALUES (1, $1, $2, $3)
	ON CONFLICT (id) DO UPDATE
	SET temp_min = EXCLUDED.temp_min,
		temp_max = EXCLUDED.temp_max,
		updated_at = EXCLUDED.updated_at;
	`, snap.TempRange.Min, snap.TempRange.Max, snap.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("save snapshot: upsert route_settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save snapshot: commit: %w", err)
	}
	return nil
}

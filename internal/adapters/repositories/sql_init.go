package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roadtrip-route-service/internal/domain"
)

// Initialize the Postgres database schema.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init postgres schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
		CREATE TABLE IF NOT EXISTS locations (
			name TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			lon DOUBLE PRECISION NOT NULL,
			temperatures TEXT NOT NULL DEFAULT '[]'
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS route_stops (
			position INTEGER PRIMARY KEY,
			name TEXT NOT NULL REFERENCES locations(name)
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS route_settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			temp_min DOUBLE PRECISION NOT NULL,
			temp_max DOUBLE PRECISION NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		`,
		`
		CREATE INDEX IF NOT EXISTS idx_locations_seq
		ON locations(seq);
		`,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init postgres schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init postgres schema: commit tx: %w", err)
	}
	return nil
}

// Upsert the catalogue into Postgres, keeping the given order.
func SeedPostgresLocations(ctx context.Context, db *sql.DB, locs []domain.Location) error {
	if db == nil {
		return errors.New("seed postgres locations: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed postgres locations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO locations (name, seq, lat, lon, temperatures)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (name) DO UPDATE
	SET seq = EXCLUDED.seq,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		temperatures = EXCLUDED.temperatures;
	`)
	if err != nil {
		return fmt.Errorf("seed postgres locations: db prepare: %w", err)
	}
	defer stmt.Close()

	for i, l := range locs {
		temps, err := encodeTemperatures(l.Temperatures)
		if err != nil {
			return fmt.Errorf("seed postgres locations: %q: %w", l.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, l.Name, i, l.Lat, l.Lon, temps); err != nil {
			return fmt.Errorf("seed postgres locations: insert name=%q: %w", l.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed postgres locations: commit tx: %w", err)
	}
	return nil
}

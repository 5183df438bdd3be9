package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"roadtrip-route-service/internal/domain"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createLocationsQuery := `
	CREATE TABLE IF NOT EXISTS locations (
		name TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		temperatures TEXT NOT NULL DEFAULT '[]'
	);
	`

	createRouteStopsQuery := `
	CREATE TABLE IF NOT EXISTS route_stops (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL REFERENCES locations(name)
	);
	`

	createRouteSettingsQuery := `
	CREATE TABLE IF NOT EXISTS route_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		temp_min REAL NOT NULL,
		temp_max REAL NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_locations_seq
	ON locations(seq);
	`

	statements := []string{
		createLocationsQuery,
		createRouteStopsQuery,
		createRouteSettingsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the locations table from a state capitals JSON file.
// Existing rows with the same name are updated in place.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	locs, err := LoadLocationSeeds(jsonPath)
	if err != nil {
		return fmt.Errorf("seed locations: %w", err)
	}
	return SeedLocations(db, locs)
}

func SeedLocations(db *sql.DB, locs []domain.Location) error {
	if db == nil {
		return errors.New("seed locations: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed locations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO locations (
		name,
		seq,
		lat,
		lon,
		temperatures
	)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (name) DO UPDATE
	SET seq = excluded.seq,
		lat = excluded.lat,
		lon = excluded.lon,
		temperatures = excluded.temperatures;
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed locations: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range locs {
		temps, err := encodeTemperatures(l.Temperatures)
		if err != nil {
			return fmt.Errorf("seed locations: %q: %w", l.Name, err)
		}
		if _, err := stmt.Exec(l.Name, i, l.Lat, l.Lon, temps); err != nil {
			return fmt.Errorf("seed locations: insert name=%q: %w", l.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed locations: commit tx: %w", err)
	}

	return nil
}

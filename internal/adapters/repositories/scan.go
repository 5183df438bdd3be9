package repositories

import (
	"database/sql"
	"fmt"

	"roadtrip-route-service/internal/domain"
	"roadtrip-route-service/internal/ports"
)

// scanLocations reads (name, lat, lon, temperatures) rows.
func scanLocations(rows *sql.Rows, op string) ([]domain.Location, error) {
	out := make([]domain.Location, 0, 64)
	for rows.Next() {
		var (
			l     domain.Location
			temps string
		)
		if err := rows.Scan(&l.Name, &l.Lat, &l.Lon, &temps); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}

		t, err := decodeTemperatures(temps)
		if err != nil {
			return nil, fmt.Errorf("%s: location %q: %w", op, l.Name, err)
		}
		l.Temperatures = t
		out = append(out, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}
	return out, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// compareKnown drains a single-column name result and reports the first
// wanted name that did not come back.
func compareKnown(rows *sql.Rows, want []string) error {
	found := make(map[string]struct{}, len(want))
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		found[n] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration: %w", err)
	}

	for _, n := range want {
		if _, ok := found[n]; !ok {
			return fmt.Errorf("unknown location %q: %w", n, ports.ErrNotFound)
		}
	}
	return nil
}

package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"roadtrip-route-service/internal/domain"
)

// LocationSeed is one entry of the state capitals dataset:
//
//	{"Texas": {"coordinates": [30.27, -97.74], "temperatures": [...]}, ...}
type LocationSeed struct {
	Coordinates  []float64 `json:"coordinates"`
	Temperatures []float64 `json:"temperatures"`
}

// ParseLocationSeeds decodes the dataset, keeping the key order of the JSON object.
func ParseLocationSeeds(r io.Reader) ([]domain.Location, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse seeds: read opening token: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("parse seeds: expected a JSON object")
	}

	out := make([]domain.Location, 0, 64)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse seeds: read key: %w", err)
		}
		name, _ := tok.(string)
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("parse seeds: item at index %d: name cannot be empty", len(out)+1)
		}

		var item LocationSeed
		if err := dec.Decode(&item); err != nil {
			return nil, fmt.Errorf("parse seeds: item %q: %w", name, err)
		}
		if len(item.Coordinates) != 2 {
			return nil, fmt.Errorf("parse seeds: item %q: expected [lat, lon], got %d values", name, len(item.Coordinates))
		}

		loc := domain.Location{
			Name:         name,
			Lat:          item.Coordinates[0],
			Lon:          item.Coordinates[1],
			Temperatures: item.Temperatures,
		}
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("parse seeds: %w", err)
		}
		out = append(out, loc)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse seeds: read closing token: %w", err)
	}

	if err := domain.ValidateLocations(out); err != nil {
		return nil, fmt.Errorf("parse seeds: %w", err)
	}
	return out, nil
}

// LoadLocationSeeds reads and parses the dataset at path.
func LoadLocationSeeds(path string) ([]domain.Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load seeds: open %q: %w", path, err)
	}
	defer f.Close()

	locs, err := ParseLocationSeeds(f)
	if err != nil {
		return nil, fmt.Errorf("load seeds %q: %w", path, err)
	}
	return locs, nil
}

func encodeTemperatures(temps []float64) (string, error) {
	if temps == nil {
		temps = []float64{}
	}
	b, err := json.Marshal(temps)
	if err != nil {
		return "", fmt.Errorf("encode temperatures: %w", err)
	}
	return string(b), nil
}

func decodeTemperatures(raw string) ([]float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var temps []float64
	if err := json.Unmarshal([]byte(raw), &temps); err != nil {
		return nil, fmt.Errorf("decode temperatures: %w", err)
	}
	return temps, nil
}

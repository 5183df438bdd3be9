package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/s2"
)

// EarthRadiusMiles is the sphere radius used for all great-circle distances.
const EarthRadiusMiles = 3958.8

// DaysPerYear is the expected length of a location's temperature series.
const DaysPerYear = 365

var (
	ErrInvalidLocation   = errors.New("location: invalid location")
	ErrDuplicateLocation = errors.New("location: duplicate name")
)

// Immutable named point with a yearly temperature series (degrees Celsius).
// The optimizer only reads the name and coordinates.
type Location struct {
	Name         string
	Lat          float64
	Lon          float64
	Temperatures []float64
}

// Equal reports whether both locations share name and coordinates.
func (l Location) Equal(o Location) bool {
	return l.Name == o.Name && l.Lat == o.Lat && l.Lon == o.Lon
}

func (l Location) Coordinates() Coordinates {
	return Coordinates{Lon: l.Lon, Lat: l.Lat}
}

// Distance returns the haversine great-circle distance between a and b in miles.
// NaN coordinates yield NaN.
func Distance(a, b Location) float64 {
	p := s2.LatLngFromDegrees(a.Lat, a.Lon)
	q := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return p.Distance(q).Radians() * EarthRadiusMiles
}

// Validate rejects empty names and coordinates outside the WGS84 range.
func (l Location) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: name must be non-empty", ErrInvalidLocation)
	}
	if math.IsNaN(l.Lat) || math.IsInf(l.Lat, 0) || l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("%w: %q latitude %v out of range", ErrInvalidLocation, l.Name, l.Lat)
	}
	if math.IsNaN(l.Lon) || math.IsInf(l.Lon, 0) || l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("%w: %q longitude %v out of range", ErrInvalidLocation, l.Name, l.Lon)
	}
	return nil
}

// ValidateLocations checks every location and that names are unique.
func ValidateLocations(locs []Location) error {
	seen := make(map[string]struct{}, len(locs))
	for i, l := range locs {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("validate locations: index %d: %w", i, err)
		}
		if _, ok := seen[l.Name]; ok {
			return fmt.Errorf("validate locations: %w: %q", ErrDuplicateLocation, l.Name)
		}
		seen[l.Name] = struct{}{}
	}
	return nil
}

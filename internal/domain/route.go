package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrIndexOutOfRange = errors.New("route: stop index out of range")

// Ordered, duplicate-free sequence of locations.
// Consecutive stops are legs; the route is open (no leg back to the first stop).
type Route []Location

// TotalDistance sums the leg distances of the open route in miles.
func (r Route) TotalDistance() float64 {
	total := 0.0
	for i := 1; i < len(r); i++ {
		total += Distance(r[i-1], r[i])
	}
	return total
}

// ClosedDistance is TotalDistance plus the leg from the last stop back to the first.
func (r Route) ClosedDistance() float64 {
	if len(r) < 2 {
		return 0
	}
	return r.TotalDistance() + Distance(r[len(r)-1], r[0])
}

func (r Route) Names() []string {
	names := make([]string, len(r))
	for i, l := range r {
		names[i] = l.Name
	}
	return names
}

// Clone returns an independent copy of the route.
func (r Route) Clone() Route {
	out := make(Route, len(r))
	copy(out, r)
	return out
}

// IsPermutationOf reports whether r holds exactly the locations in locs,
// each once, in any order.
func (r Route) IsPermutationOf(locs []Location) bool {
	if len(r) != len(locs) {
		return false
	}
	want := make(map[string]Location, len(locs))
	for _, l := range locs {
		want[l.Name] = l
	}
	if len(want) != len(locs) {
		return false
	}
	for _, l := range r {
		w, ok := want[l.Name]
		if !ok || !w.Equal(l) {
			return false
		}
		delete(want, l.Name)
	}
	return len(want) == 0
}

// Swap returns a copy of the route with stops i and j exchanged.
func (r Route) Swap(i, j int) (Route, error) {
	if i < 0 || i >= len(r) || j < 0 || j >= len(r) {
		return nil, fmt.Errorf("swap stops %d and %d of %d: %w", i, j, len(r), ErrIndexOutOfRange)
	}
	out := r.Clone()
	out[i], out[j] = out[j], out[i]
	return out, nil
}

// Ideal temperature band in degrees Fahrenheit, inclusive on both ends.
type TempRange struct {
	Min float64
	Max float64
}

func DefaultTempRange() TempRange { return TempRange{Min: 65, Max: 75} }

func (t TempRange) Contains(f float64) bool { return f >= t.Min && f <= t.Max }

func (t TempRange) Validate() error {
	if t.Min > t.Max {
		return fmt.Errorf("temp range: min %.1f exceeds max %.1f", t.Min, t.Max)
	}
	return nil
}

// Represents the persisted state of a planned trip: the stop ordering and the
// ideal temperature band used for the itinerary.
type RouteSnapshot struct {
	Stops     Route
	TempRange TempRange
	UpdatedAt time.Time
}

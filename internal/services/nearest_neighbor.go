package services

import (
	"math"

	"roadtrip-route-service/internal/domain"
)

// Order locations using a greedy nearest-neighbor walk.
//
// The walk starts at the first location and always moves to the closest
// unvisited one. It does not attempt global optimization; it is a quick,
// deterministic sort. Ties go to the location that appears first in the input.
func NearestNeighborRoute(locations []domain.Location) domain.Route {
	if len(locations) == 0 {
		return domain.Route{}
	}

	remaining := make([]domain.Location, len(locations)-1)
	copy(remaining, locations[1:])

	current := locations[0]
	route := make(domain.Route, 0, len(locations))
	route = append(route, current)

	for len(remaining) > 0 {
		bestIdx := 0
		minDistance := math.Inf(1)

		// Select next stop by minimum great-circle distance (greedy step).
		for i, candidate := range remaining {
			d := domain.Distance(current, candidate)
			if d < minDistance {
				minDistance = d
				bestIdx = i
			}
		}

		current = remaining[bestIdx]
		route = append(route, current)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return route
}

package services

import (
	"fmt"
	"math"
	"math/rand"

	"roadtrip-route-service/internal/domain"
)

// milesToDegrees converts a distance along the equator (or a meridian) to degrees.
func milesToDegrees(miles float64) float64 {
	return miles / (domain.EarthRadiusMiles * math.Pi / 180)
}

func loc(name string, lat, lon float64) domain.Location {
	return domain.Location{Name: name, Lat: lat, Lon: lon}
}

// randomLocations scatters n named points over the contiguous United States.
func randomLocations(n int, seed int64) []domain.Location {
	rng := rand.New(rand.NewSource(seed))
	out := make([]domain.Location, n)
	for i := range out {
		out[i] = loc(
			fmt.Sprintf("L%02d", i),
			25+rng.Float64()*24,
			-124+rng.Float64()*57,
		)
	}
	return out
}

func maxPairwiseDistance(locs []domain.Location) float64 {
	maxD := 0.0
	for i := range locs {
		for j := i + 1; j < len(locs); j++ {
			maxD = math.Max(maxD, domain.Distance(locs[i], locs[j]))
		}
	}
	return maxD
}

// equilateral returns three points roughly side miles apart near the equator.
func equilateral(side float64) []domain.Location {
	d := milesToDegrees(side)
	return []domain.Location{
		loc("A", 0, 0),
		loc("B", 0, d),
		loc("C", d*math.Sqrt(3)/2, d/2),
	}
}

// lineWithGaps places points along the equator separated by the given gaps.
func lineWithGaps(gaps ...float64) []domain.Location {
	out := []domain.Location{loc("P0", 0, 0)}
	lon := 0.0
	for i, g := range gaps {
		lon += milesToDegrees(g)
		out = append(out, loc(fmt.Sprintf("P%d", i+1), 0, lon))
	}
	return out
}

package services

import (
	"slices"

	"roadtrip-route-service/internal/domain"
)

// twoOptEps is the minimum gain for a move to count as an improvement.
// It keeps floating-point noise from looping the search forever.
const twoOptEps = 1e-9

// TwoOpt shortens route with first-improvement 2-opt and returns the refined
// copy together with the number of full passes it made.
//
// For every pair 1 ≤ i < j < len(route) the segment [i, j] is reversed when that
// lowers the length of the edges around it. Passes repeat until one makes no
// change, so the result is a local optimum.
//
// With wrapAround false the route is an open path and the refined route is
// never longer than the input. With wrapAround true the edge after the last
// stop leads back to the first, as for a closed tour; then the closed length
// never grows, but the open length can.
func TwoOpt(route domain.Route, wrapAround bool) (domain.Route, int) {
	r := route.Clone()
	n := len(r)
	if n < 3 {
		return r, 0
	}

	// successor of the segment end j, if any.
	successor := func(j int) (int, bool) {
		if j+1 < n {
			return j + 1, true
		}
		if wrapAround {
			return 0, true
		}
		return 0, false
	}

	passes := 0
	for improved := true; improved; {
		improved = false
		passes++

		for i := 1; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				before := domain.Distance(r[i-1], r[i])
				after := domain.Distance(r[i-1], r[j])
				if k, ok := successor(j); ok {
					before += domain.Distance(r[j], r[k])
					after += domain.Distance(r[i], r[k])
				}

				if after < before-twoOptEps {
					slices.Reverse(r[i : j+1])
					improved = true
				}
			}
		}
	}

	return r, passes
}

package services

import (
	"testing"

	"roadtrip-route-service/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestNearestNeighborRoute(t *testing.T) {
	locs := []domain.Location{
		loc("start", 0, 0),
		loc("far", 0, 3),
		loc("near", 0, 1),
		loc("mid", 0, 2),
	}

	got := NearestNeighborRoute(locs)

	assert.Equal(t, []string{"start", "near", "mid", "far"}, got.Names())
	assert.Equal(t, "far", locs[1].Name, "input must be left untouched")
}

func TestNearestNeighborRouteTiesKeepInputOrder(t *testing.T) {
	locs := []domain.Location{
		loc("start", 0, 0),
		loc("east", 0, 1),
		loc("west", 0, -1),
	}

	got := NearestNeighborRoute(locs)

	assert.Equal(t, []string{"start", "east", "west"}, got.Names())
}

func TestNearestNeighborRouteEmpty(t *testing.T) {
	assert.Empty(t, NearestNeighborRoute(nil))
}

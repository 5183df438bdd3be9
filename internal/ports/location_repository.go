package ports

import (
	"context"
	"errors"

	"roadtrip-route-service/internal/domain"
)

// ErrNotFound is returned by repositories when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// Port: a boundary for retrieving the location catalogue from a data source.
type LocationRepository interface {
	// Retrieve all known locations in catalogue order.
	ListLocations(ctx context.Context) ([]domain.Location, error)
}

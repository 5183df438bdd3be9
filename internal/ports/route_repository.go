package ports

import (
	"context"

	"roadtrip-route-service/internal/domain"
)

// Port: durable storage for the planned route and its settings.
type RouteRepository interface {
	LocationRepository
	// Load the saved snapshot. Returns ErrNotFound when nothing was saved yet.
	LoadSnapshot(ctx context.Context) (*domain.RouteSnapshot, error)
	// Replace the saved snapshot. Every stop must exist in the catalogue.
	SaveSnapshot(ctx context.Context, snap *domain.RouteSnapshot) error
}

package ports

import (
	"context"

	"roadtrip-route-service/internal/domain"
)

// Optional read-through cache in front of a RouteRepository.
type RouteCache interface {
	// Return the cached snapshot; ok is false on a miss.
	Get(ctx context.Context) (snap *domain.RouteSnapshot, ok bool, err error)
	Put(ctx context.Context, snap *domain.RouteSnapshot) error
	Invalidate(ctx context.Context) error
}

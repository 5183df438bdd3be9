package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"roadtrip-route-service/internal/domain"
	"roadtrip-route-service/internal/platform/obs"
	"roadtrip-route-service/internal/ports"

	"golang.org/x/exp/slog"
)

// RouteService coordinates the location catalogue, the saved route snapshot,
// the optional snapshot cache and the optimizer.
//
// Mutating operations are serialized: one optimization or edit runs at a time.
type RouteService struct {
	repo      ports.RouteRepository
	cache     ports.RouteCache
	optimizer *Optimizer
	season    domain.Season
	log       *slog.Logger
	now       func() time.Time

	mu sync.Mutex
}

type RouteServiceConfig struct {
	Repo      ports.RouteRepository
	Cache     ports.RouteCache // optional
	Optimizer *Optimizer
	Season    domain.Season
	Logger    *slog.Logger
}

func NewRouteService(cfg RouteServiceConfig) (*RouteService, error) {
	if cfg.Repo == nil {
		return nil, errors.New("route service: repository must be non-nil")
	}

	optimizer := cfg.Optimizer
	if optimizer == nil {
		optimizer = NewOptimizer(DefaultOptimizerOptions())
	}

	season := cfg.Season
	if season.Year == 0 {
		season.Year = time.Now().Year()
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &RouteService{
		repo:      cfg.Repo,
		cache:     cfg.Cache,
		optimizer: optimizer,
		season:    season,
		log:       log,
		now:       time.Now,
	}, nil
}

// Locations returns the catalogue in its stored order.
func (s *RouteService) Locations(ctx context.Context) (_ []domain.Location, err error) {
	defer obs.Time(ctx, "route.Locations")(&err)

	locs, err := s.repo.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locs, nil
}

// CurrentRoute returns the saved snapshot. When nothing has been saved yet the
// catalogue order with the default temperature band is returned instead.
func (s *RouteService) CurrentRoute(ctx context.Context) (*domain.RouteSnapshot, error) {
	if s.cache != nil {
		snap, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			obs.CacheLookups.WithLabelValues("error").Inc()
			s.log.Warn("route cache read failed", "req_id", obs.RequestID(ctx), "err", err)
		case ok:
			obs.CacheLookups.WithLabelValues("hit").Inc()
			return snap, nil
		default:
			obs.CacheLookups.WithLabelValues("miss").Inc()
		}
	}

	snap, err := s.repo.LoadSnapshot(ctx)
	if errors.Is(err, ports.ErrNotFound) {
		locs, lerr := s.repo.ListLocations(ctx)
		if lerr != nil {
			return nil, fmt.Errorf("current route: list locations: %w", lerr)
		}
		return &domain.RouteSnapshot{
			Stops:     domain.Route(locs),
			TempRange: domain.DefaultTempRange(),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current route: load snapshot: %w", err)
	}

	s.putCache(ctx, snap)
	return snap, nil
}

// Optimize reorders the current route with the optimizer, starting the search
// at radius miles (DefaultRadius when radius <= 0), and saves the result.
func (s *RouteService) Optimize(ctx context.Context, radius float64) (_ *OptimizeResult, err error) {
	defer obs.Time(ctx, "route.Optimize")(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.CurrentRoute(ctx)
	if err != nil {
		return nil, fmt.Errorf("optimize route: %w", err)
	}

	start := time.Now()
	res, err := s.optimizer.Optimize(ctx, snap.Stops, radius)
	obs.OptimizeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, ErrNoFeasibleRoute) {
			obs.OptimizeTotal.WithLabelValues("infeasible").Inc()
		} else {
			obs.OptimizeTotal.WithLabelValues("error").Inc()
		}
		return nil, fmt.Errorf("optimize route: %w", err)
	}
	obs.OptimizeTotal.WithLabelValues("ok").Inc()
	obs.OptimizeAttempts.Observe(float64(res.Attempts))
	obs.OptimizeRadiusMiles.Observe(res.Radius)
	obs.OptimizeImprovedMiles.Observe(res.ImprovedMiles)

	s.log.Info("route optimized",
		"req_id", obs.RequestID(ctx),
		"stops", len(res.Route),
		"attempts", res.Attempts,
		"radius", res.Radius,
		"searched_miles", res.SearchedMiles,
		"refined_miles", res.RefinedMiles,
	)

	if err := s.save(ctx, res.Route, snap.TempRange); err != nil {
		return nil, fmt.Errorf("optimize route: %w", err)
	}
	return res, nil
}

// SortNearest reorders the current route with a nearest-neighbor walk from its first stop.
func (s *RouteService) SortNearest(ctx context.Context) (_ *domain.RouteSnapshot, err error) {
	defer obs.Time(ctx, "route.SortNearest")(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.CurrentRoute(ctx)
	if err != nil {
		return nil, fmt.Errorf("sort route: %w", err)
	}
	if len(snap.Stops) < 2 {
		return snap, nil
	}

	route := NearestNeighborRoute(snap.Stops)
	if err := s.save(ctx, route, snap.TempRange); err != nil {
		return nil, fmt.Errorf("sort route: %w", err)
	}
	return s.CurrentRoute(ctx)
}

// SwapStops exchanges the stops at positions i and j.
func (s *RouteService) SwapStops(ctx context.Context, i, j int) (_ *domain.RouteSnapshot, err error) {
	defer obs.Time(ctx, "route.SwapStops")(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.CurrentRoute(ctx)
	if err != nil {
		return nil, fmt.Errorf("swap stops: %w", err)
	}

	route, err := snap.Stops.Swap(i, j)
	if err != nil {
		return nil, fmt.Errorf("swap stops: %w", err)
	}
	if err := s.save(ctx, route, snap.TempRange); err != nil {
		return nil, fmt.Errorf("swap stops: %w", err)
	}
	return s.CurrentRoute(ctx)
}

// SetTempRange updates the ideal temperature band.
func (s *RouteService) SetTempRange(ctx context.Context, band domain.TempRange) (_ *domain.RouteSnapshot, err error) {
	defer obs.Time(ctx, "route.SetTempRange")(&err)

	if err := band.Validate(); err != nil {
		return nil, fmt.Errorf("set temp range: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.CurrentRoute(ctx)
	if err != nil {
		return nil, fmt.Errorf("set temp range: %w", err)
	}
	if err := s.save(ctx, snap.Stops, band); err != nil {
		return nil, fmt.Errorf("set temp range: %w", err)
	}
	return s.CurrentRoute(ctx)
}

// Itinerary schedules the current route across the travel season.
func (s *RouteService) Itinerary(ctx context.Context) (*domain.Itinerary, *domain.RouteSnapshot, error) {
	snap, err := s.CurrentRoute(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("itinerary: %w", err)
	}
	it := domain.BuildItinerary(snap.Stops, s.season, snap.TempRange)
	return &it, snap, nil
}

// save writes through to the repository, then refreshes the cache.
// A failed cache write is logged, not returned; the repository stays authoritative.
func (s *RouteService) save(ctx context.Context, route domain.Route, band domain.TempRange) error {
	snap := &domain.RouteSnapshot{
		Stops:     route,
		TempRange: band,
		UpdatedAt: s.now().UTC(),
	}

	if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
		if s.cache != nil {
			if cerr := s.cache.Invalidate(ctx); cerr != nil {
				s.log.Warn("route cache invalidate failed", "req_id", obs.RequestID(ctx), "err", cerr)
			}
		}
		return fmt.Errorf("save snapshot: %w", err)
	}

	s.putCache(ctx, snap)
	return nil
}

func (s *RouteService) putCache(ctx context.Context, snap *domain.RouteSnapshot) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, snap); err != nil {
		s.log.Warn("route cache write failed", "req_id", obs.RequestID(ctx), "err", err)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"roadtrip-route-service/internal/domain"

	"golang.org/x/exp/slog"
)

const (
	// DefaultRadius is the starting maximum hop distance in miles.
	DefaultRadius = 600.0
	// DefaultRadiusStep is added to the radius after every failed attempt.
	DefaultRadiusStep = 50.0
	// DefaultMaxRadius is larger than half of Earth's circumference, so every
	// pair of valid locations is reachable before the ceiling is hit.
	DefaultMaxRadius = 12500.0
	// DefaultMaxAttempts bounds the relaxation loop independently of the radius.
	DefaultMaxAttempts = 1000
	// StagnationThreshold is the number of consecutive steps without a longer
	// path after which an attempt is abandoned.
	StagnationThreshold = 5000
	// YieldInterval is the number of recursive calls between yield checkpoints.
	YieldInterval = 1000

	// defaultSeed is used when no RNG and a zero seed are configured.
	defaultSeed int64 = 1
)

// ErrNoFeasibleRoute is returned when no attempt covers every location before
// the radius or attempt ceiling is reached.
var ErrNoFeasibleRoute = errors.New("optimizer: no feasible route")

// OptimizerOptions configures the radius relaxation loop and the search.
type OptimizerOptions struct {
	RadiusStep          float64
	MaxRadius           float64
	MaxAttempts         int
	StagnationThreshold int
	YieldInterval       int

	// Yield is called every YieldInterval recursive calls. Nil means CooperativeYield.
	Yield YieldFunc

	// WrapAround makes 2-opt treat the route as closed when scoring the edge
	// after the reversed segment. Off by default: the route is an open path.
	WrapAround bool

	// Rand picks start locations. When nil, a source seeded with Seed is used
	// (Seed == 0 means a fixed default seed).
	Rand *rand.Rand
	Seed int64

	Logger *slog.Logger
}

func DefaultOptimizerOptions() OptimizerOptions {
	return OptimizerOptions{
		RadiusStep:          DefaultRadiusStep,
		MaxRadius:           DefaultMaxRadius,
		MaxAttempts:         DefaultMaxAttempts,
		StagnationThreshold: StagnationThreshold,
		YieldInterval:       YieldInterval,
	}
}

// OptimizeResult is the outcome of a successful optimization.
type OptimizeResult struct {
	Route domain.Route
	// Attempts is the number of search attempts run (0 when the input was trivial).
	Attempts int
	// Radius is the maximum hop distance of the successful attempt.
	Radius float64
	// Refined reports whether 2-opt ran on the route.
	Refined        bool
	SearchedMiles  float64
	RefinedMiles   float64
	ImprovedMiles  float64
	RefinementRuns int
}

// Optimizer finds a route through every location using randomized-restart
// depth-first search under a growing radius, then shortens it with 2-opt.
//
// An Optimizer owns its RNG and is not safe for concurrent use.
type Optimizer struct {
	opts OptimizerOptions
	rng  *rand.Rand
	log  *slog.Logger
}

func NewOptimizer(opts OptimizerOptions) *Optimizer {
	def := DefaultOptimizerOptions()
	if opts.RadiusStep <= 0 {
		opts.RadiusStep = def.RadiusStep
	}
	if opts.MaxRadius <= 0 {
		opts.MaxRadius = def.MaxRadius
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if opts.StagnationThreshold <= 0 {
		opts.StagnationThreshold = def.StagnationThreshold
	}
	if opts.YieldInterval <= 0 {
		opts.YieldInterval = def.YieldInterval
	}

	rng := opts.Rand
	if rng == nil {
		seed := opts.Seed
		if seed == 0 {
			seed = defaultSeed
		}
		rng = rand.New(rand.NewSource(seed))
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Optimizer{opts: opts, rng: rng, log: log}
}

// Optimize orders locations into a route that visits all of them, starting the
// search at radius miles (DefaultRadius when radius <= 0).
//
// Empty and single-location inputs are returned as-is without searching.
func (o *Optimizer) Optimize(ctx context.Context, locations []domain.Location, radius float64) (*OptimizeResult, error) {
	if err := domain.ValidateLocations(locations); err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	if radius <= 0 {
		radius = DefaultRadius
	}

	n := len(locations)
	if n <= 1 {
		route := domain.Route(locations).Clone()
		return &OptimizeResult{Route: route, Radius: radius}, nil
	}

	dist := newDistanceMatrix(locations)

	for attempt := 1; ; attempt++ {
		start := o.rng.Intn(n)
		remaining := make([]int, 0, n-1)
		for i := 0; i < n; i++ {
			if i != start {
				remaining = append(remaining, i)
			}
		}

		state := newSearchState(ctx, dist, radius, o.opts)
		best, outcome := state.run(start, remaining)
		if outcome == outcomeAborted {
			return nil, fmt.Errorf("optimize: attempt %d: %w", attempt, state.err)
		}

		if len(best) == n {
			return o.finish(locations, best, attempt, radius), nil
		}

		o.log.Debug("route attempt failed",
			"attempt", attempt,
			"radius", radius,
			"start", locations[start].Name,
			"covered", len(best),
			"total", n,
			"outcome", outcome.String(),
			"calls", state.calls,
		)

		// The ceiling bounds relaxation only; the caller's start radius always gets one attempt.
		next := radius + o.opts.RadiusStep
		if attempt >= o.opts.MaxAttempts || next > o.opts.MaxRadius {
			return nil, fmt.Errorf(
				"optimize: %d locations, %d attempts, radius %.0f: %w",
				n, attempt, radius, ErrNoFeasibleRoute,
			)
		}
		radius = next
	}
}

func (o *Optimizer) finish(locations []domain.Location, order []int, attempts int, radius float64) *OptimizeResult {
	route := make(domain.Route, len(order))
	for i, idx := range order {
		route[i] = locations[idx]
	}

	searched := route.TotalDistance()
	refined, passes := TwoOpt(route, o.opts.WrapAround)
	after := refined.TotalDistance()

	return &OptimizeResult{
		Route:          refined,
		Attempts:       attempts,
		Radius:         radius,
		Refined:        true,
		SearchedMiles:  searched,
		RefinedMiles:   after,
		ImprovedMiles:  searched - after,
		RefinementRuns: passes,
	}
}

func newDistanceMatrix(locations []domain.Location) distanceMatrix {
	n := len(locations)
	w := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := domain.Distance(locations[i], locations[j])
			w[i*n+j] = d
			w[j*n+i] = d
		}
	}
	return distanceMatrix{n: n, w: w}
}

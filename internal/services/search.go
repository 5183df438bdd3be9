package services

import (
	"cmp"
	"context"
	"runtime"
	"slices"
)

// YieldFunc is the cooperative checkpoint the search calls every YieldInterval
// recursive calls. Returning an error aborts the running attempt with that error.
// A yield must never change which path the search finds.
type YieldFunc func(ctx context.Context, calls int) error

// CooperativeYield hands the processor to other goroutines and reports
// cancellation of ctx.
func CooperativeYield(ctx context.Context, _ int) error {
	runtime.Gosched()
	return ctx.Err()
}

// attemptOutcome is the terminal state of one search attempt.
type attemptOutcome int

const (
	// Every location is on the best path.
	outcomeComplete attemptOutcome = iota
	// The stagnation threshold cut the attempt short.
	outcomeStagnated
	// All candidates at every level were explored.
	outcomeExhausted
	// The yield hook returned an error.
	outcomeAborted
)

func (o attemptOutcome) String() string {
	switch o {
	case outcomeComplete:
		return "complete"
	case outcomeStagnated:
		return "stagnated"
	case outcomeExhausted:
		return "exhausted"
	case outcomeAborted:
		return "aborted"
	}
	return "unknown"
}

// distanceMatrix is a dense n×n buffer of pairwise distances, w[i*n+j].
type distanceMatrix struct {
	n int
	w []float64
}

func (m distanceMatrix) at(i, j int) float64 { return m.w[i*m.n+j] }

// searchState is the mutable context of a single attempt. It is created fresh
// for every attempt and passed by pointer through the recursion.
type searchState struct {
	ctx    context.Context
	dist   distanceMatrix
	radius float64

	stagnationThreshold int
	yieldInterval       int
	yield               YieldFunc

	best       []int
	stagnation int
	calls      int
	err        error
}

func newSearchState(ctx context.Context, dist distanceMatrix, radius float64, opts OptimizerOptions) *searchState {
	yield := opts.Yield
	if yield == nil {
		yield = CooperativeYield
	}
	return &searchState{
		ctx:                 ctx,
		dist:                dist,
		radius:              radius,
		stagnationThreshold: opts.StagnationThreshold,
		yieldInterval:       opts.YieldInterval,
		yield:               yield,
	}
}

// stopped reports whether the attempt must not explore any further.
func (s *searchState) stopped() bool {
	return s.err != nil ||
		s.stagnation >= s.stagnationThreshold ||
		len(s.best) == s.dist.n
}

func (s *searchState) outcome() attemptOutcome {
	switch {
	case s.err != nil:
		return outcomeAborted
	case len(s.best) == s.dist.n:
		return outcomeComplete
	case s.stagnation >= s.stagnationThreshold:
		return outcomeStagnated
	}
	return outcomeExhausted
}

// run explores from start over remaining and returns the longest path found.
func (s *searchState) run(start int, remaining []int) ([]int, attemptOutcome) {
	s.search(start, nil, remaining)
	return s.best, s.outcome()
}

// search extends path with current and recurses into every candidate within
// the radius, nearest first. path always arrives with len == cap, so the append
// below copies and sibling branches never share a backing array.
func (s *searchState) search(current int, path []int, remaining []int) {
	path = append(path, current)

	if len(path) > len(s.best) {
		s.best = path
		s.stagnation = 0
	} else {
		s.stagnation++
	}

	if s.stopped() {
		return
	}

	for _, next := range s.candidates(current, remaining) {
		s.calls++
		if s.yieldInterval > 0 && s.calls%s.yieldInterval == 0 {
			if err := s.yield(s.ctx, s.calls); err != nil {
				s.err = err
				return
			}
		}

		s.search(next, path[:len(path):len(path)], without(remaining, next))

		if s.stopped() {
			return
		}
	}
}

// candidates returns the remaining locations reachable from current within the
// radius, ordered by ascending distance. Ties keep their order in remaining.
// NaN distances never satisfy the radius check.
func (s *searchState) candidates(current int, remaining []int) []int {
	out := make([]int, 0, len(remaining))
	for _, r := range remaining {
		if s.dist.at(current, r) <= s.radius {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b int) int {
		return cmp.Compare(s.dist.at(current, a), s.dist.at(current, b))
	})
	return out
}

// without returns a copy of set with v removed.
func without(set []int, v int) []int {
	out := make([]int, 0, len(set))
	for _, x := range set {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

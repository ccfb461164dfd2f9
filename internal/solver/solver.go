// Package solver implements the bucketed breadth-first search that finds a
// move-count-optimal solution to a water-sort puzzle.
//
// The search exploits the monotonic structure of the pour-maximal rule: the
// total colour-block count B(p) never increases along a legal move, and any
// solved position has exactly one block per colour. Every solution therefore
// performs exactly B0-C block-decreasing moves (B0 the root's block count, C
// the colour count) plus some number y of block-neutral moves. States are
// bucketed by (x, y) = (block-decreasing, block-neutral) moves performed, and
// rounds sweep y = 0, 1, 2, ... completing all x of a round before advancing,
// so the first round whose goal bucket (B0-C, y) fills is move-count optimal.
package solver

import (
	"context"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/colourflow/watersort/internal/filter"
	"github.com/colourflow/watersort/internal/parameters"
	"github.com/colourflow/watersort/internal/state"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// Outcome is the terminal result of a search.
type Outcome int

const (
	// Solved: the goal bucket was reached; Result.Moves holds an optimal
	// solution.
	Solved Outcome = iota

	// ProvenUnsolvable: a round produced no new states before the goal
	// bucket was ever reached.
	ProvenUnsolvable

	// Aborted: cancelled from outside, or the round budget ran out.
	Aborted

	// ResourceExhausted: the retained-state ceiling was hit before
	// resolution.
	ResourceExhausted
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Solved:
		return "solved"
	case ProvenUnsolvable:
		return "proven-unsolvable"
	case Aborted:
		return "aborted"
	case ResourceExhausted:
		return "resource-exhausted"
	default:
		return "invalid-outcome"
	}
}

// Stats accumulates counters over one search: for benchmarking, monitoring and
// debugging purposes.
type Stats struct {
	// Rounds completed (== y0+1 on success).
	Rounds int

	// Expanded entries, Generated successors, Duplicates skipped by the
	// filter, and Retained entries in the arena.
	Expanded   int
	Generated  int
	Duplicates int
	Retained   int

	Elapsed time.Duration
}

// Result of a Solve call. Moves is only set for a Solved outcome; the indices
// of each move refer to the canonical form of the position it is applied to.
type Result struct {
	Outcome Outcome

	// Moves is an optimal solution: exactly B0-C block-decreasing moves
	// plus NeutralMoves block-neutral ones.
	Moves []state.Move

	// NeutralMoves is y0, the round at which the goal bucket filled. Only
	// meaningful for a Solved outcome; never negative.
	NeutralMoves int

	// Reason is set for Aborted outcomes.
	Reason string

	Stats Stats
}

// Default limits. The retained-state ceiling exists so the engine fails fast
// with ResourceExhausted instead of silently thrashing.
const (
	DefaultMaxStates = 16 * 1024 * 1024
)

// Solver runs bucketed searches. Configure with the With... methods, or build
// one from a config string with NewFromParams. A Solver is reusable; each
// Solve call tears down its own filter, arena and buckets.
type Solver struct {
	seed       uint64
	hasSeed    bool
	workers    int
	maxStates  int
	maxRounds  int
	exact      bool
	filterBits uint
	membership filter.Membership
}

// New returns a Solver with defaults: single-threaded, engine-chosen seed,
// 2^32-bit duplicate filter, DefaultMaxStates ceiling, no round budget.
func New() *Solver {
	return &Solver{
		workers:    1,
		maxStates:  DefaultMaxStates,
		filterBits: filter.DefaultBits,
	}
}

// WithSeed fixes the duplicate-filter hash seed, making the run repeatable.
// Without it the engine picks a seed and logs it at V(1).
func (s *Solver) WithSeed(seed uint64) *Solver {
	s.seed = seed
	s.hasSeed = true
	return s
}

// WithWorkers sets how many goroutines expand each round. n <= 0 means
// GOMAXPROCS. Expansion within a round is embarrassingly parallel; results
// merge at the round barrier, so the outcome does not depend on n.
func (s *Solver) WithWorkers(n int) *Solver {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	s.workers = n
	return s
}

// WithMaxStates sets the retained-state ceiling. n <= 0 restores the default.
func (s *Solver) WithMaxStates(n int) *Solver {
	if n <= 0 {
		n = DefaultMaxStates
	}
	s.maxStates = n
	return s
}

// WithMaxRounds caps the number of block-neutral rounds; past it the search
// returns Aborted. 0 means no cap.
func (s *Solver) WithMaxRounds(n int) *Solver {
	s.maxRounds = n
	return s
}

// WithExactFilter swaps the probabilistic bit filter for an exact hash set:
// zero false positives, memory grows with the search.
func (s *Solver) WithExactFilter() *Solver {
	s.exact = true
	return s
}

// WithFilterBits shrinks (or grows) the bit filter to 2^bits flags. Meant for
// tests; collisions become likely well before the filter fills.
func (s *Solver) WithFilterBits(bits uint) *Solver {
	s.filterBits = bits
	return s
}

// WithMembership injects a custom duplicate-filter collaborator, overriding
// the built-in ones.
func (s *Solver) WithMembership(m filter.Membership) *Solver {
	s.membership = m
	return s
}

// NewFromParams builds a Solver from a config string parsed by the parameters
// package, e.g. "workers=4,seed=99,max_rounds=200,exact".
//
// Keys: seed, workers, max_states, max_rounds, exact, filter_bits.
func NewFromParams(params parameters.Params) (*Solver, error) {
	s := New()
	if _, found := params["seed"]; found {
		seed, err := parameters.PopParamOr(params, "seed", uint64(0))
		if err != nil {
			return nil, err
		}
		s.WithSeed(seed)
	}
	workers, err := parameters.PopParamOr(params, "workers", 1)
	if err != nil {
		return nil, err
	}
	if workers != 1 {
		s.WithWorkers(workers)
	}
	maxStates, err := parameters.PopParamOr(params, "max_states", 0)
	if err != nil {
		return nil, err
	}
	s.WithMaxStates(maxStates)
	maxRounds, err := parameters.PopParamOr(params, "max_rounds", 0)
	if err != nil {
		return nil, err
	}
	s.WithMaxRounds(maxRounds)
	exact, err := parameters.PopParamOr(params, "exact", false)
	if err != nil {
		return nil, err
	}
	if exact {
		s.WithExactFilter()
	}
	filterBits, err := parameters.PopParamOr(params, "filter_bits", int(filter.DefaultBits))
	if err != nil {
		return nil, err
	}
	s.WithFilterBits(uint(filterBits))
	for key := range params {
		return nil, errors.Errorf("unknown solver parameter %q", key)
	}
	return s, nil
}

// search is the per-call state of one Solve.
type search struct {
	membership filter.Membership
	arena      arena
	maxStates  int
	workers    int

	// cur[x] holds the handles filed under bucket (x, y) for the round y
	// being swept; next[x] stages bucket (x, y+1).
	cur, next [][]int32
	targetX   int

	stats Stats
}

// Solve runs the search to one of its terminal outcomes.
//
// The input position is not modified; it is cloned, canonicalized and
// validated first (an ErrInvalidPuzzle-caused error is returned before any
// search work begins). Cancellation of ctx is honored at round boundaries
// and yields an Aborted outcome, not an error.
func (s *Solver) Solve(ctx context.Context, root *state.Position) (*Result, error) {
	if err := root.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	seed := s.seed
	if !s.hasSeed {
		seed = rand.Uint64()
	}
	membership := s.membership
	if membership == nil {
		if s.exact {
			membership = filter.NewExactSet()
		} else {
			var err error
			membership, err = filter.NewBitFilter(s.filterBits, seed)
			if err != nil {
				return nil, err
			}
		}
	}

	canonical := root.Clone().Canonicalize()
	b0 := canonical.BlockCount()
	colours := canonical.NumColours()
	targetX := b0 - colours
	klog.V(1).Infof("Solve: B0=%d, colours=%d, target x=%d, seed=%d", b0, colours, targetX, seed)

	if canonical.IsSolved() {
		// Already at one block per colour, nothing to search.
		return &Result{Outcome: Solved, Stats: Stats{Elapsed: time.Since(start)}}, nil
	}
	if targetX <= 0 {
		return nil, errors.Errorf("internal inconsistency: unsolved position with B0=%d and %d colours", b0, colours)
	}

	run := &search{
		membership: membership,
		maxStates:  s.maxStates,
		workers:    s.workers,
		cur:        make([][]int32, targetX+1),
		next:       make([][]int32, targetX+1),
		targetX:    targetX,
	}
	rootHandle := run.arena.add(entry{pos: canonical, parent: noParent})
	membership.TestAndSet(canonical.Key())
	run.cur[0] = []int32{rootHandle}

	result, err := s.rounds(ctx, run)
	if err != nil {
		return nil, err
	}
	run.stats.Retained = run.arena.len()
	run.stats.Elapsed = time.Since(start)
	result.Stats = run.stats
	klog.V(1).Infof("Solve: outcome=%s after %d rounds, %d states retained, %d expanded, %d duplicates (%s)",
		result.Outcome, run.stats.Rounds, run.stats.Retained, run.stats.Expanded, run.stats.Duplicates, run.stats.Elapsed)
	return result, nil
}

// rounds sweeps y = 0, 1, 2, ... until a terminal outcome.
func (s *Solver) rounds(ctx context.Context, run *search) (*Result, error) {
	for y := 0; ; y++ {
		// Cancellation and budgets are only checked at round boundaries.
		if err := ctx.Err(); err != nil {
			return &Result{Outcome: Aborted, Reason: err.Error(), NeutralMoves: max(y-1, 0)}, nil
		}
		if s.maxRounds > 0 && y >= s.maxRounds {
			return &Result{Outcome: Aborted, Reason: "round budget exceeded", NeutralMoves: max(y-1, 0)}, nil
		}

		produced, err := run.sweep(ctx)
		if err != nil {
			if errors.Is(err, errStatesExhausted) {
				return &Result{Outcome: ResourceExhausted, NeutralMoves: y}, nil
			}
			return nil, err
		}
		run.stats.Rounds++
		klog.V(2).Infof("round y=%d: %d new states, goal bucket has %d", y, produced, len(run.cur[run.targetX]))

		if goal := run.cur[run.targetX]; len(goal) > 0 {
			moves, err := s.reconstruct(run, goal[0])
			if err != nil {
				return nil, err
			}
			return &Result{Outcome: Solved, Moves: moves, NeutralMoves: y}, nil
		}
		if produced == 0 {
			return &Result{Outcome: ProvenUnsolvable, NeutralMoves: y}, nil
		}

		run.cur, run.next = run.next, make([][]int32, run.targetX+1)
	}
}

var errStatesExhausted = errors.New("retained-state ceiling reached")

// candidate is a successor produced by expansion, before dedup and filing.
type candidate struct {
	succ   state.Successor
	parent int32
}

// sweep expands every bucket (x, y) for x ascending. Block-decreasing
// successors are filed under (x+1, y) and picked up later in the same sweep;
// block-neutral ones are staged for (x, y+1). Returns how many new states were
// filed anywhere.
func (run *search) sweep(ctx context.Context) (produced int, err error) {
	for x := 0; x < run.targetX; x++ {
		// cur[x] does not grow while expanding x: decreasing successors
		// land in x+1.
		var candidates []candidate
		if run.workers > 1 && len(run.cur[x]) > 1 {
			candidates, err = run.expandParallel(ctx, run.cur[x])
			if err != nil {
				return 0, err
			}
		} else {
			for _, h := range run.cur[x] {
				candidates = run.expand(h, candidates)
			}
		}
		run.stats.Expanded += len(run.cur[x])

		// Dedup and file serially, in deterministic order.
		for _, c := range candidates {
			run.stats.Generated++
			if run.membership.TestAndSet(c.succ.Result.Key()) {
				run.stats.Duplicates++
				continue
			}
			if run.arena.len() >= run.maxStates {
				return 0, errStatesExhausted
			}
			h := run.arena.add(entry{pos: c.succ.Result, parent: c.parent, move: c.succ.Move})
			if c.succ.Class == state.BlockDecreasing {
				run.cur[x+1] = append(run.cur[x+1], h)
			} else {
				run.next[x] = append(run.next[x], h)
			}
			produced++
		}
	}
	return produced, nil
}

// expand generates the successors of one entry, appending to the given
// candidates slice.
func (run *search) expand(h int32, candidates []candidate) []candidate {
	e := run.arena.at(h)
	for _, succ := range e.pos.Successors() {
		if klog.V(3).Enabled() {
			klog.Infof("expand %d: %s (%s)", h, succ.Move, succ.Class)
		}
		candidates = append(candidates, candidate{succ: succ, parent: h})
	}
	return candidates
}

// expandParallel fans the expansion of one bucket out over the configured
// workers and merges their staging buffers back in bucket order, so the
// filing order -- and with it the whole run -- stays deterministic.
func (run *search) expandParallel(ctx context.Context, handles []int32) ([]candidate, error) {
	staged := make([][]candidate, len(handles))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(run.workers)
	chunk := (len(handles) + run.workers - 1) / run.workers
	for begin := 0; begin < len(handles); begin += chunk {
		end := min(begin+chunk, len(handles))
		g.Go(func() error {
			for i := begin; i < end; i++ {
				staged[i] = run.expand(handles[i], nil)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var merged []candidate
	for _, cs := range staged {
		merged = append(merged, cs...)
	}
	return merged, nil
}

// reconstruct walks parent handles from the winning entry back to the root
// and replays the forward move list through the move generator as a
// self-check: the replay must deterministically land on a solved position.
func (s *Solver) reconstruct(run *search, winner int32) ([]state.Move, error) {
	moves := run.arena.pathTo(winner)
	pos := run.arena.at(0).pos
	for i, mv := range moves {
		var next *state.Position
		for _, succ := range pos.Successors() {
			if succ.Move.From == mv.From && succ.Move.To == mv.To {
				next = succ.Result
				break
			}
		}
		if next == nil {
			return nil, errors.Errorf("internal inconsistency: replay move %d (%s) is not legal", i+1, mv)
		}
		pos = next
	}
	if !pos.IsSolved() {
		return nil, errors.Errorf("internal inconsistency: replayed %d moves without solving the puzzle", len(moves))
	}
	return moves, nil
}

package solver_test

import (
	"context"
	"testing"

	"github.com/colourflow/watersort/internal/parameters"
	"github.com/colourflow/watersort/internal/solver"
	"github.com/colourflow/watersort/internal/state"
	"github.com/colourflow/watersort/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fourColourCycle is a hand-checkable instance: four colours cycled through
// four full tubes plus two empties. B0=19, C=4, so any solution has exactly 15
// block-decreasing moves.
func fourColourCycle(t *testing.T) *state.Position {
	return statetest.MustParse(t, 5,
		"blue, purple, green, blue, red",
		"red, red, purple, green, blue",
		"green, blue, red, purple, green",
		"purple, green, blue, red, purple",
		"", "")
}

// bfsOptimal finds the optimal solution length by plain breadth-first search
// over canonical positions, with none of the engine's bucketing. It is the
// oracle the engine's answers are checked against.
func bfsOptimal(root *state.Position) (moves int, found bool) {
	root = root.Clone().Canonicalize()
	seen := map[string]bool{string(root.Key()): true}
	frontier := []*state.Position{root}
	for depth := 0; len(frontier) > 0; depth++ {
		var next []*state.Position
		for _, p := range frontier {
			if p.IsSolved() {
				return depth, true
			}
			for _, succ := range p.Successors() {
				key := string(succ.Result.Key())
				if !seen[key] {
					seen[key] = true
					next = append(next, succ.Result)
				}
			}
		}
		frontier = next
	}
	return 0, false
}

// replay runs the move list through the move generator from the canonical
// root, the way a player following the printed solution would, and requires it
// to end solved.
func replay(t *testing.T, root *state.Position, moves []state.Move) {
	t.Helper()
	pos := root.Clone().Canonicalize()
	for i, mv := range moves {
		var next *state.Position
		for _, succ := range pos.Successors() {
			if succ.Move.From == mv.From && succ.Move.To == mv.To {
				next = succ.Result
				break
			}
		}
		require.NotNilf(t, next, "move %d (%s) is not legal at\n%v", i+1, mv, pos)
		pos = next
	}
	assert.True(t, pos.IsSolved(), "replay ended at\n%v", pos)
}

func TestSolveAlreadySolved(t *testing.T) {
	pos := statetest.MustParse(t, 4, "red, red, red, red", "blue, blue, blue, blue", "")
	result, err := solver.New().WithExactFilter().Solve(context.Background(), pos)
	require.NoError(t, err)
	assert.Equal(t, solver.Solved, result.Outcome)
	assert.Empty(t, result.Moves)
	assert.Zero(t, result.NeutralMoves)
}

func TestSolveSmall(t *testing.T) {
	// Two interleaved colours and one empty tube: solvable in 3 moves, one
	// of them necessarily block-neutral (no merge is possible at the root).
	pos := statetest.MustParse(t, 2, "blue, red", "red, blue", "")
	result, err := solver.New().WithExactFilter().Solve(context.Background(), pos)
	require.NoError(t, err)
	require.Equal(t, solver.Solved, result.Outcome)

	optimal, found := bfsOptimal(pos)
	require.True(t, found)
	assert.Equal(t, optimal, len(result.Moves))
	assert.Equal(t, 3, len(result.Moves))
	assert.Equal(t, 1, result.NeutralMoves)
	replay(t, pos, result.Moves)
}

func TestSolveFourColourCycle(t *testing.T) {
	pos := fourColourCycle(t)
	require.Equal(t, 19, pos.BlockCount())
	require.Equal(t, 4, pos.NumColours())

	result, err := solver.New().WithExactFilter().Solve(context.Background(), pos)
	require.NoError(t, err)
	require.Equal(t, solver.Solved, result.Outcome, "reason: %s", result.Reason)

	// Exactly B0-C block-decreasing moves, whatever the total.
	assert.Equal(t, 15, len(result.Moves)-result.NeutralMoves)
	replay(t, pos, result.Moves)

	optimal, found := bfsOptimal(pos)
	require.True(t, found)
	assert.Equal(t, optimal, len(result.Moves), "engine must match the plain-BFS optimum")
}

func TestSolveUnsolvable(t *testing.T) {
	// Interleaved with no empty tube: not a single legal move.
	pos := statetest.MustParse(t, 3, "red, blue, red", "blue, red, blue")
	result, err := solver.New().WithExactFilter().Solve(context.Background(), pos)
	require.NoError(t, err)
	assert.Equal(t, solver.ProvenUnsolvable, result.Outcome)
	assert.Empty(t, result.Moves)
}

func TestSolveInvalidPuzzle(t *testing.T) {
	// Colour counts don't match the capacity: rejected before any search.
	pos, err := state.New(4, [][]state.Colour{{1, 1, 1}, {2, 2, 2, 2}})
	require.NoError(t, err)
	_, err = solver.New().Solve(context.Background(), pos)
	assert.ErrorIs(t, err, state.ErrInvalidPuzzle)
}

func TestSolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := solver.New().WithExactFilter().Solve(ctx, fourColourCycle(t))
	require.NoError(t, err)
	assert.Equal(t, solver.Aborted, result.Outcome)
	assert.NotEmpty(t, result.Reason)
	// Aborting before the first round completes reports zero rounds, not -1.
	assert.Equal(t, 0, result.NeutralMoves)
	assert.Equal(t, 0, result.Stats.Rounds)
}

func TestSolveRoundBudget(t *testing.T) {
	// The small instance needs one block-neutral round; a budget of one
	// round stops the search before it.
	pos := statetest.MustParse(t, 2, "blue, red", "red, blue", "")
	result, err := solver.New().WithExactFilter().WithMaxRounds(1).Solve(context.Background(), pos)
	require.NoError(t, err)
	assert.Equal(t, solver.Aborted, result.Outcome)
	assert.Equal(t, "round budget exceeded", result.Reason)
	assert.Equal(t, 0, result.NeutralMoves)
	assert.Equal(t, 1, result.Stats.Rounds)
}

func TestSolveResourceExhausted(t *testing.T) {
	result, err := solver.New().WithExactFilter().WithMaxStates(2).Solve(context.Background(), fourColourCycle(t))
	require.NoError(t, err)
	assert.Equal(t, solver.ResourceExhausted, result.Outcome)
	assert.Equal(t, 2, result.Stats.Retained)
}

func TestSolveParallelMatchesSerial(t *testing.T) {
	pos := fourColourCycle(t)
	serial, err := solver.New().WithExactFilter().Solve(context.Background(), pos)
	require.NoError(t, err)
	parallel, err := solver.New().WithExactFilter().WithWorkers(4).Solve(context.Background(), pos)
	require.NoError(t, err)

	assert.Equal(t, serial.Outcome, parallel.Outcome)
	assert.Equal(t, serial.Moves, parallel.Moves)
	assert.Equal(t, serial.NeutralMoves, parallel.NeutralMoves)
}

func TestSolveSeededFilterIsRepeatable(t *testing.T) {
	pos := statetest.MustParse(t, 2, "blue, red", "red, blue", "")
	first, err := solver.New().WithSeed(7).WithFilterBits(20).Solve(context.Background(), pos)
	require.NoError(t, err)
	second, err := solver.New().WithSeed(7).WithFilterBits(20).Solve(context.Background(), pos)
	require.NoError(t, err)

	assert.Equal(t, solver.Solved, first.Outcome)
	assert.Equal(t, first.Moves, second.Moves)
	assert.Equal(t, first.Stats.Duplicates, second.Stats.Duplicates)
}

func TestSolveStats(t *testing.T) {
	pos := statetest.MustParse(t, 2, "blue, red", "red, blue", "")
	result, err := solver.New().WithExactFilter().Solve(context.Background(), pos)
	require.NoError(t, err)
	require.Equal(t, solver.Solved, result.Outcome)
	assert.Equal(t, result.NeutralMoves+1, result.Stats.Rounds)
	assert.Greater(t, result.Stats.Expanded, 0)
	assert.Greater(t, result.Stats.Retained, 1)
	assert.GreaterOrEqual(t, result.Stats.Generated, result.Stats.Retained-1)
}

func TestNewFromParams(t *testing.T) {
	s, err := solver.NewFromParams(parameters.NewFromConfigString("workers=4,seed=99,exact,max_rounds=5,max_states=1000"))
	require.NoError(t, err)
	require.NotNil(t, s)

	_, err = solver.NewFromParams(parameters.NewFromConfigString("workers=not-a-number"))
	assert.Error(t, err)

	_, err = solver.NewFromParams(parameters.NewFromConfigString("no_such_key=1"))
	assert.Error(t, err)

	// The configured solver still solves.
	pos := statetest.MustParse(t, 2, "blue, red", "red, blue", "")
	s, err = solver.NewFromParams(parameters.NewFromConfigString("exact,workers=2,seed=3"))
	require.NoError(t, err)
	result, err := s.Solve(context.Background(), pos)
	require.NoError(t, err)
	assert.Equal(t, solver.Solved, result.Outcome)
	assert.Len(t, result.Moves, 3)
}

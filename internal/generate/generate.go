// Package generate builds solvable puzzles by walking backwards from the
// solved position: every scramble step is the inverse of a legal pour, so the
// forward path back to the solved position always exists.
package generate

import (
	"math/rand/v2"

	"github.com/colourflow/watersort/internal/state"
	"k8s.io/klog/v2"
)

// Solved returns the end position: one full tube per colour followed by the
// spare empty tubes, colours 1..colours.
func Solved(capacity, colours, spares int) *state.Position {
	cells := make([][]state.Colour, colours+spares)
	for i := 0; i < colours; i++ {
		tube := make([]state.Colour, capacity)
		for j := range tube {
			tube[j] = state.Colour(i + 1)
		}
		cells[i] = tube
	}
	p, err := state.New(capacity, cells)
	if err != nil {
		// Only reachable through invalid dimensions.
		panic(err)
	}
	return p
}

// reverseMove undoes a hypothetical forward pour (From -> To): it lifts
// Quantity cells of Colour off the top of To and puts them back on From.
type reverseMove struct {
	forward state.Move
}

// reverseMoves enumerates every reverse step applicable to p such that the
// undone forward move would be legal under the pour-maximal rule.
func reverseMoves(p *state.Position) []reverseMove {
	capacity := p.Capacity()
	var moves []reverseMove
	for to := 0; to < p.NumTubes(); to++ {
		toTube := p.Tube(to)
		colour, blockSize := toTube.TopBlock()
		if blockSize == 0 {
			continue
		}
		fill := toTube.FillLen()
		for from := 0; from < p.NumTubes(); from++ {
			if from == to {
				continue
			}
			fromTube := p.Tube(from)
			free := capacity - fromTube.FillLen()
			fromColour, fromBlock := fromTube.TopBlock()
			// ext is how much the lifted block would merge with the
			// source's current top.
			ext := 0
			if fromColour == colour {
				ext = fromBlock
			}
			for q := 1; q <= min(blockSize, free); q++ {
				if fill-q == 0 {
					// The forward move poured into an empty tube: it must
					// have moved a whole block (no merge on the source) and
					// the source must not have been single-colour.
					if ext != 0 || fromTube.IsEmpty() {
						continue
					}
				} else {
					// The forward destination kept colour on top, so q must
					// stay inside the block; and the forward pour only stops
					// short of the source block when the destination fills.
					if q >= blockSize {
						continue
					}
					if ext != 0 && fill != capacity {
						continue
					}
				}
				moves = append(moves, reverseMove{forward: state.Move{
					From: from, To: to, Colour: colour, Quantity: q,
				}})
			}
		}
	}
	return moves
}

// apply performs the reverse step on a clone of p.
func (r reverseMove) apply(p *state.Position) *state.Position {
	// Undoing From -> To means pouring back To -> From, which is not itself
	// a legal forward move; rebuild the tubes directly.
	cells := make([][]state.Colour, p.NumTubes())
	for i := range cells {
		t := p.Tube(i)
		cells[i] = append([]state.Colour(nil), t[:t.FillLen()]...)
	}
	m := r.forward
	cells[m.To] = cells[m.To][:len(cells[m.To])-m.Quantity]
	for i := 0; i < m.Quantity; i++ {
		cells[m.From] = append(cells[m.From], m.Colour)
	}
	next, err := state.New(p.Capacity(), cells)
	if err != nil {
		panic(err)
	}
	return next
}

// Scramble derives a solvable start position by applying up to steps random
// reverse pours to the solved position. The rng drives all choices, so a
// seeded rng reproduces the puzzle.
func Scramble(capacity, colours, spares, steps int, rng *rand.Rand) *state.Position {
	p := Solved(capacity, colours, spares)
	for i := 0; i < steps; i++ {
		candidates := reverseMoves(p)
		if len(candidates) == 0 {
			klog.V(1).Infof("Scramble: no reverse move after %d steps", i)
			break
		}
		p = candidates[rng.IntN(len(candidates))].apply(p)
	}
	return p
}

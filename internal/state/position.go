package state

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidPuzzle is the cause of all puzzle construction failures: colour
// counts inconsistent with the declared capacity, over-filled tubes, etc.
var ErrInvalidPuzzle = errors.New("invalid puzzle")

// Position is one full puzzle state: the ordered sequence of all tubes.
//
// Positions are value-like: they are never mutated after construction, every
// move derives a new Position from its parent. The solver only ever sees
// canonical positions (see Canonicalize).
type Position struct {
	capacity int
	tubes    []Tube
}

// New builds a Position from the given tubes, all with the same capacity.
// Tubes shorter than the capacity are padded with empty cells at the top;
// the input slices are copied, never retained.
//
// It fails with ErrInvalidPuzzle as cause if any tube overflows the capacity
// or has an empty cell below a filled one.
func New(capacity int, tubes [][]Colour) (*Position, error) {
	if capacity < 1 {
		return nil, errors.Wrapf(ErrInvalidPuzzle, "capacity must be >= 1, got %d", capacity)
	}
	if len(tubes) == 0 {
		return nil, errors.Wrap(ErrInvalidPuzzle, "a puzzle needs at least one tube")
	}
	p := &Position{
		capacity: capacity,
		tubes:    make([]Tube, len(tubes)),
	}
	for i, cells := range tubes {
		if len(cells) > capacity {
			return nil, errors.Wrapf(ErrInvalidPuzzle, "tube %d holds %d objects, capacity is %d",
				i, len(cells), capacity)
		}
		t := make(Tube, capacity)
		copy(t, cells)
		fill := 0
		for j, c := range t {
			if c == NoColour {
				continue
			}
			if j != fill {
				return nil, errors.Wrapf(ErrInvalidPuzzle, "tube %d has a hole below a filled cell", i)
			}
			fill++
		}
		p.tubes[i] = t
	}
	return p, nil
}

// Capacity of every tube in the puzzle.
func (p *Position) Capacity() int { return p.capacity }

// NumTubes in the position.
func (p *Position) NumTubes() int { return len(p.tubes) }

// Tube returns the tube at the given index. The returned slice must not be
// modified.
func (p *Position) Tube(i int) Tube { return p.tubes[i] }

// NumColours returns the number of distinct colours present.
func (p *Position) NumColours() int {
	var seen [256]bool
	count := 0
	for _, t := range p.tubes {
		for _, c := range t {
			if c == NoColour {
				break
			}
			if !seen[c] {
				seen[c] = true
				count++
			}
		}
	}
	return count
}

// Validate checks the conserved-quantity invariant: every colour present must
// have exactly capacity objects in total, so that each colour can end up
// filling exactly one tube. Returns an error with ErrInvalidPuzzle as cause
// otherwise.
func (p *Position) Validate() error {
	var counts [256]int
	for _, t := range p.tubes {
		for _, c := range t {
			if c == NoColour {
				break
			}
			counts[c]++
		}
	}
	colours := 0
	for c, n := range counts {
		if n == 0 {
			continue
		}
		colours++
		if n != p.capacity {
			return errors.Wrapf(ErrInvalidPuzzle, "colour %d has %d objects, want exactly %d",
				c, n, p.capacity)
		}
	}
	if colours > len(p.tubes) {
		return errors.Wrapf(ErrInvalidPuzzle, "%d colours but only %d tubes", colours, len(p.tubes))
	}
	return nil
}

// BlockCount is B(p): the sum of colour blocks over all tubes. It never
// increases along a legal move, and a solved position has exactly one block
// per colour.
func (p *Position) BlockCount() (count int) {
	for _, t := range p.tubes {
		count += t.Blocks()
	}
	return
}

// IsSolved returns whether every tube is either empty or filled to capacity
// with a single colour.
func (p *Position) IsSolved() bool {
	for _, t := range p.tubes {
		if t.IsEmpty() {
			continue
		}
		if !t.IsFull() || !t.SingleColour() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the position.
func (p *Position) Clone() *Position {
	c := &Position{
		capacity: p.capacity,
		tubes:    make([]Tube, len(p.tubes)),
	}
	for i, t := range p.tubes {
		c.tubes[i] = t.clone()
	}
	return c
}

// Canonicalize sorts the tubes into the canonical total order and returns p.
// Tube indices carry no meaning beyond their contents, so two positions that
// differ only by a permutation of tubes canonicalize to the same value.
// Idempotent.
func (p *Position) Canonicalize() *Position {
	sort.Slice(p.tubes, func(i, j int) bool {
		return p.tubes[i].less(p.tubes[j])
	})
	return p
}

// Equal reports whether the two positions have identical tubes in identical
// order. Canonicalize both sides first to compare up to tube permutation.
func (p *Position) Equal(other *Position) bool {
	if p.capacity != other.capacity || len(p.tubes) != len(other.tubes) {
		return false
	}
	for i, t := range p.tubes {
		if !t.equal(other.tubes[i]) {
			return false
		}
	}
	return true
}

// Key packs the position into a compact byte string usable as a dedup key.
// With at most 15 colours each cell takes 4 bits, otherwise a full byte.
// Two positions have the same key iff their tubes are cell-by-cell identical,
// so keys of canonical positions identify positions up to tube permutation.
func (p *Position) Key() []byte {
	maxColour := Colour(0)
	for _, t := range p.tubes {
		for _, c := range t {
			if c > maxColour {
				maxColour = c
			}
		}
	}
	numCells := len(p.tubes) * p.capacity
	if maxColour > 15 {
		key := make([]byte, 0, numCells)
		for _, t := range p.tubes {
			for _, c := range t {
				key = append(key, byte(c))
			}
		}
		return key
	}
	key := make([]byte, 0, (numCells+1)/2)
	var cur byte
	half := false
	for _, t := range p.tubes {
		for _, c := range t {
			if !half {
				cur = byte(c) << 4
				half = true
			} else {
				key = append(key, cur|byte(c))
				half = false
			}
		}
	}
	if half {
		key = append(key, cur)
	}
	return key
}

// String renders the position one tube per line, bottom-to-top, using one
// letter per colour. Meant for logs and tests; the cli package does the
// user-facing rendering.
func (p *Position) String() string {
	var buf strings.Builder
	for _, t := range p.tubes {
		buf.WriteByte('|')
		for _, c := range t {
			buf.WriteByte(displayLetters[c%Colour(len(displayLetters))])
		}
		buf.WriteString("|\n")
	}
	return buf.String()
}

const displayLetters = ".ABCDEFGHIJKLMNOPQRSTUVWXYZ"

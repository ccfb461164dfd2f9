// Package state holds the compact representation of a water-sort puzzle position,
// the legal move generation and the canonical ordering used by the solver.
package state

// Colour identifies one of the liquids in the puzzle. The zero value means an
// empty cell.
type Colour uint8

// NoColour is the empty cell marker.
const NoColour Colour = 0

// Tube is one container, stored bottom-to-top. Its length is the uniform tube
// capacity of the puzzle. Filled cells are contiguous from the bottom; every
// cell above the fill level is NoColour.
type Tube []Colour

// FillLen returns the number of filled cells.
func (t Tube) FillLen() int {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i] != NoColour {
			return i + 1
		}
	}
	return 0
}

// IsEmpty returns whether the tube holds nothing.
func (t Tube) IsEmpty() bool {
	return len(t) == 0 || t[0] == NoColour
}

// IsFull returns whether every cell is filled.
func (t Tube) IsFull() bool {
	return len(t) > 0 && t[len(t)-1] != NoColour
}

// TopBlock returns the colour and size of the top colour block: the maximal run
// of same-colour cells ending at the fill level. Size 0 (and NoColour) for an
// empty tube.
func (t Tube) TopBlock() (colour Colour, size int) {
	fill := t.FillLen()
	if fill == 0 {
		return NoColour, 0
	}
	colour = t[fill-1]
	size = 1
	for i := fill - 2; i >= 0 && t[i] == colour; i-- {
		size++
	}
	return
}

// Blocks counts the colour blocks in the tube: maximal runs of consecutive
// same-colour cells. An empty tube has 0, a single-colour tube has 1 regardless
// of its fill level.
func (t Tube) Blocks() (count int) {
	var prev Colour = NoColour
	for _, c := range t {
		if c == NoColour {
			break
		}
		if c != prev {
			count++
			prev = c
		}
	}
	return
}

// SingleColour returns whether the tube is non-empty and all its filled cells
// share one colour.
func (t Tube) SingleColour() bool {
	return t.Blocks() == 1
}

// clone returns a copy sharing no storage with t.
func (t Tube) clone() Tube {
	c := make(Tube, len(t))
	copy(c, t)
	return c
}

// pourOut removes n cells from the top of the fill. The caller guarantees
// n <= the top block size.
func (t Tube) pourOut(n int) {
	fill := t.FillLen()
	for i := fill - n; i < fill; i++ {
		t[i] = NoColour
	}
}

// pourIn stacks n cells of the given colour on top of the fill. The caller
// guarantees there is room.
func (t Tube) pourIn(colour Colour, n int) {
	fill := t.FillLen()
	for i := fill; i < fill+n; i++ {
		t[i] = colour
	}
}

// less orders tubes lexicographically by their bottom-to-top colour ids, with
// empty cells as 0 so empty tubes sort first. This is the total order the
// canonical form relies on.
func (t Tube) less(other Tube) bool {
	for i := range t {
		if t[i] != other[i] {
			return t[i] < other[i]
		}
	}
	return false
}

// equal reports cell-by-cell equality.
func (t Tube) equal(other Tube) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if t[i] != other[i] {
			return false
		}
	}
	return true
}

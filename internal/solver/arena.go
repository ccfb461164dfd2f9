package solver

import "github.com/colourflow/watersort/internal/state"

// noParent marks the root entry.
const noParent int32 = -1

// entry is one retained search state: the canonical position, a handle to the
// entry it was derived from, and the move that derived it. Entries live for
// the whole search so a winning state can be walked back to the root.
type entry struct {
	pos    *state.Position
	parent int32
	move   state.Move
}

// arena is the append-only indexed store of entries. Parent references are
// integer handles into it, never pointers, so the retained state graph has no
// ownership cycles and is trivial to inspect.
type arena struct {
	entries []entry
}

// add appends an entry and returns its handle.
func (a *arena) add(e entry) int32 {
	a.entries = append(a.entries, e)
	return int32(len(a.entries) - 1)
}

// len returns the number of retained entries.
func (a *arena) len() int {
	return len(a.entries)
}

// at returns the entry behind a handle.
func (a *arena) at(h int32) entry {
	return a.entries[h]
}

// pathTo collects the moves from the root to the given entry, in forward
// order.
func (a *arena) pathTo(h int32) []state.Move {
	var moves []state.Move
	for h != noParent {
		e := a.at(h)
		if e.parent == noParent {
			break
		}
		moves = append(moves, e.move)
		h = e.parent
	}
	// Walked backwards, reverse in place.
	for i, j := 0, len(moves)-1; i < j; i, j = i+1, j-1 {
		moves[i], moves[j] = moves[j], moves[i]
	}
	return moves
}

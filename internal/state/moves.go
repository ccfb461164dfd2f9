package state

import (
	"fmt"

	"github.com/pkg/errors"
)

// MoveClass tags the effect of a move on the total block count B(p).
type MoveClass uint8

const (
	// BlockNeutral moves keep B unchanged: pours into an empty tube, and
	// partial pours that leave part of the source block behind.
	BlockNeutral MoveClass = iota

	// BlockDecreasing moves reduce B by exactly one: the whole source top
	// block merges into a matching block in the destination.
	BlockDecreasing
)

// String returns the class name.
func (c MoveClass) String() string {
	if c == BlockDecreasing {
		return "block-decreasing"
	}
	return "block-neutral"
}

// Move pours the top block (or as much of it as fits) from one tube into
// another. Indices refer to the position the move is generated from.
type Move struct {
	From, To int
	Colour   Colour
	Quantity int
}

// String formats the move the way the REPL displays it.
func (m Move) String() string {
	return fmt.Sprintf("%d -> %d: %s x %d", m.From, m.To, ColourName(m.Colour), m.Quantity)
}

// Successor is one legal move out of a position, its block-count
// classification and the resulting canonical position.
type Successor struct {
	Move   Move
	Class  MoveClass
	Result *Position
}

// Successors enumerates every legal move from p, in deterministic order
// (source index ascending, then destination index ascending).
//
// Rules, following the pour-maximal variant:
//   - Pouring a single-colour source into an empty tube is excluded outright:
//     it renames the tube without making progress.
//   - Into an empty tube the whole top block moves; the block count is
//     unchanged (the source loses a block, the destination gains one).
//   - Into a matching non-empty tube, quantity is min(block size, room). A
//     full transfer merges blocks and decreases B by one; a partial transfer
//     leaves the source block in place and keeps B unchanged.
//
// Each Result is the parent with the pour applied, canonicalized.
func (p *Position) Successors() []Successor {
	var successors []Successor
	for from, fromTube := range p.tubes {
		colour, blockSize := fromTube.TopBlock()
		if blockSize == 0 {
			continue
		}
		for to, toTube := range p.tubes {
			if from == to {
				continue
			}
			if toTube.IsEmpty() {
				if fromTube.SingleColour() {
					// Useless move: the source would just change tubes.
					continue
				}
				successors = append(successors, p.successor(Move{
					From: from, To: to, Colour: colour, Quantity: blockSize,
				}, BlockNeutral))
				continue
			}
			toColour, _ := toTube.TopBlock()
			if toColour != colour {
				continue
			}
			room := p.capacity - toTube.FillLen()
			if room == 0 {
				continue
			}
			quantity := min(blockSize, room)
			class := BlockNeutral
			if quantity == blockSize {
				class = BlockDecreasing
			}
			successors = append(successors, p.successor(Move{
				From: from, To: to, Colour: colour, Quantity: quantity,
			}, class))
		}
	}
	return successors
}

func (p *Position) successor(m Move, class MoveClass) Successor {
	result := p.Clone()
	result.tubes[m.From].pourOut(m.Quantity)
	result.tubes[m.To].pourIn(m.Colour, m.Quantity)
	return Successor{Move: m, Class: class, Result: result.Canonicalize()}
}

// Apply validates the move against p and returns the resulting position,
// without canonicalizing, so tube indices keep their meaning. This is the
// entry point for manual play; the solver goes through Successors instead.
func (p *Position) Apply(m Move) (*Position, error) {
	if m.From < 0 || m.From >= len(p.tubes) || m.To < 0 || m.To >= len(p.tubes) || m.From == m.To {
		return nil, errors.Errorf("move %s: tube indices out of range", m)
	}
	if m.Quantity < 1 {
		return nil, errors.Errorf("move %s: quantity must be positive", m)
	}
	colour, blockSize := p.tubes[m.From].TopBlock()
	if blockSize == 0 {
		return nil, errors.Errorf("move %s: source tube is empty", m)
	}
	if colour != m.Colour {
		return nil, errors.Errorf("move %s: source top colour is %s", m, ColourName(colour))
	}
	if m.Quantity > blockSize {
		return nil, errors.Errorf("move %s: source top block only has %d", m, blockSize)
	}
	toTube := p.tubes[m.To]
	if !toTube.IsEmpty() {
		toColour, _ := toTube.TopBlock()
		if toColour != colour {
			return nil, errors.Errorf("move %s: destination top colour is %s", m, ColourName(toColour))
		}
	}
	if room := p.capacity - toTube.FillLen(); m.Quantity > room {
		return nil, errors.Errorf("move %s: destination only has room for %d", m, room)
	}
	result := p.Clone()
	result.tubes[m.From].pourOut(m.Quantity)
	result.tubes[m.To].pourIn(m.Colour, m.Quantity)
	return result, nil
}

// PourMove builds the pour-maximal move from one tube to another on p:
// quantity min(top block size, destination room). It fails if no legal move
// exists for the pair.
func (p *Position) PourMove(from, to int) (Move, error) {
	var m Move
	if from < 0 || from >= len(p.tubes) || to < 0 || to >= len(p.tubes) || from == to {
		return m, errors.Errorf("no move from tube %d to tube %d", from, to)
	}
	colour, blockSize := p.tubes[from].TopBlock()
	if blockSize == 0 {
		return m, errors.Errorf("tube %d is empty", from)
	}
	room := p.capacity - p.tubes[to].FillLen()
	if !p.tubes[to].IsEmpty() {
		toColour, _ := p.tubes[to].TopBlock()
		if toColour != colour {
			return m, errors.Errorf("tube %d's top colour %s does not match %s",
				to, ColourName(toColour), ColourName(colour))
		}
	}
	if room == 0 {
		return m, errors.Errorf("tube %d is full", to)
	}
	return Move{From: from, To: to, Colour: colour, Quantity: min(blockSize, room)}, nil
}

package state

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// colourNames assigns the well-known colour names, in id order starting at 1.
// Puzzles with more colours than this can use the numeric "c<id>" form.
var colourNames = []string{
	"red", "blue", "green", "purple", "orange", "yellow",
	"pink", "grey", "cyan", "lime", "brown", "magenta",
}

var nameToColour = func() map[string]Colour {
	m := make(map[string]Colour, len(colourNames))
	for i, name := range colourNames {
		m[name] = Colour(i + 1)
	}
	return m
}()

// ColourName returns the display name of a colour: one of the well-known
// names, or "c<id>" beyond those.
func ColourName(c Colour) string {
	if c == NoColour {
		return "empty"
	}
	if int(c) <= len(colourNames) {
		return colourNames[c-1]
	}
	return fmt.Sprintf("c%d", c)
}

// ParseColour resolves a colour token: a well-known name, "c<id>", or "empty".
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseColour(token string) (Colour, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" || token == "empty" {
		return NoColour, nil
	}
	if c, ok := nameToColour[token]; ok {
		return c, nil
	}
	if rest, ok := strings.CutPrefix(token, "c"); ok {
		id, err := strconv.Atoi(rest)
		if err == nil && id >= 1 && id <= 255 {
			return Colour(id), nil
		}
	}
	return NoColour, errors.Errorf("unknown colour %q", token)
}

// ParseTube parses one tube's contents: comma-separated colour tokens listed
// top-to-bottom, the way a player reads a tube off the screen. An empty string
// is an empty tube. "empty" tokens at the start stand for unfilled cells and
// are dropped; below the first colour they would be holes and are rejected.
//
// The returned cells are bottom-to-top and unpadded.
func ParseTube(contents string) ([]Colour, error) {
	contents = strings.TrimSpace(contents)
	if contents == "" {
		return nil, nil
	}
	tokens := strings.Split(contents, ",")
	cells := make([]Colour, 0, len(tokens))
	// Input is top-down; fill cells bottom-up.
	for i := len(tokens) - 1; i >= 0; i-- {
		c, err := ParseColour(tokens[i])
		if err != nil {
			return nil, err
		}
		if c == NoColour {
			// Only leading (top-side) empties are allowed.
			for j := i - 1; j >= 0; j-- {
				if c2, err := ParseColour(tokens[j]); err != nil {
					return nil, err
				} else if c2 != NoColour {
					return nil, errors.Wrapf(ErrInvalidPuzzle, "tube %q has an empty cell below a colour", contents)
				}
			}
			break
		}
		cells = append(cells, c)
	}
	return cells, nil
}

// Parse builds a validated Position from per-tube content strings (see
// ParseTube) and the uniform capacity. It fails with ErrInvalidPuzzle as the
// cause when the contents do not form a playable puzzle.
func Parse(capacity int, tubes []string) (*Position, error) {
	cells := make([][]Colour, len(tubes))
	for i, contents := range tubes {
		tube, err := ParseTube(contents)
		if err != nil {
			return nil, errors.WithMessagef(err, "tube %d", i+1)
		}
		cells[i] = tube
	}
	p, err := New(capacity, cells)
	if err != nil {
		return nil, err
	}
	if err = p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

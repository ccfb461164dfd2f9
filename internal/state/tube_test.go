package state_test

import (
	"testing"

	. "github.com/colourflow/watersort/internal/state"
	"github.com/stretchr/testify/assert"
)

func TestTube(t *testing.T) {
	red, blue := Colour(1), Colour(2)

	tests := []struct {
		name         string
		tube         Tube
		fill         int
		blocks       int
		topColour    Colour
		topSize      int
		singleColour bool
	}{
		{"empty", Tube{0, 0, 0, 0}, 0, 0, NoColour, 0, false},
		{"single colour partial", Tube{red, red, 0, 0}, 2, 1, red, 2, true},
		{"single colour full", Tube{blue, blue, blue, blue}, 4, 1, blue, 4, true},
		{"two blocks", Tube{red, red, blue, 0}, 3, 2, blue, 1, false},
		{"alternating", Tube{red, blue, red, blue}, 4, 4, blue, 1, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.fill, test.tube.FillLen())
			assert.Equal(t, test.blocks, test.tube.Blocks())
			colour, size := test.tube.TopBlock()
			assert.Equal(t, test.topColour, colour)
			assert.Equal(t, test.topSize, size)
			assert.Equal(t, test.singleColour, test.tube.SingleColour())
			assert.Equal(t, test.fill == 0, test.tube.IsEmpty())
			assert.Equal(t, test.fill == len(test.tube), test.tube.IsFull())
		})
	}
}

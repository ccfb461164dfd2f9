package state_test

import (
	"testing"

	. "github.com/colourflow/watersort/internal/state"
	. "github.com/colourflow/watersort/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTube(t *testing.T) {
	tests := []struct {
		contents string
		want     []Colour
	}{
		// Input is top-to-bottom, cells come back bottom-to-top.
		{"red, red, blue, green", []Colour{3, 2, 1, 1}},
		{"empty, red, blue, green", []Colour{3, 2, 1}},
		{"blue, green", []Colour{3, 2}},
		{"RED, rEd, Blue    ,    Green      ", []Colour{3, 2, 1, 1}},
		{"", nil},
		{"c7, c7, red", []Colour{1, 7, 7}},
	}
	for _, test := range tests {
		got, err := ParseTube(test.contents)
		require.NoErrorf(t, err, "ParseTube(%q)", test.contents)
		assert.Equalf(t, test.want, got, "ParseTube(%q)", test.contents)
	}

	// Unknown colour names and holes are rejected.
	_, err := ParseTube("blue, green, unknown")
	assert.Error(t, err)
	_, err = ParseTube("red, empty, blue")
	assert.ErrorIs(t, err, ErrInvalidPuzzle)
}

func TestValidate(t *testing.T) {
	// Conserved quantities: every colour present must total the capacity.
	p := MustBuild(t, 4, "red, red, red", "blue, blue, blue, blue")
	assert.ErrorIs(t, p.Validate(), ErrInvalidPuzzle)

	p = MustBuild(t, 4, "red, red, red, red", "blue, blue, blue, blue", "")
	assert.NoError(t, p.Validate())
}

func TestParse(t *testing.T) {
	// Counts don't add up to 4 objects per colour.
	_, err := Parse(4, []string{"red, blue, green, purple", "green, blue, red, red"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPuzzle)

	p, err := Parse(2, []string{"red, blue", "blue, red", ""})
	require.NoError(t, err)
	assert.Equal(t, 3, p.NumTubes())
	assert.Equal(t, 2, p.Capacity())
	assert.Equal(t, 2, p.NumColours())

	// Over-filled tube.
	_, err = Parse(2, []string{"red, red, red"})
	assert.ErrorIs(t, err, ErrInvalidPuzzle)
}

func TestBlockCount(t *testing.T) {
	tests := []struct {
		tubes []string
		want  int
	}{
		{[]string{"red, blue, red, blue", "blue, red, blue, red"}, 8},
		{[]string{"red, red, red, red", "blue, blue, blue, blue"}, 2},
		{[]string{"red, red", "blue, blue", "red, blue, blue", "red"}, 5},
		{[]string{""}, 0},
	}
	for _, test := range tests {
		p := MustBuild(t, 4, test.tubes...)
		assert.Equalf(t, test.want, p.BlockCount(), "BlockCount(%v)", test.tubes)
	}
}

func TestIsSolved(t *testing.T) {
	assert.True(t, MustBuild(t, 4, "red, red, red, red", "blue, blue, blue, blue", "").IsSolved())
	assert.True(t, MustBuild(t, 4, "", "").IsSolved())
	// Single colour but not full.
	assert.False(t, MustBuild(t, 4, "red, red, red", "").IsSolved())
	// Full but mixed.
	assert.False(t, MustBuild(t, 4, "red, red, red, blue", "").IsSolved())
}

func TestCanonicalize(t *testing.T) {
	a := MustBuild(t, 4, "red, red", "blue, blue", "", "blue, red")
	b := MustBuild(t, 4, "", "blue, red", "blue, blue", "red, red")

	ca := a.Clone().Canonicalize()
	cb := b.Clone().Canonicalize()
	assert.True(t, ca.Equal(cb), "permuted positions must canonicalize equal:\n%v\nvs\n%v", ca, cb)
	assert.Equal(t, ca.Key(), cb.Key())

	// Idempotent.
	assert.True(t, ca.Equal(ca.Clone().Canonicalize()))

	// Empty tubes sort first.
	assert.True(t, ca.Tube(0).IsEmpty())
}

func TestKey(t *testing.T) {
	a := MustBuild(t, 4, "red, red", "blue, blue")
	b := MustBuild(t, 4, "red, red", "blue, blue, blue")
	c := MustBuild(t, 4, "red, red", "blue, blue")
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, a.Key(), c.Key())

	// Keys are compact: 4 bits per cell with few colours.
	assert.Len(t, a.Key(), 4)
}

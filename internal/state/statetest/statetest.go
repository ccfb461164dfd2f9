// Package statetest provides helpers to build positions in tests.
package statetest

import (
	"testing"

	"github.com/colourflow/watersort/internal/state"
)

// MustParse builds a validated position from per-tube content strings, failing
// the test on error.
func MustParse(t *testing.T, capacity int, tubes ...string) *state.Position {
	t.Helper()
	p, err := state.Parse(capacity, tubes)
	if err != nil {
		t.Fatalf("failed to build position from %v: %+v", tubes, err)
	}
	return p
}

// MustBuild is like MustParse but skips the conserved-quantity validation, for
// tests that exercise intermediate or deliberately inconsistent states.
func MustBuild(t *testing.T, capacity int, tubes ...string) *state.Position {
	t.Helper()
	cells := make([][]state.Colour, len(tubes))
	for i, contents := range tubes {
		tube, err := state.ParseTube(contents)
		if err != nil {
			t.Fatalf("failed to parse tube %q: %+v", contents, err)
		}
		cells[i] = tube
	}
	p, err := state.New(capacity, cells)
	if err != nil {
		t.Fatalf("failed to build position from %v: %+v", tubes, err)
	}
	return p
}

package cli_test

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/colourflow/watersort/internal/state"
	"github.com/colourflow/watersort/internal/state/statetest"
	"github.com/colourflow/watersort/internal/ui/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture redirects stdout around fn. fn runs on its own goroutine with a
// deadline, so a rendering bug that loops forever fails the test instead of
// hanging it.
func capture(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		os.Stdout = old
		t.Fatal("rendering did not return within 5s")
	}

	os.Stdout = old
	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestPrintPosition(t *testing.T) {
	ui := cli.New(false)
	pos := statetest.MustParse(t, 2, "purple, red", "red, purple", "")

	out := capture(t, func() { ui.PrintPosition(pos) })
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	// Cells are padded to the longest colour name present ("purple").
	assert.Equal(t, "  1: | red  |purple|", lines[0])
	assert.Equal(t, "  2: |purple| red  |", lines[1])
	assert.Equal(t, "  3: |  ·  |  ·  |", lines[2])
}

func TestPrintPositionManyColours(t *testing.T) {
	// Every cell colour distinct, including the numeric fallback names.
	ui := cli.New(false)
	pos := statetest.MustBuild(t, 4, "red, blue, green, purple", "c20, c21", "")

	out := capture(t, func() { ui.PrintPosition(pos) })
	assert.Contains(t, out, "purple")
	assert.Contains(t, out, "c20")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestPrintMoves(t *testing.T) {
	ui := cli.New(false)
	out := capture(t, func() {
		ui.PrintMoves([]state.Move{
			{From: 0, To: 2, Colour: 1, Quantity: 2},
			{From: 3, To: 1, Colour: 2, Quantity: 1},
		})
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "  1. 1 -> 3: red x 2", lines[0])
	assert.Equal(t, "  2. 4 -> 2: blue x 1", lines[1])
}

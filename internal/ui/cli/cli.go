// Package cli implements the terminal front-end: puzzle entry, manual play and
// the solve command. It only formats what the solver returns; all puzzle logic
// lives in the state and solver packages.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/colourflow/watersort/internal/generics"
	"github.com/colourflow/watersort/internal/parameters"
	"github.com/colourflow/watersort/internal/solver"
	"github.com/colourflow/watersort/internal/state"
	"github.com/colourflow/watersort/internal/ui/spinning"
	"github.com/pkg/errors"
	"golang.org/x/term"
	"k8s.io/klog/v2"
)

// UI drives the interactive terminal session.
type UI struct {
	colour bool
	reader *bufio.Reader
}

// New creates a UI reading from stdin. colour disables/enables cell styling.
func New(colour bool) *UI {
	return &UI{
		colour: colour,
		reader: bufio.NewReader(os.Stdin),
	}
}

// ansi cell styles per colour id, cycled past the palette's end.
var cellPalette = []string{
	"9",   // red
	"12",  // blue
	"10",  // green
	"13",  // purple
	"208", // orange
	"11",  // yellow
	"218", // pink
	"245", // grey
	"14",  // cyan
	"118", // lime
	"130", // brown
	"201", // magenta
}

func (ui *UI) cellStyle(c state.Colour) lipgloss.Style {
	code := cellPalette[(int(c)-1)%len(cellPalette)]
	return lipgloss.NewStyle().Foreground(lipgloss.Color(code)).Bold(true)
}

// renderCell returns a fixed-width cell for one tube position.
func (ui *UI) renderCell(c state.Colour, width int) string {
	if c == state.NoColour {
		return centerString("·", width)
	}
	name := centerString(state.ColourName(c), width)
	if !ui.colour {
		return name
	}
	return ui.cellStyle(c).Render(name)
}

// PrintPosition writes the position one tube per line, bottom-to-top,
// 1-indexed the way moves are entered.
func (ui *UI) PrintPosition(p *state.Position) {
	// Width fits the longest colour name actually present.
	width := 2
	for i := 0; i < p.NumTubes(); i++ {
		for _, c := range p.Tube(i) {
			if c == state.NoColour {
				break
			}
			if n := len(state.ColourName(c)); n > width {
				width = n
			}
		}
	}
	for i := 0; i < p.NumTubes(); i++ {
		t := p.Tube(i)
		cells := generics.SliceMap([]state.Colour(t), func(c state.Colour) string {
			return ui.renderCell(c, width)
		})
		fmt.Printf("%3d: |%s|\n", i+1, strings.Join(cells, "|"))
	}
}

// PrintMoves writes a numbered move list.
func (ui *UI) PrintMoves(moves []state.Move) {
	for i, m := range moves {
		fmt.Printf("%3d. %d -> %d: %s x %d\n", i+1, m.From+1, m.To+1, state.ColourName(m.Colour), m.Quantity)
	}
}

// PrintBanner writes a centered, highlighted one-line banner.
func (ui *UI) PrintBanner(text string) {
	rendered := text
	if ui.colour {
		rendered = lipgloss.NewStyle().
			Background(lipgloss.Color("13")).
			Foreground(lipgloss.Color("0")).
			Padding(0, 2).
			Render(text)
	}
	printCentered(rendered)
}

func printCentered(s string) {
	terminalWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		terminalWidth = 0
	}
	indent := (terminalWidth - lipgloss.Width(s)) / 2
	if indent < 0 {
		indent = 0
	}
	fmt.Printf("%s%s\n", strings.Repeat(" ", indent), s)
}

func centerString(s string, fit int) string {
	if len(s) >= fit {
		return s
	}
	marginLeft := (fit - len(s)) / 2
	marginRight := fit - len(s) - marginLeft
	return strings.Repeat(" ", marginLeft) + s + strings.Repeat(" ", marginRight)
}

// errRestart signals the play loop to re-enter setup.
var errRestart = errors.New("restart")

// Run loops over setup + play until the user quits.
func (ui *UI) Run(ctx context.Context) error {
	for {
		pos, err := ui.Setup()
		if err != nil {
			return err
		}
		err = ui.Play(ctx, pos)
		if errors.Is(err, errRestart) {
			continue
		}
		return err
	}
}

// Setup prompts for the puzzle: capacity, tube count and per-tube contents
// (colour names top-to-bottom, blank for an empty tube). It re-prompts until
// the entered puzzle validates.
func (ui *UI) Setup() (*state.Position, error) {
	for {
		capacity, err := ui.readInt("Enter the tube capacity: ")
		if err != nil {
			return nil, err
		}
		numTubes, err := ui.readInt("Enter the total number of tubes in the game: ")
		if err != nil {
			return nil, err
		}
		tubes := make([]string, numTubes)
		for i := range tubes {
			line, err := ui.readLine(fmt.Sprintf("Enter the contents of tube %d, top to bottom (blank if empty): ", i+1))
			if err != nil {
				return nil, err
			}
			tubes[i] = line
		}
		pos, err := state.Parse(capacity, tubes)
		if err != nil {
			fmt.Printf("That is not a playable puzzle: %v\n\n", err)
			continue
		}
		fmt.Println("\nStarting state of the game:")
		ui.PrintPosition(pos)
		return pos, nil
	}
}

// Play runs the manual-play command loop on the given position.
func (ui *UI) Play(ctx context.Context, pos *state.Position) error {
	fmt.Println(`Commands: "<from> <to>" pours, "solve [key=value,...]", "show", "restart", "quit".`)
	for {
		if pos.IsSolved() {
			ui.PrintBanner("*** SOLVED! Congratulations! ***")
			return nil
		}
		line, err := ui.readLine("> ")
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit":
			return nil
		case "restart":
			return errRestart
		case "show":
			ui.PrintPosition(pos)
		case "solve":
			config := ""
			if len(fields) > 1 {
				config = fields[1]
			}
			if err := ui.Solve(ctx, pos, config); err != nil {
				return err
			}
		default:
			next, err := ui.manualMove(pos, fields)
			if err != nil {
				fmt.Printf("Cannot pour: %v\n", err)
				continue
			}
			pos = next
			ui.PrintPosition(pos)
		}
	}
}

// manualMove parses "<from> <to>" (1-indexed) and applies the pour-maximal
// move for the pair.
func (ui *UI) manualMove(pos *state.Position, fields []string) (*state.Position, error) {
	if len(fields) != 2 {
		return nil, errors.Errorf("expected \"<from> <to>\", got %q", strings.Join(fields, " "))
	}
	from, err1 := strconv.Atoi(fields[0])
	to, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return nil, errors.Errorf("expected two tube numbers, got %q", strings.Join(fields, " "))
	}
	move, err := pos.PourMove(from-1, to-1)
	if err != nil {
		return nil, err
	}
	return pos.Apply(move)
}

// Solve runs the engine on the position and prints the outcome. config is an
// optional solver parameter string, e.g. "workers=4,seed=7".
func (ui *UI) Solve(ctx context.Context, pos *state.Position, config string) error {
	s, err := solver.NewFromParams(parameters.NewFromConfigString(config))
	if err != nil {
		fmt.Printf("Bad solver configuration: %v\n", err)
		return nil
	}
	spinner := spinning.New(ctx)
	result, err := s.Solve(ctx, pos)
	spinner.Done()
	if err != nil {
		return errors.WithMessage(err, "solver failed")
	}
	klog.V(1).Infof("solve stats: %+v", result.Stats)
	switch result.Outcome {
	case solver.Solved:
		fmt.Printf("Solvable in %d moves (%d block-decreasing + %d block-neutral):\n",
			len(result.Moves), len(result.Moves)-result.NeutralMoves, result.NeutralMoves)
		fmt.Println("Moves refer to the sorted form of each intermediate position.")
		ui.PrintMoves(result.Moves)
	case solver.ProvenUnsolvable:
		fmt.Println("This puzzle is unsolvable.")
	case solver.Aborted:
		fmt.Printf("Search aborted: %s.\n", result.Reason)
	case solver.ResourceExhausted:
		fmt.Printf("Search gave up: retained-state ceiling reached after %d positions.\n",
			result.Stats.Retained)
	}
	return nil
}

func (ui *UI) readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := ui.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (ui *UI) readInt(prompt string) (int, error) {
	for {
		line, err := ui.readLine(prompt)
		if err != nil {
			return 0, err
		}
		value, err := strconv.Atoi(line)
		if err != nil || value < 1 {
			fmt.Printf("Unable to parse %q to a positive number\n", line)
			continue
		}
		return value, nil
	}
}

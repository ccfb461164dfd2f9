// watersort finds optimal solutions to colour-sort ("water sort") puzzles.
//
// Default mode reads a puzzle from -file (or stdin with -file=-) and solves
// it. -play starts the interactive shell; -generate scrambles a solvable
// puzzle and solves it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/colourflow/watersort/internal/generate"
	"github.com/colourflow/watersort/internal/profilers"
	"github.com/colourflow/watersort/internal/state"
	"github.com/colourflow/watersort/internal/ui/cli"
	"github.com/colourflow/watersort/internal/ui/spinning"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagPlay     = flag.Bool("play", false, "Interactive shell: enter a puzzle, pour manually, ask for a solution.")
	flagGenerate = flag.Bool("generate", false, "Generate a solvable puzzle and solve it.")
	flagFile     = flag.String("file", "", "Puzzle file: one tube per line, colour names top to bottom, blank line for an empty tube. \"-\" reads stdin.")
	flagCapacity = flag.Int("capacity", 4, "Tube capacity.")
	flagColours  = flag.Int("colours", 4, "Number of colours, for -generate.")
	flagSpares   = flag.Int("spares", 2, "Number of spare empty tubes, for -generate.")
	flagScramble = flag.Int("scramble", 30, "Number of reverse pours used by -generate.")
	flagSeed     = flag.Uint64("seed", 0, "Seed for -generate. 0 picks one from the clock.")
	flagConfig   = flag.String("config", "", "Solver parameters, e.g. \"workers=4,seed=7,exact\".")
	flagNoColour = flag.Bool("no_colour", false, "Disable coloured output.")

	globalCtx = context.Background()
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagPlay && *flagGenerate {
		exceptions.Panicf("-play and -generate cannot be used together")
	}
	if *flagCapacity < 1 {
		exceptions.Panicf("invalid -capacity=%d", *flagCapacity)
	}

	// Capture Control+C.
	var cancel func()
	globalCtx, cancel = context.WithCancel(globalCtx)
	spinning.SafeInterrupt(cancel, 3*time.Second)
	defer cancel()

	profilers.Setup(globalCtx)
	defer profilers.OnQuit()

	ui := cli.New(!*flagNoColour)
	switch {
	case *flagPlay:
		must.M(ui.Run(globalCtx))
	case *flagGenerate:
		runGenerate(ui)
	default:
		runSolve(ui)
	}
}

// runSolve reads the puzzle from -file and prints the solution.
func runSolve(ui *cli.UI) {
	if *flagFile == "" {
		exceptions.Panicf("need a puzzle: pass -file (or \"-file -\" for stdin), or use -play / -generate")
	}
	var contents []byte
	if *flagFile == "-" {
		contents = must.M1(io.ReadAll(os.Stdin))
	} else {
		contents = must.M1(os.ReadFile(*flagFile))
	}
	lines := strings.Split(strings.TrimRight(string(contents), "\n"), "\n")
	pos, err := state.Parse(*flagCapacity, lines)
	if err != nil {
		klog.Exitf("Not a playable puzzle: %v", err)
	}
	fmt.Println("Puzzle:")
	ui.PrintPosition(pos)
	fmt.Println()
	solve(ui, pos)
}

// runGenerate scrambles a solvable puzzle, prints it, then solves it.
func runGenerate(ui *cli.UI) {
	seed := *flagSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	klog.V(1).Infof("Generating with seed %d", seed)
	rng := rand.New(rand.NewPCG(seed, seed))
	pos := generate.Scramble(*flagCapacity, *flagColours, *flagSpares, *flagScramble, rng)
	fmt.Printf("Generated puzzle (capacity %d, %d colours, %d spares, seed %d):\n",
		*flagCapacity, *flagColours, *flagSpares, seed)
	ui.PrintPosition(pos)
	fmt.Println()
	solve(ui, pos)
}

func solve(ui *cli.UI, pos *state.Position) {
	must.M(ui.Solve(globalCtx, pos, *flagConfig))
}

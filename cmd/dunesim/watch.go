package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/dunesim/internal/platform/tui"
	"github.com/vovakirdan/dunesim/internal/scenario"
	"github.com/vovakirdan/dunesim/internal/sim"
	"github.com/vovakirdan/dunesim/internal/storage"
)

var flagEndless bool

var watchCmd = &cobra.Command{
	Use:   "watch <scenario>",
	Short: "Watch a scenario in the terminal",
	Long: `Run a scenario and watch it unfold in the terminal.

The clock stops at the scenario's tick limit unless --endless is given.

Controls:
  Space/P      - Pause
  .            - Step one tick
  +/-          - Faster/slower
  F            - Cycle fog of war (all, then each player)
  Arrows/hjkl  - Scroll the map
  Ctrl+S       - Save the game
  ?            - Toggle help
  Q/Ctrl+C     - Quit

Examples:
  dunesim watch skirmish
  dunesim watch harvest --tps 64
  dunesim watch siege --seed 12 --endless`,
	Args: cobra.ExactArgs(1),
	Run:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&flagEndless, "endless", false, "Keep running past the scenario's tick limit")
}

func runWatch(cmd *cobra.Command, args []string) {
	id := args[0]

	// Check if scenario exists
	if !scenario.Exists(id) {
		fmt.Fprintf(os.Stderr, "Error: unknown scenario %q\n", id)
		fmt.Fprintln(os.Stderr, "Run 'dunesim list' to see available scenarios.")
		os.Exit(1)
	}

	logger := newLogger()
	s, w, err := scenario.Start(id, simOptions(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating world: %v\n", err)
		os.Exit(1)
	}

	maxTicks := s.Info().Ticks
	if flagEndless {
		maxTicks = 0
	}
	watch(id, w, maxTicks)
}

// watch runs the spectator on w until the user quits.
func watch(id string, w *sim.World, maxTicks int) {
	width, height := 80, 24 // Defaults
	if tw, th, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = tw
		height = th
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		// Continue without storage - saving is disabled
		store = nil
	}

	runErr := tui.Run(w, store, tui.SpectatorConfig{
		Scenario: id,
		TickRate: flagTPS,
		MaxTicks: maxTicks,
		Width:    width,
		Height:   height,
	})

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running spectator: %v\n", runErr)
		os.Exit(1)
	}
}

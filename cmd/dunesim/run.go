package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/dunesim/internal/lockstep"
	"github.com/vovakirdan/dunesim/internal/replay"
	"github.com/vovakirdan/dunesim/internal/scenario"
	"github.com/vovakirdan/dunesim/internal/sim"
	"github.com/vovakirdan/dunesim/internal/storage"
)

var (
	flagTicks      int
	flagSaveReplay string
	flagSaveGame   string
	flagLockstep   bool
)

var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Simulate a scenario headless",
	Long: `Simulate a scenario as fast as possible and print the final state hash.

The run is stored in the database so the picker can show recent results.
With --save-replay the command log is stored as a replay that 'dunesim
verify' can check later. With --lockstep every player gets its own replica
and the replicas exchange their commands through a lockstep hub; the run
fails if the replicas end in different states.

Examples:
  dunesim run skirmish
  dunesim run skirmish --seed 7 --ticks 5000
  dunesim run harvest --save-replay harvest-nightly
  dunesim run siege --lockstep`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagTicks, "ticks", 0, "Ticks to simulate (0 = scenario default)")
	runCmd.Flags().StringVar(&flagSaveReplay, "save-replay", "", "Store the run as a replay under this name")
	runCmd.Flags().StringVar(&flagSaveGame, "save", "", "Store the final state as a save game under this name")
	runCmd.Flags().BoolVar(&flagLockstep, "lockstep", false, "Run one replica per player through a lockstep hub")
}

func runRun(cmd *cobra.Command, args []string) {
	id := args[0]

	s, err := scenario.Create(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'dunesim list' to see available scenarios.")
		os.Exit(1)
	}
	info := s.Info()
	ticks := flagTicks
	if ticks <= 0 {
		ticks = info.Ticks
	}

	logger := newLogger()
	opts := simOptions(logger)
	if flagLockstep && flagSaveReplay != "" {
		fmt.Fprintln(os.Stderr, "Error: --save-replay cannot be combined with --lockstep")
		os.Exit(1)
	}

	started := time.Now()
	var (
		w   *sim.World
		rec *replay.Record
	)
	if flagLockstep {
		w, err = runLockstep(id, opts, ticks, logger)
	} else {
		var r *replay.Recorder
		r, err = replay.Start(id, opts)
		if err == nil {
			r.Run(ticks)
			w, rec = r.World(), r.Record()
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	elapsed := time.Since(started)

	seed := opts.Seed
	if seed == 0 {
		seed = info.Seed
	}
	result := summarize(id, seed, w, elapsed)
	printResult(result, w)

	// Results are kept when the database is available, the run itself
	// does not depend on it
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open database, run not stored", "error", err)
		return
	}
	defer store.Close()

	if _, err := store.SaveRun(result); err != nil {
		logger.Warn("could not store run", "error", err)
	}

	if flagSaveReplay != "" {
		data, err := rec.Encode()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding replay: %v\n", err)
			os.Exit(1)
		}
		if _, err := store.SaveReplay(storage.ReplayInfo{
			Name:      flagSaveReplay,
			Scenario:  rec.Scenario,
			Seed:      rec.Seed,
			Ticks:     rec.Ticks,
			FinalHash: rec.FinalHash,
			Commands:  len(rec.Commands),
		}, data); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving replay: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Replay saved as %q\n", flagSaveReplay)
	}

	if flagSaveGame != "" {
		if err := saveGame(store, flagSaveGame, id, w); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving game: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Game saved as %q\n", flagSaveGame)
	}
}

// runLockstep creates one replica per scenario player and drives them all
// through a hub. It returns the first replica after checking that every
// replica reached the same state.
func runLockstep(id string, opts sim.Options, ticks int, logger *log.Logger) (*sim.World, error) {
	_, first, err := scenario.Start(id, opts)
	if err != nil {
		return nil, err
	}

	hub := lockstep.NewHub(lockstep.DefaultConfig(first.Rules().Game), logger)
	for i, p := range first.Players() {
		w := first
		if i > 0 {
			if _, w, err = scenario.Start(id, opts); err != nil {
				return nil, err
			}
		}
		if _, err := hub.Join(p.ID, w); err != nil {
			return nil, err
		}
	}

	logger.Info("lockstep run", "scenario", id, "peers", len(hub.Peers()), "ticks", ticks)
	if err := hub.Run(ticks); err != nil {
		return nil, err
	}

	want := first.HashHex()
	for _, p := range hub.Peers() {
		if got := p.World().HashHex(); got != want {
			return nil, fmt.Errorf("player %d ended in state %s, expected %s", p.Player(), got, want)
		}
		if d := p.World().Desync(); d != nil {
			return nil, fmt.Errorf("player %d reported a desync at tick %d", p.Player(), d.Tick)
		}
	}
	return first, nil
}

// summarize collects the stored facts about a finished run.
func summarize(id string, seed uint32, w *sim.World, elapsed time.Duration) storage.RunResult {
	r := storage.RunResult{
		Scenario: id,
		Seed:     seed,
		Ticks:    int(w.CurrentTick()),
		Hash:     w.HashHex(),
		Desync:   w.Desync() != nil,
		Objects:  len(w.Objects()),
		Duration: elapsed,
	}
	for _, p := range w.Players() {
		r.Kills += p.Stats.Kills
		r.Harvested += p.Stats.SpiceHarvested.Floor()
	}
	return r
}

func printResult(r storage.RunResult, w *sim.World) {
	fmt.Printf("Scenario:  %s\n", r.Scenario)
	fmt.Printf("Seed:      %d\n", r.Seed)
	fmt.Printf("Ticks:     %d (%s)\n", r.Ticks, r.Duration.Round(time.Millisecond))
	fmt.Printf("Objects:   %d\n", r.Objects)
	fmt.Println()

	fmt.Printf("  %-6s  %-8s  %-6s  %-6s  %s\n", "Player", "Credits", "Built", "Kills", "Spice")
	fmt.Printf("  %-6s  %-8s  %-6s  %-6s  %s\n", "------", "-------", "-----", "-----", "-----")
	for _, p := range w.Players() {
		built := p.Stats.UnitsBuilt + p.Stats.StructuresBuilt
		fmt.Printf("  %-6d  %-8d  %-6d  %-6d  %d\n", p.ID, p.Credits.Floor(), built, p.Stats.Kills, p.Stats.SpiceHarvested.Floor())
	}
	fmt.Println()

	if d := w.Desync(); d != nil {
		fmt.Printf("DESYNC at tick %d\n", d.Tick)
	}
	fmt.Printf("Hash:      %s\n", r.Hash)
}

// saveGame stores the current state of w under name.
func saveGame(store *storage.Store, name, scenarioID string, w *sim.World) error {
	data, err := w.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = store.SaveGame(storage.SaveInfo{
		Name:     name,
		Scenario: scenarioID,
		Tick:     w.CurrentTick(),
		Seed:     w.Seed(),
		Hash:     w.HashHex(),
	}, data)
	return err
}

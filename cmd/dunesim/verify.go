package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/dunesim/internal/replay"
	"github.com/vovakirdan/dunesim/internal/storage"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <replay>",
	Short: "Re-simulate a stored replay",
	Long: `Load a replay from the database, simulate it again from its scenario and
seed, and compare the final state hash with the recorded one.

The command exits with status 1 when the states differ, which means the
simulation is no longer deterministic or the rules changed.

Examples:
  dunesim verify nightly
  dunesim verify nightly --rules ./rules.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runVerify,
}

func runVerify(_ *cobra.Command, args []string) {
	name := args[0]
	logger := newLogger()
	opts := simOptions(logger)

	store := openStore()
	info, data, err := store.LoadReplay(name)
	store.Close()
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "Error: no replay named %q\n", name)
		fmt.Fprintln(os.Stderr, "Run 'dunesim replays' to see stored replays.")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading replay: %v\n", err)
		os.Exit(1)
	}

	rec, err := replay.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding replay: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Verifying %q: %s, seed %d, %d ticks, %d commands\n",
		info.Name, rec.Scenario, rec.Seed, rec.Ticks, len(rec.Commands))

	res, err := replay.Verify(rec, opts)
	if res.Desync != nil {
		fmt.Printf("Desync at tick %d (detected at %d, player %d)\n", res.Desync.Tick, res.Desync.DetectedAt, res.Desync.Player)
	}
	switch {
	case errors.Is(err, replay.ErrHashMismatch):
		fmt.Printf("Expected:  %s\n", rec.FinalHash)
		fmt.Printf("Got:       %s\n", res.Hash)
		fmt.Println("FAILED")
		os.Exit(1)
	case errors.Is(err, replay.ErrRulesMismatch):
		fmt.Fprintln(os.Stderr, "Error: the replay was recorded with different rules (see --rules)")
		os.Exit(1)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Hash:      %s\n", res.Hash)
	fmt.Println("OK")
}

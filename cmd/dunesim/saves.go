package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/dunesim/internal/scenario"
	"github.com/vovakirdan/dunesim/internal/sim"
	"github.com/vovakirdan/dunesim/internal/storage"
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "List save games",
	Long: `List the save games in the database, newest first.

Games are saved with Ctrl+S while watching or with 'dunesim run --save'.

Examples:
  dunesim saves
  dunesim saves resume skirmish-000420
  dunesim saves delete skirmish-000420`,
	Args: cobra.NoArgs,
	Run:  runSaves,
}

var savesResumeCmd = &cobra.Command{
	Use:   "resume <name>",
	Short: "Watch a save game from where it was saved",
	Args:  cobra.ExactArgs(1),
	Run:   runSavesResume,
}

var savesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a save game",
	Args:  cobra.ExactArgs(1),
	Run:   runSavesDelete,
}

func init() {
	savesResumeCmd.Flags().BoolVar(&flagEndless, "endless", false, "Keep running past the scenario's tick limit")

	savesCmd.AddCommand(savesResumeCmd)
	savesCmd.AddCommand(savesDeleteCmd)
}

func runSaves(_ *cobra.Command, _ []string) {
	store := openStore()
	defer store.Close()

	saves, err := store.ListSaves()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving saves: %v\n", err)
		return
	}

	if len(saves) == 0 {
		fmt.Println("No saves yet.")
		fmt.Println()
		fmt.Println("Press Ctrl+S while watching a scenario to save it.")
		return
	}

	maxNameLen := 4 // "Name" header
	for _, s := range saves {
		if len(s.Name) > maxNameLen {
			maxNameLen = len(s.Name)
		}
	}

	fmt.Printf("  %-*s  %-12s  %-8s  %-8s  %s\n", maxNameLen, "Name", "Scenario", "Tick", "Size", "Date")
	fmt.Printf("  %-*s  %-12s  %-8s  %-8s  %s\n", maxNameLen, "----", "--------", "----", "----", "----")
	for _, s := range saves {
		dateStr := s.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-*s  %-12s  %-8d  %-8d  %s\n", maxNameLen, s.Name, s.Scenario, s.Tick, s.Size, dateStr)
	}
}

func runSavesResume(_ *cobra.Command, args []string) {
	name := args[0]
	logger := newLogger()

	store := openStore()
	info, data, err := store.LoadGame(name)
	store.Close()
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "Error: no save named %q\n", name)
		fmt.Fprintln(os.Stderr, "Run 'dunesim saves' to see saved games.")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading save: %v\n", err)
		os.Exit(1)
	}

	w, err := sim.Decode(data, simOptions(logger))
	if errors.Is(err, sim.ErrRulesMismatch) {
		fmt.Fprintf(os.Stderr, "Error: save %q was made with different rules (see --rules)\n", name)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error restoring save: %v\n", err)
		os.Exit(1)
	}
	if got := w.HashHex(); got != info.Hash {
		logger.Warn("restored state differs from the saved hash", "save", name, "expected", info.Hash, "got", got)
	}

	maxTicks := 0
	if s, err := scenario.Create(info.Scenario); err == nil && !flagEndless {
		maxTicks = s.Info().Ticks
	}
	logger.Info("resuming", "save", name, "scenario", info.Scenario, "tick", info.Tick)
	watch(info.Scenario, w, maxTicks)
}

func runSavesDelete(_ *cobra.Command, args []string) {
	name := args[0]

	store := openStore()
	defer store.Close()

	if err := store.DeleteSave(name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted save %q\n", name)
}

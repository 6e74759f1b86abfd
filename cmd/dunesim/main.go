// dunesim runs the deterministic desert-warfare simulation headless, in the
// terminal or over SSH.
//
// Usage:
//
//	dunesim list                 - List available scenarios
//	dunesim run <scenario>       - Simulate a scenario without a UI
//	dunesim watch <scenario>     - Watch a scenario in the terminal
//	dunesim serve                - Start SSH server for remote spectators
//	dunesim saves                - List, resume or delete save games
//	dunesim replays              - List or delete stored replays
//	dunesim verify <replay>      - Re-simulate a stored replay
//
// Global flags:
//
//	--seed <value>       - RNG seed (0 = the scenario's own seed)
//	--tps <rate>         - Spectator ticks per second (default: 16)
//	--rules <path>       - Custom rules YAML
//	--db <path>          - Database path (default: ~/.dunesim/dunesim.db)
//	--log-level <level>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/dunesim/internal/config"
	"github.com/vovakirdan/dunesim/internal/sim"
	"github.com/vovakirdan/dunesim/internal/storage"

	// Import scenarios to register them
	_ "github.com/vovakirdan/dunesim/internal/scenario/builtin"
)

var (
	// Global flags
	flagSeed     uint32
	flagTPS      int
	flagRules    string
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dunesim",
	Short: "dunesim - a deterministic RTS simulation",
	Long: `dunesim simulates desert warfare scenarios tick by tick. Every run is
fully determined by its scenario, seed and command log, so runs can be
replayed and verified bit for bit.

Available commands:
  list     - Show all available scenarios
  run      - Simulate a scenario headless and print its state hash
  watch    - Watch a scenario in the terminal
  serve    - Start SSH server for remote spectators
  saves    - Manage save games
  replays  - Manage stored replays
  verify   - Re-simulate a stored replay and compare hashes

Examples:
  dunesim list
  dunesim run skirmish --ticks 3000 --save-replay nightly
  dunesim watch harvest --tps 32
  dunesim serve --ssh :2222
  dunesim verify nightly`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Uint32Var(&flagSeed, "seed", 0, "RNG seed (0 = scenario default)")
	rootCmd.PersistentFlags().IntVar(&flagTPS, "tps", 16, "Spectator speed (ticks per second)")
	rootCmd.PersistentFlags().StringVar(&flagRules, "rules", "", "Path to custom rules YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.dunesim/dunesim.db", "Path to database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(savesCmd)
	rootCmd.AddCommand(replaysCmd)
	rootCmd.AddCommand(verifyCmd)
}

// newLogger builds the process logger from --log-level.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "dunesim",
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(level)
	return logger
}

// simOptions loads the rules and returns the options every world is
// created with. The map size is filled in by the scenario.
func simOptions(logger *log.Logger) sim.Options {
	rules, err := config.LoadRules(flagRules)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading rules: %v\n", err)
		os.Exit(1)
	}
	return sim.Options{
		Seed:   flagSeed,
		Rules:  rules,
		Logger: logger,
	}
}

// openStore opens the database or exits.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	return store
}

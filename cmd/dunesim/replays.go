package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagReplayScenario string

var replaysCmd = &cobra.Command{
	Use:   "replays",
	Short: "List stored replays",
	Long: `List the replays in the database, newest first.

Replays are recorded with 'dunesim run <scenario> --save-replay <name>'.

Examples:
  dunesim replays
  dunesim replays --scenario skirmish
  dunesim replays delete nightly`,
	Args: cobra.NoArgs,
	Run:  runReplays,
}

var replaysDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a replay",
	Args:  cobra.ExactArgs(1),
	Run:   runReplaysDelete,
}

func init() {
	replaysCmd.Flags().StringVar(&flagReplayScenario, "scenario", "", "Only list replays of this scenario")
	replaysCmd.AddCommand(replaysDeleteCmd)
}

func runReplays(_ *cobra.Command, _ []string) {
	store := openStore()
	defer store.Close()

	replays, err := store.ListReplays(flagReplayScenario)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving replays: %v\n", err)
		return
	}

	if len(replays) == 0 {
		fmt.Println("No replays recorded yet.")
		return
	}

	maxNameLen := 4 // "Name" header
	for _, r := range replays {
		if len(r.Name) > maxNameLen {
			maxNameLen = len(r.Name)
		}
	}

	fmt.Printf("  %-*s  %-12s  %-10s  %-6s  %-8s  %-16s  %s\n", maxNameLen, "Name", "Scenario", "Seed", "Ticks", "Commands", "Hash", "Date")
	fmt.Printf("  %-*s  %-12s  %-10s  %-6s  %-8s  %-16s  %s\n", maxNameLen, "----", "--------", "----", "-----", "--------", "----", "----")
	for _, r := range replays {
		dateStr := r.CreatedAt.Format("2006-01-02 15:04")
		hash := r.FinalHash[:min(len(r.FinalHash), 16)]
		fmt.Printf("  %-*s  %-12s  %-10d  %-6d  %-8d  %-16s  %s\n", maxNameLen, r.Name, r.Scenario, r.Seed, r.Ticks, r.Commands, hash, dateStr)
	}
}

func runReplaysDelete(_ *cobra.Command, args []string) {
	name := args[0]

	store := openStore()
	defer store.Close()

	if err := store.DeleteReplay(name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted replay %q\n", name)
}

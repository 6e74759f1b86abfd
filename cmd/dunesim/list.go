package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/dunesim/internal/scenario"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available scenarios",
	Long:  `Shows a list of all scenarios registered in dunesim.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	scenarios := scenario.List()

	if len(scenarios) == 0 {
		fmt.Println("No scenarios available.")
		return
	}

	fmt.Println("Available scenarios:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, s := range scenarios {
		if len(s.ID) > maxIDLen {
			maxIDLen = len(s.ID)
		}
	}

	fmt.Printf("  %-*s  %-7s  %-10s  %-6s  %s\n", maxIDLen, "ID", "Map", "Seed", "Ticks", "Title")
	fmt.Printf("  %-*s  %-7s  %-10s  %-6s  %s\n", maxIDLen, "--", "---", "----", "-----", "-----")

	for _, s := range scenarios {
		size := fmt.Sprintf("%dx%d", s.Width, s.Height)
		fmt.Printf("  %-*s  %-7s  %-10d  %-6d  %s\n", maxIDLen, s.ID, size, s.Seed, s.Ticks, s.Title)
	}

	fmt.Println()
	fmt.Println("Run 'dunesim watch <id>' to watch a scenario.")
}

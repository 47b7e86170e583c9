package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eddielee6/ReactionMatch/internal/config"
	"github.com/eddielee6/ReactionMatch/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all game modes",
	Long:  `Shows every game mode with its matching rule and target count.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	games := registry.List()

	if len(games) == 0 {
		fmt.Println("No game modes available.")
		return
	}

	fmt.Println("Available modes:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, g := range games {
		maxIDLen = max(maxIDLen, len(g.ID))
	}

	fmt.Printf("  %-*s  %-10s  %-7s  %-8s  %s\n", maxIDLen, "ID", "Title", "Match", "Targets", "Leaderboard")
	fmt.Printf("  %-*s  %-10s  %-7s  %-8s  %s\n", maxIDLen, "--", "-----", "-----", "-------", "-----------")

	for _, g := range games {
		match, targets := "?", "?"
		if s, err := config.Load(g.ID, ""); err == nil {
			match = string(s.GameMode)
			targets = fmt.Sprintf("%d", s.MinTargets)
			if s.MaxTargets != s.MinTargets {
				targets = fmt.Sprintf("%d-%d", s.MinTargets, s.MaxTargets)
			}
		}
		fmt.Printf("  %-*s  %-10s  %-7s  %-8s  %s\n", maxIDLen, g.ID, g.Title, match, targets, g.LeaderboardID)
	}

	fmt.Println()
	fmt.Println("Run 'reactionmatch play <id>' to play a mode.")
}

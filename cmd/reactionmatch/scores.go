package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/eddielee6/ReactionMatch/internal/platform/tui"
	"github.com/eddielee6/ReactionMatch/internal/registry"
	"github.com/eddielee6/ReactionMatch/internal/storage"
)

var (
	flagClear       bool
	flagLimit       int
	flagInteractive bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show high scores",
	Long: `Display the top scores for the specified mode, or a summary of
every mode when none is given.

Examples:
  reactionmatch scores
  reactionmatch scores classic
  reactionmatch scores v2 --limit 25
  reactionmatch scores v2 --clear
  reactionmatch scores -i`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every score of the mode")
	scoresCmd.Flags().IntVar(&flagLimit, "limit", storage.DefaultTopLimit, "Number of scores to show")
	scoresCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse scores in a full-screen table")
}

func runScores(cmd *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if flagInteractive {
		cfg := runtimeConfig()
		if _, err := tui.RunScoreboard(store, cfg.ScreenW, cfg.ScreenH); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(args) == 0 {
		if flagClear {
			fmt.Fprintln(os.Stderr, "Error: --clear needs a mode")
			os.Exit(1)
		}
		printSummary(ctx, store)
		return
	}

	gameID := args[0]
	info, ok := registry.Lookup(gameID)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'reactionmatch list' to see available modes.")
		os.Exit(1)
	}

	if flagClear {
		if err := store.ClearScores(ctx, gameID); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing scores: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared all %s scores.\n", info.Title)
		return
	}

	scores, err := store.TopScores(ctx, gameID, flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("High Scores - %s\n", info.Title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'reactionmatch play %s' to set the first high score!\n", gameID)
		return
	}

	fmt.Printf("  %-4s  %-10s  %-6s  %-10s  %s\n", "Rank", "Score", "Levels", "Ended", "Date")
	fmt.Printf("  %-4s  %-10s  %-6s  %-10s  %s\n", "----", "-----", "------", "-----", "----")

	for i, entry := range scores {
		dateStr := entry.CreatedAt.Local().Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-10d  %-6d  %-10s  %s\n", i+1, entry.Score, entry.LevelsPlayed, entry.Reason, dateStr)
	}

	fmt.Println()
	if stats, err := store.GameStats(ctx, gameID); err == nil && stats.GamesCount > 0 {
		fmt.Printf("Best: %d  Games: %d  Average: %.1f  Most levels: %d\n",
			stats.HighScore, stats.GamesCount, stats.AvgScore, stats.MostLevels)
	}
}

// printSummary prints one line per mode that has been played.
func printSummary(ctx context.Context, store storage.Backend) {
	all, err := store.AllGameStats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving stats: %v\n", err)
		os.Exit(1)
	}
	if len(all) == 0 {
		fmt.Println("No scores recorded yet.")
		return
	}

	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("  %-10s  %-6s  %-10s  %-8s  %s\n", "Mode", "Games", "Best", "Average", "Last played")
	fmt.Printf("  %-10s  %-6s  %-10s  %-8s  %s\n", "----", "-----", "----", "-------", "-----------")
	for _, id := range ids {
		s := all[id]
		fmt.Printf("  %-10s  %-6d  %-10d  %-8.1f  %s\n",
			id, s.GamesCount, s.HighScore, s.AvgScore, s.LastPlayed.Local().Format("2006-01-02 15:04"))
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eddielee6/ReactionMatch/internal/config"
	"github.com/eddielee6/ReactionMatch/internal/core"
	"github.com/eddielee6/ReactionMatch/internal/engine"
	"github.com/eddielee6/ReactionMatch/internal/platform/tui"
	"github.com/eddielee6/ReactionMatch/internal/registry"
	"github.com/eddielee6/ReactionMatch/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
	flagResume     bool
)

var playCmd = &cobra.Command{
	Use:   "play <mode>",
	Short: "Play a game mode",
	Long: `Start playing the specified mode.

Controls:
  Mouse drag    - Drag the shape, release to drop it
  Arrows/WASD   - Nudge the shape
  Space/Enter   - Drop the shape
  R             - Play again (after game over)
  Esc/B         - Leave (an unfinished game is saved)
  Ctrl+S        - Screenshot
  Q/Ctrl+C      - Quit

Difficulty options:
  easy   - 1.5x the time for every level
  normal - Default timings
  hard   - 0.75x the time for every level
  fixed  - No time decay, every level gets the full time

Examples:
  reactionmatch play classic
  reactionmatch play v2 --difficulty hard
  reactionmatch play classic --resume
  reactionmatch play v2 --config ./my-v2.toml`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom settings (YAML or TOML)")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().BoolVar(&flagResume, "resume", false, "Continue the saved game, if any")
}

func runPlay(cmd *cobra.Command, args []string) {
	gameID := args[0]

	info, ok := registry.Lookup(gameID)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'reactionmatch list' to see available modes.")
		os.Exit(1)
	}

	difficulty, err := config.ParseDifficulty(flagDifficulty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := fileLogger()
	defer closeLog()

	store := openStore(logger)
	defer store.Close()

	e, err := registry.Create(gameID, registry.Options{
		ConfigPath: flagConfig,
		Difficulty: difficulty,
		Random:     core.NewSeededRandom(seed()),
		Store:      store,
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}
	defer e.Close()

	var resume *engine.Session
	if flagResume {
		sess, loadErr := store.LoadSession(context.Background(), gameID)
		switch {
		case loadErr == nil:
			resume = &sess
		case errors.Is(loadErr, storage.ErrNoSession):
			fmt.Fprintf(os.Stderr, "No saved %s game, starting a new one.\n", info.Title)
		default:
			fmt.Fprintf(os.Stderr, "Warning: cannot load saved game: %v\n", loadErr)
		}
	}

	if err := tui.Run(e, info, store, runtimeConfig(), logger, resume); err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
}

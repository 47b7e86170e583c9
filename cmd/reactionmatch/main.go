// reactionmatch is a reaction puzzle for the terminal: drag the shape in the
// middle onto the target that matches it before the time runs out.
//
// Usage:
//
//	reactionmatch list              - List game modes
//	reactionmatch play <mode>       - Play a mode
//	reactionmatch menu              - Pick a mode interactively
//	reactionmatch serve             - Serve over SSH and HTTP
//	reactionmatch scores [mode]     - Show high scores
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible levels
//	--db <path>         - Set database path (default: ~/.reactionmatch/scores.db)
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/eddielee6/ReactionMatch/internal/core"
	_ "github.com/eddielee6/ReactionMatch/internal/modes"
	"github.com/eddielee6/ReactionMatch/internal/storage"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reactionmatch",
	Short: "Reaction Match - drag the shape onto its match",
	Long: `Reaction Match is a timed puzzle: a shape sits in the middle of the
screen, surrounded by targets. Drag it onto the matching target before the
clock runs out. The faster you are, the more points you get.

Available commands:
  list     - Show all game modes
  play     - Play a specific mode directly
  menu     - Interactive mode picker
  serve    - Start SSH and HTTP servers for remote play
  scores   - View high scores

Examples:
  reactionmatch list
  reactionmatch play classic
  reactionmatch menu
  reactionmatch serve --ssh :2222 --http :8080
  reactionmatch scores v2`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.reactionmatch/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "~/.reactionmatch/reactionmatch.log", "Log file for terminal play (empty = no log)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}

// newLogger creates a logger writing to w at the configured level.
func newLogger(w io.Writer, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          prefix,
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// fileLogger returns a logger for full-screen commands, which cannot log to
// the terminal they draw on. The returned function closes the file.
func fileLogger() (*log.Logger, func()) {
	if flagLogFile == "" {
		return log.New(io.Discard), func() {}
	}
	path := expandHome(flagLogFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return log.New(io.Discard), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return log.New(io.Discard), func() {}
	}
	return newLogger(f, "reactionmatch"), func() { f.Close() }
}

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// runtimeConfig builds the front end configuration from the global flags
// and the terminal size.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	return cfg
}

// seed returns the --seed value, or a clock-based one when unset.
func seed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}

// openStore opens the score database, falling back to memory.
func openStore(logger *log.Logger) storage.Backend {
	return storage.OpenOrMemory(flagDBPath, logger)
}

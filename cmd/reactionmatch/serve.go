package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eddielee6/ReactionMatch/internal/config"
	"github.com/eddielee6/ReactionMatch/internal/platform/tui"
	"github.com/eddielee6/ReactionMatch/internal/platform/web"
)

var (
	flagSSHAddr         string
	flagHTTPAddr        string
	flagHostKey         string
	flagIdleTimeout     int
	flagServeDifficulty string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH and HTTP servers",
	Long: `Start an SSH server for terminal play and an HTTP server for browser
front ends. Both share one score database, so every player is on the same
leaderboard.

Each SSH connection gets its own session with the mode picker menu.
The HTTP server offers:
  GET /api/modes          - registered modes
  GET /api/scores/<mode>  - top scores and stats (?limit=N)
  GET /api/play/<mode>    - WebSocket play session (?seed=N, ?clock=server)

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.reactionmatch/host_key

Examples:
  reactionmatch serve                      # SSH on :23234, HTTP on :8080
  reactionmatch serve --ssh :2222          # SSH on port 2222
  reactionmatch serve --http ""            # SSH only
  reactionmatch serve --difficulty hard

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", ":8080", "HTTP server address (empty disables it)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagServeDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

func runServe(_ *cobra.Command, _ []string) {
	logger := newLogger(os.Stderr, "reactionmatch")

	difficulty, err := config.ParseDifficulty(flagServeDifficulty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store := openStore(logger)
	defer store.Close()

	sshCfg := tui.DefaultSSHServerConfig()
	sshCfg.Address = flagSSHAddr
	sshCfg.HostKeyPath = flagHostKey
	sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	sshCfg.TickRate = flagFPS
	sshCfg.Difficulty = difficulty

	sshServer, err := tui.NewSSHServer(sshCfg, store, logger.WithPrefix("ssh"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sshServer.ListenAndServe(ctx)
	})
	if flagHTTPAddr != "" {
		httpServer := web.NewServer(web.Config{
			Address:    flagHTTPAddr,
			Difficulty: difficulty,
			TickRate:   flagFPS,
		}, store, logger.WithPrefix("http"))
		g.Go(func() error {
			return httpServer.ListenAndServe(ctx)
		})
	}

	fmt.Printf("Connect with: ssh localhost -p %s\n", portOf(flagSSHAddr))
	fmt.Println("Press Ctrl+C to stop")

	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

// portOf returns the port of a host:port address.
func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}

// Package web exposes the game over HTTP: a small JSON API for modes and
// scores, and a WebSocket per player that relays engine inputs and events
// for browser front ends.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/matryer/way"

	"github.com/eddielee6/ReactionMatch/internal/config"
	"github.com/eddielee6/ReactionMatch/internal/registry"
	"github.com/eddielee6/ReactionMatch/internal/storage"
)

// Routes.
const (
	URIModes  = "/api/modes"
	URIScores = "/api/scores/:mode"
	URIPlay   = "/api/play/:mode"
)

const (
	requestTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
	maxScoresLimit  = 100
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Address is the host:port to listen on (e.g., ":8080").
	Address    string
	Difficulty config.DifficultyPreset
	// TickRate is used by connections that ask for the server clock.
	TickRate int
}

// Server serves the API and the play sockets.
type Server struct {
	config   Config
	router   *way.Router
	store    storage.Backend
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a server. The store may be nil, in which case scores
// are neither listed nor kept.
func NewServer(cfg Config, store storage.Backend, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 30
	}
	s := &Server{
		config: cfg,
		store:  store,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", URIModes, s.handleModes)
	s.router.HandleFunc("GET", URIScores, s.handleScores)
	s.router.HandleFunc("GET", URIPlay, s.handlePlay)
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Address,
		Handler:           s.router,
		ReadHeaderTimeout: requestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", s.config.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// handleModes lists the registered game types.
func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, registry.List())
}

// ScoresResponse is the body of GET /api/scores/:mode.
type ScoresResponse struct {
	Mode   string               `json:"mode"`
	Scores []storage.ScoreEntry `json:"scores"`
	Stats  *storage.GameStats   `json:"stats,omitempty"`
}

// handleScores lists the top scores of a game type. ?limit=N caps the list.
func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	mode := way.Param(r.Context(), "mode")
	if !registry.Exists(mode) {
		s.writeError(w, http.StatusNotFound, "unknown mode "+strconv.Quote(mode))
		return
	}

	limit := storage.DefaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxScoresLimit)
	}

	resp := ScoresResponse{Mode: mode, Scores: []storage.ScoreEntry{}}
	if s.store == nil {
		s.writeJSON(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	scores, err := s.store.TopScores(ctx, mode, limit)
	if err != nil {
		s.logger.Error("cannot list scores", "mode", mode, "err", err)
		s.writeError(w, http.StatusInternalServerError, "cannot list scores")
		return
	}
	resp.Scores = append(resp.Scores, scores...)

	stats, err := s.store.GameStats(ctx, mode)
	if err != nil {
		s.logger.Warn("cannot load stats", "mode", mode, "err", err)
	} else if stats.GamesCount > 0 {
		resp.Stats = stats
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("cannot write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

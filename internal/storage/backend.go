package storage

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/eddielee6/ReactionMatch/internal/engine"
)

// DefaultTopLimit is the number of scores TopScores returns for a
// non-positive limit.
const DefaultTopLimit = 10

// ErrNoSession is returned by LoadSession when nothing was saved.
var ErrNoSession = errors.New("storage: no saved session")

// ScoreEntry represents a single recorded game.
type ScoreEntry struct {
	ID           int64     `json:"id"`
	GameType     string    `json:"game_type"`
	Score        int64     `json:"score"`
	SessionID    string    `json:"session_id,omitempty"`
	LevelsPlayed int       `json:"levels_played"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// GameStats contains aggregated statistics for a game type.
type GameStats struct {
	GameType   string    `json:"game_type"`
	GamesCount int       `json:"games_count"`
	HighScore  int64     `json:"high_score"`
	AvgScore   float64   `json:"avg_score"`
	TotalScore int64     `json:"total_score"`
	MostLevels int       `json:"most_levels"`
	LastPlayed time.Time `json:"last_played"`
}

// Backend is what the front ends need from a score store.
type Backend interface {
	engine.ScoreStore
	engine.ResultRecorder
	TopScores(ctx context.Context, gameType string, limit int) ([]ScoreEntry, error)
	ClearScores(ctx context.Context, gameType string) error
	GameStats(ctx context.Context, gameType string) (*GameStats, error)
	AllGameStats(ctx context.Context) (map[string]*GameStats, error)
	SaveSession(ctx context.Context, sess engine.Session) error
	LoadSession(ctx context.Context, gameType string) (engine.Session, error)
	DeleteSession(ctx context.Context, gameType string) error
	Close() error
}

// OpenOrMemory opens the SQLite store at dbPath, falling back to an
// in-memory store when the database cannot be opened.
func OpenOrMemory(dbPath string, logger *log.Logger) Backend {
	store, err := Open(dbPath)
	if err != nil {
		logger.Warn("score database unavailable, scores will not be kept", "path", dbPath, "err", err)
		return NewMemory()
	}
	return store
}

func entryFromResult(res engine.Result) ScoreEntry {
	return ScoreEntry{
		GameType:     res.GameType,
		Score:        res.Score,
		SessionID:    res.SessionID,
		LevelsPlayed: res.LevelsPlayed,
		Reason:       res.Reason,
		CreatedAt:    res.EndedAt,
	}
}

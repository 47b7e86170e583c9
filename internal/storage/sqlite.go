// Package storage provides score persistence for the engine: a SQLite store
// using the pure-Go modernc.org/sqlite driver, and an in-memory fallback.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/eddielee6/ReactionMatch/internal/engine"
)

// Store manages the SQLite database connection for score persistence.
type Store struct {
	db *sql.DB
}

// Ensure Store satisfies the engine's store interfaces
var (
	_ engine.ScoreStore     = (*Store)(nil)
	_ engine.ResultRecorder = (*Store)(nil)
	_ Backend               = (*Store)(nil)
)

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_type TEXT NOT NULL,
			score INTEGER NOT NULL,
			session_id TEXT NOT NULL DEFAULT '',
			levels_played INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_game_type ON scores(game_type);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(game_type, score DESC);

		CREATE TABLE IF NOT EXISTS saved_sessions (
			game_type TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordScore stores a bare score for the given game type.
func (s *Store) RecordScore(ctx context.Context, gameType string, score int64) error {
	_, err := s.insert(ctx, ScoreEntry{GameType: gameType, Score: score})
	return err
}

// RecordResult stores a finished game with its session details.
func (s *Store) RecordResult(ctx context.Context, res engine.Result) error {
	_, err := s.insert(ctx, entryFromResult(res))
	return err
}

func (s *Store) insert(ctx context.Context, e ScoreEntry) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (game_type, score, session_id, levels_played, reason)
		 VALUES (?, ?, ?, ?, ?)`,
		e.GameType, e.Score, e.SessionID, e.LevelsPlayed, e.Reason,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// TopScores retrieves the top N scores for the given game type.
// Results are ordered by score descending, earlier games first on ties.
func (s *Store) TopScores(ctx context.Context, gameType string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_type, score, session_id, levels_played, reason, created_at
		 FROM scores
		 WHERE game_type = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		gameType, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.GameType, &e.Score, &e.SessionID, &e.LevelsPlayed, &e.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the highest score for the given game type.
// Returns 0 if no scores exist.
func (s *Store) HighScore(ctx context.Context, gameType string) (int64, error) {
	var score sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(score) FROM scores WHERE game_type = ?",
		gameType,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}
	return score.Int64, nil
}

// ClearScores deletes all scores for the given game type.
func (s *Store) ClearScores(ctx context.Context, gameType string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM scores WHERE game_type = ?", gameType)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// GameStats retrieves aggregated statistics for a specific game type.
func (s *Store) GameStats(ctx context.Context, gameType string) (*GameStats, error) {
	stats := &GameStats{GameType: gameType}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0),
		        COALESCE(SUM(score), 0), COALESCE(MAX(levels_played), 0)
		 FROM scores WHERE game_type = ?`,
		gameType,
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.AvgScore, &stats.TotalScore, &stats.MostLevels)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRowContext(ctx,
		`SELECT created_at FROM scores WHERE game_type = ? ORDER BY id DESC LIMIT 1`,
		gameType,
	).Scan(&lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTime(lastPlayed)
	}

	return stats, nil
}

// AllGameStats retrieves statistics for every game type that has been played.
func (s *Store) AllGameStats(ctx context.Context) (map[string]*GameStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_type, COUNT(*), MAX(score), AVG(score), SUM(score), MAX(levels_played), MAX(created_at)
		 FROM scores
		 GROUP BY game_type`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all games stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*GameStats)
	for rows.Next() {
		var gs GameStats
		var lastPlayed any
		if err := rows.Scan(&gs.GameType, &gs.GamesCount, &gs.HighScore, &gs.AvgScore, &gs.TotalScore, &gs.MostLevels, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		gs.LastPlayed = parseTime(lastPlayed)
		stats[gs.GameType] = &gs
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}

// SaveSession keeps an unfinished session so it can be resumed later.
// There is at most one saved session per game type.
func (s *Store) SaveSession(ctx context.Context, sess engine.Session) error {
	data, err := sess.Encode()
	if err != nil {
		return fmt.Errorf("storage: cannot encode session: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saved_sessions (game_type, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(game_type) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		sess.GameType, data,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save session: %w", err)
	}
	return nil
}

// LoadSession returns the saved session for a game type.
// Returns ErrNoSession if there is none.
func (s *Store) LoadSession(ctx context.Context, gameType string) (engine.Session, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM saved_sessions WHERE game_type = ?",
		gameType,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Session{}, ErrNoSession
	}
	if err != nil {
		return engine.Session{}, fmt.Errorf("storage: cannot load session: %w", err)
	}
	return engine.DecodeSession(data)
}

// DeleteSession forgets the saved session for a game type.
func (s *Store) DeleteSession(ctx context.Context, gameType string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM saved_sessions WHERE game_type = ?", gameType)
	if err != nil {
		return fmt.Errorf("storage: cannot delete session: %w", err)
	}
	return nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/eddielee6/ReactionMatch/internal/engine"
)

// Memory is a Backend that keeps everything in process memory.
type Memory struct {
	mu       sync.RWMutex
	nextID   int64
	scores   map[string][]ScoreEntry
	sessions map[string]engine.Session
}

var _ Backend = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		scores:   make(map[string][]ScoreEntry),
		sessions: make(map[string]engine.Session),
	}
}

func (m *Memory) add(e ScoreEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	e.ID = m.nextID
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	m.scores[e.GameType] = append(m.scores[e.GameType], e)
}

// RecordScore stores a bare score.
func (m *Memory) RecordScore(ctx context.Context, gameType string, score int64) error {
	m.add(ScoreEntry{GameType: gameType, Score: score})
	return nil
}

// RecordResult stores a finished game.
func (m *Memory) RecordResult(ctx context.Context, res engine.Result) error {
	m.add(entryFromResult(res))
	return nil
}

// HighScore returns the best score for the game type, or 0.
func (m *Memory) HighScore(ctx context.Context, gameType string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best int64
	for _, e := range m.scores[gameType] {
		best = max(best, e.Score)
	}
	return best, nil
}

// TopScores returns the best scores, highest first.
func (m *Memory) TopScores(ctx context.Context, gameType string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	m.mu.RLock()
	entries := append([]ScoreEntry(nil), m.scores[gameType]...)
	m.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ClearScores deletes all scores for the game type.
func (m *Memory) ClearScores(ctx context.Context, gameType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scores, gameType)
	return nil
}

// GameStats aggregates the scores of one game type.
func (m *Memory) GameStats(ctx context.Context, gameType string) (*GameStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statsLocked(gameType), nil
}

// AllGameStats aggregates every game type with at least one score.
func (m *Memory) AllGameStats(ctx context.Context) (map[string]*GameStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[string]*GameStats, len(m.scores))
	for gameType, entries := range m.scores {
		if len(entries) > 0 {
			stats[gameType] = m.statsLocked(gameType)
		}
	}
	return stats, nil
}

func (m *Memory) statsLocked(gameType string) *GameStats {
	stats := &GameStats{GameType: gameType}
	for _, e := range m.scores[gameType] {
		stats.GamesCount++
		stats.HighScore = max(stats.HighScore, e.Score)
		stats.TotalScore += e.Score
		stats.MostLevels = max(stats.MostLevels, e.LevelsPlayed)
		if e.CreatedAt.After(stats.LastPlayed) {
			stats.LastPlayed = e.CreatedAt
		}
	}
	if stats.GamesCount > 0 {
		stats.AvgScore = float64(stats.TotalScore) / float64(stats.GamesCount)
	}
	return stats
}

// SaveSession keeps an unfinished session.
func (m *Memory) SaveSession(ctx context.Context, sess engine.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.GameType] = sess
	return nil
}

// LoadSession returns the saved session or ErrNoSession.
func (m *Memory) LoadSession(ctx context.Context, gameType string) (engine.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[gameType]
	if !ok {
		return engine.Session{}, ErrNoSession
	}
	return sess, nil
}

// DeleteSession forgets the saved session.
func (m *Memory) DeleteSession(ctx context.Context, gameType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, gameType)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

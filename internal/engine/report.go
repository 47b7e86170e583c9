package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// ScoreStore persists high scores per game type.
// The engine only talks to it from the reporter goroutine.
type ScoreStore interface {
	HighScore(ctx context.Context, gameType string) (int64, error)
	RecordScore(ctx context.Context, gameType string, score int64) error
}

// ResultRecorder is implemented by stores that keep the whole result of a
// game rather than only its score. The reporter prefers it over RecordScore.
type ResultRecorder interface {
	RecordResult(ctx context.Context, res Result) error
}

// Result describes a finished game.
type Result struct {
	SessionID    string
	GameType     string
	Score        int64
	LevelsPlayed int
	Reason       string
	EndedAt      time.Time
}

const reportTimeout = 5 * time.Second

// reporter talks to the ScoreStore on its own goroutine. The game loop only
// queues work and reads the cached high score; failures are logged.
// Pending lookups collapse into one, finished games are never dropped.
type reporter struct {
	store    ScoreStore
	gameType string
	logger   *log.Logger

	highScore atomic.Int64

	mu      sync.Mutex
	closed  bool
	lookup  bool
	results []Result
	wake    chan struct{}
	wg      sync.WaitGroup
}

func newReporter(store ScoreStore, gameType string, logger *log.Logger) *reporter {
	r := &reporter{
		store:    store,
		gameType: gameType,
		logger:   logger,
	}
	if store != nil {
		r.wake = make(chan struct{}, 1)
		r.wg.Add(1)
		go r.run()
	}
	return r
}

// HighScore returns the best score known so far.
func (r *reporter) HighScore() int64 {
	return r.highScore.Load()
}

// RequestHighScore asks the store for the current high score.
func (r *reporter) RequestHighScore() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.wake == nil || r.closed {
		return
	}
	r.lookup = true
	r.signal()
}

// Record hands a finished game to the store.
func (r *reporter) Record(res Result) {
	r.raiseHighScore(res.Score)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.wake == nil || r.closed {
		return
	}
	r.results = append(r.results, res)
	r.signal()
}

// signal wakes the worker. Must be called with mu held.
func (r *reporter) signal() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *reporter) run() {
	defer r.wg.Done()
	for range r.wake {
		r.drain()
	}
	r.drain()
}

// drain handles everything queued until the queue is empty.
func (r *reporter) drain() {
	for {
		r.mu.Lock()
		lookup, results := r.lookup, r.results
		r.lookup, r.results = false, nil
		r.mu.Unlock()

		if !lookup && len(results) == 0 {
			return
		}
		if lookup {
			r.loadHighScore()
		}
		for _, res := range results {
			r.record(res)
		}
	}
}

func (r *reporter) loadHighScore() {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	best, err := r.store.HighScore(ctx, r.gameType)
	if err != nil {
		r.logger.Warn("high score lookup failed", "game", r.gameType, "err", err)
		return
	}
	r.raiseHighScore(best)
	r.logger.Debug("high score loaded", "game", r.gameType, "score", best)
}

func (r *reporter) record(res Result) {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	var err error
	if rec, ok := r.store.(ResultRecorder); ok {
		err = rec.RecordResult(ctx, res)
	} else {
		err = r.store.RecordScore(ctx, r.gameType, res.Score)
	}
	if err != nil {
		r.logger.Warn("recording score failed", "game", r.gameType, "score", res.Score, "err", err)
		return
	}
	r.logger.Debug("score recorded", "game", r.gameType, "score", res.Score, "session", res.SessionID)
}

func (r *reporter) raiseHighScore(score int64) {
	for {
		cur := r.highScore.Load()
		if score <= cur || r.highScore.CompareAndSwap(cur, score) {
			return
		}
	}
}

// Close stops accepting jobs and waits for the queued ones to finish.
func (r *reporter) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	if r.wake != nil {
		close(r.wake)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

// Package engine runs a game of Reaction Match: it draws levels, consumes
// the front end's inputs, resolves collisions, keeps score and reports
// finished games to a ScoreStore.
//
// The engine is single-threaded. Every input returns the events it caused
// so the caller can sequence its own animations; nothing inside the engine
// waits on the presentation or on the store.
package engine

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/eddielee6/ReactionMatch/internal/config"
	"github.com/eddielee6/ReactionMatch/internal/core"
	"github.com/eddielee6/ReactionMatch/internal/puzzle"
)

// Config holds everything needed to build an Engine.
type Config struct {
	Settings config.LevelSettings
	// GameType keys the scores, e.g. "classic".
	GameType string
	// Random defaults to a clock-seeded source.
	Random core.RandomProvider
	// Store is optional; without one high scores live in memory only.
	Store  ScoreStore
	Logger *log.Logger
	// Listener, if set, receives every event as it is emitted.
	Listener func(Event)
}

// Engine is the level state machine.
type Engine struct {
	settings config.LevelSettings
	gen      *puzzle.Generator
	logger   *log.Logger
	listener func(Event)
	reporter *reporter

	session  Session
	level    puzzle.Level
	hint     *hintAnimation
	reported bool
	started  bool
}

// New validates the configuration and builds an engine. Call NewGame or
// Resume before feeding it input.
func New(cfg Config) (*Engine, error) {
	if cfg.GameType == "" {
		return nil, errors.New("engine: empty game type")
	}
	rng := cfg.Random
	if rng == nil {
		rng = core.NewSeededRandom(time.Now().UnixNano())
	}
	gen, err := puzzle.NewGenerator(cfg.Settings, rng)
	if err != nil {
		return nil, fmt.Errorf("engine: %s: %w", cfg.GameType, err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Engine{
		settings: cfg.Settings,
		gen:      gen,
		logger:   logger,
		listener: cfg.Listener,
		reporter: newReporter(cfg.Store, cfg.GameType, logger),
		session:  Session{GameType: cfg.GameType, IsGameOver: true},
		level:    puzzle.Level{State: puzzle.StateGameOver},
	}, nil
}

// Close waits for pending score reports. The engine must not be used after.
func (e *Engine) Close() {
	e.reporter.Close()
}

// NewGame starts a fresh session at level 1.
func (e *Engine) NewGame() []Event {
	e.session = NewSession(e.session.GameType)
	e.reported = false
	e.started = true
	e.reporter.RequestHighScore()
	e.logger.Debug("new game", "game", e.session.GameType, "session", e.session.ID)
	return e.startLevel(nil)
}

// Resume continues a saved session with the level after its last success.
func (e *Engine) Resume(s Session) ([]Event, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.IsGameOver {
		return nil, ErrSessionOver
	}
	if s.GameType != e.session.GameType {
		return nil, fmt.Errorf("engine: session is for %q, engine plays %q", s.GameType, e.session.GameType)
	}
	e.session = s
	e.reported = false
	e.started = true
	e.reporter.RequestHighScore()
	e.logger.Debug("resume", "game", s.GameType, "session", s.ID, "levels", s.LevelsPlayed, "score", s.Score)
	return e.startLevel(nil), nil
}

// BeginLevel tells the engine the front end has finished introducing the
// level. Once the session's first move has happened the countdown starts
// straight away; before that the level is armed and the hint plays.
func (e *Engine) BeginLevel() []Event {
	if e.level.State != puzzle.StateIdle {
		return nil
	}
	if e.session.HasStartedFirstMove {
		return e.transition(nil, puzzle.StatePlaying)
	}
	winner, _ := e.level.Winner()
	e.hint = newHintAnimation(e.level.Player.Center, winner.Position)
	return e.transition(nil, puzzle.StateArmed)
}

// FirstMove starts play on the session's first touch. It restarts the
// countdown and latches, so later calls do nothing.
func (e *Engine) FirstMove() []Event {
	if e.session.HasStartedFirstMove {
		return nil
	}
	if e.level.State != puzzle.StateIdle && e.level.State != puzzle.StateArmed {
		return nil
	}
	e.session.HasStartedFirstMove = true
	e.stopHint()
	e.level.TimeRemaining = e.level.TimeBudget
	return e.transition(nil, puzzle.StatePlaying)
}

// Move drags the player by delta while the level is playing.
func (e *Engine) Move(delta core.Point) []Event {
	if e.level.State != puzzle.StatePlaying {
		return nil
	}
	e.level.Player.Move(delta)
	return nil
}

// EndMove resolves a release: the winner solves the level, a distractor
// ends the game, and empty space sends the player back to the centre.
func (e *Engine) EndMove() []Event {
	if e.level.State != puzzle.StatePlaying {
		return nil
	}
	switch e.level.Classify(e.settings.Playfield.HitRadius) {
	case puzzle.CollisionCorrect:
		return e.succeed()
	case puzzle.CollisionIncorrect:
		return e.gameOver(puzzle.StateResolvedIncorrect, ReasonIncorrect)
	default:
		from := e.level.Player.Position
		e.level.Player.ResetToCenter()
		return e.emit(nil, PlayerReturnedEvent{From: from, Position: e.level.Player.Position})
	}
}

// Tick advances time. While playing it runs the countdown; when it expires
// a player resting on the winner still counts as a success. While armed it
// advances the hint animation.
func (e *Engine) Tick(dt time.Duration) []Event {
	if dt <= 0 {
		return nil
	}
	switch e.level.State {
	case puzzle.StateArmed:
		if e.hint != nil {
			e.level.Player.MoveTo(e.hint.Update(dt))
		}
		return nil
	case puzzle.StatePlaying:
		e.level.TimeRemaining -= dt
		if e.level.TimeRemaining > 0 {
			return nil
		}
		if e.level.Classify(e.settings.Playfield.HitRadius) == puzzle.CollisionCorrect {
			return e.succeed()
		}
		return e.gameOver(puzzle.StateResolvedTimedOut, ReasonTimesUp)
	default:
		return nil
	}
}

func (e *Engine) succeed() []Event {
	points := e.level.PointsAvailable()
	solved := e.level.Index

	e.session.Score += int64(points)
	e.session.LevelsPlayed++

	events := e.transition(nil, puzzle.StateResolvedCorrect)
	events = e.emit(events, ScoreChangedEvent{Score: e.session.Score, PointsGained: points})
	events = e.emit(events, LevelSucceededEvent{Level: solved, PointsGained: points})
	e.logger.Debug("level solved", "level", solved, "points", points, "score", e.session.Score)

	return e.startLevel(events)
}

func (e *Engine) gameOver(resolved puzzle.LevelState, reason string) []Event {
	events := e.transition(nil, resolved)
	events = e.transition(events, puzzle.StateGameOver)
	e.session.IsGameOver = true

	previous := e.reporter.HighScore()
	score := e.session.Score
	if !e.reported {
		e.reported = true
		e.reporter.Record(Result{
			SessionID:    e.session.ID.String(),
			GameType:     e.session.GameType,
			Score:        score,
			LevelsPlayed: e.session.LevelsPlayed,
			Reason:       reason,
			EndedAt:      time.Now(),
		})
	}

	e.logger.Info("game over", "game", e.session.GameType, "reason", reason, "score", score, "levels", e.session.LevelsPlayed)
	return e.emit(events, GameOverEvent{
		Reason:       reason,
		FinalScore:   score,
		HighScore:    max(previous, score),
		NewHighScore: score > previous,
	})
}

func (e *Engine) startLevel(events []Event) []Event {
	e.stopHint()
	from := e.level.State
	e.level = e.gen.Generate(e.session.LevelsPlayed)
	if from != e.level.State {
		events = e.emit(events, StateChangedEvent{From: from, To: e.level.State})
	}
	return e.emit(events, LevelStartedEvent{Level: e.Level()})
}

func (e *Engine) transition(events []Event, to puzzle.LevelState) []Event {
	from := e.level.State
	e.level.State = to
	e.logger.Debug("state", "from", from, "to", to, "level", e.level.Index)
	return e.emit(events, StateChangedEvent{From: from, To: to})
}

func (e *Engine) emit(events []Event, ev Event) []Event {
	if e.listener != nil {
		e.listener(ev)
	}
	return append(events, ev)
}

func (e *Engine) stopHint() {
	if e.hint == nil {
		return
	}
	e.hint = nil
	e.level.Player.ResetToCenter()
}

// State returns the state of the current level.
func (e *Engine) State() puzzle.LevelState {
	return e.level.State
}

// Level returns a copy of the current level.
func (e *Engine) Level() puzzle.Level {
	lvl := e.level
	lvl.Targets = append([]puzzle.Entity(nil), e.level.Targets...)
	return lvl
}

// Session returns the current session.
func (e *Engine) Session() Session {
	return e.session
}

// Settings returns the level settings the engine plays with.
func (e *Engine) Settings() config.LevelSettings {
	return e.settings
}

// PointsAvailable returns what solving the current level now would score.
func (e *Engine) PointsAvailable() int {
	return e.level.PointsAvailable()
}

// HighScore returns the best score known for the game type.
func (e *Engine) HighScore() int64 {
	return e.reporter.HighScore()
}

// HintPosition returns the animated player position while the level is
// armed.
func (e *Engine) HintPosition() (core.Point, bool) {
	if e.level.State != puzzle.StateArmed || e.hint == nil {
		return core.Point{}, false
	}
	return e.hint.Position(), true
}

// Started reports whether a game has been started or resumed.
func (e *Engine) Started() bool {
	return e.started
}

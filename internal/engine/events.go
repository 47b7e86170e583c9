package engine

import (
	"github.com/eddielee6/ReactionMatch/internal/core"
	"github.com/eddielee6/ReactionMatch/internal/puzzle"
)

// Game over reasons.
const (
	ReasonIncorrect = "Incorrect"
	ReasonTimesUp   = "Times Up"
)

// Event is something the engine reports to the front end. Every input
// returns the events it caused, in order.
type Event interface {
	// Name is the wire name of the event.
	Name() string
	engineEvent()
}

// LevelStartedEvent is emitted when a new level has been drawn.
type LevelStartedEvent struct {
	Level puzzle.Level `json:"level"`
}

func (LevelStartedEvent) Name() string { return "level_started" }
func (LevelStartedEvent) engineEvent() {}

// StateChangedEvent is emitted on every level state transition.
type StateChangedEvent struct {
	From puzzle.LevelState `json:"from"`
	To   puzzle.LevelState `json:"to"`
}

func (StateChangedEvent) Name() string { return "state_changed" }
func (StateChangedEvent) engineEvent() {}

// ScoreChangedEvent is emitted when a level is solved.
type ScoreChangedEvent struct {
	Score        int64 `json:"score"`
	PointsGained int   `json:"points_gained"`
}

func (ScoreChangedEvent) Name() string { return "score_changed" }
func (ScoreChangedEvent) engineEvent() {}

// LevelSucceededEvent is emitted after the score of a solved level is added.
type LevelSucceededEvent struct {
	Level        int `json:"level"`
	PointsGained int `json:"points_gained"`
}

func (LevelSucceededEvent) Name() string { return "level_succeeded" }
func (LevelSucceededEvent) engineEvent() {}

// PlayerReturnedEvent is emitted when the player is released away from
// every target and snaps back to the centre.
type PlayerReturnedEvent struct {
	From     core.Point `json:"from"`
	Position core.Point `json:"position"`
}

func (PlayerReturnedEvent) Name() string { return "player_returned" }
func (PlayerReturnedEvent) engineEvent() {}

// GameOverEvent ends the session.
type GameOverEvent struct {
	Reason       string `json:"reason"`
	FinalScore   int64  `json:"final_score"`
	HighScore    int64  `json:"high_score"`
	NewHighScore bool   `json:"new_high_score"`
}

func (GameOverEvent) Name() string { return "game_over" }
func (GameOverEvent) engineEvent() {}

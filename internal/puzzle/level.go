package puzzle

import (
	"math"
	"time"
)

// LevelState is the lifecycle position of a level.
type LevelState int

const (
	// StateIdle: the level is drawn and the front end is introducing it.
	StateIdle LevelState = iota
	// StateArmed: waiting for the first move of the session, hint playing.
	StateArmed
	// StatePlaying: the countdown is running.
	StatePlaying
	StateResolvedCorrect
	StateResolvedIncorrect
	StateResolvedTimedOut
	// StateGameOver is terminal until a new game starts.
	StateGameOver
)

// String returns a human-readable name for the state.
func (s LevelState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateArmed:
		return "Armed"
	case StatePlaying:
		return "Playing"
	case StateResolvedCorrect:
		return "ResolvedCorrect"
	case StateResolvedIncorrect:
		return "ResolvedIncorrect"
	case StateResolvedTimedOut:
		return "ResolvedTimedOut"
	case StateGameOver:
		return "GameOver"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s LevelState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Resolved reports whether the level has an outcome.
func (s LevelState) Resolved() bool {
	return s >= StateResolvedCorrect
}

// MaxPoints is the score for a level solved with the whole budget left.
const MaxPoints = 10

// Level is one round: a player, its targets and the countdown.
type Level struct {
	// Index is 1 for the first level of a game.
	Index           int           `json:"index"`
	NumberOfTargets int           `json:"number_of_targets"`
	TimeBudget      time.Duration `json:"time_budget"`
	TimeRemaining   time.Duration `json:"time_remaining"`
	Player          Player        `json:"player"`
	Targets         []Entity      `json:"targets"`
	State           LevelState    `json:"state"`
}

// Winner returns the winning target and its index, or -1 if there is none.
func (l Level) Winner() (Entity, int) {
	for i, t := range l.Targets {
		if t.IsWinner {
			return t, i
		}
	}
	return Entity{}, -1
}

// Classify checks the player against the level's targets.
func (l Level) Classify(radius float64) Collision {
	return Classify(l.Player.Entity, l.Targets, radius)
}

// PointsAvailable returns what solving the level right now would score.
func (l Level) PointsAvailable() int {
	return Points(l.TimeRemaining, l.TimeBudget)
}

// Points converts the remaining time into a score:
// ceil(remaining / budget * 10), clamped to [0, 10].
func Points(remaining, budget time.Duration) int {
	if budget <= 0 || remaining <= 0 {
		return 0
	}
	p := int(math.Ceil(float64(remaining) / float64(budget) * MaxPoints))
	return min(max(p, 0), MaxPoints)
}

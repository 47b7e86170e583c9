package engine

import (
	"time"

	"github.com/eddielee6/ReactionMatch/internal/puzzle"
)

// Snapshot captures the engine state for determinism testing and for
// remote front ends.
type Snapshot struct {
	SessionID           string            `json:"session_id"`
	GameType            string            `json:"game_type"`
	State               puzzle.LevelState `json:"state"`
	Level               int               `json:"level"`
	LevelsPlayed        int               `json:"levels_played"`
	Score               int64             `json:"score"`
	HighScore           int64             `json:"high_score"`
	NumberOfTargets     int               `json:"number_of_targets"`
	WinnerIndex         int               `json:"winner_index"`
	TimeBudget          time.Duration     `json:"time_budget"`
	TimeRemaining       time.Duration     `json:"time_remaining"`
	PointsAvailable     int               `json:"points_available"`
	PlayerX             float64           `json:"player_x"`
	PlayerY             float64           `json:"player_y"`
	HasStartedFirstMove bool              `json:"has_started_first_move"`
	IsGameOver          bool              `json:"is_game_over"`
}

// Snapshot returns the current engine snapshot.
func (e *Engine) Snapshot() Snapshot {
	_, winner := e.level.Winner()
	return Snapshot{
		SessionID:           e.session.ID.String(),
		GameType:            e.session.GameType,
		State:               e.level.State,
		Level:               e.level.Index,
		LevelsPlayed:        e.session.LevelsPlayed,
		Score:               e.session.Score,
		HighScore:           e.reporter.HighScore(),
		NumberOfTargets:     e.level.NumberOfTargets,
		WinnerIndex:         winner,
		TimeBudget:          e.level.TimeBudget,
		TimeRemaining:       e.level.TimeRemaining,
		PointsAvailable:     e.level.PointsAvailable(),
		PlayerX:             e.level.Player.Position.X,
		PlayerY:             e.level.Player.Position.Y,
		HasStartedFirstMove: e.session.HasStartedFirstMove,
		IsGameOver:          e.session.IsGameOver,
	}
}

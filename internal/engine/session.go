package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrSessionOver is returned when resuming a session that already ended.
var ErrSessionOver = errors.New("engine: session is over")

// Session is the run of levels from a new game to game over.
type Session struct {
	ID                  uuid.UUID `json:"id"`
	GameType            string    `json:"game_type"`
	LevelsPlayed        int       `json:"levels_played"`
	Score               int64     `json:"score"`
	HasStartedFirstMove bool      `json:"has_started_first_move"`
	IsGameOver          bool      `json:"is_game_over"`
}

// NewSession starts an empty session with a fresh id.
func NewSession(gameType string) Session {
	return Session{
		ID:       uuid.New(),
		GameType: gameType,
	}
}

// Validate checks that the counters of a restored session make sense.
func (s Session) Validate() error {
	if s.LevelsPlayed < 0 {
		return fmt.Errorf("engine: negative levels played %d", s.LevelsPlayed)
	}
	if s.Score < 0 {
		return fmt.Errorf("engine: negative score %d", s.Score)
	}
	return nil
}

// Encode serialises the session as JSON.
func (s Session) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSession restores a session written by Encode.
func DecodeSession(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("engine: decode session: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}
	return s, nil
}

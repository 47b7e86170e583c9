package config

import (
	"fmt"
	"time"
)

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParseDifficulty converts a flag value into a preset. Empty means normal.
func ParseDifficulty(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal, hard or fixed)", s)
	}
}

// TimeScaleForPreset returns the multiplier applied to the time budgets.
func TimeScaleForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 1.5
	case DifficultyHard:
		return 0.75
	default:
		return 1.0
	}
}

// IsFixedPreset returns true if the preset disables time decay.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ApplyDifficulty adjusts the time budgets of the settings for a preset.
// The fixed preset keeps every level at the maximum budget.
func ApplyDifficulty(s *LevelSettings, preset DifficultyPreset) {
	if IsFixedPreset(preset) {
		s.TimeDecayPerFiveLevels = 0
		return
	}

	scale := TimeScaleForPreset(preset)
	s.MaxTimeForLevel = scaleDuration(s.MaxTimeForLevel, scale)
	s.MinTimeForLevel = scaleDuration(s.MinTimeForLevel, scale)
	s.TimeDecayPerFiveLevels = scaleDuration(s.TimeDecayPerFiveLevels, scale)
}

func scaleDuration(d time.Duration, scale float64) time.Duration {
	return time.Duration(float64(d) * scale).Round(time.Millisecond)
}

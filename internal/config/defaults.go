package config

import (
	_ "embed"
	"time"

	"github.com/eddielee6/ReactionMatch/internal/catalog"
)

// Preset identifiers. They double as score keys and registry ids.
const (
	PresetClassic = "classic"
	PresetV2      = "v2"
)

//go:embed defaults/classic.yaml
var defaultClassicYAML []byte

//go:embed defaults/v2.yaml
var defaultV2YAML []byte

// DefaultPlayfield returns the standard play area layout.
func DefaultPlayfield() Playfield {
	return Playfield{
		TargetDistance:       110,
		PlayerDistanceFactor: 1.2,
		HitRadius:            20,
	}
}

// DefaultClassicSettings returns the Classic preset: color matching against
// four fixed targets.
func DefaultClassicSettings() LevelSettings {
	return LevelSettings{
		GameMode:               ModeColor,
		MinTargets:             4,
		MaxTargets:             4,
		MaxTimeForLevel:        1200 * time.Millisecond,
		MinTimeForLevel:        400 * time.Millisecond,
		TimeDecayPerFiveLevels: 100 * time.Millisecond,
		SoundsEnabled:          true,
		FixedShape:             catalog.Square,
		Playfield:              DefaultPlayfield(),
	}
}

// DefaultV2Settings returns the V2 preset: shape matching with the target
// count growing from two to eight.
func DefaultV2Settings() LevelSettings {
	return LevelSettings{
		GameMode:                     ModeShape,
		MinTargets:                   2,
		MaxTargets:                   8,
		TargetsIncrementEveryNLevels: 5,
		TargetsIncrementAmount:       2,
		MaxTimeForLevel:              1200 * time.Millisecond,
		MinTimeForLevel:              400 * time.Millisecond,
		TimeDecayPerFiveLevels:       100 * time.Millisecond,
		SoundsEnabled:                true,
		FixedShape:                   catalog.Square,
		Playfield:                    DefaultPlayfield(),
	}
}

// Presets returns the built-in presets in menu order.
func Presets() []Preset {
	return []Preset{
		{
			ID:            PresetClassic,
			Title:         "Classic",
			LeaderboardID: "me.eddielee.ReactionMatch.TopScore",
			Settings:      DefaultClassicSettings(),
		},
		{
			ID:            PresetV2,
			Title:         "V2",
			LeaderboardID: "me.eddielee.ReactionMatch.TopScoreV2",
			Settings:      DefaultV2Settings(),
		},
	}
}

// LookupPreset returns the built-in preset with the given id.
func LookupPreset(id string) (Preset, bool) {
	for _, p := range Presets() {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// GetDefaultYAML returns the embedded default YAML for a preset.
func GetDefaultYAML(presetID string) []byte {
	switch presetID {
	case PresetClassic:
		return defaultClassicYAML
	case PresetV2:
		return defaultV2YAML
	default:
		return nil
	}
}

// Package config provides level settings for the puzzle engine, the built-in
// presets, YAML/TOML loading and difficulty adjustment.
package config

import (
	"fmt"
	"time"

	"github.com/eddielee6/ReactionMatch/internal/catalog"
)

// GameMode is the rule deciding which target matches the player.
type GameMode string

const (
	// ModeExact requires both color and shape to match.
	ModeExact GameMode = "exact"
	// ModeColor requires the color to match. The player shape is fixed.
	ModeColor GameMode = "color"
	// ModeShape requires the shape to match. Color is decorative.
	ModeShape GameMode = "shape"
)

// Valid reports whether m is one of the known modes.
func (m GameMode) Valid() bool {
	switch m {
	case ModeExact, ModeColor, ModeShape:
		return true
	}
	return false
}

// ParseGameMode converts a mode name into a GameMode.
func ParseGameMode(s string) (GameMode, error) {
	m := GameMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("config: unknown game mode %q", s)
	}
	return m, nil
}

// LevelSettings controls how levels are generated and timed.
type LevelSettings struct {
	GameMode GameMode `yaml:"game_mode" toml:"game_mode"`

	MinTargets                   int `yaml:"min_targets" toml:"min_targets"`
	MaxTargets                   int `yaml:"max_targets" toml:"max_targets"`
	TargetsIncrementEveryNLevels int `yaml:"targets_increment_every_n_levels" toml:"targets_increment_every_n_levels"`
	TargetsIncrementAmount       int `yaml:"targets_increment_amount" toml:"targets_increment_amount"`

	MaxTimeForLevel        time.Duration `yaml:"max_time_for_level" toml:"max_time_for_level"`
	MinTimeForLevel        time.Duration `yaml:"min_time_for_level" toml:"min_time_for_level"`
	TimeDecayPerFiveLevels time.Duration `yaml:"time_decay_per_five_levels" toml:"time_decay_per_five_levels"`

	// SoundsEnabled is passed through to front ends; the engine ignores it.
	SoundsEnabled bool `yaml:"sounds_enabled" toml:"sounds_enabled"`

	// Colors and Shapes restrict the palettes. Empty means every variant.
	Colors     []catalog.Color `yaml:"colors,omitempty" toml:"colors,omitempty"`
	Shapes     []catalog.Shape `yaml:"shapes,omitempty" toml:"shapes,omitempty"`
	FixedShape catalog.Shape   `yaml:"fixed_shape" toml:"fixed_shape"`

	Playfield Playfield `yaml:"playfield" toml:"playfield"`
}

// Playfield holds the layout constants of the play area, in play-area units.
type Playfield struct {
	// TargetDistance is the radius of the circle the targets sit on.
	TargetDistance float64 `yaml:"target_distance" toml:"target_distance"`
	// PlayerDistanceFactor multiplies TargetDistance to give the furthest
	// the player may be dragged from the centre.
	PlayerDistanceFactor float64 `yaml:"player_distance_factor" toml:"player_distance_factor"`
	// HitRadius is the radius of every shape's hit circle.
	HitRadius float64 `yaml:"hit_radius" toml:"hit_radius"`
}

// MaxPlayerDistance returns how far the player may move from the centre.
func (p Playfield) MaxPlayerDistance() float64 {
	return p.TargetDistance * p.PlayerDistanceFactor
}

// ColorSet returns the color palette levels draw from.
func (s LevelSettings) ColorSet() (catalog.Set[catalog.Color], error) {
	if len(s.Colors) == 0 {
		return catalog.Colors, nil
	}
	return catalog.NewSet(s.Colors...)
}

// ShapeSet returns the shape palette levels draw from.
func (s LevelSettings) ShapeSet() (catalog.Set[catalog.Shape], error) {
	if len(s.Shapes) == 0 {
		return catalog.Shapes, nil
	}
	return catalog.NewSet(s.Shapes...)
}

// Preset is a named, ready-to-play settings bundle.
type Preset struct {
	ID            string
	Title         string
	LeaderboardID string
	Settings      LevelSettings
}

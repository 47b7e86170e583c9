package config

import (
	"errors"
	"fmt"
)

// ErrInvalidSettings wraps every settings validation failure.
var ErrInvalidSettings = errors.New("config: invalid level settings")

// Validate checks the settings for configurations the engine cannot play:
// empty or inverted ranges, non-positive time budgets, and palettes too
// small for the exclusions the game mode draws. All problems are reported
// together, wrapped in ErrInvalidSettings.
func (s LevelSettings) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if !s.GameMode.Valid() {
		add("unknown game mode %q", s.GameMode)
	}

	if s.MinTargets < 1 {
		add("min targets must be at least 1, got %d", s.MinTargets)
	}
	if s.MaxTargets < s.MinTargets {
		add("max targets (%d) below min targets (%d)", s.MaxTargets, s.MinTargets)
	}
	if s.TargetsIncrementEveryNLevels < 0 {
		add("targets increment interval must not be negative, got %d", s.TargetsIncrementEveryNLevels)
	}
	if s.TargetsIncrementAmount < 0 {
		add("targets increment amount must not be negative, got %d", s.TargetsIncrementAmount)
	}

	if s.MinTimeForLevel <= 0 {
		add("min time for level must be positive, got %s", s.MinTimeForLevel)
	}
	if s.MaxTimeForLevel < s.MinTimeForLevel {
		add("max time for level (%s) below min time (%s)", s.MaxTimeForLevel, s.MinTimeForLevel)
	}
	if s.TimeDecayPerFiveLevels < 0 {
		add("time decay must not be negative, got %s", s.TimeDecayPerFiveLevels)
	}

	if !s.FixedShape.Valid() {
		add("unknown fixed shape %d", int(s.FixedShape))
	}
	for _, c := range s.Colors {
		if !c.Valid() {
			add("unknown color %d in palette", int(c))
		}
	}
	for _, sh := range s.Shapes {
		if !sh.Valid() {
			add("unknown shape %d in palette", int(sh))
		}
	}
	errs = append(errs, s.validatePalettes()...)

	if s.Playfield.TargetDistance <= 0 {
		add("target distance must be positive, got %g", s.Playfield.TargetDistance)
	}
	if s.Playfield.PlayerDistanceFactor <= 0 {
		add("player distance factor must be positive, got %g", s.Playfield.PlayerDistanceFactor)
	}
	if s.Playfield.HitRadius <= 0 {
		add("hit radius must be positive, got %g", s.Playfield.HitRadius)
	}
	if s.Playfield.MaxPlayerDistance() < s.Playfield.TargetDistance-2*s.Playfield.HitRadius {
		add("player cannot reach the targets: max distance %g, targets at %g",
			s.Playfield.MaxPlayerDistance(), s.Playfield.TargetDistance)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
}

// validatePalettes checks that every exclusion draw has a second variant.
func (s LevelSettings) validatePalettes() []error {
	var errs []error
	colors, err := s.ColorSet()
	if err != nil {
		return []error{err}
	}
	shapes, err := s.ShapeSet()
	if err != nil {
		return []error{err}
	}

	distractors := s.MaxTargets > 1
	needColors := false
	needShapes := false
	switch s.GameMode {
	case ModeColor:
		needColors = distractors
	case ModeShape:
		// The winner's color always differs from the player's.
		needColors = true
		needShapes = distractors
	case ModeExact:
		needColors = distractors
		needShapes = distractors
	}

	if needColors && colors.Len() < 2 {
		errs = append(errs, fmt.Errorf("%s mode needs at least 2 colors, palette has %d", s.GameMode, colors.Len()))
	}
	if needShapes && shapes.Len() < 2 {
		errs = append(errs, fmt.Errorf("%s mode needs at least 2 shapes, palette has %d", s.GameMode, shapes.Len()))
	}
	return errs
}

package puzzle

import (
	"fmt"
	"time"

	"github.com/eddielee6/ReactionMatch/internal/catalog"
	"github.com/eddielee6/ReactionMatch/internal/config"
	"github.com/eddielee6/ReactionMatch/internal/core"
)

// Generator draws levels from validated settings.
type Generator struct {
	settings config.LevelSettings
	rng      core.RandomProvider
	colors   catalog.Set[catalog.Color]
	shapes   catalog.Set[catalog.Shape]
	center   core.Point
}

// NewGenerator validates the settings and builds a generator. The play area
// is centred on the origin.
func NewGenerator(settings config.LevelSettings, rng core.RandomProvider) (*Generator, error) {
	if rng == nil {
		return nil, fmt.Errorf("puzzle: nil random provider")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	colors, err := settings.ColorSet()
	if err != nil {
		return nil, fmt.Errorf("puzzle: color palette: %w", err)
	}
	shapes, err := settings.ShapeSet()
	if err != nil {
		return nil, fmt.Errorf("puzzle: shape palette: %w", err)
	}
	return &Generator{
		settings: settings,
		rng:      rng,
		colors:   colors,
		shapes:   shapes,
	}, nil
}

// Settings returns the settings the generator draws from.
func (g *Generator) Settings() config.LevelSettings {
	return g.settings
}

// Center returns the centre of the play area.
func (g *Generator) Center() core.Point {
	return g.center
}

// Generate draws the level that follows levelsPlayed successful levels.
// The returned level is Idle with the full time budget remaining.
func (g *Generator) Generate(levelsPlayed int) Level {
	index := max(levelsPlayed, 0) + 1
	s := g.settings
	n := NumberOfTargets(index, s)
	budget := TimeBudget(index, s)

	player := g.newPlayer()
	positions := TargetPositions(n, g.center, s.Playfield.TargetDistance)
	winnerIdx := g.rng.IntRange(0, n-1)

	targets := make([]Entity, n)
	for i, pos := range positions {
		var t Entity
		if i == winnerIdx {
			t = g.winnerFor(player.Entity)
		} else {
			t = g.distractorFor(player.Entity)
		}
		t.Position = pos
		targets[i] = t
	}

	return Level{
		Index:           index,
		NumberOfTargets: n,
		TimeBudget:      budget,
		TimeRemaining:   budget,
		Player:          player,
		Targets:         targets,
		State:           StateIdle,
	}
}

func (g *Generator) newPlayer() Player {
	c := g.colors.Random(g.rng)
	shape := g.settings.FixedShape
	if g.settings.GameMode != config.ModeColor {
		shape = g.shapes.Random(g.rng)
	}
	return NewPlayer(c, shape, g.center, g.settings.Playfield.MaxPlayerDistance())
}

func (g *Generator) winnerFor(player Entity) Entity {
	t := Entity{IsWinner: true}
	switch g.settings.GameMode {
	case config.ModeColor:
		t.Color = player.Color
		t.Shape = g.shapes.Random(g.rng)
	case config.ModeShape:
		t.Color = g.otherColor(player.Color)
		t.Shape = player.Shape
	default:
		t.Color = player.Color
		t.Shape = player.Shape
	}
	return t
}

func (g *Generator) distractorFor(player Entity) Entity {
	var t Entity
	switch g.settings.GameMode {
	case config.ModeColor:
		t.Color = g.otherColor(player.Color)
		t.Shape = g.shapes.Random(g.rng)
	case config.ModeShape:
		t.Color = g.colors.Random(g.rng)
		t.Shape = g.otherShape(player.Shape)
	default:
		t.Color = g.otherColor(player.Color)
		t.Shape = g.otherShape(player.Shape)
	}
	return t
}

// otherColor and otherShape cannot fail: Validate guarantees a second
// variant for every exclusion the game mode draws.
func (g *Generator) otherColor(not catalog.Color) catalog.Color {
	c, _ := g.colors.RandomExcluding(g.rng, not)
	return c
}

func (g *Generator) otherShape(not catalog.Shape) catalog.Shape {
	s, _ := g.shapes.RandomExcluding(g.rng, not)
	return s
}

// NumberOfTargets returns the target count of the level with the given
// 1-based index: min + floor(level / every) * amount, clamped to [min, max].
// An interval of zero adds no bonus targets.
func NumberOfTargets(level int, s config.LevelSettings) int {
	n := s.MinTargets
	if s.TargetsIncrementEveryNLevels > 0 {
		n += (level / s.TargetsIncrementEveryNLevels) * s.TargetsIncrementAmount
	}
	return core.Clamp(n, s.MinTargets, s.MaxTargets)
}

// TimeBudget returns the countdown for the level with the given 1-based
// index: max - floor(level / 5) * decay, never below min.
func TimeBudget(level int, s config.LevelSettings) time.Duration {
	budget := s.MaxTimeForLevel - time.Duration(level/5)*s.TimeDecayPerFiveLevels
	return max(budget, s.MinTimeForLevel)
}

// TargetPositions spreads n points evenly on a circle around center,
// starting at 0 degrees.
func TargetPositions(n int, center core.Point, radius float64) []core.Point {
	if n <= 0 {
		return nil
	}
	step := 360.0 / float64(n)
	positions := make([]core.Point, n)
	for i := range positions {
		positions[i] = core.PointOnCircle(center, radius, float64(i)*step)
	}
	return positions
}

// Matches reports whether target satisfies the game mode's win rule
// against player.
func Matches(mode config.GameMode, player, target Entity) bool {
	switch mode {
	case config.ModeColor:
		return player.Color == target.Color
	case config.ModeShape:
		return player.Shape == target.Shape
	default:
		return player.Color == target.Color && player.Shape == target.Shape
	}
}

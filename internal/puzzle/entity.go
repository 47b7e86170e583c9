// Package puzzle holds the per-level model of the game: the player and
// target entities, the level itself, the collision rule and the generator
// that draws new levels from LevelSettings.
package puzzle

import (
	"github.com/eddielee6/ReactionMatch/internal/catalog"
	"github.com/eddielee6/ReactionMatch/internal/core"
)

// Entity is a colored shape in the play area: the player or a target.
type Entity struct {
	Color    catalog.Color `json:"color"`
	Shape    catalog.Shape `json:"shape"`
	Position core.Point    `json:"position"`
	IsWinner bool          `json:"is_winner"`
}

// Player is the entity the user drags. It never leaves the circle of
// MaxDistance around Center.
type Player struct {
	Entity
	Center      core.Point `json:"center"`
	MaxDistance float64    `json:"max_distance"`
}

// NewPlayer places a player of the given color and shape at center.
func NewPlayer(c catalog.Color, s catalog.Shape, center core.Point, maxDistance float64) Player {
	return Player{
		Entity: Entity{
			Color:    c,
			Shape:    s,
			Position: center,
		},
		Center:      center,
		MaxDistance: maxDistance,
	}
}

// Move applies a drag delta, clamping the result to the player's radius.
func (p *Player) Move(delta core.Point) {
	p.MoveTo(p.Position.Add(delta))
}

// MoveTo places the player at pos, clamped to the player's radius.
func (p *Player) MoveTo(pos core.Point) {
	p.Position = core.ClampToRadius(pos, p.Center, p.MaxDistance)
}

// ResetToCenter puts the player back in the middle of the play area.
func (p *Player) ResetToCenter() {
	p.Position = p.Center
}

// DistanceFromCenter returns how far the player has been dragged.
func (p Player) DistanceFromCenter() float64 {
	return p.Position.Distance(p.Center)
}

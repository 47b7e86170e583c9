package puzzle

// Collision is the outcome of checking the player against the targets.
type Collision int

const (
	CollisionNone Collision = iota
	CollisionCorrect
	CollisionIncorrect
)

// String returns a human-readable name for the collision.
func (c Collision) String() string {
	switch c {
	case CollisionNone:
		return "None"
	case CollisionCorrect:
		return "Correct"
	case CollisionIncorrect:
		return "Incorrect"
	default:
		return "Unknown"
	}
}

// Intersects reports whether the hit circles of a and b overlap.
// Every shape shares the same hit radius; touching edges do not count.
func Intersects(a, b Entity, radius float64) bool {
	return a.Position.Distance(b.Position) < 2*radius
}

// Classify checks the player against every target. The winner is checked
// first, so overlapping the winner and a distractor at once is correct.
func Classify(player Entity, targets []Entity, radius float64) Collision {
	for _, t := range targets {
		if t.IsWinner && Intersects(player, t, radius) {
			return CollisionCorrect
		}
	}
	for _, t := range targets {
		if !t.IsWinner && Intersects(player, t, radius) {
			return CollisionIncorrect
		}
	}
	return CollisionNone
}

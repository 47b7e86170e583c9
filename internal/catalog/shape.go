package catalog

import (
	"fmt"

	"github.com/eddielee6/ReactionMatch/internal/core"
)

// Shape is the outline of a player or target.
type Shape int

const (
	Square Shape = iota
	Circle
	Triangle
	Star
)

var shapeNames = [...]string{
	Square:   "square",
	Circle:   "circle",
	Triangle: "triangle",
	Star:     "star",
}

// Shapes is the full shape palette.
var Shapes = MustSet(Square, Circle, Triangle, Star)

// String returns the lowercase shape name.
func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("shape(%d)", int(s))
	}
	return shapeNames[s]
}

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	return s >= 0 && int(s) < len(shapeNames)
}

// Glyph returns the rune used to draw the shape in a terminal.
func (s Shape) Glyph() rune {
	switch s {
	case Square:
		return '■'
	case Circle:
		return '●'
	case Triangle:
		return '▲'
	case Star:
		return '★'
	default:
		return '?'
	}
}

// ParseShape converts a shape name into a Shape.
func ParseShape(name string) (Shape, error) {
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf("catalog: unknown shape %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("catalog: invalid shape %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(text []byte) error {
	parsed, err := ParseShape(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// RandomShape returns a uniformly chosen shape from the full palette.
func RandomShape(rng core.RandomProvider) Shape {
	return Shapes.Random(rng)
}

// RandomShapeExcluding returns a random shape other than not.
func RandomShapeExcluding(rng core.RandomProvider, not Shape) Shape {
	s, _ := Shapes.RandomExcluding(rng, not)
	return s
}

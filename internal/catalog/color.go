package catalog

import (
	"fmt"

	"github.com/eddielee6/ReactionMatch/internal/core"
)

// Color is the fill color of a player or target shape.
type Color int

const (
	Red Color = iota
	Maroon
	Purple
	Green
	Orange
	Cyan
	Blue
	Pink
)

var colorNames = [...]string{
	Red:    "red",
	Maroon: "maroon",
	Purple: "purple",
	Green:  "green",
	Orange: "orange",
	Cyan:   "cyan",
	Blue:   "blue",
	Pink:   "pink",
}

// Colors is the full color palette.
var Colors = MustSet(Red, Maroon, Purple, Green, Orange, Cyan, Blue, Pink)

// String returns the lowercase color name.
func (c Color) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return fmt.Sprintf("color(%d)", int(c))
	}
	return colorNames[c]
}

// Valid reports whether c is a known color.
func (c Color) Valid() bool {
	return c >= 0 && int(c) < len(colorNames)
}

// Terminal returns the screen color used to draw c.
func (c Color) Terminal() core.Color {
	switch c {
	case Red:
		return core.ColorRed
	case Maroon:
		return core.ColorMaroon
	case Purple:
		return core.ColorPurple
	case Green:
		return core.ColorGreen
	case Orange:
		return core.ColorOrange
	case Cyan:
		return core.ColorCyan
	case Blue:
		return core.ColorBlue
	case Pink:
		return core.ColorPink
	default:
		return core.ColorDefault
	}
}

// ParseColor converts a color name into a Color.
func ParseColor(name string) (Color, error) {
	for i, n := range colorNames {
		if n == name {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("catalog: unknown color %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("catalog: invalid color %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// RandomColor returns a uniformly chosen color from the full palette.
func RandomColor(rng core.RandomProvider) Color {
	return Colors.Random(rng)
}

// RandomColorExcluding returns a random color other than not.
// The full palette always has a second color to fall back on.
func RandomColorExcluding(rng core.RandomProvider, not Color) Color {
	c, _ := Colors.RandomExcluding(rng, not)
	return c
}

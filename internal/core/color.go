package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors. The first block mirrors the target palette, the rest are
// interface colors.
const (
	ColorDefault Color = iota
	ColorRed
	ColorMaroon
	ColorPurple
	ColorGreen
	ColorOrange
	ColorCyan
	ColorBlue
	ColorPink
	ColorWhite
	ColorGray
	ColorYellow
)

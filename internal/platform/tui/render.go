package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/eddielee6/ReactionMatch/internal/config"
	"github.com/eddielee6/ReactionMatch/internal/core"
	"github.com/eddielee6/ReactionMatch/internal/engine"
	"github.com/eddielee6/ReactionMatch/internal/puzzle"
)

// Rows reserved above and below the play area.
const (
	hudTop    = 2
	hudBottom = 3
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault: lipgloss.NewStyle(),
	core.ColorRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	core.ColorMaroon:  lipgloss.NewStyle().Foreground(lipgloss.Color("88")),
	core.ColorPurple:  lipgloss.NewStyle().Foreground(lipgloss.Color("93")),
	core.ColorGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
	core.ColorOrange:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("51")),
	core.ColorBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("27")),
	core.ColorPink:    lipgloss.NewStyle().Foreground(lipgloss.Color("213")),
	core.ColorWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorGray:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	core.ColorYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Runs of cells sharing a color are rendered with a single style call.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	var run strings.Builder
	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}
		x := 0
		for x < s.Width() {
			color := s.GetCell(x, y).Color
			run.Reset()
			for ; x < s.Width(); x++ {
				cell := s.GetCell(x, y)
				if cell.Color != color {
					break
				}
				run.WriteRune(cell.Rune)
			}
			style, ok := colorStyles[color]
			if !ok || color == core.ColorDefault {
				sb.WriteString(run.String())
				continue
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// viewport projects play-area coordinates (origin at the centre, y up)
// onto screen cells. Cells are roughly twice as tall as they are wide, so
// the horizontal scale is twice the vertical one.
type viewport struct {
	cx, cy int
	scaleX float64 // cells per unit
	scaleY float64
}

// newViewport fits the whole play area into a width x height screen.
func newViewport(width, height int, pf config.Playfield) viewport {
	extent := math.Max(pf.TargetDistance, pf.MaxPlayerDistance()) + pf.HitRadius
	if extent <= 0 {
		extent = 1
	}
	rows := max(height-hudTop-hudBottom, 1)

	scaleY := float64(rows-1) / 2 / extent
	scaleX := 2 * scaleY
	if fitX := float64(width-2) / 2 / extent; scaleX > fitX {
		scaleX = fitX
		scaleY = fitX / 2
	}
	if scaleY <= 0 {
		scaleX, scaleY = 0.01, 0.005
	}
	return viewport{
		cx:     width / 2,
		cy:     hudTop + rows/2,
		scaleX: scaleX,
		scaleY: scaleY,
	}
}

// ToCell returns the screen cell for a play-area point.
func (v viewport) ToCell(p core.Point) (int, int) {
	return v.cx + int(math.Round(p.X*v.scaleX)), v.cy - int(math.Round(p.Y*v.scaleY))
}

// ToPlayDelta converts a drag of dx, dy cells into play-area units.
func (v viewport) ToPlayDelta(dx, dy int) core.Point {
	return core.Pt(float64(dx)/v.scaleX, -float64(dy)/v.scaleY)
}

// drawEntity fills the entity's hit circle with its glyph.
func drawEntity(s *core.Screen, v viewport, e puzzle.Entity, radius float64) {
	glyph := e.Shape.Glyph()
	color := e.Color.Terminal()

	rx := int(math.Floor(radius * v.scaleX))
	ry := int(math.Floor(radius * v.scaleY))
	cx, cy := v.ToCell(e.Position)
	for dy := -ry; dy <= ry; dy++ {
		for dx := -rx; dx <= rx; dx++ {
			if ellipseContains(dx, dy, rx, ry) {
				s.SetColor(cx+dx, cy+dy, glyph, color)
			}
		}
	}
	s.SetColor(cx, cy, glyph, color)
}

func ellipseContains(dx, dy, rx, ry int) bool {
	if rx == 0 || ry == 0 {
		return dx == 0 && dy == 0
	}
	nx := float64(dx) / float64(rx)
	ny := float64(dy) / float64(ry)
	return nx*nx+ny*ny <= 1
}

// drawPath dots the segment from a to b.
func drawPath(s *core.Screen, v viewport, a, b core.Point, c core.Color) {
	ax, ay := v.ToCell(a)
	bx, by := v.ToCell(b)
	steps := max(abs(bx-ax), abs(by-ay))
	for i := 1; i < steps; i += 2 {
		p := a.Lerp(b, float64(i)/float64(steps))
		x, y := v.ToCell(p)
		if s.Get(x, y) == ' ' {
			s.SetColor(x, y, '·', c)
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// gameView is what the renderer needs from the game model.
type gameView struct {
	title    string
	level    puzzle.Level
	settings config.LevelSettings
	score    int64
	best     int64
	started  bool
	hinting  bool
	banner   string
	gameOver *engine.GameOverEvent
	help     string
}

// drawGame renders a complete frame onto the screen.
func drawGame(s *core.Screen, f gameView) {
	s.Clear()
	w, h := s.Width(), s.Height()
	v := newViewport(w, h, f.settings.Playfield)
	radius := f.settings.Playfield.HitRadius

	// HUD
	s.DrawText(1, 0, fmt.Sprintf("Score: %d", f.score), core.ColorWhite)
	best := fmt.Sprintf("Best: %d", f.best)
	s.DrawText(w-len(best)-1, 0, best, core.ColorGray)
	s.DrawTextCentered(0, f.title, core.ColorYellow)
	if f.level.Index > 0 {
		s.DrawTextCentered(1, fmt.Sprintf("Level %d", f.level.Index), core.ColorGray)
	}

	if f.level.Index > 0 && f.gameOver == nil {
		if f.hinting {
			if winner, i := f.level.Winner(); i >= 0 {
				drawPath(s, v, f.level.Player.Center, winner.Position, core.ColorGray)
			}
		}
		for _, t := range f.level.Targets {
			drawEntity(s, v, t, radius)
		}
		drawEntity(s, v, f.level.Player.Entity, radius)
	}

	status := statusLine(f)
	s.DrawTextCentered(h-3, status, core.ColorWhite)
	if f.level.State == puzzle.StatePlaying {
		drawTimeBar(s, h-2, f.level)
	}
	if f.banner != "" {
		s.DrawTextCentered(hudTop, f.banner, core.ColorGreen)
	}
	s.DrawText(1, h-1, f.help, core.ColorGray)

	if f.gameOver != nil {
		drawGameOver(s, *f.gameOver)
	}
}

func statusLine(f gameView) string {
	switch {
	case f.gameOver != nil:
		return ""
	case !f.started:
		return "Swipe to Play"
	case f.level.State == puzzle.StatePlaying:
		return pointsLabel(f.level.PointsAvailable())
	default:
		return ""
	}
}

func pointsLabel(points int) string {
	if points == 1 {
		return "1 point"
	}
	return fmt.Sprintf("%d points", points)
}

// drawTimeBar draws the remaining time as a shrinking bar.
func drawTimeBar(s *core.Screen, y int, lvl puzzle.Level) {
	if lvl.TimeBudget <= 0 {
		return
	}
	width := s.Width() / 2
	frac := core.ClampF(float64(lvl.TimeRemaining)/float64(lvl.TimeBudget), 0, 1)
	filled := int(math.Round(frac * float64(width)))
	x := (s.Width() - width) / 2

	color := core.ColorGreen
	switch {
	case frac < 0.25:
		color = core.ColorRed
	case frac < 0.5:
		color = core.ColorYellow
	}
	s.DrawHLine(x, y, filled, '█', color)
	s.DrawHLine(x+filled, y, width-filled, '░', core.ColorGray)
}

func drawGameOver(s *core.Screen, ev engine.GameOverEvent) {
	lines := []string{
		ev.Reason,
		"",
		fmt.Sprintf("Score: %d", ev.FinalScore),
		fmt.Sprintf("Best:  %d", ev.HighScore),
	}
	if ev.NewHighScore {
		lines = append(lines, "", "New High Score!")
	}
	lines = append(lines, "", "R: play again  B: menu")

	boxW := 0
	for _, l := range lines {
		boxW = max(boxW, len([]rune(l)))
	}
	boxW += 6
	boxH := len(lines) + 2
	x := (s.Width() - boxW) / 2
	y := (s.Height() - boxH) / 2

	for row := y; row < y+boxH; row++ {
		s.DrawHLine(x, row, boxW, ' ', core.ColorDefault)
	}
	s.DrawBox(core.NewRect(x, y, boxW, boxH), core.ColorWhite)
	for i, l := range lines {
		color := core.ColorWhite
		switch {
		case i == 0:
			color = core.ColorRed
		case l == "New High Score!":
			color = core.ColorYellow
		}
		s.DrawTextCentered(y+1+i, l, color)
	}
}

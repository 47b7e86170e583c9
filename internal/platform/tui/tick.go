// Package tui is the Bubble Tea front end. It maps keyboard and mouse input
// onto engine calls, drives the engine clock and draws the play area.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxFrameStep caps a single engine step so a stalled terminal does not
// drain a whole countdown in one frame.
const maxFrameStep = 100 * time.Millisecond

// TickMsg is sent to trigger an engine tick.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// frameClock turns tick timestamps into engine time steps.
type frameClock struct {
	last time.Time
}

// Step returns the time elapsed since the previous call. The first call
// only sets the reference point and returns zero.
func (c *frameClock) Step(now time.Time) time.Duration {
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	dt := now.Sub(c.last)
	c.last = now
	if dt < 0 {
		return 0
	}
	return min(dt, maxFrameStep)
}

// Reset forgets the reference point, e.g. after a pause in ticking.
func (c *frameClock) Reset() {
	c.last = time.Time{}
}

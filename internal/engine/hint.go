package engine

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/eddielee6/ReactionMatch/internal/core"
)

// Hint timings, in seconds.
const (
	hintInitialDelay = 0.5
	hintPause        = 1.25
	hintLeg          = 0.3
)

// hintStep is one link of the hint chain: either a pause or a tween of the
// progress between the centre (0) and the hint point (1).
type hintStep struct {
	wait  float32
	tween *gween.Tween
}

// hintAnimation nudges the player halfway towards the winner and back,
// forever, until the first move. Steps run in order; after the last one
// the chain restarts at loopFrom.
type hintAnimation struct {
	from, to core.Point
	steps    []hintStep
	current  int
	loopFrom int
	elapsed  float32
	progress float32
}

func newHintAnimation(center, winner core.Point) *hintAnimation {
	return &hintAnimation{
		from: center,
		to:   center.Midpoint(winner),
		steps: []hintStep{
			{wait: hintInitialDelay},
			{wait: hintPause},
			{tween: gween.New(0, 1, hintLeg, ease.InOutQuad)},
			{tween: gween.New(1, 0, hintLeg, ease.InOutQuad)},
		},
		loopFrom: 1,
	}
}

// Update advances the animation and returns the player position.
func (h *hintAnimation) Update(dt time.Duration) core.Point {
	remaining := float32(dt.Seconds())
	for remaining > 0 {
		step := &h.steps[h.current]

		if step.tween == nil {
			left := step.wait - h.elapsed
			if remaining < left {
				h.elapsed += remaining
				break
			}
			remaining -= left
			h.next()
			continue
		}

		left := hintLeg - h.elapsed
		progress, finished := step.tween.Update(remaining)
		h.progress = progress
		if !finished {
			h.elapsed += remaining
			break
		}
		remaining -= left
		h.next()
	}
	return h.Position()
}

func (h *hintAnimation) next() {
	h.elapsed = 0
	h.current++
	if h.current >= len(h.steps) {
		h.current = h.loopFrom
	}
	if t := h.steps[h.current].tween; t != nil {
		t.Reset()
	}
}

// Position returns the current animated player position.
func (h *hintAnimation) Position() core.Point {
	return h.from.Lerp(h.to, float64(h.progress))
}

// Target returns the furthest point the hint reaches.
func (h *hintAnimation) Target() core.Point {
	return h.to
}

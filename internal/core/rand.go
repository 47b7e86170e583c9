package core

import "math/rand"

// RandomProvider samples uniform integers. Everything that needs randomness
// receives one, so a seeded or scripted provider makes games reproducible.
type RandomProvider interface {
	// IntRange returns a uniform integer in the closed range [lo, hi].
	IntRange(lo, hi int) int
}

// SeededRandom is a RandomProvider backed by math/rand.
type SeededRandom struct {
	rng *rand.Rand
}

// NewSeededRandom creates a provider with a fixed seed.
func NewSeededRandom(seed int64) *SeededRandom {
	return &SeededRandom{rng: rand.New(rand.NewSource(seed))}
}

// IntRange returns a uniform integer in [lo, hi]. If hi < lo, lo is returned.
func (r *SeededRandom) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.rng.Intn(hi-lo+1)
}

// ScriptedRandom replays a fixed list of values, wrapping around at the end.
// Each value is clamped into the requested range. Used by tests to force
// particular levels.
type ScriptedRandom struct {
	values []int
	next   int
}

// NewScriptedRandom creates a provider that returns values in order.
func NewScriptedRandom(values ...int) *ScriptedRandom {
	return &ScriptedRandom{values: values}
}

// IntRange returns the next scripted value clamped to [lo, hi].
func (r *ScriptedRandom) IntRange(lo, hi int) int {
	if len(r.values) == 0 {
		return lo
	}
	v := r.values[r.next%len(r.values)]
	r.next++
	if hi < lo {
		return lo
	}
	return Clamp(v, lo, hi)
}

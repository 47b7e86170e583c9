// Package catalog defines the target colors and shapes and the sampling
// helpers used to draw players, winners and distractors.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/eddielee6/ReactionMatch/internal/core"
)

// ErrSingleVariant is returned when a value must be excluded from a set that
// holds nothing else.
var ErrSingleVariant = errors.New("catalog: cannot exclude the only variant")

// ErrEmptySet is returned when a set is built without variants.
var ErrEmptySet = errors.New("catalog: set has no variants")

// Set is an ordered collection of distinct variants of one enumeration.
type Set[T comparable] struct {
	items []T
}

// NewSet builds a set from the given variants, dropping duplicates while
// keeping first-seen order.
func NewSet[T comparable](items ...T) (Set[T], error) {
	if len(items) == 0 {
		return Set[T]{}, ErrEmptySet
	}
	uniq := make([]T, 0, len(items))
	for _, it := range items {
		if !slices.Contains(uniq, it) {
			uniq = append(uniq, it)
		}
	}
	return Set[T]{items: uniq}, nil
}

// MustSet is like NewSet but panics on an empty list.
// Only meant for the package-level palettes.
func MustSet[T comparable](items ...T) Set[T] {
	s, err := NewSet(items...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of variants.
func (s Set[T]) Len() int {
	return len(s.items)
}

// Items returns a copy of the variants.
func (s Set[T]) Items() []T {
	return slices.Clone(s.items)
}

// Contains reports whether v is one of the variants.
func (s Set[T]) Contains(v T) bool {
	return slices.Contains(s.items, v)
}

// Random returns a uniformly chosen variant.
func (s Set[T]) Random(rng core.RandomProvider) T {
	return s.items[rng.IntRange(0, len(s.items)-1)]
}

// RandomExcluding returns a uniformly chosen variant other than not.
// An index in [0, n-2] is mapped onto the remaining variants, so the draw
// always terminates. Excluding a value the set does not hold is a plain Random.
func (s Set[T]) RandomExcluding(rng core.RandomProvider, not T) (T, error) {
	idx := slices.Index(s.items, not)
	if idx < 0 {
		return s.Random(rng), nil
	}
	if len(s.items) < 2 {
		var zero T
		return zero, fmt.Errorf("%w (%v)", ErrSingleVariant, not)
	}
	pick := rng.IntRange(0, len(s.items)-2)
	if pick >= idx {
		pick++
	}
	return s.items[pick], nil
}

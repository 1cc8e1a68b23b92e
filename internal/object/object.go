package object

import (
	"math/rand"

	"github.com/tomz197/danmaku/internal/draw"
	"github.com/tomz197/danmaku/internal/loop/config"
	"github.com/tomz197/danmaku/internal/physics"
)

// Playfield is the rectangular simulation area, in logical units.
type Playfield struct {
	Width  float64
	Height float64
}

// Valid reports whether entities can be sized against the playfield.
func (f Playfield) Valid() bool {
	return f.Width > 0 && f.Height > 0
}

// CenterX returns the horizontal centre of the playfield.
func (f Playfield) CenterX() float64 {
	return f.Width / 2
}

// ClampX keeps an entity of width w fully inside the playfield horizontally.
func (f Playfield) ClampX(x, w float64) float64 {
	return physics.Clamp(x, w/2, f.Width-w/2)
}

// UpdateContext provides all the information an entity needs during update.
type UpdateContext struct {
	Field  Playfield
	Params config.Params
	Rand   *rand.Rand
}

// DrawContext provides drawing resources for entities.
type DrawContext struct {
	Canvas *draw.Canvas // Canvas in playfield units (2x vertical resolution)
}

// Swarm is an unordered entity collection with O(1) append and O(1)
// swap-removal. Removing an element moves the last element into its slot.
type Swarm[T any] struct {
	items []T
}

// Append adds an entity to the swarm.
func (s *Swarm[T]) Append(v T) {
	s.items = append(s.items, v)
}

// Len returns the number of entities.
func (s *Swarm[T]) Len() int {
	return len(s.items)
}

// At returns a pointer to the i-th entity. The pointer is invalidated by
// RemoveAt and Append.
func (s *Swarm[T]) At(i int) *T {
	return &s.items[i]
}

// Items returns the live entities. Callers must not retain the slice.
func (s *Swarm[T]) Items() []T {
	return s.items
}

// RemoveAt removes the i-th entity by swapping in the last one.
func (s *Swarm[T]) RemoveAt(i int) {
	last := len(s.items) - 1
	s.items[i] = s.items[last]
	var zero T
	s.items[last] = zero
	s.items = s.items[:last]
}

// Prune visits every entity once, last to first, and removes those for which
// remove returns true. Swapped-in entities have already been visited.
func (s *Swarm[T]) Prune(remove func(*T) bool) {
	for i := len(s.items) - 1; i >= 0; i-- {
		if remove(&s.items[i]) {
			s.RemoveAt(i)
		}
	}
}

// Clear removes every entity, keeping the backing array.
func (s *Swarm[T]) Clear() {
	clear(s.items)
	s.items = s.items[:0]
}

// Clone returns a copy of the live entities.
func (s *Swarm[T]) Clone() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

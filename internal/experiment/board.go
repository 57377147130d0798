package experiment

import (
	"time"

	"github.com/verte-zerg/fitts/internal/geometry"
)

// Board holds the targets of the current round and which one is marked.
type Board struct {
	selector *Selector
	targets  []geometry.Target
	marked   int
	markedAt time.Time
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{selector: NewSelector(), marked: -1}
}

// Place replaces the targets with a fresh ring.
func (b *Board) Place(count int, radius, distance float64, center geometry.Point) {
	b.targets = geometry.Ring(count, radius, distance, center)
	b.marked = -1
}

// Clear removes all targets.
func (b *Board) Clear() {
	b.targets = nil
	b.marked = -1
}

// Mark unmarks every target, marks the next one chosen by the selector and
// remembers when it was marked.
func (b *Board) Mark(now time.Time) {
	for i := range b.targets {
		b.targets[i].Marked = false
	}
	idx := b.selector.Next(len(b.targets))
	if idx < 0 {
		b.marked = -1
		return
	}
	b.targets[idx].Marked = true
	b.marked = idx
	b.markedAt = now
}

// Marked returns the marked target.
func (b *Board) Marked() (geometry.Target, bool) {
	if b.marked < 0 || b.marked >= len(b.targets) {
		return geometry.Target{}, false
	}
	return b.targets[b.marked], true
}

// MarkedIndex returns the index of the marked target or -1.
func (b *Board) MarkedIndex() int {
	return b.marked
}

// MarkedAt returns when the current target was marked.
func (b *Board) MarkedAt() time.Time {
	return b.markedAt
}

// Len returns the number of targets on the board.
func (b *Board) Len() int {
	return len(b.targets)
}

// Targets returns a copy of the targets for rendering.
func (b *Board) Targets() []geometry.Target {
	return append([]geometry.Target(nil), b.targets...)
}

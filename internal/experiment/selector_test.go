package experiment

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/fitts/internal/geometry"
)

func selectSequence(s *Selector, n, count int) []int {
	out := make([]int, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, s.Next(n))
	}
	return out
}

func TestSelectorSevenTargets(t *testing.T) {
	got := selectSequence(NewSelector(), 7, 14)
	want := []int{0, 4, 1, 5, 2, 6, 3, 0, 4, 1, 5, 2, 6, 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected selection sequence (-want +got):\n%s", diff)
	}
}

func TestSelectorStateHasPeriodN(t *testing.T) {
	for _, n := range []int{3, 5, 7, 9} {
		s := NewSelector()
		s.Next(n)
		prev, first := s.State()
		for i := 0; i < n; i++ {
			s.Next(n)
		}
		gotPrev, gotFirst := s.State()
		assert.Equal(t, prev, gotPrev, "n=%d", n)
		assert.Equal(t, first, gotFirst, "n=%d", n)
	}
}

func TestSelectorVisitsEveryTargetOnOddRing(t *testing.T) {
	const n = 7
	counts := make([]int, n)
	for _, idx := range selectSequence(NewSelector(), n, n*3) {
		counts[idx]++
	}
	for i, c := range counts {
		assert.Equal(t, 3, c, "target %d", i)
	}
}

func TestSelectorEvenRingUnevenVisits(t *testing.T) {
	got := selectSequence(NewSelector(), 6, 8)
	want := []int{0, 3, 1, 4, 2, 5, 3, 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected selection sequence (-want +got):\n%s", diff)
	}
}

func TestSelectorAlternatesToOppositeSide(t *testing.T) {
	const n = 7
	center := geometry.Point{X: 0, Y: 0}
	ring := geometry.Ring(n, 10, 100, center)
	s := NewSelector()
	prev := ring[s.Next(n)]
	for i := 0; i < n-1; i++ {
		next := ring[s.Next(n)]
		assert.Greater(t, geometry.Dist(prev.Center, next.Center), 150.0, "step %d moves across the ring", i)
		prev = next
	}
}

func TestSelectorNoTargets(t *testing.T) {
	s := NewSelector()
	assert.Equal(t, -1, s.Next(0))
	prev, first := s.State()
	assert.Equal(t, 0, prev)
	assert.True(t, first)
}

func TestBoardMarkHighlightsSingleTarget(t *testing.T) {
	b := NewBoard()
	b.Place(7, 10, 100, geometry.Point{X: 350, Y: 350})
	now := time.Unix(100, 0)
	for i := 0; i < 10; i++ {
		b.Mark(now.Add(time.Duration(i) * time.Second))
		marked := 0
		for _, target := range b.Targets() {
			if target.Marked {
				marked++
			}
		}
		require.Equal(t, 1, marked)
		assert.Equal(t, now.Add(time.Duration(i)*time.Second), b.MarkedAt())
	}
	target, ok := b.Marked()
	require.True(t, ok)
	assert.True(t, target.Marked)

	b.Clear()
	_, ok = b.Marked()
	assert.False(t, ok)
	assert.Equal(t, -1, b.MarkedIndex())
}

func TestSelectorNeverReturnsToInitialState(t *testing.T) {
	for _, n := range []int{3, 6, 7} {
		s := NewSelector()
		for i := 0; i < n*4; i++ {
			s.Next(n)
			prev, first := s.State()
			assert.False(t, prev == 0 && first, "n=%d step %d back at (0, true)", n, i)
		}
	}

	s := NewSelector()
	selectSequence(s, 7, 7)
	prev, first := s.State()
	assert.Equal(t, 3, prev)
	assert.False(t, first)
}

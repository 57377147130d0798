package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingPlacesTargetsAtDistance(t *testing.T) {
	center := Point{X: 350, Y: 350}
	for _, count := range []int{2, 3, 7, 12} {
		targets := Ring(count, 25, 110, center)
		require.Len(t, targets, count)
		for i, target := range targets {
			assert.InDelta(t, 110, Dist(center, target.Center), 1e-9, "target %d of %d", i, count)
			assert.Equal(t, 25.0, target.Radius)
			assert.False(t, target.Marked)
		}
	}
}

func TestRingAnglesEquallySpaced(t *testing.T) {
	center := Point{X: 0, Y: 0}
	count := 7
	targets := Ring(count, 10, 100, center)
	step := 2 * math.Pi / float64(count)
	for i, target := range targets {
		angle := math.Atan2(target.Center.Y-center.Y, target.Center.X-center.X)
		if angle < 0 {
			angle += 2 * math.Pi
		}
		assert.InDelta(t, step*float64(i), angle, 1e-9, "target %d", i)
	}
}

func TestRingFirstTargetOnPositiveXAxis(t *testing.T) {
	targets := Ring(4, 5, 10, Point{X: 100, Y: 50})
	require.Len(t, targets, 4)
	assert.InDelta(t, 110, targets[0].Center.X, 1e-9)
	assert.InDelta(t, 50, targets[0].Center.Y, 1e-9)
	assert.InDelta(t, 90, targets[2].Center.X, 1e-9)
	assert.InDelta(t, 60, targets[1].Center.Y, 1e-9)
}

func TestRingZeroCount(t *testing.T) {
	assert.Empty(t, Ring(0, 5, 10, Point{}))
}

func TestContainsStrictBoundary(t *testing.T) {
	target := Target{Center: Point{X: 10, Y: 10}, Radius: 5}
	assert.False(t, target.Contains(Point{X: 15, Y: 10}), "boundary is a miss")
	assert.True(t, target.Contains(Point{X: 15 - 1e-9, Y: 10}))
	assert.True(t, target.Contains(Point{X: 10, Y: 10}))
	assert.False(t, target.Contains(Point{X: 10, Y: 16}))
}

func TestPointArithmetic(t *testing.T) {
	p := Point{X: 3, Y: 4}
	q := Point{X: 1, Y: 2}
	assert.Equal(t, Point{X: 4, Y: 6}, p.Add(q))
	assert.Equal(t, Point{X: 2, Y: 2}, p.Sub(q))
	assert.Equal(t, Point{X: 1.5, Y: 2}, p.Scale(0.5))
	assert.InDelta(t, 5, Dist(Point{}, p), 1e-12)
}

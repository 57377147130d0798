package latency

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/verte-zerg/fitts/internal/geometry"
)

func TestQueueDrainRespectsDelay(t *testing.T) {
	q := NewQueue(0)
	base := time.Unix(1000, 0)
	delay := 150 * time.Millisecond
	q.Push(geometry.Point{X: 1}, base)
	q.Push(geometry.Point{X: 2}, base.Add(50*time.Millisecond))
	q.Push(geometry.Point{X: 3}, base.Add(100*time.Millisecond))

	_, ok := q.Drain(base.Add(149*time.Millisecond), delay)
	assert.False(t, ok, "nothing is due before the delay elapsed")
	assert.Equal(t, 3, q.Len())

	p, ok := q.Drain(base.Add(150*time.Millisecond), delay)
	require.True(t, ok)
	assert.Equal(t, 1.0, p.X)
	assert.Equal(t, 2, q.Len())

	p, ok = q.Drain(base.Add(260*time.Millisecond), delay)
	require.True(t, ok)
	assert.Equal(t, 3.0, p.X, "drain returns the newest due position")
	assert.Equal(t, 0, q.Len())
}

func TestQueueDrainStopsAtFirstPending(t *testing.T) {
	q := NewQueue(0)
	base := time.Unix(1000, 0)
	q.Push(geometry.Point{X: 1}, base)
	q.Push(geometry.Point{X: 2}, base.Add(time.Second))
	q.Push(geometry.Point{X: 3}, base.Add(10*time.Millisecond))

	p, ok := q.Drain(base.Add(100*time.Millisecond), 50*time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, 1.0, p.X)
	assert.Equal(t, 2, q.Len(), "entries behind a pending one stay queued")
}

func TestQueueBoundedDropsOldest(t *testing.T) {
	q := NewQueue(2)
	base := time.Unix(1000, 0)
	for i := 0; i < 4; i++ {
		q.Push(geometry.Point{X: float64(i)}, base.Add(time.Duration(i)*time.Millisecond))
	}
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 2, q.Dropped())
	p, ok := q.Drain(base.Add(time.Hour), 0)
	require.True(t, ok)
	assert.Equal(t, 3.0, p.X)
}

func TestCursorQueueModeNeverShowsEarly(t *testing.T) {
	c := NewCursor(100*time.Millisecond, ModeQueue)
	c.SetEnabled(true)
	base := time.Unix(2000, 0)

	var shown []float64
	for step := 0; step < 50; step++ {
		now := base.Add(time.Duration(step) * 10 * time.Millisecond)
		c.Move(geometry.Point{X: float64(step)}, geometry.Point{X: 1}, now)
		if c.Tick(now) {
			x := c.Position().X
			observedAt := base.Add(time.Duration(x) * 10 * time.Millisecond)
			assert.GreaterOrEqual(t, now.Sub(observedAt), 100*time.Millisecond)
			shown = append(shown, x)
		}
	}
	require.NotEmpty(t, shown)
	for i := 1; i < len(shown); i++ {
		assert.Greater(t, shown[i], shown[i-1], "positions are shown in order")
	}
}

func TestCursorDisabledFollowsImmediately(t *testing.T) {
	c := NewCursor(time.Second, ModeQueue)
	c.Move(geometry.Point{X: 5, Y: 6}, geometry.Point{}, time.Now())
	assert.Equal(t, geometry.Point{X: 5, Y: 6}, c.Position())
	assert.Equal(t, 0, c.Pending())
	assert.False(t, c.Tick(time.Now()))
}

func TestCursorOffsetMode(t *testing.T) {
	c := NewCursor(500*time.Millisecond, ModeOffset)
	c.SetEnabled(true)
	c.Move(geometry.Point{X: 100, Y: 100}, geometry.Point{X: 10, Y: -4}, time.Now())
	assert.Equal(t, geometry.Point{X: 95, Y: 102}, c.Position())
	assert.Equal(t, 0, c.Pending())
}

func TestCursorDisableDiscardsPending(t *testing.T) {
	c := NewCursor(time.Second, ModeQueue)
	c.SetEnabled(true)
	c.Move(geometry.Point{X: 1}, geometry.Point{}, time.Now())
	require.Equal(t, 1, c.Pending())
	c.SetEnabled(false)
	assert.Equal(t, 0, c.Pending())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Offset")
	require.NoError(t, err)
	assert.Equal(t, ModeOffset, m)
	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeQueue, m)
	_, err = ParseMode("teleport")
	assert.Error(t, err)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

func TestPlayerAppliesQueuedPositions(t *testing.T) {
	defer goleak.VerifyNone(t)

	base := time.Unix(3000, 0)
	clock := &fakeClock{now: base}
	c := NewCursor(50*time.Millisecond, ModeQueue)
	c.SetEnabled(true)
	c.Move(geometry.Point{X: 42, Y: 7}, geometry.Point{}, base)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	player := NewPlayer(c, WithClock(clock.Now), WithInterval(time.Millisecond))
	go func() {
		done <- player.Run(ctx)
	}()

	clock.Set(base.Add(60 * time.Millisecond))
	require.Eventually(t, func() bool {
		return c.Position() == geometry.Point{X: 42, Y: 7}
	}, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

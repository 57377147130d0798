package simulate

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/verte-zerg/fitts/internal/experiment"
	"github.com/verte-zerg/fitts/internal/geometry"
	"github.com/verte-zerg/fitts/internal/latency"
	"github.com/verte-zerg/fitts/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var canvas = geometry.Point{X: 700, Y: 700}

func newExperiment(t *testing.T, cfg model.Config) *experiment.Experiment {
	t.Helper()
	exp, err := experiment.New(cfg, canvas.Scale(0.5), zaptest.NewLogger(t))
	require.NoError(t, err)
	return exp
}

func TestClockAdvance(t *testing.T) {
	start := time.Unix(10, 0)
	c := NewClock(start)
	assert.Equal(t, start, c.Now())
	assert.Equal(t, start.Add(time.Second), c.Advance(time.Second))
	assert.Equal(t, start.Add(time.Second), c.Now())
}

func TestMovementTimeFollowsFittsLaw(t *testing.T) {
	p := NewParticipant(Params{A: 100, B: 150}, NewClock(time.Unix(0, 0)), geometry.Point{})
	// D = 30, W = 30: MT = 100 + 150*log2(2) = 250ms.
	assert.Equal(t, 250*time.Millisecond, p.MovementTime(30, 15))
	assert.Equal(t, 100*time.Millisecond, p.MovementTime(0, 15))
	assert.Greater(t, p.MovementTime(300, 5), p.MovementTime(300, 40))
}

func TestReachEndsWithClick(t *testing.T) {
	clock := NewClock(time.Unix(0, 0))
	params := Params{A: 100, B: 150, Steps: 4, Seed: 3}
	p := NewParticipant(params, clock, geometry.Point{X: 0, Y: 0})
	target := geometry.Target{Center: geometry.Point{X: 90, Y: 0}, Radius: 15}

	events := p.Reach(target)
	require.Len(t, events, 5)
	var sum geometry.Point
	for i, ev := range events[:4] {
		assert.Equal(t, experiment.EventMove, ev.Kind)
		sum = sum.Add(ev.Delta)
		if i > 0 {
			assert.True(t, ev.At.After(events[i-1].At))
		}
	}
	click := events[4]
	assert.Equal(t, experiment.EventClick, click.Kind)
	assert.Equal(t, experiment.ButtonLeft, click.Button)
	assert.Equal(t, events[3].Point, click.Point)
	assert.Equal(t, events[3].At, click.At)
	assert.InDelta(t, click.Point.X, sum.X, 1e-9)
	assert.InDelta(t, click.Point.Y, sum.Y, 1e-9)

	// D = 90, W = 30: MT = 100 + 150*2 = 400ms, split over four steps.
	assert.InDelta(t, float64(400*time.Millisecond), float64(click.At.Sub(time.Unix(0, 0))), float64(time.Microsecond))
}

func TestEaseInOutCubic(t *testing.T) {
	assert.Equal(t, 0.0, easeInOutCubic(0))
	assert.Equal(t, 0.5, easeInOutCubic(0.5))
	assert.Equal(t, 1.0, easeInOutCubic(1))
	assert.Less(t, easeInOutCubic(0.25), 0.25)
	assert.Greater(t, easeInOutCubic(0.75), 0.75)
}

func TestRunCompletesExperiment(t *testing.T) {
	cfg := model.Config{
		ParticipantID: "sim",
		Repetitions:   2,
		Conditions: []model.Condition{
			{Radius: 20, Distance: 100},
			{Radius: 40, Distance: 250},
		},
		Device:  "mouse",
		Targets: 7,
	}
	exp := newExperiment(t, cfg)
	start := time.Unix(1700000000, 0)
	err := Run(context.Background(), exp, Options{
		Params: DefaultParams(),
		Canvas: canvas,
		Start:  start,
		Logger: zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	assert.Equal(t, experiment.StateFinished, exp.State())
	rows := exp.Table().Rows()
	require.Len(t, rows, cfg.Rounds()*cfg.ClicksPerRound())
	for i, s := range rows {
		assert.Equal(t, "sim", s.ParticipantID)
		assert.Equal(t, i/cfg.ClicksPerRound(), s.Trial)
		assert.Greater(t, s.Time, 0.0)
		assert.Equal(t, 0.0, s.Latency)
		assert.False(t, math.IsNaN(s.Accuracy))
		assert.GreaterOrEqual(t, s.ClickTime, float64(start.Unix()))
	}
	assert.Greater(t, exp.Hits(), len(rows)/2)
}

func TestRunWithLatency(t *testing.T) {
	cfg := model.Config{
		ParticipantID: "sim",
		Repetitions:   1,
		Conditions:    []model.Condition{{Radius: 30, Distance: 150}},
		Latency:       150 * time.Millisecond,
		Device:        "mouse",
		Targets:       5,
	}
	exp := newExperiment(t, cfg)
	err := Run(context.Background(), exp, Options{
		Params:  DefaultParams(),
		Latency: true,
		Mode:    latency.ModeQueue,
		Canvas:  canvas,
	})
	require.NoError(t, err)
	require.Equal(t, 2, exp.Table().Len())
	for _, s := range exp.Table().Rows() {
		assert.InDelta(t, 0.15, s.Latency, 1e-9)
	}
}

func TestRunRejectsDegenerateRing(t *testing.T) {
	cfg := model.Config{
		ParticipantID: "sim",
		Repetitions:   1,
		Conditions:    []model.Condition{{Radius: 30, Distance: 150}},
		Targets:       1,
	}
	err := Run(context.Background(), newExperiment(t, cfg), Options{Params: DefaultParams(), Canvas: canvas})
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := model.Config{
		ParticipantID: "sim",
		Repetitions:   1,
		Conditions:    []model.Condition{{Radius: 30, Distance: 150}},
		Targets:       7,
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, newExperiment(t, cfg), Options{Params: DefaultParams(), Canvas: canvas})
	assert.ErrorIs(t, err, context.Canceled)
}

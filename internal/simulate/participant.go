// Package simulate drives an experiment headlessly with a synthetic
// participant whose movement times follow Fitts's law.
package simulate

import (
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/verte-zerg/fitts/internal/experiment"
	"github.com/verte-zerg/fitts/internal/geometry"
)

// Clock is a manually advanced clock safe for concurrent use.
type Clock struct {
	nanos atomic.Int64
}

// NewClock returns a clock set to start.
func NewClock(start time.Time) *Clock {
	c := &Clock{}
	c.nanos.Store(start.UnixNano())
	return c
}

// Now returns the current time of the clock.
func (c *Clock) Now() time.Time {
	return time.Unix(0, c.nanos.Load())
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	return time.Unix(0, c.nanos.Add(int64(d)))
}

// Params shapes the synthetic participant.
type Params struct {
	// A and B are the Fitts's law intercept and slope in milliseconds:
	// MT = A + B*log2(1 + D/W) with W the target diameter.
	A, B float64
	// Noise scales movement time by a uniform factor in [1-Noise, 1+Noise].
	Noise float64
	// Spread is the standard deviation of the aim point, as a fraction of the
	// target radius.
	Spread float64
	// Steps is the number of pointer motion events per movement.
	Steps int
	Seed  int64
}

// DefaultParams returns a participant with typical mouse performance.
func DefaultParams() Params {
	return Params{A: 100, B: 150, Noise: 0.15, Spread: 0.45, Steps: 12, Seed: 1}
}

// Participant produces the input events of one simulated person.
type Participant struct {
	params Params
	rng    *rand.Rand
	clock  *Clock
	pos    geometry.Point
}

// NewParticipant returns a participant whose pointer rests at start.
func NewParticipant(params Params, clock *Clock, start geometry.Point) *Participant {
	if params.Steps < 1 {
		params.Steps = 1
	}
	return &Participant{
		params: params,
		rng:    rand.New(rand.NewSource(params.Seed)),
		clock:  clock,
		pos:    start,
	}
}

// MovementTime returns the noiseless Fitts's law movement time.
func (p *Participant) MovementTime(distance, radius float64) time.Duration {
	width := 2 * radius
	if width <= 0 {
		width = 1
	}
	mt := p.params.A + p.params.B*math.Log2(1+distance/width)
	return time.Duration(mt * float64(time.Millisecond))
}

// Reach plans the motion towards target followed by a left click. Event
// times advance the shared clock.
func (p *Participant) Reach(target geometry.Target) []experiment.Event {
	aim := geometry.Point{
		X: target.Center.X + p.rng.NormFloat64()*p.params.Spread*target.Radius,
		Y: target.Center.Y + p.rng.NormFloat64()*p.params.Spread*target.Radius,
	}
	mt := p.MovementTime(geometry.Dist(p.pos, target.Center), target.Radius)
	mt += time.Duration(float64(mt) * p.params.Noise * (p.rng.Float64()*2 - 1))

	steps := p.params.Steps
	events := make([]experiment.Event, 0, steps+1)
	from, prev := p.pos, p.pos
	for i := 1; i <= steps; i++ {
		eased := easeInOutCubic(float64(i) / float64(steps))
		next := from.Add(aim.Sub(from).Scale(eased))
		events = append(events, experiment.Event{
			Kind:  experiment.EventMove,
			Point: next,
			Delta: next.Sub(prev),
			At:    p.clock.Advance(mt / time.Duration(steps)),
		})
		prev = next
	}
	p.pos = aim
	events = append(events, experiment.Event{
		Kind:   experiment.EventClick,
		Point:  aim,
		Button: experiment.ButtonLeft,
		At:     p.clock.Now(),
	})
	return events
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

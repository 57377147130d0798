package experiment

import "github.com/verte-zerg/fitts/internal/geometry"

const (
	startCircleRadius = 80
	toggleWidth       = 200
	toggleHeight      = 60
)

// Rect is an axis-aligned rectangle on the canvas.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p geometry.Point) bool {
	return r.X <= p.X && p.X <= r.X+r.W && r.Y <= p.Y && p.Y <= r.Y+r.H
}

// StartScreen is shown before the first round: a start circle in the centre
// and a box that toggles simulated latency.
type StartScreen struct {
	visible        bool
	latencyEnabled bool
	circle         geometry.Target
	toggle         Rect
}

// NewStartScreen lays out the start screen for a canvas of the given size.
func NewStartScreen(width, height float64) *StartScreen {
	return &StartScreen{
		visible: true,
		circle: geometry.Target{
			Center: geometry.Point{X: width / 2, Y: height / 2},
			Radius: startCircleRadius,
			Marked: true,
		},
		toggle: Rect{
			X: width/2 - toggleWidth/2,
			Y: height - height/5 - toggleHeight,
			W: toggleWidth,
			H: toggleHeight,
		},
	}
}

// Click handles a left click and reports whether it started the experiment.
// The start circle includes its boundary.
func (s *StartScreen) Click(p geometry.Point) bool {
	if !s.visible {
		return false
	}
	if s.toggle.Contains(p) {
		s.latencyEnabled = !s.latencyEnabled
	}
	if geometry.Dist(p, s.circle.Center) <= s.circle.Radius {
		s.visible = false
		return true
	}
	return false
}

// Dismiss hides the start screen.
func (s *StartScreen) Dismiss() {
	s.visible = false
}

// SetLatency sets the latency toggle.
func (s *StartScreen) SetLatency(enabled bool) {
	s.latencyEnabled = enabled
}

// Visible reports whether the start screen is shown.
func (s *StartScreen) Visible() bool {
	return s.visible
}

// LatencyEnabled reports the state of the latency toggle.
func (s *StartScreen) LatencyEnabled() bool {
	return s.latencyEnabled
}

// Circle returns the start circle.
func (s *StartScreen) Circle() geometry.Target {
	return s.circle
}

// Toggle returns the latency toggle box.
func (s *StartScreen) Toggle() Rect {
	return s.toggle
}

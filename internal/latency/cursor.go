package latency

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/fitts/internal/geometry"
)

// Mode selects how latency is simulated.
type Mode int

const (
	// ModeQueue replays positions once the delay has elapsed.
	ModeQueue Mode = iota
	// ModeOffset shifts the displayed position against the movement direction.
	ModeOffset
)

func (m Mode) String() string {
	if m == ModeOffset {
		return "offset"
	}
	return "queue"
}

// ParseMode parses queue or offset.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "queue":
		return ModeQueue, nil
	case "offset":
		return ModeOffset, nil
	default:
		return 0, fmt.Errorf("unknown latency mode %q (use queue or offset)", s)
	}
}

// PlaybackRate is how often queued positions are applied to the cursor.
const PlaybackRate = 60

// Offset approximates lag without a queue by moving the displayed position
// back along the last movement delta, scaled by the delay in seconds.
func Offset(p, delta geometry.Point, delay time.Duration) geometry.Point {
	return p.Sub(delta.Scale(delay.Seconds()))
}

// Cursor is the displayed pointer. While enabled it lags behind the real
// pointer according to its mode; otherwise it follows immediately.
type Cursor struct {
	mu      sync.Mutex
	queue   *Queue
	delay   time.Duration
	mode    Mode
	enabled bool
	pos     geometry.Point
}

// NewCursor returns a disabled cursor with the given delay and mode.
func NewCursor(delay time.Duration, mode Mode) *Cursor {
	return &Cursor{queue: NewQueue(DefaultCapacity), delay: delay, mode: mode}
}

// SetEnabled turns latency simulation on or off. Pending positions are
// discarded when it is turned off.
func (c *Cursor) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
	if !enabled {
		c.queue.Reset()
	}
}

// Enabled reports whether latency simulation is on.
func (c *Cursor) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Delay returns the simulated latency.
func (c *Cursor) Delay() time.Duration {
	return c.delay
}

// Mode returns the simulation mode.
func (c *Cursor) Mode() Mode {
	return c.mode
}

// Move records a pointer movement observed at the given time.
func (c *Cursor) Move(p, delta geometry.Point, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case !c.enabled:
		c.pos = p
	case c.mode == ModeOffset:
		c.pos = Offset(p, delta, c.delay)
	default:
		c.queue.Push(p, at)
	}
}

// Tick applies every queued position that is due at now and reports whether
// the displayed position changed.
func (c *Cursor) Tick(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled || c.mode != ModeQueue {
		return false
	}
	p, ok := c.queue.Drain(now, c.delay)
	if !ok {
		return false
	}
	c.pos = p
	return true
}

// Position returns the displayed position.
func (c *Cursor) Position() geometry.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

// Pending returns the number of queued positions.
func (c *Cursor) Pending() int {
	return c.queue.Len()
}

// Player ticks a cursor at a fixed rate.
type Player struct {
	cursor   *Cursor
	interval time.Duration
	now      func() time.Time
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithClock makes the player read time from now instead of the wall clock.
func WithClock(now func() time.Time) PlayerOption {
	return func(p *Player) {
		p.now = now
	}
}

// WithInterval overrides the tick interval.
func WithInterval(d time.Duration) PlayerOption {
	return func(p *Player) {
		if d > 0 {
			p.interval = d
		}
	}
}

// NewPlayer returns a player ticking at PlaybackRate.
func NewPlayer(c *Cursor, opts ...PlayerOption) *Player {
	p := &Player{
		cursor:   c,
		interval: time.Second / PlaybackRate,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run ticks the cursor until ctx is done.
func (p *Player) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.cursor.Tick(p.now())
		}
	}
}

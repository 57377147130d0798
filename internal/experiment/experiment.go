// Package experiment implements the Fitts's-Law trial sequencer.
package experiment

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/fitts/internal/geometry"
	"github.com/verte-zerg/fitts/internal/model"
	"github.com/verte-zerg/fitts/internal/session"
)

// DefaultTargets is the number of targets on the ring.
const DefaultTargets = 7

// State is the sequencer state.
type State int

const (
	// StateIdle waits for the experiment to start.
	StateIdle State = iota
	// StateRoundActive has targets on screen and accepts clicks.
	StateRoundActive
	// StateFinished has completed every round.
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRoundActive:
		return "round-active"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// ErrNotIdle is returned when starting an experiment that already started.
var ErrNotIdle = errors.New("experiment already started")

// Experiment sequences rounds over the configured conditions and turns
// clicks into samples.
type Experiment struct {
	cfg    model.Config
	center geometry.Point
	logger *zap.Logger

	board *Board
	state State

	round      int
	condition  int
	clicks     int
	hits       int
	missStreak int

	latencyEnabled bool

	buffer []model.Sample
	table  *session.Table
}

// New validates cfg and returns an idle experiment with targets placed
// around center.
func New(cfg model.Config, center geometry.Point, logger *zap.Logger) (*Experiment, error) {
	if len(cfg.Conditions) == 0 {
		return nil, fmt.Errorf("at least one condition is required")
	}
	if cfg.Repetitions < 1 {
		return nil, fmt.Errorf("repetitions must be >= 1")
	}
	if cfg.Trials < 0 {
		return nil, fmt.Errorf("trials must be >= 0")
	}
	if cfg.Targets == 0 {
		cfg.Targets = DefaultTargets
	}
	if cfg.Targets < 0 {
		return nil, fmt.Errorf("targets must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Experiment{
		cfg:    cfg,
		center: center,
		logger: logger,
		board:  NewBoard(),
		table:  session.NewTable(),
	}, nil
}

// Start places the first round's targets and marks the first target.
func (e *Experiment) Start(now time.Time, latencyEnabled bool) error {
	if e.state != StateIdle {
		return ErrNotIdle
	}
	e.latencyEnabled = latencyEnabled
	e.state = StateRoundActive
	e.logger.Info("experiment started",
		zap.String("participant", e.cfg.ParticipantID),
		zap.Int("rounds", e.cfg.Rounds()),
		zap.Int("clicks_per_round", e.cfg.ClicksPerRound()),
		zap.Bool("latency", latencyEnabled),
	)
	e.startRound(now)
	return nil
}

// Click processes a click at p. It returns false when the click was ignored:
// before start, after finishing, or while fewer than two targets exist.
func (e *Experiment) Click(p geometry.Point, now time.Time) (model.Sample, bool) {
	if e.state != StateRoundActive || e.board.Len() <= 1 {
		return model.Sample{}, false
	}
	target, ok := e.board.Marked()
	if !ok {
		return model.Sample{}, false
	}
	markedAt := e.board.MarkedAt()
	distance := geometry.Dist(target.Center, p)
	hit := distance < target.Radius

	e.clicks++
	if hit {
		e.hits++
		e.missStreak = 0
	} else {
		e.missStreak++
	}

	cond := e.currentCondition()
	sample := model.Sample{
		ParticipantID: e.cfg.ParticipantID,
		Trial:         e.round,
		Radius:        cond.Radius,
		Distance:      cond.Distance,
		Latency:       e.recordedLatency(),
		Hit:           hit,
		Time:          now.Sub(markedAt).Seconds(),
		Accuracy:      distance,
		ClickX:        p.X,
		ClickY:        p.Y,
		TargetX:       target.Center.X,
		TargetY:       target.Center.Y,
		ClickTime:     float64(now.UnixNano()) / 1e9,
	}
	e.buffer = append(e.buffer, sample)
	e.logger.Debug("click",
		zap.Int("round", e.round),
		zap.Bool("hit", hit),
		zap.Float64("time", sample.Time),
		zap.Float64("accuracy", distance),
	)

	e.board.Mark(now)

	if e.clicks == e.cfg.ClicksPerRound() {
		e.clicks = 0
		e.nextRound(now)
	}
	return sample, true
}

func (e *Experiment) startRound(now time.Time) {
	if e.condition == len(e.cfg.Conditions) {
		e.condition = 0
	}
	cond := e.cfg.Conditions[e.condition]
	e.buffer = nil
	e.board.Place(e.cfg.Targets, cond.Radius, cond.Distance, e.center)
	e.board.Mark(now)
	e.logger.Debug("round started",
		zap.Int("round", e.round),
		zap.Float64("radius", cond.Radius),
		zap.Float64("distance", cond.Distance),
	)
}

func (e *Experiment) nextRound(now time.Time) {
	e.round++
	e.condition++
	e.flush()
	e.board.Clear()

	if e.round != e.cfg.Rounds() {
		e.startRound(now)
		return
	}
	e.state = StateFinished
	e.logger.Info("experiment finished",
		zap.Int("samples", e.table.Len()),
		zap.Int("hits", e.hits),
	)
}

func (e *Experiment) flush() {
	e.table.Append(e.buffer...)
	e.buffer = nil
}

func (e *Experiment) currentCondition() model.Condition {
	idx := e.condition
	if idx >= len(e.cfg.Conditions) {
		idx = 0
	}
	return e.cfg.Conditions[idx]
}

func (e *Experiment) recordedLatency() float64 {
	if !e.latencyEnabled {
		return 0
	}
	return e.cfg.Latency.Seconds()
}

// State returns the sequencer state.
func (e *Experiment) State() State {
	return e.state
}

// Config returns the run configuration.
func (e *Experiment) Config() model.Config {
	return e.cfg
}

// Round returns the zero-based index of the current round.
func (e *Experiment) Round() int {
	return e.round
}

// Clicks returns the number of clicks processed in the current round.
func (e *Experiment) Clicks() int {
	return e.clicks
}

// Hits returns the number of hits over the whole run.
func (e *Experiment) Hits() int {
	return e.hits
}

// MissStreak returns the number of consecutive misses.
func (e *Experiment) MissStreak() int {
	return e.missStreak
}

// LatencyEnabled reports whether the run records simulated latency.
func (e *Experiment) LatencyEnabled() bool {
	return e.latencyEnabled
}

// Targets returns the targets currently on screen.
func (e *Experiment) Targets() []geometry.Target {
	return e.board.Targets()
}

// Marked returns the target that must be clicked next.
func (e *Experiment) Marked() (geometry.Target, bool) {
	return e.board.Marked()
}

// Buffer returns a copy of the current round's samples.
func (e *Experiment) Buffer() []model.Sample {
	return append([]model.Sample(nil), e.buffer...)
}

// Table returns the session table.
func (e *Experiment) Table() *session.Table {
	return e.table
}

package experiment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/fitts/internal/geometry"
	"github.com/verte-zerg/fitts/internal/latency"
)

// EventKind identifies an input event.
type EventKind int

const (
	// EventStart starts the experiment without going through the start screen.
	EventStart EventKind = iota
	// EventClick is a mouse button press.
	EventClick
	// EventMove is a pointer movement.
	EventMove
	// EventQuit aborts the run.
	EventQuit
)

// Button identifies a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Event is one input event with the time it was observed.
type Event struct {
	Kind    EventKind
	Point   geometry.Point
	Delta   geometry.Point
	Button  Button
	Latency bool
	At      time.Time
}

// Snapshot describes the experiment after an event was applied.
type Snapshot struct {
	State     State
	Round     int
	Marked    geometry.Target
	HasMarked bool
}

// App binds an experiment to its start screen and displayed cursor. All
// methods must be called from the goroutine that owns the event loop.
type App struct {
	exp    *Experiment
	start  *StartScreen
	cursor *latency.Cursor
	logger *zap.Logger

	// Observe, when set, is called after the experiment starts and after
	// every click handled while a round is active.
	Observe func(Snapshot)

	quit bool
}

// NewApp returns an App in its initial state.
func NewApp(exp *Experiment, start *StartScreen, cursor *latency.Cursor, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{exp: exp, start: start, cursor: cursor, logger: logger}
}

// Handle applies one event and reports whether the run is over.
func (a *App) Handle(ev Event) bool {
	if a.Done() {
		return true
	}
	switch ev.Kind {
	case EventQuit:
		a.quit = true
		a.logger.Info("run aborted", zap.Int("round", a.exp.Round()))
	case EventMove:
		a.cursor.Move(ev.Point, ev.Delta, ev.At)
	case EventStart:
		a.start.SetLatency(ev.Latency)
		a.start.Dismiss()
		a.begin(ev.At)
	case EventClick:
		if ev.Button != ButtonLeft {
			break
		}
		if a.start.Visible() {
			if a.start.Click(ev.Point) {
				a.begin(ev.At)
			}
			break
		}
		a.exp.Click(ev.Point, ev.At)
		if a.exp.State() == StateFinished {
			a.cursor.SetEnabled(false)
		}
		a.notify()
	}
	return a.Done()
}

func (a *App) begin(at time.Time) {
	enabled := a.start.LatencyEnabled()
	if err := a.exp.Start(at, enabled); err != nil {
		a.logger.Warn("start ignored", zap.Error(err))
		return
	}
	a.cursor.SetEnabled(enabled)
	a.notify()
}

func (a *App) notify() {
	if a.Observe == nil {
		return
	}
	target, ok := a.exp.Marked()
	a.Observe(Snapshot{
		State:     a.exp.State(),
		Round:     a.exp.Round(),
		Marked:    target,
		HasMarked: ok,
	})
}

// Run applies events until the experiment finishes, a quit event arrives,
// events is closed or ctx is done.
func (a *App) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if a.Handle(ev) {
				return nil
			}
		}
	}
}

// Done reports whether the experiment finished or was aborted.
func (a *App) Done() bool {
	return a.quit || a.exp.State() == StateFinished
}

// Quit reports whether the run was aborted.
func (a *App) Quit() bool {
	return a.quit
}

// Experiment returns the underlying experiment.
func (a *App) Experiment() *Experiment {
	return a.exp
}

// StartScreen returns the start screen.
func (a *App) StartScreen() *StartScreen {
	return a.start
}

// Cursor returns the displayed cursor.
func (a *App) Cursor() *latency.Cursor {
	return a.cursor
}

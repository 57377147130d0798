package simulate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/fitts/internal/experiment"
	"github.com/verte-zerg/fitts/internal/geometry"
	"github.com/verte-zerg/fitts/internal/latency"
)

// Options configures a simulated run.
type Options struct {
	Params  Params
	Latency bool
	Mode    latency.Mode
	// Canvas is the size of the simulated screen; the start screen is laid
	// out on it and the pointer starts in its centre.
	Canvas geometry.Point
	Start  time.Time
	Logger *zap.Logger
}

// Run plays a whole experiment. The event loop, the participant and the
// latency playback run in their own goroutines and stop together.
func Run(ctx context.Context, exp *experiment.Experiment, opts Options) error {
	if exp.Config().Targets < 2 {
		return fmt.Errorf("simulation needs at least 2 targets, got %d", exp.Config().Targets)
	}
	if exp.State() != experiment.StateIdle {
		return experiment.ErrNotIdle
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Start.IsZero() {
		opts.Start = time.Now()
	}
	clock := NewClock(opts.Start)
	center := opts.Canvas.Scale(0.5)

	cursor := latency.NewCursor(exp.Config().Latency, opts.Mode)
	app := experiment.NewApp(exp, experiment.NewStartScreen(opts.Canvas.X, opts.Canvas.Y), cursor, logger)
	player := latency.NewPlayer(cursor, latency.WithClock(clock.Now))
	participant := NewParticipant(opts.Params, clock, center)

	g, gctx := errgroup.WithContext(ctx)
	playCtx, stopPlayback := context.WithCancel(gctx)
	defer stopPlayback()

	events := make(chan experiment.Event)
	snapshots := make(chan experiment.Snapshot, 1)
	app.Observe = func(s experiment.Snapshot) {
		select {
		case snapshots <- s:
		case <-gctx.Done():
		}
	}

	g.Go(func() error {
		defer stopPlayback()
		return app.Run(gctx, events)
	})
	g.Go(func() error {
		return player.Run(playCtx)
	})
	g.Go(func() error {
		send := func(ev experiment.Event) bool {
			select {
			case events <- ev:
				return true
			case <-playCtx.Done():
				return false
			}
		}
		if !send(experiment.Event{Kind: experiment.EventStart, Latency: opts.Latency, At: clock.Now()}) {
			return nil
		}
		for {
			var snap experiment.Snapshot
			select {
			case snap = <-snapshots:
			case <-playCtx.Done():
				return nil
			}
			if snap.State != experiment.StateRoundActive || !snap.HasMarked {
				return nil
			}
			for _, ev := range participant.Reach(snap.Marked) {
				if !send(ev) {
					return nil
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("simulation finished",
		zap.Int("samples", exp.Table().Len()),
		zap.Int("hits", exp.Hits()),
		zap.Duration("simulated", clock.Now().Sub(opts.Start)),
	)
	return nil
}

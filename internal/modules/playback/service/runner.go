package service

import (
	"context"
	"errors"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"intervals/internal/modules/playback/domain"
	playbackout "intervals/internal/modules/playback/port/out"
)

const DefaultTick = 250 * time.Millisecond

type RunnerOptions struct {
	// Tick is the wall-clock period between engine ticks.
	Tick time.Duration
	// Speed scales the workout time that passes per tick. 1 plays in real time.
	Speed    float64
	Notifier playbackout.Notifier
	Feed     playbackout.HeartRateFeed
	Logger   hclog.Logger
}

// Runner drives one engine from a ticker on its own goroutine and publishes
// the latest snapshot after every tick.
type Runner struct {
	engine   *domain.Engine
	tick     time.Duration
	step     float64
	notifier playbackout.Notifier
	feed     playbackout.HeartRateFeed
	logger   hclog.Logger

	frames chan domain.Snapshot
	done   chan struct{}

	// lifeMu guards the start/stop lifecycle.
	lifeMu  sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc

	mu        sync.Mutex
	heartRate float64
	final     domain.Snapshot
}

func NewRunner(engine *domain.Engine, opts RunnerOptions) *Runner {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.Speed <= 0 {
		opts.Speed = 1
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	return &Runner{
		engine:   engine,
		tick:     opts.Tick,
		step:     opts.Tick.Seconds() * opts.Speed,
		notifier: opts.Notifier,
		feed:     opts.Feed,
		logger:   opts.Logger.Named("playback"),
		frames:   make(chan domain.Snapshot, 1),
		done:     make(chan struct{}),
	}
}

var (
	errAlreadyStarted = errors.New("runner already started")
	errRunnerStopped  = errors.New("runner stopped before start")
)

// Start begins playback. The frames channel always holds the most recent
// snapshot and is closed when playback finishes or stops. A runner that was
// stopped before it started never runs.
func (r *Runner) Start(ctx context.Context) (<-chan domain.Snapshot, error) {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()
	if r.started {
		return nil, errAlreadyStarted
	}
	r.started = true
	if r.stopped {
		close(r.frames)
		close(r.done)
		return nil, errRunnerStopped
	}
	if err := r.engine.Start(); err != nil {
		close(r.frames)
		close(r.done)
		return nil, err
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.publish(r.engine.Snapshot())
	go r.loop(runCtx)
	return r.frames, nil
}

// Stop cancels the pending tick. It is safe to call in any state and from
// any goroutine.
func (r *Runner) Stop() {
	r.lifeMu.Lock()
	r.stopped = true
	cancel := r.cancel
	r.lifeMu.Unlock()
	r.engine.Stop()
	if cancel != nil {
		cancel()
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Final is the last published snapshot once Done is closed.
func (r *Runner) Final() domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.final
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)
	defer close(r.frames)
	defer r.Stop()

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	var samples <-chan domain.HeartRateSample
	if r.feed != nil {
		samples = r.feed.Samples()
	}
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("playback stopped")
			r.publish(r.engine.Snapshot())
			return
		case sample, ok := <-samples:
			if !ok {
				samples = nil
				continue
			}
			r.mu.Lock()
			r.heartRate = sample.BPM
			r.mu.Unlock()
		case <-ticker.C:
			outcome, err := r.engine.Tick(r.step)
			if err != nil {
				r.logger.Debug("tick rejected", "error", err)
				r.publish(r.engine.Snapshot())
				return
			}
			snap := r.publish(r.engine.Snapshot())
			switch outcome {
			case domain.OutcomeAdvanced:
				r.logger.Debug("phase boundary", "index", snap.Index, "type", snap.Type)
				r.notifier.PhaseBoundary(snap)
			case domain.OutcomeFinished:
				r.logger.Info("workout finished", "elapsed", snap.Elapsed)
				r.notifier.Completed(snap)
				return
			}
		}
	}
}

// publish replaces any unread snapshot with s. Start sends once before the
// loop exists and only the loop sends after that, so the second send cannot
// block.
func (r *Runner) publish(s domain.Snapshot) domain.Snapshot {
	r.mu.Lock()
	s.HeartRate = r.heartRate
	r.final = s
	r.mu.Unlock()
	select {
	case r.frames <- s:
		return s
	default:
	}
	select {
	case <-r.frames:
	default:
	}
	r.frames <- s
	return s
}

type nopNotifier struct{}

func (nopNotifier) PhaseBoundary(domain.Snapshot) {}
func (nopNotifier) Completed(domain.Snapshot) {}

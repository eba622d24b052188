package monitor

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/syspulse/syspulse/internal/errors"
	"github.com/syspulse/syspulse/internal/logger"
	"github.com/syspulse/syspulse/internal/schedule"
	"github.com/syspulse/syspulse/internal/stats"
	"github.com/syspulse/syspulse/internal/sysinfo"
	"github.com/syspulse/syspulse/internal/triage"
)

// TickInterval is the fixed loop period. It does not change with the
// display interval.
const TickInterval = 100 * time.Millisecond

// SnapshotProvider captures the current metrics.
type SnapshotProvider interface {
	Refresh(ctx context.Context) (sysinfo.Snapshot, error)
}

// Provider is a SnapshotProvider that can also enumerate processes on demand.
type Provider interface {
	SnapshotProvider
	triage.ProcessSource
}

// Frame is everything a renderer needs for one tick.
type Frame struct {
	Snapshot   sysinfo.Snapshot
	Average    float64
	HasAverage bool
	Trend      float64
	HasTrend   bool
	Critical   bool
	History    []float64
}

// Renderer presents a frame. A render error stops the loop.
type Renderer interface {
	Render(f Frame) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(f Frame) error

// Render calls f.
func (fn RendererFunc) Render(f Frame) error {
	return fn(f)
}

// Config wires the loop's collaborators. The logger and proposer are
// supplied separately because they belong to the display.
type Config struct {
	Provider Provider
	Killer   triage.Killer
	Clock    schedule.Clock

	HistorySize int

	Backup         schedule.BackupWriter
	Notifier       schedule.Notifier
	BackupInterval time.Duration
	EmailTo        string
	Async          bool
}

// Engine runs the monitor loop. It is driven from a single goroutine.
type Engine struct {
	provider  SnapshotProvider
	stats     *stats.Engine
	policy    *triage.Policy
	scheduler *schedule.Scheduler
	renderer  Renderer
	clock     schedule.Clock
	log       logger.Logger
}

// NewEngine creates a loop that renders to r, reports through log and asks
// p before terminating anything.
func NewEngine(cfg Config, r Renderer, log logger.Logger, p triage.Proposer) *Engine {
	if log == nil {
		log = logger.Noop()
	}
	if cfg.Clock == nil {
		cfg.Clock = schedule.SystemClock()
	}

	return &Engine{
		provider: cfg.Provider,
		stats:    stats.New(cfg.HistorySize),
		policy:   triage.NewPolicy(cfg.Provider, cfg.Killer, p, log),
		scheduler: schedule.New(schedule.Options{
			Clock:          cfg.Clock,
			Backup:         cfg.Backup,
			Notifier:       cfg.Notifier,
			BackupInterval: cfg.BackupInterval,
			EmailTo:        cfg.EmailTo,
			Async:          cfg.Async,
			Logger:         log,
		}),
		renderer: r,
		clock:    cfg.Clock,
		log:      log,
	}
}

// Stats exposes the rolling CPU window.
func (e *Engine) Stats() *stats.Engine {
	return e.stats
}

// Tick runs one iteration: refresh, update stats, render, triage when the
// machine is critical, then evaluate the backup and email gates.
// Step faults are returned coded; structured errors keep their own code.
func (e *Engine) Tick(ctx context.Context) error {
	snap, err := e.provider.Refresh(ctx)
	if err != nil {
		return asCode(err, errors.ErrProvider, "Can't read system metrics")
	}

	e.stats.Update(snap.CPUUsage)

	if err := e.renderer.Render(e.frame(snap)); err != nil {
		return asCode(err, errors.ErrRender, "Can't draw the display")
	}

	if triage.ShouldRun(snap.CPUUsage) {
		if _, err := e.policy.Run(ctx); err != nil {
			return asCode(err, errors.ErrProvider, "Can't list processes")
		}
	}

	e.scheduler.Evaluate(ctx, snap)
	return nil
}

// Run loops until ctx is cancelled, which is how a quit request arrives.
// It returns nil on a clean quit and the first fatal fault otherwise;
// non-fatal faults are reported and the loop goes on. Async dispatches
// still in flight are not awaited.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Debug("monitor loop started")
	defer e.log.Debug("monitor loop stopped")

	for {
		start := e.clock.Now()

		if err := e.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.IsFatal(err) {
				return err
			}
			e.log.Warn("%s", errors.Headline(err))
		}

		if ctx.Err() != nil {
			return nil
		}

		remaining := TickInterval - e.clock.Now().Sub(start)
		if remaining <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-e.clock.After(remaining):
		}
	}
}

func (e *Engine) frame(snap sysinfo.Snapshot) Frame {
	f := Frame{
		Snapshot: snap,
		Critical: triage.ShouldRun(snap.CPUUsage),
		History:  e.stats.Samples(),
	}
	f.Average, f.HasAverage = e.stats.Average()
	f.Trend, f.HasTrend = e.stats.Trend()
	return f
}

// asCode keeps structured errors as they are and gives unstructured ones a code.
func asCode(err error, code, message string) error {
	var spErr *errors.Error
	if stderrors.As(err, &spErr) {
		return err
	}
	return errors.WrapWithCode(err, code, message, "")
}

// Package schedule decides when the periodic side effects run: appending a
// backup record and sending a high-CPU email alert.
//
// Each side effect has its own gate and timer. Both timers start at the
// scheduler's creation time, so the first backup fires one full interval
// after start and the first alert no earlier than EmailCooldown after start.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/syspulse/syspulse/internal/errors"
	"github.com/syspulse/syspulse/internal/logger"
	"github.com/syspulse/syspulse/internal/sysinfo"
)

const (
	// EmailCooldown is the minimum spacing between two alert attempts.
	EmailCooldown = 300 * time.Second
	// EmailThreshold is the machine CPU usage an alert requires.
	EmailThreshold = 80.0
	// DefaultBackupInterval is used when no backup interval is configured.
	DefaultBackupInterval = 600 * time.Second
)

// BackupWriter persists one snapshot.
type BackupWriter interface {
	Append(ctx context.Context, snap sysinfo.Snapshot) error
}

// Notifier sends a high-CPU alert to one recipient.
type Notifier interface {
	Send(ctx context.Context, to string, cpuUsage float64) error
}

// Options configures a Scheduler.
type Options struct {
	Clock          Clock
	Backup         BackupWriter
	Notifier       Notifier
	BackupInterval time.Duration
	// EmailTo disables alerts when empty.
	EmailTo string
	// Async runs dispatches on their own goroutines so a slow disk or relay
	// never delays the tick.
	Async  bool
	Logger logger.Logger
}

// Outcome reports which gates opened during one evaluation.
type Outcome struct {
	BackupFired bool
	EmailFired  bool
}

// Scheduler owns the backup and email timers.
// Evaluate is called from the monitor loop goroutine only.
type Scheduler struct {
	opts Options
	log  logger.Logger

	lastBackup time.Time
	lastEmail  time.Time

	inflight sync.WaitGroup
}

// New creates a scheduler with both timers set to the clock's current time.
func New(opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.BackupInterval <= 0 {
		opts.BackupInterval = DefaultBackupInterval
	}
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	now := opts.Clock.Now()
	return &Scheduler{
		opts:       opts,
		log:        log,
		lastBackup: now,
		lastEmail:  now,
	}
}

// Evaluate checks the backup gate, then the email gate, and dispatches
// whatever is due. The gates are independent; both may fire on one tick.
// Timers advance when a dispatch is invoked, whether or not it succeeds.
func (s *Scheduler) Evaluate(ctx context.Context, snap sysinfo.Snapshot) Outcome {
	var out Outcome
	now := s.opts.Clock.Now()

	if s.backupDue(now) {
		s.lastBackup = now
		out.BackupFired = true
		s.dispatch(func() { s.runBackup(ctx, snap) })
	}

	if s.emailDue(now, snap.CPUUsage) {
		s.lastEmail = now
		out.EmailFired = true
		to, cpu := s.opts.EmailTo, snap.CPUUsage
		s.dispatch(func() { s.runEmail(ctx, to, cpu) })
	}

	return out
}

// Wait blocks until every in-flight async dispatch has returned.
// The monitor loop never calls it; dispatches still running at quit may be lost.
func (s *Scheduler) Wait() {
	s.inflight.Wait()
}

func (s *Scheduler) backupDue(now time.Time) bool {
	if s.opts.Backup == nil {
		return false
	}
	return now.Sub(s.lastBackup) >= s.opts.BackupInterval
}

func (s *Scheduler) emailDue(now time.Time, cpuUsage float64) bool {
	if s.opts.EmailTo == "" || s.opts.Notifier == nil {
		return false
	}
	return cpuUsage > EmailThreshold && now.Sub(s.lastEmail) > EmailCooldown
}

func (s *Scheduler) dispatch(fn func()) {
	if !s.opts.Async {
		fn()
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		fn()
	}()
}

func (s *Scheduler) runBackup(ctx context.Context, snap sysinfo.Snapshot) {
	if err := s.opts.Backup.Append(ctx, snap); err != nil {
		s.log.Error("Failed to save backup: %v", errors.Headline(err))
		return
	}
	s.log.Info("Backup saved!")
}

func (s *Scheduler) runEmail(ctx context.Context, to string, cpuUsage float64) {
	if err := s.opts.Notifier.Send(ctx, to, cpuUsage); err != nil {
		s.log.Error("Failed to send email: %v", errors.Headline(err))
		return
	}
	s.log.Info("Email alert sent!")
}

package monitor

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/syspulse/syspulse/internal/logger"
	"github.com/syspulse/syspulse/internal/triage"
)

// DefaultConfirmTimeout is how long a proposal waits for an answer before it
// is declined.
const DefaultConfirmTimeout = 30 * time.Second

// sender is the part of *tea.Program the bridge uses.
type sender interface {
	Send(msg tea.Msg)
}

// Bridge connects the monitor loop goroutine to the Bubble Tea program.
// It is the loop's Renderer, Logger and Proposer, and forwards everything
// with program.Send, which is goroutine-safe.
type Bridge struct {
	program sender
	timeout time.Duration
	now     func() time.Time
}

// NewBridge creates a bridge that forwards to program.
func NewBridge(program sender, confirmTimeout time.Duration) *Bridge {
	if confirmTimeout <= 0 {
		confirmTimeout = DefaultConfirmTimeout
	}
	return &Bridge{program: program, timeout: confirmTimeout, now: time.Now}
}

// Render forwards a frame to the dashboard.
func (b *Bridge) Render(f Frame) error {
	b.program.Send(frameMsg{frame: f})
	return nil
}

// Propose shows the candidate's prompt and blocks the calling goroutine until
// the operator answers, ctx is cancelled or the confirm timeout passes. The
// dashboard keeps drawing while the loop waits.
func (b *Bridge) Propose(ctx context.Context, c triage.Candidate) triage.Decision {
	id := uuid.NewString()
	reply := make(chan triage.Decision, 1)

	b.program.Send(proposalMsg{
		id:        id,
		candidate: c,
		reply:     reply,
		deadline:  b.now().Add(b.timeout),
	})

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case d := <-reply:
		return d
	case <-ctx.Done():
		b.program.Send(proposalExpiredMsg{id: id})
		return triage.Decline
	case <-timer.C:
		b.program.Send(proposalExpiredMsg{id: id})
		b.Warn("No answer for %s (PID: %d), keeping it", c.Name, c.PID)
		return triage.Decline
	}
}

func (b *Bridge) Debug(format string, args ...interface{}) {
	if logger.DebugEnabled() {
		b.event(LevelDebug, format, args...)
	}
}

func (b *Bridge) Info(format string, args ...interface{}) {
	b.event(LevelInfo, format, args...)
}

func (b *Bridge) Warn(format string, args ...interface{}) {
	b.event(LevelWarn, format, args...)
}

func (b *Bridge) Error(format string, args ...interface{}) {
	b.event(LevelError, format, args...)
}

// LoopDone tells the dashboard the loop has returned.
func (b *Bridge) LoopDone(err error) {
	b.program.Send(loopDoneMsg{err: err})
}

func (b *Bridge) event(level Level, format string, args ...interface{}) {
	b.program.Send(eventMsg{
		level: level,
		text:  fmt.Sprintf(format, args...),
		time:  b.now(),
	})
}

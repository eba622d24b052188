package monitor

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/syspulse/syspulse/internal/logger"
	"github.com/syspulse/syspulse/internal/schedule"
	"github.com/syspulse/syspulse/internal/triage"
)

// PlainRenderer prints a status block at most once per interval.
type PlainRenderer struct {
	out      *syncWriter
	interval time.Duration
	clock    schedule.Clock
	last     time.Time
	printed  bool
}

// NewPlainRenderer creates a renderer writing to w.
func NewPlainRenderer(w io.Writer, interval time.Duration, clock schedule.Clock) *PlainRenderer {
	if clock == nil {
		clock = schedule.SystemClock()
	}
	return &PlainRenderer{out: newSyncWriter(w), interval: interval, clock: clock}
}

// Render prints f unless a block was printed less than one interval ago.
func (r *PlainRenderer) Render(f Frame) error {
	now := r.clock.Now()
	if r.printed && now.Sub(r.last) < r.interval {
		return nil
	}
	r.last = now
	r.printed = true
	_, err := r.out.WriteString(FormatStatus(f) + "\n")
	return err
}

// FormatStatus renders a frame as a plain multi-line status block.
func FormatStatus(f Frame) string {
	s := f.Snapshot
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("SysPulse " + s.Timestamp.Format("2006-01-02 15:04:05")))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("CPU:"), MetricStyle(s.CPUUsage).Render(fmt.Sprintf("%.2f%%", s.CPUUsage)))
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("RAM:"),
		MetricStyle(s.MemoryPercent()).Render(fmt.Sprintf("%d / %d MB", s.MemoryUsedMB(), s.MemoryTotalMB())))
	for _, d := range sortDisks(s.Disks) {
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Disk:"), diskLine(d))
	}
	for _, line := range statusLines(f) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// lineLogger writes report lines with a timestamp, one per line.
type lineLogger struct {
	out *syncWriter
	now func() time.Time
}

func (l *lineLogger) write(level Level, format string, args ...interface{}) {
	line := MutedStyle.Render(l.now().Format("15:04:05")) + " " +
		LevelStyle(level).Render(fmt.Sprintf(format, args...)) + "\n"
	_, _ = l.out.WriteString(line)
}

func (l *lineLogger) Debug(format string, args ...interface{}) {
	if logger.DebugEnabled() {
		l.write(LevelDebug, format, args...)
	}
}

func (l *lineLogger) Info(format string, args ...interface{}) {
	l.write(LevelInfo, format, args...)
}

func (l *lineLogger) Warn(format string, args ...interface{}) {
	l.write(LevelWarn, format, args...)
}

func (l *lineLogger) Error(format string, args ...interface{}) {
	l.write(LevelError, format, args...)
}

// syncWriter serializes writes; async dispatches report from other goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newSyncWriter(w io.Writer) *syncWriter {
	if sw, ok := w.(*syncWriter); ok {
		return sw
	}
	return &syncWriter{w: w}
}

func (s *syncWriter) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(b)
}

func (s *syncWriter) WriteString(str string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return io.WriteString(s.w, str)
}

// confirmFunc asks a yes/no question and blocks until it is answered.
type confirmFunc func(ctx context.Context, title string) (bool, error)

// PromptProposer asks on the terminal with a huh confirm. Output pauses
// while the question is open. Without a terminal every proposal is declined.
type PromptProposer struct {
	timeout    time.Duration
	log        logger.Logger
	isTerminal func() bool
	confirm    confirmFunc
	// onAbort runs when the operator presses ctrl+c inside the prompt.
	onAbort func()
}

// NewPromptProposer creates a proposer reading from stdin.
func NewPromptProposer(timeout time.Duration, log logger.Logger, onAbort func()) *PromptProposer {
	if log == nil {
		log = logger.Noop()
	}
	return &PromptProposer{
		timeout:    timeout,
		log:        log,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		confirm:    huhConfirm,
		onAbort:    onAbort,
	}
}

// Propose asks whether c should be killed.
func (p *PromptProposer) Propose(ctx context.Context, c triage.Candidate) triage.Decision {
	if !p.isTerminal() {
		p.log.Warn("No terminal to confirm %s (PID: %d), keeping it", c.Name, c.PID)
		return triage.Decline
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	ok, err := p.confirm(ctx, c.Prompt())
	switch {
	case stderrors.Is(err, huh.ErrUserAborted):
		if p.onAbort != nil {
			p.onAbort()
		}
		return triage.Decline
	case err != nil:
		if ctx.Err() == context.DeadlineExceeded {
			p.log.Warn("No answer for %s (PID: %d), keeping it", c.Name, c.PID)
		}
		return triage.Decline
	case !ok:
		return triage.Decline
	}
	return triage.Accept
}

func huhConfirm(ctx context.Context, title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return ok, nil
}

// RunPlain runs the loop with line output. SIGINT and SIGTERM quit.
func RunPlain(ctx context.Context, cfg Config, opts RunOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	w := newSyncWriter(out)

	clock := cfg.Clock
	if clock == nil {
		clock = schedule.SystemClock()
	}

	reporter := &lineLogger{out: w, now: clock.Now}
	proposer := NewPromptProposer(opts.ConfirmTimeout, reporter, stop)
	renderer := NewPlainRenderer(w, opts.DisplayInterval, clock)

	return NewEngine(cfg, renderer, reporter, proposer).Run(ctx)
}

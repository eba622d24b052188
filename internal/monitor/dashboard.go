package monitor

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/syspulse/syspulse/internal/errors"
	"github.com/syspulse/syspulse/internal/logger"
)

// DebugLogFile receives standard log output while the dashboard owns the
// terminal and SYSPULSE_DEBUG is set.
const DebugLogFile = "syspulse-debug.log"

// DefaultDisplayInterval is the default refresh hint for the process table
// and the plain-mode print period.
const DefaultDisplayInterval = 5 * time.Second

// RunOptions configures how the monitor is displayed.
type RunOptions struct {
	// Plain forces line output even on a terminal.
	Plain bool
	// DisplayInterval throttles process table refreshes and plain output.
	DisplayInterval time.Duration
	// ConfirmTimeout bounds how long a kill proposal waits for an answer.
	ConfirmTimeout time.Duration
	// Out receives plain-mode output. Defaults to stdout.
	Out io.Writer
}

// Run starts the monitor loop with the dashboard when stdout is a terminal,
// or with line output otherwise. It returns nil when the operator quits and
// the fault that stopped the loop otherwise.
func Run(ctx context.Context, cfg Config, opts RunOptions) error {
	if opts.DisplayInterval <= 0 {
		opts.DisplayInterval = DefaultDisplayInterval
	}
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = DefaultConfirmTimeout
	}

	if opts.Plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return RunPlain(ctx, cfg, opts)
	}
	return RunDashboard(ctx, cfg, opts)
}

// RunDashboard runs the loop in a background goroutine while the Bubble Tea
// program owns the main goroutine and the terminal.
func RunDashboard(ctx context.Context, cfg Config, opts RunOptions) error {
	restore := redirectStdLog()
	defer restore()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(cancel, opts.DisplayInterval)
	program := tea.NewProgram(model, tea.WithAltScreen())

	bridge := NewBridge(program, opts.ConfirmTimeout)
	reporter := logger.Tee(bridge, logger.NewEnvLogger("[monitor]"))
	engine := NewEngine(cfg, bridge, reporter, bridge)

	loopErr := make(chan error, 1)
	go func() {
		err := engine.Run(ctx)
		loopErr <- err
		bridge.LoopDone(err)
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-loopErr
		return errors.WrapWithCode(err, errors.ErrRender,
			"Dashboard stopped unexpectedly",
			"Try again with --plain to use line output.")
	}

	cancel()
	return <-loopErr
}

// redirectStdLog keeps standard log output off the dashboard: into
// DebugLogFile when debugging, discarded otherwise.
func redirectStdLog() func() {
	if logger.DebugEnabled() {
		f, err := tea.LogToFile(DebugLogFile, "syspulse")
		if err == nil {
			return func() {
				f.Close()
				log.SetOutput(os.Stderr)
			}
		}
	}
	log.SetOutput(io.Discard)
	return func() { log.SetOutput(os.Stderr) }
}

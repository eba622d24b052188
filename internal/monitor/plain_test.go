package monitor

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syspulse/syspulse/internal/errors"
	"github.com/syspulse/syspulse/internal/logger"
	sctesting "github.com/syspulse/syspulse/internal/schedule/testing"
	sitesting "github.com/syspulse/syspulse/internal/sysinfo/testing"
	"github.com/syspulse/syspulse/internal/triage"
)

func TestPlainRendererThrottles(t *testing.T) {
	var buf bytes.Buffer
	clock := sctesting.NewFakeClock(epoch)
	r := NewPlainRenderer(&buf, 5*time.Second, clock)

	f := sampleFrame()
	require.NoError(t, r.Render(f))
	first := buf.Len()
	assert.Positive(t, first)

	clock.Advance(4 * time.Second)
	require.NoError(t, r.Render(f))
	assert.Equal(t, first, buf.Len(), "nothing printed inside the interval")

	clock.Advance(time.Second)
	require.NoError(t, r.Render(f))
	assert.Equal(t, 2, strings.Count(buf.String(), "SysPulse "))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, stderrors.New("closed pipe")
}

func TestPlainRendererWriteError(t *testing.T) {
	r := NewPlainRenderer(failingWriter{}, time.Second, sctesting.NewFakeClock(epoch))
	assert.Error(t, r.Render(sampleFrame()))
}

func TestFormatStatus(t *testing.T) {
	out := FormatStatus(sampleFrame())

	assert.Contains(t, out, "95.00%")
	assert.Contains(t, out, "2048 / 8192 MB")
	assert.Contains(t, out, "CPU Trend: Increasing (+5.00%)")
	assert.Contains(t, out, "CRITICAL: CPU usage exceeds 90%!")
	assert.Less(t, strings.Index(out, "used 150/200 GB"), strings.Index(out, "used 60/100 GB"))
}

func TestLineLogger(t *testing.T) {
	var buf bytes.Buffer
	l := &lineLogger{out: newSyncWriter(&buf), now: func() time.Time { return epoch }}

	l.Info("Backup saved!")
	l.Error("Failed to send email: %s", "timeout")

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.Contains(t, out, "12:00:00")
	assert.Contains(t, out, "Backup saved!")
	assert.Contains(t, out, "Failed to send email: timeout")
}

func newTestProposer(terminal bool, confirm confirmFunc) (*PromptProposer, *logger.BufferLogger, *bool) {
	log := logger.NewBufferLogger()
	aborted := false
	p := NewPromptProposer(time.Second, log, func() { aborted = true })
	p.isTerminal = func() bool { return terminal }
	p.confirm = confirm
	return p, log, &aborted
}

func TestPromptProposer(t *testing.T) {
	c := triage.Candidate{PID: 42, Name: "stress", Kind: triage.Heavy}

	tests := []struct {
		name        string
		terminal    bool
		answer      bool
		err         error
		want        triage.Decision
		wantAbort   bool
		wantWarning bool
	}{
		{name: "accepted", terminal: true, answer: true, want: triage.Accept},
		{name: "declined", terminal: true, answer: false, want: triage.Decline},
		{name: "no terminal", terminal: false, answer: true, want: triage.Decline, wantWarning: true},
		{name: "ctrl+c aborts", terminal: true, err: huh.ErrUserAborted, want: triage.Decline, wantAbort: true},
		{name: "other error", terminal: true, answer: true, err: stderrors.New("tty gone"), want: triage.Decline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var asked string
			p, log, aborted := newTestProposer(tt.terminal, func(_ context.Context, title string) (bool, error) {
				asked = title
				return tt.answer, tt.err
			})

			assert.Equal(t, tt.want, p.Propose(context.Background(), c))
			assert.Equal(t, tt.wantAbort, *aborted)
			assert.Equal(t, tt.wantWarning, log.HasLevel("warn"))
			if tt.terminal {
				assert.Equal(t, "Kill process stress (PID: 42)? [y/n]", asked)
			}
		})
	}
}

func TestPromptProposerTimeout(t *testing.T) {
	p, log, _ := newTestProposer(true, func(ctx context.Context, _ string) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	})
	p.timeout = 10 * time.Millisecond

	assert.Equal(t, triage.Decline, p.Propose(context.Background(), triage.Candidate{PID: 7, Name: "idle"}))
	assert.True(t, log.Contains("No answer for idle (PID: 7)"))
}

func TestSyncWriterIsAnIOWriter(t *testing.T) {
	var buf bytes.Buffer
	sw := newSyncWriter(&buf)
	assert.Same(t, sw, newSyncWriter(sw), "an existing syncWriter is reused")

	var w io.Writer = sw
	_, err := w.Write([]byte("a\n"))
	require.NoError(t, err)
	_, err = sw.WriteString("b\n")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", buf.String())
}

func TestRunPlainPrintsUntilProviderFault(t *testing.T) {
	provider := sitesting.NewFakeProvider(sitesting.WithCPU(10)...)
	provider.RefreshErr = stderrors.New("sysfs unavailable")
	provider.FailAfter = 2

	clock := sctesting.NewFakeClock(epoch)
	clock.AutoAdvance = true

	var buf bytes.Buffer
	err := RunPlain(context.Background(), Config{Provider: provider, Clock: clock}, RunOptions{
		DisplayInterval: 5 * time.Second,
		ConfirmTimeout:  time.Second,
		Out:             &buf,
	})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrProvider))
	assert.Equal(t, 1, strings.Count(buf.String(), "SysPulse "), "one block per display interval")
	assert.Contains(t, buf.String(), "10.00%")
}

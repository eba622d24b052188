package monitor

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syspulse/syspulse/internal/errors"
	"github.com/syspulse/syspulse/internal/logger"
	sctesting "github.com/syspulse/syspulse/internal/schedule/testing"
	"github.com/syspulse/syspulse/internal/sysinfo"
	sitesting "github.com/syspulse/syspulse/internal/sysinfo/testing"
	"github.com/syspulse/syspulse/internal/triage"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type countingBackup struct {
	mu    sync.Mutex
	count int
}

func (c *countingBackup) Append(context.Context, sysinfo.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return nil
}

func declineAll() triage.Proposer {
	return triage.ProposerFunc(func(context.Context, triage.Candidate) triage.Decision {
		return triage.Decline
	})
}

func TestTickRendersStatsFrame(t *testing.T) {
	provider := sitesting.NewFakeProvider(sitesting.WithCPU(10, 20, 30)...)
	var frames []Frame
	r := RendererFunc(func(f Frame) error {
		frames = append(frames, f)
		return nil
	})

	e := NewEngine(Config{Provider: provider, Killer: sitesting.NewFakeKiller(), Clock: sctesting.NewFakeClock(epoch)},
		r, nil, declineAll())

	for i := 0; i < 3; i++ {
		require.NoError(t, e.Tick(context.Background()))
	}

	require.Len(t, frames, 3)
	last := frames[2]
	assert.Equal(t, 30.0, last.Snapshot.CPUUsage)
	assert.Equal(t, []float64{10, 20, 30}, last.History)
	assert.True(t, last.HasAverage)
	assert.InDelta(t, 20.0, last.Average, 1e-9)
	assert.False(t, last.HasTrend)
	assert.False(t, last.Critical)
}

func TestTickTriageOnlyAboveCritical(t *testing.T) {
	tests := []struct {
		name       string
		cpu        float64
		wantTriage bool
	}{
		{"at threshold", 90.0, false},
		{"above threshold", 95.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := sitesting.NewFakeProvider(sitesting.WithCPU(tt.cpu)...)
			provider.ProcessLists = [][]sysinfo.Process{{{PID: 7, Name: "hog", CPUUsage: 70}}}
			killer := sitesting.NewFakeKiller()
			log := logger.NewBufferLogger()
			accept := triage.ProposerFunc(func(context.Context, triage.Candidate) triage.Decision {
				return triage.Accept
			})

			var critical bool
			r := RendererFunc(func(f Frame) error {
				critical = f.Critical
				return nil
			})

			e := NewEngine(Config{Provider: provider, Killer: killer, Clock: sctesting.NewFakeClock(epoch)}, r, log, accept)
			require.NoError(t, e.Tick(context.Background()))

			assert.Equal(t, tt.wantTriage, critical)
			assert.Equal(t, tt.wantTriage, log.Contains("High CPU detected! Checking processes..."))
			if tt.wantTriage {
				assert.Equal(t, []int32{7}, killer.Killed)
				assert.Equal(t, 1, provider.ProcessesCalls)
			} else {
				assert.Empty(t, killer.Attempts)
			}
		})
	}
}

func TestTickKillFailureIsNotFatal(t *testing.T) {
	provider := sitesting.NewFakeProvider(sitesting.WithCPU(99)...)
	provider.ProcessLists = [][]sysinfo.Process{{{PID: 7, Name: "gone", CPUUsage: 70}}}
	log := logger.NewBufferLogger()
	accept := triage.ProposerFunc(func(context.Context, triage.Candidate) triage.Decision {
		return triage.Accept
	})

	e := NewEngine(Config{Provider: provider, Killer: sitesting.NewFakeKiller(7), Clock: sctesting.NewFakeClock(epoch)},
		RendererFunc(func(Frame) error { return nil }), log, accept)

	require.NoError(t, e.Tick(context.Background()))
	assert.True(t, log.Contains("Failed to kill gone (PID: 7)"))
}

func TestTickProviderFaultIsFatal(t *testing.T) {
	provider := sitesting.NewFakeProvider(sitesting.WithCPU(10)...)
	provider.RefreshErr = stderrors.New("permission denied")

	rendered := false
	e := NewEngine(Config{Provider: provider, Clock: sctesting.NewFakeClock(epoch)},
		RendererFunc(func(Frame) error { rendered = true; return nil }), nil, declineAll())

	err := e.Tick(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrProvider))
	assert.False(t, rendered)
	assert.Equal(t, 0, e.Stats().Len(), "a failed refresh adds no sample")
}

func TestTickTriageSourceFaultIsFatal(t *testing.T) {
	provider := sitesting.NewFakeProvider(sitesting.WithCPU(95)...)
	provider.ProcessesErr = stderrors.New("proc vanished")

	e := NewEngine(Config{Provider: provider, Clock: sctesting.NewFakeClock(epoch)},
		RendererFunc(func(Frame) error { return nil }), nil, declineAll())

	err := e.Tick(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrProvider))
}

func TestTickRenderFaultIsFatal(t *testing.T) {
	provider := sitesting.NewFakeProvider(sitesting.WithCPU(10)...)
	e := NewEngine(Config{Provider: provider, Clock: sctesting.NewFakeClock(epoch)},
		RendererFunc(func(Frame) error { return stderrors.New("broken pipe") }), nil, declineAll())

	err := e.Tick(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRender))
	assert.True(t, errors.IsFatal(err))
}

func TestRunStopsOnQuitAndSleepsRemainder(t *testing.T) {
	provider := sitesting.NewFakeProvider(sitesting.WithCPU(10)...)
	clock := sctesting.NewFakeClock(epoch)
	clock.AutoAdvance = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renders := 0
	r := RendererFunc(func(Frame) error {
		renders++
		if renders == 3 {
			cancel()
		}
		return nil
	})

	e := NewEngine(Config{Provider: provider, Clock: clock}, r, nil, declineAll())
	require.NoError(t, e.Run(ctx), "quit is a clean exit")

	assert.Equal(t, 3, renders)
	assert.Equal(t, []time.Duration{TickInterval, TickInterval}, clock.Sleeps)
}

func TestRunReturnsProviderFault(t *testing.T) {
	provider := sitesting.NewFakeProvider(sitesting.WithCPU(10)...)
	provider.RefreshErr = stderrors.New("sysfs unavailable")
	provider.FailAfter = 2

	clock := sctesting.NewFakeClock(epoch)
	clock.AutoAdvance = true

	e := NewEngine(Config{Provider: provider, Clock: clock}, RendererFunc(func(Frame) error { return nil }), nil, declineAll())
	err := e.Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrProvider))
	assert.Equal(t, 3, provider.RefreshCalls)
}

func TestRunContinuesAfterNonFatalFault(t *testing.T) {
	provider := sitesting.NewFakeProvider(sitesting.WithCPU(95)...)
	provider.ProcessesErr = errors.New(errors.ErrKill, "Process 7 is no longer running", "")

	clock := sctesting.NewFakeClock(epoch)
	clock.AutoAdvance = true
	log := logger.NewBufferLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renders := 0
	r := RendererFunc(func(Frame) error {
		renders++
		if renders == 3 {
			cancel()
		}
		return nil
	})

	e := NewEngine(Config{Provider: provider, Clock: clock}, r, log, declineAll())
	require.NoError(t, e.Run(ctx))

	assert.Equal(t, 3, renders)
	assert.Equal(t, 3, provider.ProcessesCalls, "every tick triaged despite the fault")

	reported := 0
	for _, m := range log.Entries() {
		if m.Level == "warn" && m.Message == "Process 7 is no longer running" {
			reported++
		}
	}
	assert.Equal(t, 2, reported, "the fault on the quitting tick is not reported")
}

func TestRunBackupAfterOneInterval(t *testing.T) {
	provider := sitesting.NewFakeProvider(sitesting.WithCPU(10)...)
	clock := sctesting.NewFakeClock(epoch)
	clock.AutoAdvance = true
	backup := &countingBackup{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// tick k starts at (k-1)*100ms, so tick 6001 is the first at 600s
	renders := 0
	r := RendererFunc(func(Frame) error {
		renders++
		if renders == 6001 {
			cancel()
		}
		return nil
	})

	e := NewEngine(Config{
		Provider:       provider,
		Clock:          clock,
		Backup:         backup,
		BackupInterval: 600 * time.Second,
	}, r, nil, declineAll())

	require.NoError(t, e.Run(ctx))
	assert.Equal(t, 1, backup.count, "gates are evaluated before the quit poll")
}

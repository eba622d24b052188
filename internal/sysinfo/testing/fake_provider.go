// Package testing provides test doubles for the sysinfo package.
package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/syspulse/syspulse/internal/errors"
	"github.com/syspulse/syspulse/internal/sysinfo"
)

// FakeProvider replays scripted snapshots.
//
// Each Refresh returns the next snapshot; once the script runs out the last
// snapshot repeats. Processes returns the next entry of ProcessLists when
// set, else the processes of the most recently returned snapshot.
type FakeProvider struct {
	mu sync.Mutex

	Snapshots    []sysinfo.Snapshot
	ProcessLists [][]sysinfo.Process

	// RefreshErr, when set, is returned by Refresh after FailAfter successful calls.
	RefreshErr error
	FailAfter  int
	// ProcessesErr, when set, is returned by every Processes call.
	ProcessesErr error

	RefreshCalls   int
	ProcessesCalls int
	last           sysinfo.Snapshot
}

// NewFakeProvider creates a provider that replays the given snapshots.
func NewFakeProvider(snaps ...sysinfo.Snapshot) *FakeProvider {
	return &FakeProvider{Snapshots: snaps}
}

// WithCPU builds snapshots carrying only the given CPU usage values.
func WithCPU(values ...float64) []sysinfo.Snapshot {
	snaps := make([]sysinfo.Snapshot, len(values))
	for i, v := range values {
		snaps[i] = sysinfo.Snapshot{CPUUsage: v}
	}
	return snaps
}

// Refresh returns the next scripted snapshot.
func (f *FakeProvider) Refresh(_ context.Context) (sysinfo.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.RefreshErr != nil && f.RefreshCalls >= f.FailAfter {
		f.RefreshCalls++
		return sysinfo.Snapshot{}, f.RefreshErr
	}

	if len(f.Snapshots) == 0 {
		f.RefreshCalls++
		return sysinfo.Snapshot{}, errors.New(errors.ErrProvider, "no scripted snapshots", "")
	}

	idx := f.RefreshCalls
	if idx >= len(f.Snapshots) {
		idx = len(f.Snapshots) - 1
	}
	f.RefreshCalls++
	f.last = f.Snapshots[idx]
	return f.last, nil
}

// Processes returns the next scripted process list.
func (f *FakeProvider) Processes(_ context.Context) ([]sysinfo.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ProcessesCalls++
	if f.ProcessesErr != nil {
		return nil, f.ProcessesErr
	}
	if len(f.ProcessLists) > 0 {
		idx := f.ProcessesCalls - 1
		if idx >= len(f.ProcessLists) {
			idx = len(f.ProcessLists) - 1
		}
		return f.ProcessLists[idx], nil
	}
	return f.last.Processes, nil
}

// FakeKiller records kill requests and fails for configured PIDs.
type FakeKiller struct {
	mu sync.Mutex

	// FailPIDs lists PIDs whose termination fails.
	FailPIDs map[int32]bool

	Killed   []int32
	Attempts []int32
}

// NewFakeKiller creates a killer that fails for the given PIDs.
func NewFakeKiller(failPIDs ...int32) *FakeKiller {
	k := &FakeKiller{FailPIDs: make(map[int32]bool)}
	for _, pid := range failPIDs {
		k.FailPIDs[pid] = true
	}
	return k
}

// Kill records the attempt and fails for PIDs in FailPIDs.
func (k *FakeKiller) Kill(_ context.Context, pid int32) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.Attempts = append(k.Attempts, pid)
	if k.FailPIDs[pid] {
		return errors.New(errors.ErrKill, fmt.Sprintf("Process %d is no longer running", pid), "")
	}
	k.Killed = append(k.Killed, pid)
	return nil
}

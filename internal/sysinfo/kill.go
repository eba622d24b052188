package sysinfo

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/syspulse/syspulse/internal/errors"
)

// Killer terminates local processes.
type Killer struct{}

// NewKiller creates a Killer for the local host.
func NewKiller() *Killer {
	return &Killer{}
}

// Kill sends SIGKILL (TerminateProcess on Windows) to pid.
// A pid that no longer exists is reported as a failed termination.
func (k *Killer) Kill(ctx context.Context, pid int32) error {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrKill,
			fmt.Sprintf("Process %d is no longer running", pid),
			"")
	}
	if err := proc.KillWithContext(ctx); err != nil {
		return errors.WrapWithCode(err, errors.ErrKill,
			fmt.Sprintf("Can't kill process %d", pid),
			"You may need to run syspulse with elevated privileges.")
	}
	return nil
}

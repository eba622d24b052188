// Package triage decides which processes to offer for termination when the
// host is under critical CPU load, and drives the operator's kill decisions.
package triage

import (
	"context"
	"fmt"
	"sort"

	"github.com/syspulse/syspulse/internal/sysinfo"
)

// Fixed policy thresholds.
const (
	// CriticalThreshold is the machine CPU usage above which triage runs.
	CriticalThreshold = 90.0
	// HeavyThreshold is the per-process CPU usage above which a process is heavy.
	HeavyThreshold = 10.0
	// IdleCPUThreshold is the per-process CPU usage below which a long-running process is idle.
	IdleCPUThreshold = 1.0
	// IdleRunTime is the run time in seconds a process must exceed to count as idle.
	IdleRunTime = 3600
	// MaxCandidates caps each candidate set.
	MaxCandidates = 3
)

// Kind distinguishes heavy from idle candidates.
type Kind int

const (
	Heavy Kind = iota
	Idle
)

// String returns the label used in report lines.
func (k Kind) String() string {
	switch k {
	case Heavy:
		return "Heavy"
	case Idle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// Candidate is a process offered for termination. Candidates are derived
// fresh on every triage pass and never stored between ticks.
type Candidate struct {
	PID      int32
	Name     string
	CPUUsage float64
	RunTime  uint64
	Kind     Kind
}

// Prompt returns the yes/no question asked for this candidate.
func (c Candidate) Prompt() string {
	if c.Kind == Idle {
		return fmt.Sprintf("Kill idle process %s (PID: %d)? [y/n]", c.Name, c.PID)
	}
	return fmt.Sprintf("Kill process %s (PID: %d)? [y/n]", c.Name, c.PID)
}

// ReportLine returns the line shown before the operator is asked.
func (c Candidate) ReportLine() string {
	return fmt.Sprintf("%s process: %s (PID: %d) - CPU: %.2f%% - Running for: %ds",
		c.Kind, c.Name, c.PID, c.CPUUsage, c.RunTime)
}

// Decision is the operator's answer to a termination proposal.
type Decision int

const (
	Decline Decision = iota
	Accept
)

// String returns a human-readable decision.
func (d Decision) String() string {
	if d == Accept {
		return "accept"
	}
	return "decline"
}

// ProcessSource enumerates processes on demand.
type ProcessSource interface {
	Processes(ctx context.Context) ([]sysinfo.Process, error)
}

// Killer terminates a process.
type Killer interface {
	Kill(ctx context.Context, pid int32) error
}

// Proposer asks the operator whether a candidate should be terminated.
// Implementations decline when ctx is cancelled or their own timeout expires.
type Proposer interface {
	Propose(ctx context.Context, c Candidate) Decision
}

// ProposerFunc adapts a function to the Proposer interface.
type ProposerFunc func(ctx context.Context, c Candidate) Decision

// Propose calls f.
func (f ProposerFunc) Propose(ctx context.Context, c Candidate) Decision {
	return f(ctx, c)
}

// ShouldRun reports whether triage runs for the given machine CPU usage.
func ShouldRun(cpuUsage float64) bool {
	return cpuUsage > CriticalThreshold
}

// SelectHeavy returns up to MaxCandidates processes using more than
// HeavyThreshold CPU, highest first. Ties keep enumeration order.
func SelectHeavy(procs []sysinfo.Process) []Candidate {
	var heavy []Candidate
	for _, p := range procs {
		if p.CPUUsage > HeavyThreshold {
			heavy = append(heavy, candidateFrom(p, Heavy))
		}
	}

	sort.SliceStable(heavy, func(i, j int) bool {
		return heavy[i].CPUUsage > heavy[j].CPUUsage
	})

	if len(heavy) > MaxCandidates {
		heavy = heavy[:MaxCandidates]
	}
	return heavy
}

// SelectIdle returns the first MaxCandidates processes, in enumeration order,
// that have run for more than IdleRunTime seconds using less than IdleCPUThreshold CPU.
func SelectIdle(procs []sysinfo.Process) []Candidate {
	var idle []Candidate
	for _, p := range procs {
		if len(idle) == MaxCandidates {
			break
		}
		if p.RunTime > IdleRunTime && p.CPUUsage < IdleCPUThreshold {
			idle = append(idle, candidateFrom(p, Idle))
		}
	}
	return idle
}

func candidateFrom(p sysinfo.Process, kind Kind) Candidate {
	return Candidate{
		PID:      p.PID,
		Name:     p.Name,
		CPUUsage: p.CPUUsage,
		RunTime:  p.RunTime,
		Kind:     kind,
	}
}

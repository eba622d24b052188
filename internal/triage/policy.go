package triage

import (
	"context"

	"github.com/syspulse/syspulse/internal/errors"
	"github.com/syspulse/syspulse/internal/logger"
)

// Outcome records what happened to one candidate during a pass.
type Outcome struct {
	Candidate Candidate
	Decision  Decision
	Killed    bool
	Err       error // termination error, nil unless the kill failed
}

// Result summarizes a triage pass.
type Result struct {
	Heavy    []Candidate
	Idle     []Candidate
	Outcomes []Outcome
}

// Killed returns the PIDs that were terminated successfully.
func (r Result) Killed() []int32 {
	var pids []int32
	for _, o := range r.Outcomes {
		if o.Killed {
			pids = append(pids, o.Candidate.PID)
		}
	}
	return pids
}

// Policy runs triage passes against a process source.
type Policy struct {
	source   ProcessSource
	killer   Killer
	proposer Proposer
	log      logger.Logger
}

// NewPolicy creates a policy. Report lines go to log; a nil log discards them.
func NewPolicy(source ProcessSource, killer Killer, proposer Proposer, log logger.Logger) *Policy {
	if log == nil {
		log = logger.Noop()
	}
	return &Policy{
		source:   source,
		killer:   killer,
		proposer: proposer,
		log:      log,
	}
}

// Run performs one triage pass. The process list is re-read from the source
// rather than taken from the tick's snapshot. Heavy candidates are offered
// first, then idle candidates; each set is selected from the same list.
//
// An error from the source is a provider fault and is returned. Kill
// failures are reported and recorded, never returned. Cancelling ctx stops
// the pass before the next candidate.
func (p *Policy) Run(ctx context.Context) (Result, error) {
	p.log.Warn("High CPU detected! Checking processes...")

	procs, err := p.source.Processes(ctx)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Heavy: SelectHeavy(procs),
		Idle:  SelectIdle(procs),
	}

	for _, set := range [][]Candidate{result.Heavy, result.Idle} {
		for _, c := range set {
			if ctx.Err() != nil {
				return result, nil
			}
			result.Outcomes = append(result.Outcomes, p.offer(ctx, c))
		}
	}

	return result, nil
}

// offer reports a candidate, asks for a decision and acts on it.
func (p *Policy) offer(ctx context.Context, c Candidate) Outcome {
	p.log.Info("%s", c.ReportLine())

	out := Outcome{Candidate: c, Decision: p.proposer.Propose(ctx, c)}
	if out.Decision != Accept {
		p.log.Debug("kept %s (PID: %d)", c.Name, c.PID)
		return out
	}

	if err := p.killer.Kill(ctx, c.PID); err != nil {
		out.Err = err
		p.log.Error("Failed to kill %s (PID: %d): %v", c.Name, c.PID, errors.Headline(err))
		return out
	}

	out.Killed = true
	if c.Kind == Idle {
		p.log.Info("Idle process %s (PID: %d) killed!", c.Name, c.PID)
	} else {
		p.log.Info("Process %s (PID: %d) killed!", c.Name, c.PID)
	}
	return out
}

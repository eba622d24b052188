package monitor

import (
	"time"

	"github.com/syspulse/syspulse/internal/triage"
)

// frameMsg carries a freshly rendered tick from the loop.
type frameMsg struct {
	frame Frame
}

// Level of an event log entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// eventMsg carries one report line for the event log.
type eventMsg struct {
	level Level
	text  string
	time  time.Time
}

// proposalMsg asks the operator about one candidate. Exactly one decision
// is written to reply.
type proposalMsg struct {
	id        string
	candidate triage.Candidate
	reply     chan<- triage.Decision
	deadline  time.Time
}

// proposalExpiredMsg withdraws a proposal that timed out or was abandoned.
type proposalExpiredMsg struct {
	id string
}

// loopDoneMsg signals that the monitor loop has returned.
type loopDoneMsg struct {
	err error
}

// clockMsg refreshes the header clock and prompt countdown.
type clockMsg time.Time

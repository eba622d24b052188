package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/syspulse/syspulse/internal/triage"
)

// maxEvents bounds the event log.
const maxEvents = 100

// clockInterval is how often the header clock and prompt countdown redraw.
const clockInterval = time.Second

// Event is one line of the event log.
type Event struct {
	Time  time.Time
	Level Level
	Text  string
}

// pendingPrompt is a proposal waiting for y/n.
type pendingPrompt struct {
	id        string
	candidate triage.Candidate
	reply     chan<- triage.Decision
	deadline  time.Time
}

// Model is the Bubble Tea model for the monitoring dashboard. It only
// displays what the loop sends; the loop never reads model state.
type Model struct {
	frame    Frame
	hasFrame bool

	width  int
	height int
	now    time.Time

	events []Event
	prompt *pendingPrompt

	procTable        table.Model
	tableInterval    time.Duration
	lastTableRefresh time.Time

	showHelp   bool
	cancelFunc context.CancelFunc
	quitting   bool
	err        error
}

// NewModel creates a dashboard model. cancel stops the monitor loop and
// tableInterval is how often the process table picks up new rows.
func NewModel(cancel context.CancelFunc, tableInterval time.Duration) Model {
	return Model{
		procTable:     newProcessTable(),
		tableInterval: tableInterval,
		cancelFunc:    cancel,
		now:           time.Now(),
	}
}

// Init returns the initial command for the model.
func (m Model) Init() tea.Cmd {
	return clockCmd()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		_, cmd := m.HandleKeyMsg(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		resizeProcessTable(&m.procTable, m.contentWidth(), m.tableHeight())
		return m, nil

	case clockMsg:
		m.now = time.Time(msg)
		if m.quitting {
			return m, nil
		}
		return m, clockCmd()

	case frameMsg:
		m.setFrame(msg.frame)
		return m, nil

	case eventMsg:
		m.addEvent(Event{Time: msg.time, Level: msg.level, Text: msg.text})
		return m, nil

	case proposalMsg:
		if m.quitting {
			msg.reply <- triage.Decline
			return m, nil
		}
		m.prompt = &pendingPrompt{
			id:        msg.id,
			candidate: msg.candidate,
			reply:     msg.reply,
			deadline:  msg.deadline,
		}
		return m, nil

	case proposalExpiredMsg:
		if m.prompt != nil && m.prompt.id == msg.id {
			m.prompt = nil
		}
		return m, nil

	case loopDoneMsg:
		m.err = msg.err
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the current model state.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// Err returns the fault that stopped the loop, if any.
func (m Model) Err() error {
	return m.err
}

// Events returns the event log, oldest first.
func (m Model) Events() []Event {
	return m.events
}

// Pending returns the candidate awaiting an answer.
func (m Model) Pending() (triage.Candidate, bool) {
	if m.prompt == nil {
		return triage.Candidate{}, false
	}
	return m.prompt.candidate, true
}

func (m *Model) setFrame(f Frame) {
	m.frame = f
	m.hasFrame = true

	ts := f.Snapshot.Timestamp
	if m.lastTableRefresh.IsZero() || ts.Sub(m.lastTableRefresh) >= m.tableInterval {
		m.procTable.SetRows(processRows(f.Snapshot.Processes))
		m.lastTableRefresh = ts
	}
}

func (m *Model) addEvent(e Event) {
	m.events = append(m.events, e)
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

// answer delivers a decision for the pending prompt. The reply channel is
// buffered, so this never blocks even if the loop already gave up waiting.
func (m *Model) answer(d triage.Decision) {
	if m.prompt == nil {
		return
	}
	select {
	case m.prompt.reply <- d:
	default:
	}
	m.prompt = nil
}

// quit declines any pending prompt, cancels the loop and exits the program.
func (m *Model) quit() tea.Cmd {
	m.answer(triage.Decline)
	m.quitting = true
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return tea.Quit
}

func clockCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

package monitor

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syspulse/syspulse/internal/logger"
	"github.com/syspulse/syspulse/internal/triage"
)

// chanSender stands in for *tea.Program.
type chanSender struct {
	msgs chan tea.Msg
}

func newChanSender() *chanSender {
	return &chanSender{msgs: make(chan tea.Msg, 16)}
}

func (s *chanSender) Send(msg tea.Msg) {
	s.msgs <- msg
}

func (s *chanSender) next(t *testing.T) tea.Msg {
	t.Helper()
	select {
	case msg := <-s.msgs:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message sent")
		return nil
	}
}

var _ Renderer = (*Bridge)(nil)
var _ logger.Logger = (*Bridge)(nil)
var _ triage.Proposer = (*Bridge)(nil)

func TestBridgeRenderAndLog(t *testing.T) {
	s := newChanSender()
	b := NewBridge(s, time.Second)

	require.NoError(t, b.Render(Frame{Critical: true}))
	fm, ok := s.next(t).(frameMsg)
	require.True(t, ok)
	assert.True(t, fm.frame.Critical)

	b.Error("Failed to kill %s", "x")
	em, ok := s.next(t).(eventMsg)
	require.True(t, ok)
	assert.Equal(t, LevelError, em.level)
	assert.Equal(t, "Failed to kill x", em.text)
}

func TestBridgeDebugGatedByEnv(t *testing.T) {
	s := newChanSender()
	b := NewBridge(s, time.Second)

	t.Setenv(logger.DebugEnv, "")
	b.Debug("hidden")
	b.Info("shown")
	em := s.next(t).(eventMsg)
	assert.Equal(t, "shown", em.text)

	t.Setenv(logger.DebugEnv, "1")
	b.Debug("visible")
	em = s.next(t).(eventMsg)
	assert.Equal(t, LevelDebug, em.level)
}

func TestBridgeProposeReturnsAnswer(t *testing.T) {
	s := newChanSender()
	b := NewBridge(s, time.Minute)
	c := triage.Candidate{PID: 42, Name: "stress", Kind: triage.Heavy}

	go func() {
		if msg, ok := (<-s.msgs).(proposalMsg); ok {
			msg.reply <- triage.Accept
		}
	}()

	assert.Equal(t, triage.Accept, b.Propose(context.Background(), c))
}

func TestBridgeProposeTimesOut(t *testing.T) {
	s := newChanSender()
	b := NewBridge(s, 20*time.Millisecond)
	c := triage.Candidate{PID: 42, Name: "stress", Kind: triage.Heavy}

	assert.Equal(t, triage.Decline, b.Propose(context.Background(), c))

	pm := s.next(t).(proposalMsg)
	assert.NotEmpty(t, pm.id)
	assert.Equal(t, c, pm.candidate)

	expired := s.next(t).(proposalExpiredMsg)
	assert.Equal(t, pm.id, expired.id)

	warn := s.next(t).(eventMsg)
	assert.Equal(t, LevelWarn, warn.level)
	assert.Contains(t, warn.text, "No answer for stress (PID: 42)")
}

func TestBridgeProposeCancelled(t *testing.T) {
	s := newChanSender()
	b := NewBridge(s, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, triage.Decline, b.Propose(ctx, triage.Candidate{PID: 1}))
	_ = s.next(t).(proposalMsg)
	_ = s.next(t).(proposalExpiredMsg)
}

func TestBridgeProposalIDsAreUnique(t *testing.T) {
	s := newChanSender()
	b := NewBridge(s, time.Millisecond)

	b.Propose(context.Background(), triage.Candidate{PID: 1})
	first := s.next(t).(proposalMsg)
	s.next(t)
	s.next(t)

	b.Propose(context.Background(), triage.Candidate{PID: 1})
	second := s.next(t).(proposalMsg)
	assert.NotEqual(t, first.id, second.id)
}

func TestBridgeLoopDone(t *testing.T) {
	s := newChanSender()
	NewBridge(s, 0).LoopDone(nil)
	done := s.next(t).(loopDoneMsg)
	assert.NoError(t, done.err)
}

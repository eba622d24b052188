package monitor

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/syspulse/syspulse/internal/triage"
)

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeyYes         = "y"
	KeyYesAlt      = "Y"
	KeyNo          = "n"
	KeyNoAlt       = "N"
	KeyScrollUp    = "up"
	KeyScrollUpK   = "k"
	KeyScrollDown  = "down"
	KeyScrollDownJ = "j"
	KeyCloseHelp   = "esc"
	KeyToggleHelp  = "?"
)

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// Quit always wins, even over a pending prompt
	if key == KeyQuit || key == KeyQuitAlt {
		return true, m.quit()
	}

	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp && key == KeyCloseHelp {
		m.showHelp = false
		return true, nil
	}

	if m.prompt != nil {
		switch key {
		case KeyYes, KeyYesAlt:
			m.answer(triage.Accept)
			return true, nil
		case KeyNo, KeyNoAlt:
			m.answer(triage.Decline)
			return true, nil
		}
	}

	switch key {
	case KeyScrollUp, KeyScrollUpK:
		m.procTable.MoveUp(1)
		return true, nil

	case KeyScrollDown, KeyScrollDownJ:
		m.procTable.MoveDown(1)
		return true, nil
	}

	return false, nil
}

// Package monitor runs the SysPulse loop and displays it.
//
// # Loop
//
// Engine performs one tick every 100ms, in a fixed order:
//
//  1. refresh the snapshot from the provider
//  2. feed the CPU reading to the stats window
//  3. render the frame
//  4. run process triage when CPU usage is above 90%
//  5. evaluate the backup and email gates
//  6. stop if a quit was requested, else sleep the rest of the tick
//
// Provider and render faults stop the loop. Backup, email and kill faults
// are reported through the logger and the loop carries on.
//
// # Display
//
// On a terminal the loop runs on a background goroutine and a Bubble Tea
// program owns the screen. Bridge forwards frames, report lines and kill
// proposals with program.Send. A proposal blocks the loop, not the
// dashboard: the prompt counts down and is declined when it expires.
//
// Without a terminal, or with --plain, PlainRenderer prints a status block
// once per display interval and proposals are asked with a huh confirm.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit (declines a pending prompt)
//	y / n       - Answer the pending prompt
//	↑/↓, k/j    - Scroll the process table
//	?           - Toggle help overlay
package monitor

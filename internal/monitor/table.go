package monitor

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/syspulse/syspulse/internal/sysinfo"
)

// processColumns are the process table columns. Path takes what is left of
// the terminal width.
var processColumns = []table.Column{
	{Title: "Name", Width: 20},
	{Title: "PID", Width: 8},
	{Title: "Path", Width: 30},
	{Title: "CPU %", Width: 8},
	{Title: "RAM (MB)", Width: 10},
}

// newProcessTable creates the process table with dashboard styling.
func newProcessTable() table.Model {
	cols := make([]table.Column, len(processColumns))
	copy(cols, processColumns)

	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorAccent)
	s.Cell = s.Cell.
		Foreground(ColorTextPrimary)
	s.Selected = s.Selected.
		Foreground(ColorTextPrimary).
		Background(ColorAccentDim).
		Bold(false)
	t.SetStyles(s)

	return t
}

// sortByCPU returns a copy of procs ordered by CPU usage, highest first.
func sortByCPU(procs []sysinfo.Process) []sysinfo.Process {
	sorted := make([]sysinfo.Process, len(procs))
	copy(sorted, procs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CPUUsage > sorted[j].CPUUsage
	})
	return sorted
}

// processRows converts processes into table rows, busiest first.
func processRows(procs []sysinfo.Process) []table.Row {
	sorted := sortByCPU(procs)
	rows := make([]table.Row, len(sorted))
	for i, p := range sorted {
		rows[i] = table.Row{
			p.Name,
			fmt.Sprintf("%d", p.PID),
			p.ExePath,
			fmt.Sprintf("%.2f", p.CPUUsage),
			fmt.Sprintf("%d", p.MemoryMB()),
		}
	}
	return rows
}

// resizeProcessTable fits the table into the given width and height.
func resizeProcessTable(t *table.Model, width, height int) {
	fixed := 0
	for i, c := range processColumns {
		if i != 2 {
			fixed += c.Width
		}
	}
	// two cells of padding per column plus the section borders
	pathWidth := width - fixed - 2*len(processColumns) - 4
	if pathWidth < 10 {
		pathWidth = 10
	}

	cols := make([]table.Column, len(processColumns))
	copy(cols, processColumns)
	cols[2].Width = pathWidth
	t.SetColumns(cols)

	if height < 3 {
		height = 3
	}
	t.SetHeight(height)
}

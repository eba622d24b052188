package monitor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/syspulse/syspulse/internal/errors"
	"github.com/syspulse/syspulse/internal/sysinfo"
)

// Layout limits
const (
	defaultWidth  = 100
	minWidth      = 60
	gaugeLabelPad = 24
	eventLines    = 6
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	width := m.contentWidth()
	f := m.frame

	var sections []string
	sections = append(sections, m.renderHeader(width))

	if m.err != nil {
		sections = append(sections, ErrorBannerStyle.Render(errors.Headline(m.err)))
	}

	if !m.hasFrame {
		sections = append(sections, LabelStyle.Render("Collecting metrics..."))
	} else {
		sections = append(sections,
			renderCPUSection(f, width),
			renderMemorySection(f.Snapshot, width),
			renderDiskSection(f.Snapshot.Disks, width),
			renderStatusSection(f, width),
			Section("Processes", fmt.Sprintf("%d", len(f.Snapshot.Processes)),
				strings.Split(m.procTable.View(), "\n"), width),
		)
	}

	sections = append(sections, m.renderEvents(width))

	if m.prompt != nil {
		sections = append(sections, m.renderPrompt(width))
	}

	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

// renderHeader renders the title bar with the current time and CPU model.
func (m Model) renderHeader(width int) string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("SysPulse")

	info := " | " + m.now.Format("2006-01-02 15:04:05")
	if m.hasFrame && m.frame.Snapshot.CPUBrand != "" {
		info += " | " + m.frame.Snapshot.CPUBrand
	}
	stats := lipgloss.NewStyle().Foreground(ColorTextSecondary).Render(info)

	return HeaderStyle.Width(width).Render(title + stats)
}

func renderCPUSection(f Frame, width int) string {
	cpu := f.Snapshot.CPUUsage
	inner := width - 4
	barWidth := inner - gaugeLabelPad
	if barWidth < 10 {
		barWidth = 10
	}

	gauge := ProgressBar(barWidth, cpu) + " " + MetricStyle(cpu).Render(fmt.Sprintf("%6.2f%%", cpu))
	spark := RenderColoredSparkline(f.History, barWidth) + " " +
		MutedStyle.Render(fmt.Sprintf("%d samples", len(f.History)))

	return Section("CPU", fmt.Sprintf("%.1f%%", cpu), []string{gauge, spark}, width)
}

func renderMemorySection(s sysinfo.Snapshot, width int) string {
	pct := s.MemoryPercent()
	barWidth := width - 4 - gaugeLabelPad
	if barWidth < 10 {
		barWidth = 10
	}

	gauge := ProgressBar(barWidth, pct) + " " + MetricStyle(pct).Render(fmt.Sprintf("%6.2f%%", pct))
	value := fmt.Sprintf("%d / %d MB", s.MemoryUsedMB(), s.MemoryTotalMB())
	return Section("RAM", value, []string{gauge}, width)
}

// sortDisks returns a copy of disks ordered by mount path.
func sortDisks(disks []sysinfo.Disk) []sysinfo.Disk {
	sorted := make([]sysinfo.Disk, len(disks))
	copy(sorted, disks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MountPath < sorted[j].MountPath
	})
	return sorted
}

// diskLine formats one disk row.
func diskLine(d sysinfo.Disk) string {
	state := lipgloss.NewStyle().Foreground(ColorHealthy).Render("In Use")
	if !d.Mounted() {
		state = MutedStyle.Render("Not Mounted")
	}
	return fmt.Sprintf("%-20s %s %s %s",
		d.MountPath,
		LabelStyle.Render(fmt.Sprintf("used %d/%d GB", d.UsedGB(), d.TotalGB())),
		ValueStyle.Render(fmt.Sprintf("free %d GB", d.FreeGB())),
		state)
}

func renderDiskSection(disks []sysinfo.Disk, width int) string {
	var lines []string
	for _, d := range sortDisks(disks) {
		lines = append(lines, diskLine(d))
	}
	if len(lines) == 0 {
		lines = append(lines, MutedStyle.Render("No disks found"))
	}
	return Section("Disks", fmt.Sprintf("%d", len(disks)), lines, width)
}

// statusLines returns the hardware and status lines shared by the dashboard
// and the plain renderer.
func statusLines(f Frame) []string {
	s := f.Snapshot
	var lines []string

	if s.CPUBrand != "" {
		lines = append(lines, LabelStyle.Render("CPU: ")+ValueStyle.Render(s.CPUBrand))
	}
	if s.PhysicalCores > 0 {
		lines = append(lines, LabelStyle.Render("Physical cores: ")+ValueStyle.Render(fmt.Sprintf("%d", s.PhysicalCores)))
	}
	for _, c := range s.Components {
		lines = append(lines, LabelStyle.Render(c.Label+": ")+ValueStyle.Render(fmt.Sprintf("%.1f°C", c.Temperature)))
	}

	avg := "n/a"
	if f.HasAverage {
		avg = fmt.Sprintf("%.2f%%", f.Average)
	}
	lines = append(lines, LabelStyle.Render("Avg CPU (5 min): ")+ValueStyle.Render(avg))

	if f.HasTrend && f.Trend > 0 {
		lines = append(lines, TrendStyle.Render(fmt.Sprintf("CPU Trend: Increasing (+%.2f%%)", f.Trend)))
	}
	if f.Critical {
		lines = append(lines, CriticalStyle.Render("CRITICAL: CPU usage exceeds 90%!"))
	}
	return lines
}

func renderStatusSection(f Frame, width int) string {
	return Section("Hardware & Status", "", statusLines(f), width)
}

// renderEvents renders the newest event log entries.
func (m Model) renderEvents(width int) string {
	events := m.events
	if len(events) > eventLines {
		events = events[len(events)-eventLines:]
	}

	var lines []string
	for _, e := range events {
		lines = append(lines, formatEvent(e))
	}
	if len(lines) == 0 {
		lines = append(lines, MutedStyle.Render("No events yet"))
	}
	return Section("Events", fmt.Sprintf("%d", len(m.events)), lines, width)
}

func formatEvent(e Event) string {
	return MutedStyle.Render(e.Time.Format("15:04:05")) + " " + LevelStyle(e.Level).Render(e.Text)
}

// renderPrompt renders the pending confirmation with its countdown.
func (m Model) renderPrompt(width int) string {
	remaining := m.prompt.deadline.Sub(m.now).Round(time.Second)
	if remaining < 0 {
		remaining = 0
	}
	text := fmt.Sprintf("%s  (no in %s)", m.prompt.candidate.Prompt(), remaining)
	return PromptStyle.Width(width).Render(text)
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	hints := []string{"q quit", "↑↓ scroll", "? help"}
	if m.prompt != nil {
		hints = append([]string{"y kill", "n keep"}, hints...)
	}
	return FooterStyle.Render(strings.Join(hints, " | "))
}

// contentWidth is the width sections are drawn at.
func (m Model) contentWidth() int {
	if m.width == 0 {
		return defaultWidth
	}
	if m.width < minWidth {
		return minWidth
	}
	return m.width
}

// tableHeight is the number of process rows that fit below the fixed panels.
func (m Model) tableHeight() int {
	if m.height == 0 {
		return 10
	}
	// header, gauges, disks, status, events, prompt and footer
	used := 30
	return m.height - used
}

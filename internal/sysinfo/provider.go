package sysinfo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/shirou/gopsutil/v4/sensors"
	"github.com/syspulse/syspulse/internal/errors"
)

// pseudoFilesystems are skipped when listing disks; they report no real capacity.
var pseudoFilesystems = map[string]bool{
	"proc":     true,
	"sysfs":    true,
	"devtmpfs": true,
	"devpts":   true,
	"tmpfs":    true,
	"cgroup":   true,
	"cgroup2":  true,
	"overlay":  true,
	"squashfs": true,
	"autofs":   true,
	"mqueue":   true,
	"debugfs":  true,
	"tracefs":  true,
	"nsfs":     true,
}

// Provider gathers snapshots of the local host using gopsutil.
//
// Per-process CPU usage is computed as a delta between two refreshes, so the
// provider keeps the process handles from the previous refresh keyed by PID.
// A process seen for the first time reports 0% until the next refresh.
type Provider struct {
	mu    sync.Mutex
	procs map[int32]*process.Process
	now   func() time.Time

	// static host facts, read once
	brand string
	cores int
	once  sync.Once
}

// NewProvider creates a provider for the local host.
func NewProvider() *Provider {
	return &Provider{
		procs: make(map[int32]*process.Process),
		now:   time.Now,
	}
}

// Refresh captures a complete snapshot: CPU, memory, disks, temperatures and processes.
// CPU and memory failures are provider faults; disk, sensor and per-process
// read failures only drop the affected entry.
func (p *Provider) Refresh(ctx context.Context) (Snapshot, error) {
	p.once.Do(func() { p.loadHostFacts(ctx) })

	snap := Snapshot{
		Timestamp:     p.now(),
		CPUBrand:      p.brand,
		PhysicalCores: p.cores,
	}

	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return Snapshot{}, errors.WrapWithCode(err, errors.ErrProvider,
			"Can't read CPU usage",
			"Check that the process can read /proc/stat (or the platform equivalent).")
	}
	if len(percents) > 0 {
		snap.CPUUsage = percents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Snapshot{}, errors.WrapWithCode(err, errors.ErrProvider,
			"Can't read memory usage",
			"Check that the process can read /proc/meminfo (or the platform equivalent).")
	}
	snap.MemoryUsed = vm.Used
	snap.MemoryTotal = vm.Total

	snap.Disks = p.disks(ctx)
	snap.Components = p.components(ctx)

	procs, err := p.Processes(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Processes = procs

	return snap, nil
}

// Processes enumerates running processes in PID order.
// Triage calls this directly to get a list fresher than the tick's snapshot.
func (p *Provider) Processes(ctx context.Context) ([]Process, error) {
	handles, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrProvider,
			"Can't list processes",
			"Check that the process can read /proc.")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	next := make(map[int32]*process.Process, len(handles))
	result := make([]Process, 0, len(handles))

	for _, h := range handles {
		// Reuse the previous handle so Percent measures since the last refresh
		if prev, ok := p.procs[h.Pid]; ok {
			h = prev
		}

		name, err := h.NameWithContext(ctx)
		if err != nil {
			// Exited between listing and reading
			continue
		}
		next[h.Pid] = h

		proc := Process{PID: h.Pid, Name: name}
		proc.ExePath, _ = h.ExeWithContext(ctx)
		proc.CPUUsage, _ = h.PercentWithContext(ctx, 0)
		if mi, err := h.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			proc.Memory = mi.RSS
		}
		if created, err := h.CreateTimeWithContext(ctx); err == nil {
			proc.RunTime = runTimeSeconds(created, now)
		}
		result = append(result, proc)
	}

	p.procs = next

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].PID < result[j].PID
	})

	return result, nil
}

// loadHostFacts reads values that do not change while the program runs.
func (p *Provider) loadHostFacts(ctx context.Context) {
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		p.brand = strings.TrimSpace(infos[0].ModelName)
	}
	if cores, err := cpu.CountsWithContext(ctx, false); err == nil {
		p.cores = cores
	}
}

// disks lists physical partitions with their usage.
func (p *Provider) disks(ctx context.Context) []Disk {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var disks []Disk
	for _, part := range parts {
		if pseudoFilesystems[part.Fstype] || seen[part.Mountpoint] {
			continue
		}
		seen[part.Mountpoint] = true

		usage, err := disk.UsageWithContext(ctx, part.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		disks = append(disks, Disk{
			MountPath: part.Mountpoint,
			Used:      usage.Used,
			Total:     usage.Total,
			Available: usage.Free,
		})
	}
	return disks
}

// components reads temperature sensors. Many hosts (VMs, containers) have
// none, and gopsutil reports partial results alongside a warning error, so
// errors are ignored.
func (p *Provider) components(ctx context.Context) []Component {
	temps, _ := sensors.TemperaturesWithContext(ctx)
	components := make([]Component, 0, len(temps))
	for _, t := range temps {
		if t.Temperature <= 0 {
			continue
		}
		components = append(components, Component{
			Label:       t.SensorKey,
			Temperature: t.Temperature,
		})
	}
	return components
}

// runTimeSeconds converts a create time in epoch milliseconds to a run time
// in whole seconds relative to now. Clock skew never yields a negative value.
func runTimeSeconds(createdMillis int64, now time.Time) uint64 {
	created := time.UnixMilli(createdMillis)
	if !now.After(created) {
		return 0
	}
	return uint64(now.Sub(created) / time.Second)
}

// Package sysinfo defines the per-tick metrics snapshot and the local
// provider that fills it from the operating system.
package sysinfo

import "time"

// Byte size units used when converting snapshot values for display and backup.
const (
	MiB = 1024 * 1024
	GiB = 1024 * 1024 * 1024
)

// Snapshot is the complete set of metrics captured at one tick.
// A Snapshot is treated as immutable once returned by a provider.
type Snapshot struct {
	Timestamp     time.Time
	CPUUsage      float64 // 0-100, whole machine
	MemoryUsed    uint64  // bytes
	MemoryTotal   uint64  // bytes
	Disks         []Disk
	Components    []Component
	Processes     []Process // provider enumeration order
	CPUBrand      string
	PhysicalCores int
}

// Disk contains usage for a single mounted filesystem.
type Disk struct {
	MountPath string
	Used      uint64
	Total     uint64
	Available uint64
}

// Component is a temperature sensor reading.
type Component struct {
	Label       string
	Temperature float64 // degrees Celsius
}

// Process contains the per-process metrics triage and the process table need.
type Process struct {
	PID      int32
	Name     string
	ExePath  string
	CPUUsage float64 // percent of one core, may exceed 100 on multi-core hosts
	Memory   uint64  // resident bytes
	RunTime  uint64  // seconds since the process started
}

// MemoryUsedMB returns used memory in whole mebibytes.
func (s Snapshot) MemoryUsedMB() uint64 {
	return s.MemoryUsed / MiB
}

// MemoryTotalMB returns total memory in whole mebibytes.
func (s Snapshot) MemoryTotalMB() uint64 {
	return s.MemoryTotal / MiB
}

// MemoryPercent returns used memory as a percentage of total.
func (s Snapshot) MemoryPercent() float64 {
	if s.MemoryTotal == 0 {
		return 0
	}
	return float64(s.MemoryUsed) / float64(s.MemoryTotal) * 100
}

// FreeGB returns available space in whole gibibytes.
func (d Disk) FreeGB() uint64 {
	return d.Available / GiB
}

// TotalGB returns total space in whole gibibytes.
func (d Disk) TotalGB() uint64 {
	return d.Total / GiB
}

// UsedGB returns the used space in whole gibibytes, derived as total minus free.
func (d Disk) UsedGB() uint64 {
	total, free := d.TotalGB(), d.FreeGB()
	if free > total {
		return 0
	}
	return total - free
}

// Mounted reports whether the filesystem has space available to use.
func (d Disk) Mounted() bool {
	return d.Available > 0
}

// MemoryMB returns resident memory in whole mebibytes.
func (p Process) MemoryMB() uint64 {
	return p.Memory / MiB
}

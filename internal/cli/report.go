package cli

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/syspulse/syspulse/internal/errors"
	"github.com/syspulse/syspulse/internal/sysinfo"
)

// Report is the JSON document printed by `syspulse report`.
type Report struct {
	Timestamp string       `json:"timestamp"`
	CPUUsage  float64      `json:"cpu_usage"`
	Memory    MemoryReport `json:"memory"`
	Disks     []DiskReport `json:"disks"`
}

// MemoryReport holds memory figures in whole mebibytes.
type MemoryReport struct {
	UsedMB  uint64 `json:"used_mb"`
	TotalMB uint64 `json:"total_mb"`
}

// DiskReport holds one filesystem in whole gibibytes.
type DiskReport struct {
	Mount   string `json:"mount"`
	FreeGB  uint64 `json:"free_gb"`
	TotalGB uint64 `json:"total_gb"`
}

// snapshotter is the part of the provider the report needs.
type snapshotter interface {
	Refresh(ctx context.Context) (sysinfo.Snapshot, error)
}

// newSnapshotter is swapped in tests.
var newSnapshotter = func() snapshotter {
	return sysinfo.NewProvider()
}

func reportCommand(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	snap, err := newSnapshotter().Refresh(ctx)
	if err != nil {
		return err
	}
	return writeReport(w, NewReport(snap))
}

// NewReport converts a snapshot into the report shape. Disks keep provider order.
func NewReport(snap sysinfo.Snapshot) Report {
	r := Report{
		Timestamp: snap.Timestamp.Local().Format(time.RFC3339Nano),
		CPUUsage:  snap.CPUUsage,
		Memory: MemoryReport{
			UsedMB:  snap.MemoryUsedMB(),
			TotalMB: snap.MemoryTotalMB(),
		},
		Disks: make([]DiskReport, 0, len(snap.Disks)),
	}
	for _, d := range snap.Disks {
		r.Disks = append(r.Disks, DiskReport{
			Mount:   d.MountPath,
			FreeGB:  d.FreeGB(),
			TotalGB: d.TotalGB(),
		})
	}
	return r
}

func writeReport(w io.Writer, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrRender,
			"Failed to encode report",
			"This is a bug, please report it")
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return errors.WrapWithCode(err, errors.ErrRender,
			"Failed to write report",
			"Check that stdout is writable")
	}
	return nil
}

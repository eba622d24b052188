// Package backup appends metrics snapshots to a newline-delimited JSON file.
package backup

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/syspulse/syspulse/internal/errors"
	"github.com/syspulse/syspulse/internal/sysinfo"
)

// DefaultPath is the backup file used when none is configured.
const DefaultPath = "syspulse_backup.json"

// Record is one line of the backup file.
type Record struct {
	Timestamp     string   `json:"timestamp"`
	CPUUsage      float64  `json:"cpu_usage"`
	MemoryUsedMB  uint64   `json:"memory_used_mb"`
	MemoryTotalMB uint64   `json:"memory_total_mb"`
	DisksFreeGB   []uint64 `json:"disks_free_gb"`
}

// NewRecord converts a snapshot into its backup form. The timestamp is the
// snapshot's capture time in local time, RFC 3339 with nanoseconds.
func NewRecord(snap sysinfo.Snapshot) Record {
	free := make([]uint64, 0, len(snap.Disks))
	for _, d := range snap.Disks {
		free = append(free, d.FreeGB())
	}
	return Record{
		Timestamp:     snap.Timestamp.Local().Format(time.RFC3339Nano),
		CPUUsage:      snap.CPUUsage,
		MemoryUsedMB:  snap.MemoryUsedMB(),
		MemoryTotalMB: snap.MemoryTotalMB(),
		DisksFreeGB:   free,
	}
}

// Writer appends records to Path. The file is opened per call so it can be
// rotated or removed while the monitor runs.
type Writer struct {
	Path string

	mu sync.Mutex
}

// NewWriter creates a writer for path, expanding a leading ~.
func NewWriter(path string) (*Writer, error) {
	if path == "" {
		path = DefaultPath
	}
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Can't determine home directory",
				"Set backup.path to an absolute path.")
		}
		path = filepath.Join(home, path[1:])
	}
	return &Writer{Path: path}, nil
}

// Append writes one JSON line for snap.
func (w *Writer) Append(ctx context.Context, snap sysinfo.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapWithCode(err, errors.ErrBackup, "Backup skipped", "")
	}

	line, err := json.Marshal(NewRecord(snap))
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrBackup,
			"Can't encode backup record", "")
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	if dir := filepath.Dir(w.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WrapWithCode(err, errors.ErrBackup,
				"Can't create backup directory "+dir,
				"Check your permissions for "+dir+".")
		}
	}

	f, err := os.OpenFile(w.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrBackup,
			"Can't open backup file "+w.Path,
			"Check backup.path and your permissions.")
	}

	if _, err := f.Write(line); err != nil {
		f.Close()
		return errors.WrapWithCode(err, errors.ErrBackup,
			"Can't write backup file "+w.Path, "")
	}
	if err := f.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrBackup,
			"Can't close backup file "+w.Path, "")
	}
	return nil
}

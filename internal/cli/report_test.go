package cli

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syspulse/syspulse/internal/sysinfo"
)

type stubSnapshotter struct {
	snap sysinfo.Snapshot
	err  error
}

func (s stubSnapshotter) Refresh(context.Context) (sysinfo.Snapshot, error) {
	return s.snap, s.err
}

func withSnapshotter(t *testing.T, s snapshotter) {
	t.Helper()
	orig := newSnapshotter
	newSnapshotter = func() snapshotter { return s }
	t.Cleanup(func() { newSnapshotter = orig })
}

func reportSnapshot() sysinfo.Snapshot {
	return sysinfo.Snapshot{
		Timestamp:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		CPUUsage:    42.5,
		MemoryUsed:  3*1024*sysinfo.MiB + 512*1024,
		MemoryTotal: 16 * 1024 * sysinfo.MiB,
		Disks: []sysinfo.Disk{
			{MountPath: "/", Total: 500 * sysinfo.GiB, Available: 120*sysinfo.GiB + 1},
			{MountPath: "/boot", Total: sysinfo.GiB, Available: sysinfo.GiB / 2},
		},
	}
}

func TestNewReport(t *testing.T) {
	r := NewReport(reportSnapshot())

	assert.Equal(t, 42.5, r.CPUUsage)
	assert.Equal(t, uint64(3072), r.Memory.UsedMB, "truncated to whole MB")
	assert.Equal(t, uint64(16384), r.Memory.TotalMB)
	require.Len(t, r.Disks, 2)
	assert.Equal(t, DiskReport{Mount: "/", FreeGB: 120, TotalGB: 500}, r.Disks[0])
	assert.Equal(t, DiskReport{Mount: "/boot", FreeGB: 0, TotalGB: 1}, r.Disks[1])

	ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	require.NoError(t, err)
	assert.True(t, ts.Equal(reportSnapshot().Timestamp))
}

func TestReportCommandWritesPrettyJSON(t *testing.T) {
	withSnapshotter(t, stubSnapshotter{snap: reportSnapshot()})

	var buf bytes.Buffer
	require.NoError(t, reportCommand(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, "\n  \"cpu_usage\": 42.5", "indented two spaces")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.ElementsMatch(t, []string{"timestamp", "cpu_usage", "memory", "disks"}, keys(decoded))

	memory := decoded["memory"].(map[string]interface{})
	assert.ElementsMatch(t, []string{"used_mb", "total_mb"}, keys(memory))

	disk := decoded["disks"].([]interface{})[0].(map[string]interface{})
	assert.ElementsMatch(t, []string{"mount", "free_gb", "total_gb"}, keys(disk))
}

func TestReportCommandNoDisks(t *testing.T) {
	snap := reportSnapshot()
	snap.Disks = nil
	withSnapshotter(t, stubSnapshotter{snap: snap})

	var buf bytes.Buffer
	require.NoError(t, reportCommand(context.Background(), &buf))
	assert.Contains(t, buf.String(), `"disks": []`)
}

func TestReportCommandProviderError(t *testing.T) {
	withSnapshotter(t, stubSnapshotter{err: stderrors.New("no /proc")})

	var buf bytes.Buffer
	assert.Error(t, reportCommand(context.Background(), &buf))
	assert.Empty(t, buf.String())
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

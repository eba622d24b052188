package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/syspulse/syspulse/internal/config"
)

func TestWriteConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Email.Password = "hunter2"

	var buf bytes.Buffer
	require.NoError(t, writeConfig(&buf, cfg, ""))

	out := buf.String()
	assert.Contains(t, out, "# source: defaults (no config file found)")
	assert.Contains(t, out, "display_interval: 5s")
	assert.Contains(t, out, "smtp_host: smtp.gmail.com")
	assert.NotContains(t, out, "hunter2")
	assert.Equal(t, "hunter2", cfg.Email.Password, "the loaded config is not modified")

	var back config.Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, 60, back.HistorySize)
	assert.Equal(t, "syspulse_backup.json", back.Backup.Path)
}

func TestConfigShowCommandUsesConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history_size: 90\n"), 0644))

	orig := configFlag
	configFlag = path
	t.Cleanup(func() { configFlag = orig })

	var buf bytes.Buffer
	require.NoError(t, configShowCommand(&buf))
	assert.Contains(t, buf.String(), "# source: "+path)
	assert.Contains(t, buf.String(), "history_size: 90")
}

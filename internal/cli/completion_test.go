package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionBashGeneration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rootCmd.GenBashCompletion(&buf))

	output := buf.String()
	assert.Contains(t, output, "# bash completion for syspulse")
	assert.Contains(t, output, "__syspulse_debug")
}

func TestCompletionZshGeneration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rootCmd.GenZshCompletion(&buf))

	output := buf.String()
	assert.Contains(t, output, "#compdef syspulse")
	assert.Contains(t, output, "_syspulse()")
}

func TestCompletionFishGeneration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rootCmd.GenFishCompletion(&buf, true))
	assert.Contains(t, buf.String(), "complete -c syspulse")
}

func TestCompletionPowershellGeneration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rootCmd.GenPowerShellCompletion(&buf))
	assert.Contains(t, buf.String(), "syspulse")
}

func TestRootRegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"monitor", "report", "config", "version", "completion"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestCompletionCommandValidArgs(t *testing.T) {
	// bash completion generation sorts ValidArgs in place
	assert.ElementsMatch(t, []string{"bash", "zsh", "fish", "powershell"}, completionCmd.ValidArgs)
	assert.Error(t, completionCmd.Args(completionCmd, []string{"tcsh"}))
	assert.Error(t, completionCmd.Args(completionCmd, nil))
	assert.NoError(t, completionCmd.Args(completionCmd, []string{"zsh"}))
}

func TestMonitorFlags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"interval", "i", ""},
		{"backup-interval", "b", "0"},
		{"email", "", ""},
		{"plain", "", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := monitorCmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.def, flag.DefValue)
		})
	}

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.True(t, strings.Contains(configShowCmd.CommandPath(), "config show"))
}

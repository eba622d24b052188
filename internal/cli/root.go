package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syspulse/syspulse/internal/errors"
)

// configFlag is the explicit config path from --config.
var configFlag string

var rootCmd = &cobra.Command{
	Use:   "syspulse",
	Short: "SysPulse - real-time host monitor",
	Long: `SysPulse samples CPU, memory, disks and processes ten times a second.

It flags sustained high CPU, offers to kill the heaviest or long-idle
processes, appends periodic backups and can email an alert when load
stays high.

Examples:
  syspulse monitor
  syspulse monitor --plain --interval 10s
  syspulse report`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default .syspulse.yaml, then ~/.config/syspulse/config.yaml)")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err in the structured format, with a hint for typos.
func printError(w io.Writer, err error) {
	if isUnknownCommandError(err) {
		fmt.Fprintf(w, "✗ %s\n", err.Error())
		if name := extractUnknownCommand(err); name != "" {
			fmt.Fprintf(w, "\n  '%s' isn't a syspulse command. Run 'syspulse --help' to see what's available.\n", name)
		}
		return
	}

	var spErr *errors.Error
	if stderrors.As(err, &spErr) {
		fmt.Fprint(w, spErr.Error())
		return
	}
	fmt.Fprintf(w, "✗ %s\n", err.Error())
}

// isUnknownCommandError reports whether cobra rejected the command line itself.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the quoted command name out of cobra's error.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/syspulse/syspulse/internal/errors"
)

// Command-specific flags
var (
	monitorIntervalFlag       string
	monitorBackupIntervalFlag int
	monitorEmailFlag          string
	monitorPlainFlag          bool
)

// monitorCmd runs the live monitor
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Monitor this host in real time",
	Long: `Sample CPU, memory, disks and processes every 100ms and show them live.

On a terminal this opens the dashboard. When output is piped, or with
--plain, a status block is printed every --interval instead.

When CPU goes above 90% the heaviest and longest-idle processes are offered
for termination. Nothing is killed without a "y".

Examples:
  syspulse monitor
  syspulse monitor --interval 10s --backup-interval 300
  syspulse monitor --email ops@example.com
  syspulse monitor --plain | tee pulse.log`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(cmd.Context(), monitorFlags{
			interval:       monitorIntervalFlag,
			backupInterval: monitorBackupIntervalFlag,
			email:          monitorEmailFlag,
			plain:          monitorPlainFlag,
		})
	},
}

// reportCmd prints a one-off snapshot
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a one-time system report as JSON",
	Long: `Take a single snapshot and print it as pretty JSON.

Examples:
  syspulse report
  syspulse report | jq .cpu_usage`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

// configCmd groups config subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

// configShowCmd prints the effective config
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config as YAML",
	Long: `Print the config syspulse would run with: defaults, then the config
file, then SYSPULSE_* environment overrides. Passwords are masked.

Examples:
  syspulse config show
  syspulse --config ./ci.yaml config show`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowCommand(cmd.OutOrStdout())
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for syspulse.

Examples:
  # Bash
  syspulse completion bash > /etc/bash_completion.d/syspulse

  # Zsh
  syspulse completion zsh > "${fpath[1]}/_syspulse"

  # Fish
  syspulse completion fish > ~/.config/fish/completions/syspulse.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// monitor command flags
	monitorCmd.Flags().StringVarP(&monitorIntervalFlag, "interval", "i", "", "display refresh interval (e.g. 5s, or plain seconds)")
	monitorCmd.Flags().IntVarP(&monitorBackupIntervalFlag, "backup-interval", "b", 0, "seconds between backups (default 600)")
	monitorCmd.Flags().StringVar(&monitorEmailFlag, "email", "", "send high-CPU alerts to this address")
	monitorCmd.Flags().BoolVar(&monitorPlainFlag, "plain", false, "print status lines instead of the dashboard")

	configCmd.AddCommand(configShowCmd)

	// Register all commands
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
}

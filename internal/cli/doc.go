// Package cli implements the syspulse command-line interface.
//
// Each Cobra command loads the effective config, applies its flags on top
// and hands off to the package that does the work:
//
//	syspulse monitor      - live dashboard (or line output when piped)
//	syspulse report       - one snapshot as JSON
//	syspulse config show  - effective config as YAML
//	syspulse version      - build information
//	syspulse completion   - shell completion scripts
//
// # Config Resolution
//
// The --config flag is defined on the root command. Without it, the config
// package searches .syspulse.yaml in the working directory and then
// ~/.config/syspulse/config.yaml. SYSPULSE_* environment variables override
// file values, and command flags override both.
//
// # Exit Codes
//
// Execute exits 0 when the command finishes or the operator quits, and 1 on
// any error. Structured errors are printed with their suggestion.
package cli

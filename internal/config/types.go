package config

import "time"

// Config is the monitor configuration, read from .syspulse.yaml or the global config.
type Config struct {
	// HistorySize is how many CPU samples the stats window keeps.
	HistorySize int `yaml:"history_size" mapstructure:"history_size"`

	// DisplayInterval is the plain-mode print period and the dashboard
	// process-table refresh. The sampling tick itself is fixed.
	DisplayInterval time.Duration `yaml:"display_interval" mapstructure:"display_interval"`

	Backup   BackupConfig   `yaml:"backup" mapstructure:"backup"`
	Dispatch DispatchConfig `yaml:"dispatch" mapstructure:"dispatch"`
	Triage   TriageConfig   `yaml:"triage" mapstructure:"triage"`
	Email    EmailConfig    `yaml:"email" mapstructure:"email"`
}

// BackupConfig controls the periodic snapshot backup.
type BackupConfig struct {
	// Path is the JSON-lines file records are appended to.
	Path string `yaml:"path" mapstructure:"path"`

	// Interval is the minimum time between two backups.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DispatchConfig controls how backups and alerts are executed.
type DispatchConfig struct {
	// Async runs dispatches in the background so the loop never blocks on I/O.
	Async bool `yaml:"async" mapstructure:"async"`
}

// TriageConfig controls the kill confirmation prompt.
type TriageConfig struct {
	// ConfirmTimeout is how long a prompt waits before defaulting to "no".
	ConfirmTimeout time.Duration `yaml:"confirm_timeout" mapstructure:"confirm_timeout"`
}

// EmailConfig holds the alert recipient and SMTP settings.
// Alerts are disabled while To is empty.
type EmailConfig struct {
	To       string `yaml:"to" mapstructure:"to"`
	From     string `yaml:"from" mapstructure:"from"`
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port" mapstructure:"smtp_port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`

	// TLS is one of mandatory, opportunistic or none.
	TLS string `yaml:"tls" mapstructure:"tls"`
}

// Enabled reports whether an alert recipient is configured.
func (e EmailConfig) Enabled() bool {
	return e.To != ""
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Email.Password != "" {
		c.Email.Password = "********"
	}
	return c
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		HistorySize:     60,
		DisplayInterval: 5 * time.Second,
		Backup: BackupConfig{
			Path:     "syspulse_backup.json",
			Interval: 600 * time.Second,
		},
		Dispatch: DispatchConfig{
			Async: true,
		},
		Triage: TriageConfig{
			ConfirmTimeout: 30 * time.Second,
		},
		Email: EmailConfig{
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 587,
			TLS:      "mandatory",
		},
	}
}

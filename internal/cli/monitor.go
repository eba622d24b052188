package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/syspulse/syspulse/internal/backup"
	"github.com/syspulse/syspulse/internal/config"
	"github.com/syspulse/syspulse/internal/errors"
	"github.com/syspulse/syspulse/internal/monitor"
	"github.com/syspulse/syspulse/internal/notify"
	"github.com/syspulse/syspulse/internal/sysinfo"
)

// monitorFlags are the monitor command's overrides. Zero values leave the
// config untouched.
type monitorFlags struct {
	interval       string
	backupInterval int
	email          string
	plain          bool
}

// monitorCommand loads config, wires the collaborators and runs the loop
// until the operator quits or a fault stops it.
func monitorCommand(ctx context.Context, flags monitorFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, _, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}
	if err := applyMonitorFlags(cfg, flags); err != nil {
		return err
	}

	engineCfg, err := buildEngineConfig(cfg)
	if err != nil {
		return err
	}

	return monitor.Run(ctx, engineCfg, monitor.RunOptions{
		Plain:           flags.plain,
		DisplayInterval: cfg.DisplayInterval,
		ConfirmTimeout:  cfg.Triage.ConfirmTimeout,
	})
}

// applyMonitorFlags layers command flags over the loaded config and
// revalidates the result.
func applyMonitorFlags(cfg *config.Config, flags monitorFlags) error {
	if flags.interval != "" {
		d, err := parseInterval(flags.interval)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Invalid interval '%s'", flags.interval),
				"Use a duration like 5s or 1m, or a number of seconds")
		}
		cfg.DisplayInterval = d
	}
	if flags.backupInterval != 0 {
		cfg.Backup.Interval = time.Duration(flags.backupInterval) * time.Second
	}
	if flags.email != "" {
		cfg.Email.To = flags.email
	}
	return config.Validate(cfg)
}

// parseInterval accepts a Go duration or a bare number of seconds.
func parseInterval(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// buildEngineConfig creates the real provider, backup writer and, when a
// recipient is configured, the SMTP notifier.
func buildEngineConfig(cfg *config.Config) (monitor.Config, error) {
	writer, err := backup.NewWriter(cfg.Backup.Path)
	if err != nil {
		return monitor.Config{}, err
	}

	engineCfg := monitor.Config{
		Provider:       sysinfo.NewProvider(),
		Killer:         sysinfo.NewKiller(),
		HistorySize:    cfg.HistorySize,
		Backup:         writer,
		BackupInterval: cfg.Backup.Interval,
		Async:          cfg.Dispatch.Async,
	}

	if cfg.Email.Enabled() {
		notifier, err := notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			From:     cfg.Email.From,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			TLS:      cfg.Email.TLS,
		})
		if err != nil {
			return monitor.Config{}, err
		}
		engineCfg.Notifier = notifier
		engineCfg.EmailTo = cfg.Email.To
	}

	return engineCfg, nil
}

package config

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/syspulse/syspulse/internal/errors"
)

// ValidTLSPolicies are the accepted values for email.tls.
var ValidTLSPolicies = map[string]bool{
	"mandatory":     true,
	"opportunistic": true,
	"none":          true,
}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.HistorySize <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("history_size must be positive, got %d", cfg.HistorySize),
			"60 keeps about six seconds of samples at the 100ms tick")
	}

	if err := validateDuration("display_interval", cfg.DisplayInterval); err != nil {
		return err
	}
	if err := validateDuration("backup.interval", cfg.Backup.Interval); err != nil {
		return err
	}
	if err := validateDuration("triage.confirm_timeout", cfg.Triage.ConfirmTimeout); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Backup.Path) == "" {
		return errors.New(errors.ErrConfig,
			"backup.path is empty",
			"Remove the key to use syspulse_backup.json, or point it at a writable file")
	}

	return validateEmail(cfg.Email)
}

func validateDuration(key string, d time.Duration) error {
	if d <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("%s must be a positive duration, got %v", key, d),
			"Try something like '5s', '30s' or '10m'")
	}
	return nil
}

// validateEmail only checks the SMTP settings when alerts are enabled.
func validateEmail(e EmailConfig) error {
	if !ValidTLSPolicies[e.TLS] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("email.tls '%s' isn't a known policy", e.TLS),
			"Use one of: mandatory, opportunistic, none")
	}

	if !e.Enabled() {
		return nil
	}

	if _, err := mail.ParseAddress(e.To); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("email.to '%s' doesn't look like an email address", e.To),
			"Use a plain address like ops@example.com")
	}
	if e.From != "" {
		if _, err := mail.ParseAddress(e.From); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("email.from '%s' doesn't look like an email address", e.From),
				"Use a plain address, or leave it empty to send as email.username")
		}
	}
	if strings.TrimSpace(e.SMTPHost) == "" {
		return errors.New(errors.ErrConfig,
			"email.to is set but email.smtp_host is empty",
			"Set email.smtp_host to your SMTP relay, e.g. smtp.gmail.com")
	}
	if e.SMTPPort <= 0 || e.SMTPPort > 65535 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("email.smtp_port %d is out of range", e.SMTPPort),
			"Common ports are 587 (STARTTLS) and 465 (TLS)")
	}
	if e.From == "" && e.Username == "" {
		return errors.New(errors.ErrConfig,
			"email alerts need a sender",
			"Set email.from or email.username")
	}
	return nil
}

// Package notify sends high-CPU alerts by email.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/syspulse/syspulse/internal/errors"
)

// Subject is the subject line of every alert.
const Subject = "SysPulse Alert: High CPU Usage"

// TLS policies accepted in SMTPConfig.TLS.
const (
	TLSMandatory     = "mandatory"
	TLSOpportunistic = "opportunistic"
	TLSNone          = "none"
)

// DefaultTimeout bounds one dial-and-send.
const DefaultTimeout = 30 * time.Second

// SMTPConfig describes the relay alerts are sent through.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
	TLS      string
	Timeout  time.Duration
}

// Body returns the alert text for a CPU reading.
func Body(cpuUsage float64) string {
	return fmt.Sprintf("Warning: CPU usage is at %.2f%%!", cpuUsage)
}

// BuildMessage assembles an alert. An invalid sender or recipient address is
// an EMAIL error.
func BuildMessage(from, to string, cpuUsage float64) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrEmail,
			fmt.Sprintf("Invalid sender address %q", from),
			"Set email.from to a valid address.")
	}
	if err := m.To(to); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrEmail,
			fmt.Sprintf("Invalid recipient address %q", to),
			"Pass a valid address to --email.")
	}
	m.Subject(Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, Body(cpuUsage))
	return m, nil
}

// SMTPNotifier delivers alerts through an SMTP relay.
type SMTPNotifier struct {
	cfg SMTPConfig
}

// NewSMTPNotifier creates a notifier. The relay is not contacted until Send.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, errors.New(errors.ErrConfig,
			"No SMTP host configured",
			"Set email.smtp_host in your config.")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if _, err := tlsPolicy(cfg.TLS); err != nil {
		return nil, err
	}
	return &SMTPNotifier{cfg: cfg}, nil
}

// Send builds an alert for cpuUsage and delivers it to one recipient.
func (n *SMTPNotifier) Send(ctx context.Context, to string, cpuUsage float64) error {
	msg, err := BuildMessage(n.cfg.From, to, cpuUsage)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(n.cfg.Host, n.clientOptions()...)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrEmail,
			"Can't set up SMTP client for "+n.cfg.Host,
			"Check the email section of your config.")
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.WrapWithCode(err, errors.ErrEmail,
			fmt.Sprintf("Can't deliver alert via %s:%d", n.cfg.Host, n.cfg.Port),
			"Check the relay address, credentials and TLS policy.")
	}
	return nil
}

func (n *SMTPNotifier) clientOptions() []mail.Option {
	policy, _ := tlsPolicy(n.cfg.TLS)
	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithTimeout(n.cfg.Timeout),
		mail.WithTLSPolicy(policy),
	}
	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	}
	return opts
}

func tlsPolicy(name string) (mail.TLSPolicy, error) {
	switch strings.ToLower(name) {
	case "", TLSMandatory:
		return mail.TLSMandatory, nil
	case TLSOpportunistic:
		return mail.TLSOpportunistic, nil
	case TLSNone:
		return mail.NoTLS, nil
	default:
		return mail.TLSMandatory, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown TLS policy %q", name),
			"Use one of: mandatory, opportunistic, none.")
	}
}

package smtp

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/dtroode/authkeeper-server/internal/model"
	"github.com/dtroode/authkeeper-server/internal/notify"
)

var _ model.Deliverer = (*Deliverer)(nil)

// Config contains SMTP connection parameters.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	TLSPolicy string
	Timeout   time.Duration
}

// Deliverer sends mail through an SMTP relay. A new connection is dialed
// for every message.
type Deliverer struct {
	host string
	from string
	opts []gomail.Option
}

func New(cfg Config) (*Deliverer, error) {
	policy, err := parseTLSPolicy(cfg.TLSPolicy)
	if err != nil {
		return nil, err
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(policy),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	d := &Deliverer{
		host: cfg.Host,
		from: cfg.From,
		opts: opts,
	}

	if _, err := d.newClient(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Deliverer) Deliver(ctx context.Context, mail model.Mail) error {
	msg, err := notify.NewMsg(d.from, mail)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	client, err := d.newClient()
	if err != nil {
		return err
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func (d *Deliverer) newClient() (*gomail.Client, error) {
	client, err := gomail.NewClient(d.host, d.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return client, nil
}

func parseTLSPolicy(policy string) (gomail.TLSPolicy, error) {
	switch policy {
	case "", "mandatory":
		return gomail.TLSMandatory, nil
	case "opportunistic":
		return gomail.TLSOpportunistic, nil
	case "none":
		return gomail.NoTLS, nil
	default:
		return gomail.NoTLS, fmt.Errorf("unknown tls policy %q", policy)
	}
}

package mailer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// SMTP transport security modes.
const (
	SMTPTLSOpportunistic = "opportunistic"
	SMTPTLSMandatory     = "mandatory"
	SMTPTLSImplicit      = "ssl"
	SMTPTLSNone          = "none"
)

// SMTPConfig configures an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // Default envelope and header sender

	// TLS is one of the SMTPTLS* modes. Empty means opportunistic
	// STARTTLS.
	TLS string
}

// SMTPSender delivers messages through an SMTP relay. One connection is
// opened per message.
type SMTPSender struct {
	deliver func(ctx context.Context, m *mail.Msg) error
	now     func() time.Time
	config  SMTPConfig
}

// NewSMTPSender validates cfg and returns a sender.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: SMTP host is required", ErrInvalidConfig)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: SMTP port %d is out of range", ErrInvalidConfig, cfg.Port)
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("%w: sender address is required for SMTP", ErrInvalidConfig)
	}

	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &SMTPSender{
		deliver: func(ctx context.Context, m *mail.Msg) error {
			return client.DialAndSendWithContext(ctx, m)
		},
		now:    time.Now,
		config: cfg,
	}, nil
}

func clientOptions(cfg SMTPConfig) ([]mail.Option, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}

	switch strings.ToLower(cfg.TLS) {
	case "", SMTPTLSOpportunistic:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	case SMTPTLSMandatory:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	case SMTPTLSImplicit:
		opts = append(opts, mail.WithSSL())
	case SMTPTLSNone:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		return nil, fmt.Errorf("%w: unknown SMTP TLS mode %q", ErrInvalidConfig, cfg.TLS)
	}

	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	return opts, nil
}

// Send implements Sender. Cancelling ctx aborts the dial and the SMTP
// conversation.
func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.buildMessage(msg)
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	if err := s.deliver(ctx, m); err != nil {
		return errors.Join(ErrSendFailed, fmt.Errorf("smtp: %w", err))
	}
	return nil
}

// buildMessage maps msg onto a go-mail message with an HTML body.
func (s *SMTPSender) buildMessage(msg *Message) (*mail.Msg, error) {
	from := msg.From
	if from == "" {
		from = s.config.From
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	if len(msg.CC) > 0 {
		if err := m.Cc(msg.CC...); err != nil {
			return nil, fmt.Errorf("invalid CC list: %w", err)
		}
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to %q: %w", msg.ReplyTo, err)
		}
	}

	m.Subject(msg.Subject)
	m.SetDateWithValue(s.now())
	m.SetMessageIDWithValue(fmt.Sprintf("%s@%s", uuid.NewString(), s.config.Host))

	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.SetGenHeader(mail.Header(k), msg.Headers[k])
	}

	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return m, nil
}

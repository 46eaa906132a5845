// Package resend implements mailer.Sender using the Resend API.
package resend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v3"

	"github.com/ginjaninja78/po-followup-mailer/internal/mailer"
)

// Config holds the Resend credentials and sender defaults.
type Config struct {
	APIKey  string
	From    string // Default sender, e.g. "Purchasing <purchasing@example.com>"
	ReplyTo string
	BaseURL string // API endpoint override; empty uses the Resend default
}

// Sender implements mailer.Sender using the Resend API.
type Sender struct {
	client *resend.Client
	config Config
}

// New creates a new Resend sender.
func New(cfg Config) (*Sender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Resend API key is required", mailer.ErrInvalidConfig)
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("%w: sender address is required for Resend", mailer.ErrInvalidConfig)
	}

	client := resend.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("%w: invalid Resend base URL: %v", mailer.ErrInvalidConfig, err)
		}
		client.BaseURL = base
	}

	return &Sender{
		client: client,
		config: cfg,
	}, nil
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, msg *mailer.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	from := msg.From
	if from == "" {
		from = s.config.From
	}
	replyTo := msg.ReplyTo
	if replyTo == "" {
		replyTo = s.config.ReplyTo
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		ReplyTo: replyTo,
		Cc:      msg.CC,
		Headers: msg.Headers,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return errors.Join(mailer.ErrSendFailed, fmt.Errorf("resend: %w", err))
	}

	return nil
}

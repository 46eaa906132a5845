// =============================================================================
// Supplier Follow-up Mailer - Transport Factory
// =============================================================================
//
// This module builds the mailer.Sender selected by transport.provider:
//
//   file      writes .html/.json pairs to transport.outbox_dir (default)
//   resend    Resend HTTP API
//   postmark  Postmark HTTP API
//   smtp      any SMTP relay
//
// Credentials are checked here so a misconfigured run fails before the
// first group is composed.
//
// =============================================================================

package transport

import (
	"fmt"

	"github.com/ginjaninja78/po-followup-mailer/internal/config"
	"github.com/ginjaninja78/po-followup-mailer/internal/mailer"
	"github.com/ginjaninja78/po-followup-mailer/internal/mailer/postmark"
	"github.com/ginjaninja78/po-followup-mailer/internal/mailer/resend"
)

// New returns the sender for cfg.Transport.Provider.
func New(cfg *config.Config) (mailer.Sender, error) {
	t := cfg.Transport
	m := cfg.Message

	var (
		sender mailer.Sender
		err    error
	)

	switch t.Provider {
	case config.ProviderFile, "":
		sender, err = nonNil(mailer.NewFileSender(t.OutboxDir, m.From))

	case config.ProviderResend:
		sender, err = nonNil(resend.New(resend.Config{
			APIKey:  t.Resend.APIKey,
			From:    m.From,
			ReplyTo: m.ReplyTo,
			BaseURL: t.Resend.BaseURL,
		}))

	case config.ProviderPostmark:
		sender, err = nonNil(postmark.New(postmark.Config{
			ServerToken:  t.Postmark.ServerToken,
			AccountToken: t.Postmark.AccountToken,
			From:         m.From,
			ReplyTo:      m.ReplyTo,
			Tag:          t.Postmark.Tag,
			TrackOpens:   t.Postmark.TrackOpens,
			TrackLinks:   t.Postmark.TrackLinks,
			BaseURL:      t.Postmark.BaseURL,
		}))

	case config.ProviderSMTP:
		sender, err = nonNil(mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     t.SMTP.Host,
			Port:     t.SMTP.Port,
			Username: t.SMTP.Username,
			Password: t.SMTP.Password,
			From:     m.From,
			TLS:      t.SMTP.TLS,
		}))

	default:
		err = fmt.Errorf("%w: unknown transport provider %q", mailer.ErrInvalidConfig, t.Provider)
	}

	if err != nil {
		return nil, err
	}
	return sender, nil
}

// nonNil keeps a failed constructor's typed nil out of the interface.
func nonNil[S mailer.Sender](s S, err error) (mailer.Sender, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Package postmark implements mailer.Sender using Postmark's transactional
// API.
package postmark

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/ginjaninja78/po-followup-mailer/internal/mailer"
)

// Link tracking modes accepted by Postmark.
const (
	TrackLinksNone        = "None"
	TrackLinksHTMLOnly    = "HtmlOnly"
	TrackLinksHTMLAndText = "HtmlAndText"
	TrackLinksTextOnly    = "TextOnly"
)

// Config holds the Postmark tokens and sender defaults.
type Config struct {
	ServerToken  string
	AccountToken string // only needed for account-level API calls
	From         string
	ReplyTo      string
	Tag          string // Postmark message tag; optional

	// Tracking is off unless enabled here.
	TrackOpens bool
	TrackLinks string

	// BaseURL overrides the API endpoint.
	BaseURL string
}

// Sender implements mailer.Sender using Postmark.
type Sender struct {
	client *postmark.Client
	config Config
}

// New creates a Postmark-backed sender. The server token and the sender
// address are required.
func New(cfg Config) (*Sender, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: Postmark server token is required", mailer.ErrInvalidConfig)
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("%w: sender address is required for Postmark", mailer.ErrInvalidConfig)
	}
	switch cfg.TrackLinks {
	case "", TrackLinksNone, TrackLinksHTMLOnly, TrackLinksHTMLAndText, TrackLinksTextOnly:
	default:
		return nil, fmt.Errorf("%w: unknown Postmark link tracking mode %q", mailer.ErrInvalidConfig, cfg.TrackLinks)
	}

	client := postmark.NewClient(cfg.ServerToken, cfg.AccountToken)
	if cfg.BaseURL != "" {
		client.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
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

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:       from,
		To:         msg.To,
		Cc:         strings.Join(msg.CC, ","),
		ReplyTo:    replyTo,
		Subject:    msg.Subject,
		Tag:        s.config.Tag,
		HTMLBody:   msg.HTML,
		Headers:    headers(msg.Headers),
		TrackOpens: s.config.TrackOpens,
		TrackLinks: s.config.TrackLinks,
	})
	if err != nil {
		return errors.Join(mailer.ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			mailer.ErrSendFailed,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}

func headers(m map[string]string) []postmark.Header {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]postmark.Header, 0, len(keys))
	for _, k := range keys {
		out = append(out, postmark.Header{Name: k, Value: m[k]})
	}
	return out
}

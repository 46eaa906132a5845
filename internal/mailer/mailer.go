// Package mailer defines the outbound message and the narrow transport
// interface the dispatch loop sends through. Concrete transports live in this
// package (file, SMTP) and in the resend and postmark subpackages.
package mailer

import (
	"context"
	"errors"
	"strings"
)

// CCSeparator joins CC addresses in headers and logs.
const CCSeparator = "; "

// Sender delivers one fully composed message.
type Sender interface {
	// Send delivers msg. It returns an error wrapping ErrSendFailed when the
	// transport rejects the message.
	Send(ctx context.Context, msg *Message) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, msg *Message) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

// Message is one outgoing follow-up email.
type Message struct {
	Headers map[string]string // Custom headers
	To      string            // Primary recipient
	Subject string            // Subject line
	HTML    string            // HTML body
	From    string            // Sender override; transports fall back to their default
	ReplyTo string            // Reply-to address
	CC      []string          // Carbon copy recipients; nil when there are none
}

// CCHeader returns the CC addresses joined with "; ", or "" when there are
// none.
func (m *Message) CCHeader() string {
	return strings.Join(m.CC, CCSeparator)
}

// Recipients returns the primary recipient followed by the CC addresses.
func (m *Message) Recipients() []string {
	out := make([]string, 0, 1+len(m.CC))
	out = append(out, m.To)
	return append(out, m.CC...)
}

// Validate checks that the message can be handed to a transport.
func (m *Message) Validate() error {
	var errs []error
	if strings.TrimSpace(m.To) == "" {
		errs = append(errs, ErrNoRecipient)
	}
	if strings.TrimSpace(m.Subject) == "" {
		errs = append(errs, ErrNoSubject)
	}
	if strings.TrimSpace(m.HTML) == "" {
		errs = append(errs, ErrNoContent)
	}
	return errors.Join(errs...)
}

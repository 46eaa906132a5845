// =============================================================================
// Supplier Follow-up Mailer - Dispatch Loop
// =============================================================================
//
// This module composes one message per supplier group and hands it to the
// configured transport, one group at a time.
//
// GUARANTEES:
//   - Groups are sent sequentially, in group order.
//   - A failure for one group is recorded and the loop moves on.
//   - Attempted == Succeeded + Failed, and every failure names its recipient.
//   - Cancellation is checked before each group; groups not reached are
//     counted as skipped.
//
// =============================================================================

package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/po-followup-mailer/internal/grouper"
	"github.com/ginjaninja78/po-followup-mailer/internal/mailer"
)

// BodyRenderer renders the HTML body for a group.
type BodyRenderer interface {
	RenderBody(g grouper.Group) (string, error)
}

// =============================================================================
// ERRORS AND REPORT
// =============================================================================

// SendError records a failed send for one group.
type SendError struct {
	Recipient string
	Err       error
}

// Error implements the error interface.
func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send email to %s: %v", e.Recipient, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *SendError) Unwrap() error {
	return e.Err
}

// Report is the outcome of one dispatch run.
type Report struct {
	// Failures lists every failed group in send order.
	Failures []*SendError

	// Groups is the number of groups handed to Run.
	Groups int

	// Attempted counts groups for which a send was tried.
	Attempted int

	// Succeeded counts messages the transport accepted.
	Succeeded int

	// Failed counts messages that could not be composed or sent.
	Failed int

	// Skipped counts groups not attempted because the run was cancelled.
	Skipped int

	// Elapsed is the wall time of the run.
	Elapsed time.Duration

	// DryRun is true when messages were composed but not sent.
	DryRun bool

	// Cancelled is true when the context ended before every group was
	// attempted.
	Cancelled bool
}

// =============================================================================
// DISPATCHER
// =============================================================================

// Options configures a Dispatcher.
type Options struct {
	// Headers are added to every message.
	Headers map[string]string

	// Subject is the fixed subject line.
	Subject string

	// From overrides the transport's default sender.
	From string

	// ReplyTo is set on every message when non-empty.
	ReplyTo string

	// DryRun composes every message without sending it.
	DryRun bool
}

// Dispatcher sends one follow-up email per group.
type Dispatcher struct {
	sender   mailer.Sender
	renderer BodyRenderer
	logger   *zap.Logger
	opts     Options
}

// New returns a Dispatcher. A nil logger disables logging.
func New(sender mailer.Sender, renderer BodyRenderer, logger *zap.Logger, opts Options) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sender:   sender,
		renderer: renderer,
		logger:   logger,
		opts:     opts,
	}
}

// Compose builds the message for one group.
func (d *Dispatcher) Compose(g grouper.Group) (*mailer.Message, error) {
	body, err := d.renderer.RenderBody(g)
	if err != nil {
		return nil, err
	}

	msg := &mailer.Message{
		To:      g.Recipient,
		Subject: d.opts.Subject,
		HTML:    body,
		From:    d.opts.From,
		ReplyTo: d.opts.ReplyTo,
		Headers: d.opts.Headers,
	}
	if len(g.CC) > 0 {
		msg.CC = append([]string(nil), g.CC...)
	}
	return msg, nil
}

// Run sends one message per group and returns the tally. It never returns
// early on a send failure; it stops only when ctx is done.
func (d *Dispatcher) Run(ctx context.Context, groups []grouper.Group) *Report {
	start := time.Now()
	report := &Report{Groups: len(groups), DryRun: d.opts.DryRun}

	for i, g := range groups {
		if ctx.Err() != nil {
			report.Cancelled = true
			report.Skipped = len(groups) - i
			d.logger.Warn("dispatch cancelled",
				zap.Int("skipped", report.Skipped),
				zap.Error(ctx.Err()),
			)
			break
		}

		report.Attempted++
		if err := d.sendGroup(ctx, g); err != nil {
			sendErr := &SendError{Recipient: g.Recipient, Err: err}
			report.Failed++
			report.Failures = append(report.Failures, sendErr)
			d.logger.Error("send failed",
				zap.String("recipient", g.Recipient),
				zap.Error(err),
			)
			continue
		}
		report.Succeeded++
	}

	report.Elapsed = time.Since(start)

	d.logger.Info("dispatch finished",
		zap.Int("groups", report.Groups),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Bool("dry_run", report.DryRun),
		zap.Duration("elapsed", report.Elapsed),
	)

	return report
}

func (d *Dispatcher) sendGroup(ctx context.Context, g grouper.Group) error {
	msg, err := d.Compose(g)
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}

	log := d.logger.With(
		zap.String("recipient", msg.To),
		zap.Int("rows", len(g.Rows)),
		zap.Strings("cc", msg.CC),
	)

	if d.opts.DryRun {
		if err := msg.Validate(); err != nil {
			return err
		}
		log.Info("dry run: message composed")
		return nil
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		return err
	}

	log.Info("email sent")
	return nil
}

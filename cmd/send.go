// =============================================================================
// Supplier Follow-up Mailer - Send Command
// =============================================================================
//
// This file defines the 'send' command, which emails every supplier in a
// spreadsheet their pending purchase-order lines.
//
// COMMAND USAGE:
//   pomailer send --file orders.xlsx [flags]
//
// FLAGS:
//   --file       : Spreadsheet to send (required)
//   --dry-run    : Compose every email without sending
//   --transport  : Override transport.provider (file, resend, postmark, smtp)
//   --sheet      : Worksheet to read (default: first sheet)
//   --yes        : Skip the confirmation prompt
//
// PROCESSING PIPELINE:
//   1. Load and validate the spreadsheet
//   2. Group rows by supplier
//   3. Confirm with the user
//   4. Send one email per supplier, one at a time
//   5. Print the success and failure counts
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/po-followup-mailer/internal/config"
	"github.com/ginjaninja78/po-followup-mailer/internal/mailer"
	"github.com/ginjaninja78/po-followup-mailer/internal/pipeline"
	"github.com/ginjaninja78/po-followup-mailer/internal/transport"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	sendFile      string
	sendDryRun    bool
	sendTransport string
	sendSheet     string
	sendYes       bool
)

// errIncompleteRun is returned when at least one email failed or the run
// was interrupted, so the process exits non-zero.
var errIncompleteRun = errors.New("send run incomplete")

// =============================================================================
// SEND COMMAND DEFINITION
// =============================================================================

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send one follow-up email per supplier",
	Long: `The send command reads the spreadsheet, checks that every required column is
present, groups the rows by supplier and sends each supplier one email with an
HTML table of their pending orders.

Emails are sent one at a time. A failure for one supplier is reported and the
run continues with the next. Interrupting the command (Ctrl+C) stops before
the next supplier.

On a run with no failures:
  - The spreadsheet is moved to archive_dir (when configured)

Always:
  - A summary is written to report_dir (when configured)`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runSend(cmd)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendFile, "file", "f", "", "Spreadsheet to send (.xlsx or .csv)")
	sendCmd.Flags().BoolVar(&sendDryRun, "dry-run", false, "Compose every email without sending")
	sendCmd.Flags().StringVar(&sendTransport, "transport", "", "Override the configured transport (file, resend, postmark, smtp)")
	sendCmd.Flags().StringVar(&sendSheet, "sheet", "", "Worksheet to read (default: first sheet)")
	sendCmd.Flags().BoolVarP(&sendYes, "yes", "y", false, "Skip the confirmation prompt")

	_ = sendCmd.MarkFlagRequired("file")
}

// =============================================================================
// MAIN SEND FUNCTION
// =============================================================================

func runSend(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	cfg := appConfig

	if sendTransport != "" {
		cfg.Transport.Provider = sendTransport
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if sendSheet != "" {
		cfg.Input.Sheet = sendSheet
	}

	// =========================================================================
	// STEP 1: TRANSPORT
	// =========================================================================
	// Built before the spreadsheet is read so a bad credential fails fast.

	var sender mailer.Sender
	if !sendDryRun {
		s, err := transport.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to set up %s transport: %w", cfg.Transport.Provider, err)
		}
		sender = s
	}

	p, err := pipeline.New(cfg, sender, logger, pipeline.Options{DryRun: sendDryRun})
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: LOAD, VALIDATE, GROUP
	// =========================================================================

	fmt.Fprintln(out, "=== Supplier Follow-up Mailer ===")

	plan, err := p.Prepare(sendFile)
	if err != nil {
		return explainPrepareError(out, err)
	}

	printWarnings(out, plan.Validation.Warnings)
	printPlan(out, plan)

	if plan.Messages() == 0 {
		fmt.Fprintln(out, "Nothing to send.")
		return nil
	}

	// =========================================================================
	// STEP 3: CONFIRM
	// =========================================================================

	if !sendDryRun && !sendYes {
		prompt := fmt.Sprintf("Send %d email(s) via %s?", plan.Messages(), cfg.Transport.Provider)
		if !confirm(cmd.InOrStdin(), out, prompt) {
			fmt.Fprintln(out, "Aborted. No emails were sent.")
			return nil
		}
	}

	// =========================================================================
	// STEP 4: SEND
	// =========================================================================

	result, err := p.Send(cmd.Context(), plan)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 5: REPORT
	// =========================================================================

	r := result.Report
	for _, f := range r.Failures {
		fmt.Fprintf(out, "  ✗ %s\n", f.Error())
	}

	if r.DryRun {
		fmt.Fprintln(out, "\n=== Dry Run Complete ===")
		fmt.Fprintf(out, "Emails composed:          %d\n", r.Succeeded)
	} else {
		fmt.Fprintln(out, "\n=== Send Complete ===")
		fmt.Fprintf(out, "Emails sent successfully: %d\n", r.Succeeded)
	}
	fmt.Fprintf(out, "Failed to send:           %d\n", r.Failed)
	if r.Skipped > 0 {
		fmt.Fprintf(out, "Skipped (interrupted):    %d\n", r.Skipped)
	}
	fmt.Fprintf(out, "Time elapsed:             %s\n", r.Elapsed)

	if result.SummaryPath != "" {
		fmt.Fprintf(out, "Summary written to:       %s\n", result.SummaryPath)
	}
	if result.ArchivePath != "" {
		fmt.Fprintf(out, "Spreadsheet archived to:  %s\n", result.ArchivePath)
	}
	if cfg.Transport.Provider == config.ProviderFile && !r.DryRun {
		fmt.Fprintf(out, "Messages written to:      %s\n", cfg.Transport.OutboxDir)
	}

	if r.Failed > 0 || r.Cancelled {
		return fmt.Errorf("%w: %d failed, %d skipped", errIncompleteRun, r.Failed, r.Skipped)
	}
	return nil
}

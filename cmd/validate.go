// =============================================================================
// Supplier Follow-up Mailer - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks a spreadsheet and
// the transport configuration without sending anything.
//
// COMMAND USAGE:
//   pomailer validate --file orders.xlsx
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/po-followup-mailer/internal/pipeline"
	"github.com/ginjaninja78/po-followup-mailer/internal/transport"
)

var (
	validateFile  string
	validateSheet string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a spreadsheet and the transport settings",
	Long: `The validate command loads the spreadsheet, checks the required columns,
groups the rows by supplier and prints who would be emailed. It also checks
that the configured transport has the credentials it needs. Nothing is sent.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cfg := appConfig
		if validateSheet != "" {
			cfg.Input.Sheet = validateSheet
		}

		p, err := pipeline.New(cfg, nil, logger, pipeline.Options{DryRun: true})
		if err != nil {
			return err
		}

		plan, err := p.Prepare(validateFile)
		if err != nil {
			return explainPrepareError(out, err)
		}

		printWarnings(out, plan.Validation.Warnings)
		printPlan(out, plan)
		fmt.Fprintln(out, "✓ All required columns are present.")

		if _, err := transport.New(cfg); err != nil {
			return fmt.Errorf("transport %q is not usable: %w", cfg.Transport.Provider, err)
		}
		fmt.Fprintf(out, "✓ Transport %q is configured.\n", cfg.Transport.Provider)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Spreadsheet to check (.xlsx or .csv)")
	validateCmd.Flags().StringVar(&validateSheet, "sheet", "", "Worksheet to read (default: first sheet)")

	_ = validateCmd.MarkFlagRequired("file")
}

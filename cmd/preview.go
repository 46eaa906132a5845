// =============================================================================
// Supplier Follow-up Mailer - Preview Command
// =============================================================================
//
// This file defines the 'preview' command, which shows the first rows of a
// spreadsheet and, optionally, writes every rendered email to a directory.
//
// COMMAND USAGE:
//   pomailer preview --file orders.xlsx [--rows 5] [--html-dir ./preview]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/po-followup-mailer/internal/mailer"
	"github.com/ginjaninja78/po-followup-mailer/internal/pipeline"
	"github.com/ginjaninja78/po-followup-mailer/internal/types"
	"github.com/ginjaninja78/po-followup-mailer/internal/xlsxparser"
)

var (
	previewFile    string
	previewSheet   string
	previewRows    int
	previewHTMLDir string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the spreadsheet and the emails that would be sent",
	Long: `The preview command lists the workbook's sheets, prints the first rows of
the spreadsheet and the supplier emails that a send would produce. With
--html-dir, every email body is written to that directory as an .html file
with a .json metadata file. Nothing is sent.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cfg := appConfig
		if previewSheet != "" {
			cfg.Input.Sheet = previewSheet
		}

		var sender mailer.Sender
		if previewHTMLDir != "" {
			s, err := mailer.NewFileSender(previewHTMLDir, cfg.Message.From)
			if err != nil {
				return err
			}
			sender = s
		}

		// Previews never archive the input or write a run summary.
		previewCfg := *cfg
		previewCfg.ArchiveDir = ""
		previewCfg.ReportDir = ""

		p, err := pipeline.New(&previewCfg, sender, logger, pipeline.Options{DryRun: sender == nil})
		if err != nil {
			return err
		}

		plan, err := p.Prepare(previewFile)
		if err != nil {
			return explainPrepareError(out, err)
		}

		if ext := strings.ToLower(filepath.Ext(previewFile)); ext == ".xlsx" || ext == ".xlsm" {
			sheets, err := xlsxparser.Sheets(previewFile)
			if err != nil {
				return err
			}
			printSheets(out, sheets, plan.Dataset.Sheet)
		}

		printWarnings(out, plan.Validation.Warnings)
		printRows(out, plan.Dataset, previewRows)
		printPlan(out, plan)

		if sender == nil || plan.Messages() == 0 {
			return nil
		}

		result, err := p.Send(cmd.Context(), plan)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d email(s) to %s\n", result.Report.Succeeded, previewHTMLDir)
		for _, f := range result.Report.Failures {
			fmt.Fprintf(out, "  ✗ %s\n", f.Error())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&previewFile, "file", "f", "", "Spreadsheet to preview (.xlsx or .csv)")
	previewCmd.Flags().StringVar(&previewSheet, "sheet", "", "Worksheet to read (default: first sheet)")
	previewCmd.Flags().IntVar(&previewRows, "rows", 5, "Number of data rows to print")
	previewCmd.Flags().StringVar(&previewHTMLDir, "html-dir", "", "Write each rendered email to this directory")

	_ = previewCmd.MarkFlagRequired("file")
}

// printSheets lists the workbook's sheets and marks the one being read.
func printSheets(out io.Writer, sheets []string, current string) {
	fmt.Fprintln(out, "Sheets:")
	for _, name := range sheets {
		marker := " "
		if name == current {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s %s\n", marker, name)
	}
	fmt.Fprintln(out)
}

// printRows prints the first n rows with a few identifying columns.
func printRows(out io.Writer, ds *types.Dataset, n int) {
	if n <= 0 || len(ds.Rows) == 0 {
		return
	}
	if n > len(ds.Rows) {
		n = len(ds.Rows)
	}

	columns := []string{
		types.FieldSupplierName,
		types.FieldPurchaseOrderNo,
		types.FieldItem,
		types.FieldPODate,
		types.FieldShortText,
		types.FieldPendingQty,
		types.FieldEndUser,
	}

	fmt.Fprintf(out, "First %d of %d row(s):\n", n, len(ds.Rows))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, c := range columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)

	for _, row := range ds.Rows[:n] {
		for i, c := range columns {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, row.Get(c).String())
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
	fmt.Fprintln(out)
}

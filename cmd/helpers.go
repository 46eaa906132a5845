package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ginjaninja78/po-followup-mailer/internal/pipeline"
	"github.com/ginjaninja78/po-followup-mailer/internal/validation"
)

// explainPrepareError prints the missing columns for a validation failure
// and returns err unchanged.
func explainPrepareError(out io.Writer, err error) error {
	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintln(out, "The spreadsheet is missing required columns:")
		for _, c := range verr.Missing {
			fmt.Fprintf(out, "  - %s\n", c)
		}
		fmt.Fprintln(out, "No emails were sent.")
	}
	return err
}

func printWarnings(out io.Writer, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(out, "Warning: %s\n", w)
	}
}

// printPlan lists each supplier group with its recipient, row count and CC.
func printPlan(out io.Writer, plan *pipeline.Plan) {
	fmt.Fprintf(out, "Loaded %d row(s) for %d supplier(s) from %s\n\n",
		len(plan.Dataset.Rows), len(plan.Groups), plan.SourceFile)

	if len(plan.Groups) == 0 {
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSUPPLIER\tTO\tROWS\tCC")
	for i, g := range plan.Groups {
		cc := g.CCString()
		if cc == "" {
			cc = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", i+1, orDash(g.Key), orDash(g.Recipient), len(g.Rows), cc)
	}
	_ = tw.Flush()
	fmt.Fprintln(out)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// confirm asks a yes/no question and reports whether the answer was yes.
// End of input counts as no.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

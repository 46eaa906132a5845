// =============================================================================
// Supplier Follow-up Mailer - Validation Engine
// =============================================================================
//
// This module checks an uploaded dataset before anything is sent.
//
// VALIDATION RULES:
//   - Fatal: every required column must be present in the header. Missing
//     columns are reported together, in the fixed required order, and stop
//     the run before any email is composed.
//   - Advisory: a missing CC column is reported as a warning. The run
//     proceeds without carbon-copy recipients.
//   - Advisory: rows with a blank group-by value are counted and reported.
//     They form one group with no recipient, which fails to send.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/po-followup-mailer/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError reports the required columns missing from a dataset.
type ValidationError struct {
	// SourceFile is the file that failed validation.
	SourceFile string

	// Missing lists the absent columns in required order.
	Missing []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing columns in %s: %s", sourceName(e.SourceFile), strings.Join(e.Missing, ", "))
}

func sourceName(path string) string {
	if path == "" {
		return "dataset"
	}
	return path
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result contains the outcome of a successful validation.
type Result struct {
	// HasCC is true when the dataset carries the CC column.
	HasCC bool

	// Warnings holds non-fatal advisories for the user.
	Warnings []string

	// Rows is the number of data rows in the dataset.
	Rows int
}

// Options contains options for validation.
type Options struct {
	// Required is the required column set. Defaults to types.RequiredFields.
	Required []string

	// ExtraRequired is appended to Required, e.g. a dedicated recipient
	// column.
	ExtraRequired []string

	// CCField is the optional carbon-copy column.
	// Default: "CC"
	CCField string

	// KeyField is the group-by column checked for blank values.
	// Default: "Supplier Name"
	KeyField string
}

// DefaultOptions returns the default validation options.
func DefaultOptions() Options {
	return Options{
		Required: types.RequiredFields,
		CCField:  types.FieldCC,
		KeyField: types.FieldSupplierName,
	}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate checks the dataset header against the required column set.
// It returns a *ValidationError listing exactly the missing columns, or a
// Result carrying any advisories.
func Validate(ds *types.Dataset, opts Options) (*Result, error) {
	if opts.Required == nil {
		opts.Required = types.RequiredFields
	}
	if opts.CCField == "" {
		opts.CCField = types.FieldCC
	}
	if opts.KeyField == "" {
		opts.KeyField = types.FieldSupplierName
	}

	if missing := MissingColumns(ds, append(append([]string{}, opts.Required...), opts.ExtraRequired...)); len(missing) > 0 {
		return nil, &ValidationError{SourceFile: ds.SourceFile, Missing: missing}
	}

	result := &Result{
		HasCC: ds.HasColumn(opts.CCField),
		Rows:  len(ds.Rows),
	}

	if !result.HasCC {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("No '%s' column found. Proceeding without CC recipients.", opts.CCField))
	}

	if len(ds.Rows) == 0 {
		result.Warnings = append(result.Warnings, "The dataset has no data rows. No emails will be sent.")
	}

	if blank := countBlank(ds.Rows, opts.KeyField); blank > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d row(s) have a blank '%s'. They will be grouped together with no recipient and that email will fail.", blank, opts.KeyField))
	}

	return result, nil
}

// MissingColumns returns the members of required absent from the dataset
// header, in required order and without duplicates.
func MissingColumns(ds *types.Dataset, required []string) []string {
	present := ds.ColumnSet()
	seen := make(map[string]struct{}, len(required))

	var missing []string
	for _, name := range required {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func countBlank(rows []types.Row, column string) int {
	n := 0
	for _, row := range rows {
		if row.Get(column).IsBlank() {
			n++
		}
	}
	return n
}

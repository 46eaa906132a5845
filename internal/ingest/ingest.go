// Package ingest loads an uploaded purchase-order spreadsheet into a Dataset,
// choosing the parser by file extension.
package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/po-followup-mailer/internal/config"
	"github.com/ginjaninja78/po-followup-mailer/internal/csvparser"
	"github.com/ginjaninja78/po-followup-mailer/internal/types"
	"github.com/ginjaninja78/po-followup-mailer/internal/xlsxparser"
)

// ErrUnsupportedFormat is returned for files that are neither XLSX nor CSV.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Load reads the dataset at path using the input settings from cfg.
func Load(path string, cfg *config.Config) (*types.Dataset, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return xlsxparser.Parse(path, xlsxparser.Options{
			Sheet:       cfg.Input.Sheet,
			HeaderRow:   cfg.Input.HeaderRow,
			DateFields:  cfg.Columns.DateFields,
			DateLayouts: cfg.Input.DateLayouts,
		})
	case ".csv", ".txt":
		return csvparser.Parse(path, csvparser.Options{
			Settings:    cfg.Input.CSV,
			HeaderRow:   cfg.Input.HeaderRow,
			DateFields:  cfg.Columns.DateFields,
			DateLayouts: cfg.Input.DateLayouts,
		})
	default:
		return nil, fmt.Errorf("%w: %q (expected .xlsx or .csv)", ErrUnsupportedFormat, ext)
	}
}

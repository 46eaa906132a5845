// =============================================================================
// Supplier Follow-up Mailer - XLSX Dataset Parser
// =============================================================================
//
// This module reads the purchase-order export spreadsheet into a Dataset.
//
// SHEET STRUCTURE (Expected Layout):
//   One header row naming the columns, followed by one row per PO line item.
//
//   | Department | Comment | Status | Supplier No | Supplier Name | ... | End User | CC          |
//   |------------|---------|--------|-------------|---------------|-----|----------|-------------|
//   | Maint.     |         | Open   | 100234      | acme@corp.com | ... | R. Patil | a@corp.com  |
//
// CELL TYPES:
//   Cells are read as raw values, without the sheet's number formats, so
//   numbers keep full precision and dates arrive as Excel serial numbers.
//   Columns listed in Options.DateFields are converted to dates. Every other
//   cell keeps the type the workbook stores: numeric cells become numbers,
//   text cells stay exactly as typed (material codes, phone numbers and long
//   references are never reinterpreted).
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/po-followup-mailer/internal/types"
)

var (
	// ErrNoSheets is returned when the workbook has no worksheets.
	ErrNoSheets = errors.New("workbook has no sheets")

	// ErrSheetNotFound is returned when the requested sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrNoHeader is returned when the sheet has no header row.
	ErrNoHeader = errors.New("sheet has no header row")
)

// =============================================================================
// PARSER OPTIONS
// =============================================================================

// Options controls how a workbook is read.
type Options struct {
	// Sheet is the worksheet to read. Empty selects the first sheet.
	Sheet string

	// HeaderRow is the 1-based row holding the column names.
	// Data rows start immediately below it.
	HeaderRow int

	// DateFields lists the columns holding dates.
	DateFields []string

	// DateLayouts are tried in order for dates stored as text.
	// Empty selects types.DefaultDateLayouts.
	DateLayouts []string
}

// DefaultOptions returns the default parser options.
func DefaultOptions() Options {
	return Options{
		HeaderRow:  1,
		DateFields: []string{types.FieldPODate},
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads an XLSX file and returns its dataset.
func Parse(path string, opts Options) (*types.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	ds, err := parseWorkbook(f, opts)
	if err != nil {
		return nil, err
	}
	ds.SourceFile = path
	return ds, nil
}

// Sheets lists the worksheet names of an XLSX file in workbook order.
func Sheets(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

func parseWorkbook(f *excelize.File, opts Options) (*types.Dataset, error) {
	if opts.HeaderRow < 1 {
		opts.HeaderRow = 1
	}

	sheet, err := resolveSheet(f, opts.Sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	headerIndex := opts.HeaderRow - 1
	if headerIndex >= len(rows) || isRowEmpty(rows[headerIndex]) {
		return nil, fmt.Errorf("%w: %s (row %d)", ErrNoHeader, sheet, opts.HeaderRow)
	}

	headers := cleanHeaders(rows[headerIndex])
	date1904 := uses1904Dates(f)

	dateColumns := make(map[string]struct{}, len(opts.DateFields))
	for _, name := range opts.DateFields {
		dateColumns[name] = struct{}{}
	}

	ds := &types.Dataset{
		Sheet:   sheet,
		Columns: headers,
		Rows:    make([]types.Row, 0, len(rows)-headerIndex-1),
	}

	for i := headerIndex + 1; i < len(rows); i++ {
		raw := rows[i]

		// Skip empty rows.
		if len(raw) == 0 || isRowEmpty(raw) {
			continue
		}

		row := make(types.Row, len(headers))
		for col, header := range headers {
			cell := ""
			if col < len(raw) {
				cell = raw[col]
			}

			if _, isDate := dateColumns[header]; isDate {
				row[header] = parseDateCell(cell, date1904, opts.DateLayouts)
			} else {
				row[header] = cellValue(f, sheet, col+1, i+1, cell)
			}
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

// resolveSheet returns the requested sheet name, or the first sheet.
func resolveSheet(f *excelize.File, name string) (string, error) {
	if name == "" {
		first := f.GetSheetName(0)
		if first == "" {
			return "", ErrNoSheets
		}
		return first, nil
	}

	idx, err := f.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return "", fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return name, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cellValue types a raw cell by its stored type. Only cells stored as
// numbers are parsed; anything else is text.
func cellValue(f *excelize.File, sheet string, col, row int, raw string) types.Value {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.Value{Kind: types.KindEmpty}
	}

	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return types.StringValue(raw)
	}
	cellType, err := f.GetCellType(sheet, name)
	if err != nil {
		return types.StringValue(raw)
	}

	switch cellType {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		return types.ParseNumber(raw)
	case excelize.CellTypeBool:
		if raw == "1" {
			return types.StringValue("TRUE")
		}
		return types.StringValue("FALSE")
	default:
		return types.StringValue(raw)
	}
}

// parseDateCell converts an Excel serial or a textual date. Cells that are
// neither stay text so nothing silently disappears from the report.
func parseDateCell(cell string, date1904 bool, layouts []string) types.Value {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return types.Value{Kind: types.KindEmpty}
	}

	if serial, err := strconv.ParseFloat(cell, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, date1904); err == nil {
			return types.DateValue(t)
		}
	}

	if t, ok := types.ParseDate(cell, layouts); ok {
		return types.DateValue(t)
	}

	return types.StringValue(cell)
}

func uses1904Dates(f *excelize.File) bool {
	props, err := f.GetWorkbookProps()
	if err != nil || props.Date1904 == nil {
		return false
	}
	return *props.Date1904
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cleanHeaders trims header names and names blank headers by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// =============================================================================
// Supplier Follow-up Mailer - CSV Parser Module
// =============================================================================
//
// This module reads purchase-order exports saved as CSV. It produces the same
// Dataset as the XLSX parser so the rest of the pipeline does not care which
// format was uploaded.
//
// FEATURES:
//   - Configurable delimiter (comma, semicolon, pipe, tab)
//   - Legacy single-byte encodings (ISO-8859-1, Windows-1252) decoded to UTF-8
//   - A UTF-8 byte order mark on the header row is stripped
//   - Configurable header row for exports with title lines above the header
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/po-followup-mailer/internal/config"
	"github.com/ginjaninja78/po-followup-mailer/internal/types"
)

var (
	// ErrEmptyFile is returned when the CSV file holds no rows at all.
	ErrEmptyFile = errors.New("CSV file is empty")

	// ErrUnsupportedEncoding is returned for an unknown encoding name.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)

// =============================================================================
// PARSER OPTIONS
// =============================================================================

// Options controls how a CSV file is read.
type Options struct {
	// Settings holds the delimiter and encoding.
	Settings config.CSVSettings

	// HeaderRow is the 1-based row holding the column names.
	HeaderRow int

	// DateFields lists the columns holding dates.
	DateFields []string

	// DateLayouts are tried in order for date columns.
	// Empty selects types.DefaultDateLayouts.
	DateLayouts []string
}

// DefaultOptions returns the default parser options.
func DefaultOptions() Options {
	return Options{
		Settings:   config.CSVSettings{Delimiter: ",", Encoding: "UTF-8"},
		HeaderRow:  1,
		DateFields: []string{types.FieldPODate},
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns its dataset.
func Parse(filePath string, opts Options) (*types.Dataset, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	ds, err := ParseReader(file, opts)
	if err != nil {
		return nil, err
	}
	ds.SourceFile = filePath
	return ds, nil
}

// ParseReader reads CSV data from r.
//
// PARSING PROCESS:
//  1. Decode the configured encoding to UTF-8
//  2. Configure the CSV reader with the configured delimiter
//  3. Read the header row
//  4. Convert every following non-empty row to a types.Row
func ParseReader(r io.Reader, opts Options) (*types.Dataset, error) {
	if opts.HeaderRow < 1 {
		opts.HeaderRow = 1
	}

	decoded, err := decode(r, opts.Settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(bufio.NewReader(decoded))
	configureReader(csvReader, opts.Settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, ErrEmptyFile
	}
	if len(allRows) < opts.HeaderRow {
		return nil, fmt.Errorf("file has fewer rows than header_row setting (%d)", opts.HeaderRow)
	}

	headers := cleanHeaders(allRows[opts.HeaderRow-1])

	dateColumns := make(map[string]struct{}, len(opts.DateFields))
	for _, name := range opts.DateFields {
		dateColumns[name] = struct{}{}
	}

	return &types.Dataset{
		Columns: headers,
		Rows:    extractDataRows(allRows[opts.HeaderRow:], headers, dateColumns, opts.DateLayouts),
	}, nil
}

// decode wraps r so that it yields UTF-8 for the named encoding.
func decode(r io.Reader, name string) (io.Reader, error) {
	var enc encoding.Encoding

	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "UTF-8", "UTF8":
		// Strip a BOM if present; Excel adds one when saving "CSV UTF-8".
		enc = unicode.UTF8BOM
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		enc = charmap.ISO8859_1
	case "ISO-8859-15", "LATIN9", "LATIN-9":
		enc = charmap.ISO8859_15
	case "WINDOWS-1252", "CP1252":
		enc = charmap.Windows1252
	case "WINDOWS-1250", "CP1250":
		enc = charmap.Windows1250
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, name)
	}

	return transform.NewReader(r, enc.NewDecoder()), nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// Exports from older ERP screens do not always quote correctly.
	reader.LazyQuotes = true

	reader.TrimLeadingSpace = true
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

// extractDataRows converts the raw records below the header. CSV carries no
// cell types, so everything outside the date columns stays text.
func extractDataRows(records [][]string, headers []string, dateColumns map[string]struct{}, layouts []string) []types.Row {
	rows := make([]types.Row, 0, len(records))

	for _, record := range records {
		// Skip empty rows.
		if isRowEmpty(record) {
			continue
		}

		row := make(types.Row, len(headers))
		for col, header := range headers {
			cell := ""
			if col < len(record) {
				cell = strings.TrimSpace(record[col])
			}

			if _, isDate := dateColumns[header]; isDate {
				row[header] = parseDateCell(cell, layouts)
			} else {
				row[header] = types.StringValue(cell)
			}
		}

		rows = append(rows, row)
	}

	return rows
}

func parseDateCell(cell string, layouts []string) types.Value {
	if cell == "" {
		return types.Value{Kind: types.KindEmpty}
	}
	if t, ok := types.ParseDate(cell, layouts); ok {
		return types.DateValue(t)
	}
	return types.StringValue(cell)
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

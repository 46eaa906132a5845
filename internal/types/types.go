// =============================================================================
// Supplier Follow-up Mailer - Shared Types
// =============================================================================
//
// This package contains the dataset types shared by the parsers, the
// validator, the grouper and the HTML renderer. Keeping them here avoids
// import cycles between those packages.
//
// =============================================================================

package types

import (
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// REQUIRED FIELDS
// =============================================================================

// Column names used by the follow-up report.
const (
	FieldDepartment      = "Department"
	FieldComment         = "Comment"
	FieldStatus          = "Status"
	FieldSupplierNo      = "Supplier No"
	FieldSupplierName    = "Supplier Name"
	FieldPurchaseOrderNo = "Purchase Order No"
	FieldItem            = "Item"
	FieldPODate          = "Purchase Order Date"
	FieldMaterial        = "Material"
	FieldShortText       = "Short Text"
	FieldOrderQuantity   = "Order Quantity"
	FieldOrderUnit       = "Order Unit"
	FieldUnitPrice       = "Unit Price"
	FieldOrderAmount     = "Order Amount"
	FieldPendingQty      = "Pending Qty"
	FieldPendingAmount   = "Pending Amount"
	FieldStorageLocation = "Storage location"
	FieldPRNo            = "PR No"
	FieldEndUser         = "End User"

	// FieldCC is the optional column holding carbon-copy addresses.
	FieldCC = "CC"
)

// RequiredFields is the fixed, ordered set of columns a dataset must contain
// before any email is sent. The order is also the column order of the
// rendered HTML table.
var RequiredFields = []string{
	FieldDepartment,
	FieldComment,
	FieldStatus,
	FieldSupplierNo,
	FieldSupplierName,
	FieldPurchaseOrderNo,
	FieldItem,
	FieldPODate,
	FieldMaterial,
	FieldShortText,
	FieldOrderQuantity,
	FieldOrderUnit,
	FieldUnitPrice,
	FieldOrderAmount,
	FieldPendingQty,
	FieldPendingAmount,
	FieldStorageLocation,
	FieldPRNo,
	FieldEndUser,
}

// DateLayout is the layout used to display date values.
const DateLayout = "2006-01-02"

// =============================================================================
// SCALAR VALUES
// =============================================================================

// Kind identifies the type of a cell value.
type Kind int

const (
	// KindEmpty is a missing or blank cell.
	KindEmpty Kind = iota
	// KindString is free text.
	KindString
	// KindNumber is a numeric cell.
	KindNumber
	// KindDate is a date cell.
	KindDate
)

// Value is a single scalar cell value.
type Value struct {
	Date time.Time
	Str  string
	Num  float64
	Kind Kind
}

// StringValue returns a text value. Blank text becomes an empty value.
func StringValue(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Value{Kind: KindEmpty}
	}
	return Value{Kind: KindString, Str: s}
}

// NumberValue returns a numeric value.
func NumberValue(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}

// DateValue returns a date value. The zero time becomes an empty value.
func DateValue(t time.Time) Value {
	if t.IsZero() {
		return Value{Kind: KindEmpty}
	}
	return Value{Kind: KindDate, Date: t}
}

// IsBlank reports whether the value is missing or whitespace-only text.
func (v Value) IsBlank() bool {
	return v.Kind == KindEmpty || (v.Kind == KindString && strings.TrimSpace(v.Str) == "")
}

// String returns the natural string form of the value.
// Numbers use the shortest exact decimal representation and dates use
// DateLayout.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDate:
		return v.Date.Format(DateLayout)
	default:
		return ""
	}
}

// =============================================================================
// DATASET
// =============================================================================

// Row is a single spreadsheet record keyed by column name.
type Row map[string]Value

// Get returns the value for a column, or an empty value if it is absent.
func (r Row) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return Value{Kind: KindEmpty}
}

// Dataset is the parsed content of an uploaded spreadsheet.
type Dataset struct {
	// SourceFile is the path the dataset was read from.
	SourceFile string

	// Sheet is the worksheet name for XLSX input; empty for CSV.
	Sheet string

	// Columns holds the header names in file order.
	Columns []string

	// Rows holds the data rows in file order.
	Rows []Row
}

// HasColumn reports whether the dataset header contains the given column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ColumnSet returns the header names as a set.
func (d *Dataset) ColumnSet() map[string]struct{} {
	set := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		set[c] = struct{}{}
	}
	return set
}

package xlsxparser_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/po-followup-mailer/internal/types"
	"github.com/ginjaninja78/po-followup-mailer/internal/xlsxparser"
)

// newWorkbook builds a workbook with a header row and the given data rows.
func newWorkbook(t *testing.T, sheet string, header []any, rows ...[]any) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}

	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	return f
}

func saveWorkbook(t *testing.T, f *excelize.File) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParse_TypedCells(t *testing.T) {
	t.Parallel()

	poDate := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)
	f := newWorkbook(t, "Sheet1",
		[]any{"Supplier Name", "Purchase Order Date", "Pending Qty", "Supplier No", "CC"},
		[]any{"acme@example.com", poDate, 12.5, "00420", "buyer@example.com"},
		[]any{"beta@example.com", nil, 3, "100", ""},
	)
	path := saveWorkbook(t, f)

	ds, err := xlsxparser.Parse(path, xlsxparser.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, path, ds.SourceFile)
	assert.Equal(t, "Sheet1", ds.Sheet)
	assert.Equal(t, []string{"Supplier Name", "Purchase Order Date", "Pending Qty", "Supplier No", "CC"}, ds.Columns)
	require.Len(t, ds.Rows, 2)

	first := ds.Rows[0]
	assert.Equal(t, types.KindDate, first.Get("Purchase Order Date").Kind)
	assert.Equal(t, "2024-05-17", first.Get("Purchase Order Date").String())
	assert.Equal(t, types.KindNumber, first.Get("Pending Qty").Kind)
	assert.Equal(t, "12.5", first.Get("Pending Qty").String())
	assert.Equal(t, "00420", first.Get("Supplier No").String())
	assert.Equal(t, "buyer@example.com", first.Get("CC").String())

	second := ds.Rows[1]
	assert.Equal(t, types.KindEmpty, second.Get("Purchase Order Date").Kind)
	assert.Equal(t, "", second.Get("Purchase Order Date").String())
	assert.True(t, second.Get("CC").IsBlank())
}

func TestParse_TextualDateAndUnparseableDate(t *testing.T) {
	t.Parallel()

	f := newWorkbook(t, "Sheet1",
		[]any{"Supplier Name", "Purchase Order Date"},
		[]any{"acme", "2024-01-09"},
		[]any{"acme", "next week"},
	)

	ds, err := xlsxparser.Parse(saveWorkbook(t, f), xlsxparser.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)

	assert.Equal(t, types.KindDate, ds.Rows[0].Get("Purchase Order Date").Kind)
	assert.Equal(t, "2024-01-09", ds.Rows[0].Get("Purchase Order Date").String())
	assert.Equal(t, types.KindString, ds.Rows[1].Get("Purchase Order Date").Kind)
	assert.Equal(t, "next week", ds.Rows[1].Get("Purchase Order Date").String())
}

func TestParse_SkipsEmptyRowsAndNamesBlankHeaders(t *testing.T) {
	t.Parallel()

	f := newWorkbook(t, "Sheet1",
		[]any{"Supplier Name", "", "Status"},
		[]any{"acme", "x", "Open"},
		[]any{nil, nil, nil},
		[]any{"beta", "y", "Closed"},
	)

	ds, err := xlsxparser.Parse(saveWorkbook(t, f), xlsxparser.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"Supplier Name", "Column_2", "Status"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "beta", ds.Rows[1].Get("Supplier Name").String())
}

func TestParse_NamedSheet(t *testing.T) {
	t.Parallel()

	f := newWorkbook(t, "Open POs", []any{"Supplier Name"}, []any{"acme"})
	path := saveWorkbook(t, f)

	opts := xlsxparser.DefaultOptions()
	opts.Sheet = "Open POs"
	ds, err := xlsxparser.Parse(path, opts)
	require.NoError(t, err)
	assert.Equal(t, "Open POs", ds.Sheet)
	assert.Len(t, ds.Rows, 1)

	opts.Sheet = "Closed POs"
	_, err = xlsxparser.Parse(path, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, xlsxparser.ErrSheetNotFound)

	sheets, err := xlsxparser.Sheets(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Open POs"}, sheets)
}

func TestParse_HeaderRowOffset(t *testing.T) {
	t.Parallel()

	f := newWorkbook(t, "Sheet1",
		[]any{"Open PO report"},
		[]any{"Supplier Name", "Status"},
		[]any{"acme", "Open"},
	)

	opts := xlsxparser.DefaultOptions()
	opts.HeaderRow = 2
	ds, err := xlsxparser.Parse(saveWorkbook(t, f), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"Supplier Name", "Status"}, ds.Columns)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, "Open", ds.Rows[0].Get("Status").String())
}

func TestParse_EmptySheet(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	_, err := xlsxparser.Parse(saveWorkbook(t, f), xlsxparser.DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, xlsxparser.ErrNoHeader)
}

func TestParse_TextCellsKeepTheirText(t *testing.T) {
	t.Parallel()

	f := newWorkbook(t, "Sheet1",
		[]any{"Supplier Name", "Material", "PR No", "End User", "Pending Qty"},
	)
	require.NoError(t, f.SetCellStr("Sheet1", "A2", "acme"))
	require.NoError(t, f.SetCellStr("Sheet1", "B2", "12E4"))
	require.NoError(t, f.SetCellStr("Sheet1", "C2", "12345678901234567890"))
	require.NoError(t, f.SetCellStr("Sheet1", "D2", "+919923699610"))
	require.NoError(t, f.SetCellInt("Sheet1", "E2", 40))

	ds, err := xlsxparser.Parse(saveWorkbook(t, f), xlsxparser.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, ds.Rows, 1)

	row := ds.Rows[0]
	assert.Equal(t, "12E4", row.Get("Material").String())
	assert.Equal(t, types.KindString, row.Get("Material").Kind)
	assert.Equal(t, "12345678901234567890", row.Get("PR No").String())
	assert.Equal(t, "+919923699610", row.Get("End User").String())
	assert.Equal(t, types.KindNumber, row.Get("Pending Qty").Kind)
	assert.Equal(t, "40", row.Get("Pending Qty").String())
}

func TestParse_TextualSlashDatesAreDayFirst(t *testing.T) {
	t.Parallel()

	f := newWorkbook(t, "Sheet1",
		[]any{"Supplier Name", "Purchase Order Date"},
		[]any{"acme", "05/03/2024"},
		[]any{"acme", "13/03/2024"},
	)

	ds, err := xlsxparser.Parse(saveWorkbook(t, f), xlsxparser.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)

	assert.Equal(t, "2024-03-05", ds.Rows[0].Get("Purchase Order Date").String())
	assert.Equal(t, "2024-03-13", ds.Rows[1].Get("Purchase Order Date").String())
}

func TestParse_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := xlsxparser.Parse(filepath.Join(t.TempDir(), "nope.xlsx"), xlsxparser.DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open workbook")
}

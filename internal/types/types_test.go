package types_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/po-followup-mailer/internal/types"
)

func TestRequiredFields(t *testing.T) {
	t.Parallel()

	assert.Len(t, types.RequiredFields, 19)
	assert.NotContains(t, types.RequiredFields, types.FieldCC)
	assert.Equal(t, types.FieldDepartment, types.RequiredFields[0])
	assert.Equal(t, types.FieldEndUser, types.RequiredFields[18])
}

func TestValue_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value types.Value
		want  string
	}{
		{name: "empty", value: types.Value{}, want: ""},
		{name: "text", value: types.StringValue("Bolts M8"), want: "Bolts M8"},
		{name: "integer number", value: types.NumberValue(12), want: "12"},
		{name: "decimal number", value: types.NumberValue(1250.5), want: "1250.5"},
		{name: "date", value: types.DateValue(time.Date(2024, 3, 7, 15, 4, 0, 0, time.UTC)), want: "2024-03-07"},
		{name: "zero date", value: types.DateValue(time.Time{}), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.value.String())
		})
	}
}

func TestValue_IsBlank(t *testing.T) {
	t.Parallel()

	assert.True(t, types.Value{}.IsBlank())
	assert.True(t, types.StringValue("   ").IsBlank())
	assert.True(t, types.Value{Kind: types.KindString, Str: " \t"}.IsBlank())
	assert.False(t, types.StringValue("a@x.com").IsBlank())
	assert.False(t, types.NumberValue(0).IsBlank())
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		kind types.Kind
		want string
	}{
		{in: "", kind: types.KindEmpty, want: ""},
		{in: "  ", kind: types.KindEmpty, want: ""},
		{in: "42", kind: types.KindNumber, want: "42"},
		{in: "3.5", kind: types.KindNumber, want: "3.5"},
		{in: "0.25", kind: types.KindNumber, want: "0.25"},
		{in: "919923699610", kind: types.KindNumber, want: "919923699610"},
		{in: "#N/A", kind: types.KindString, want: "#N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			v := types.ParseNumber(tt.in)
			assert.Equal(t, tt.kind, v.Kind)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"2024-03-07", "07.03.2024", "07/03/2024", "7/3/2024", "2024/03/07", "07-Mar-2024", "20240307"} {
		got, ok := types.ParseDate(in, nil)
		assert.True(t, ok, in)
		assert.Equal(t, "2024-03-07", got.Format(types.DateLayout), in)
	}

	_, ok := types.ParseDate("not a date", nil)
	assert.False(t, ok)

	_, ok = types.ParseDate("", nil)
	assert.False(t, ok)
}

func TestParseDate_SlashDatesAreDayFirst(t *testing.T) {
	t.Parallel()

	// One column, days on both sides of 12.
	column := map[string]string{
		"05/03/2024": "2024-03-05",
		"13/03/2024": "2024-03-13",
		"01/12/2024": "2024-12-01",
		"31/01/2024": "2024-01-31",
	}
	for in, want := range column {
		got, ok := types.ParseDate(in, nil)
		assert.True(t, ok, in)
		assert.Equal(t, want, got.Format(types.DateLayout), in)
	}

	_, ok := types.ParseDate("03/13/2024", nil)
	assert.False(t, ok, "month-first dates are not guessed")
}

func TestParseDate_CustomLayouts(t *testing.T) {
	t.Parallel()

	monthFirst := []string{"01/02/2006"}

	got, ok := types.ParseDate("03/13/2024", monthFirst)
	assert.True(t, ok)
	assert.Equal(t, "2024-03-13", got.Format(types.DateLayout))

	got, ok = types.ParseDate("05/03/2024", monthFirst)
	assert.True(t, ok)
	assert.Equal(t, "2024-05-03", got.Format(types.DateLayout))

	_, ok = types.ParseDate("2024-03-13", monthFirst)
	assert.False(t, ok)
}

func TestDataset_HasColumn(t *testing.T) {
	t.Parallel()

	ds := &types.Dataset{Columns: []string{"Supplier Name", "CC"}}
	assert.True(t, ds.HasColumn("CC"))
	assert.False(t, ds.HasColumn("cc"))
	assert.Len(t, ds.ColumnSet(), 2)
}

func TestRow_Get(t *testing.T) {
	t.Parallel()

	row := types.Row{"Status": types.StringValue("Open")}
	assert.Equal(t, "Open", row.Get("Status").String())
	assert.Equal(t, types.KindEmpty, row.Get("Missing").Kind)
}

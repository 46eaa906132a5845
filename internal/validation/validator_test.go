package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/po-followup-mailer/internal/types"
	"github.com/ginjaninja78/po-followup-mailer/internal/validation"
)

func datasetWith(columns ...string) *types.Dataset {
	row := types.Row{types.FieldSupplierName: types.StringValue("Acme Tools")}
	return &types.Dataset{Columns: columns, Rows: []types.Row{row}}
}

func without(columns []string, drop ...string) []string {
	var out []string
	for _, c := range columns {
		keep := true
		for _, d := range drop {
			if c == d {
				keep = false
			}
		}
		if keep {
			out = append(out, c)
		}
	}
	return out
}

func TestValidate_AllRequiredPresent(t *testing.T) {
	t.Parallel()

	t.Run("without CC", func(t *testing.T) {
		t.Parallel()

		result, err := validation.Validate(datasetWith(types.RequiredFields...), validation.DefaultOptions())
		require.NoError(t, err)
		assert.False(t, result.HasCC)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "No 'CC' column found")
	})

	t.Run("with CC", func(t *testing.T) {
		t.Parallel()

		cols := append(append([]string{}, types.RequiredFields...), types.FieldCC)
		result, err := validation.Validate(datasetWith(cols...), validation.DefaultOptions())
		require.NoError(t, err)
		assert.True(t, result.HasCC)
		assert.Empty(t, result.Warnings)
		assert.Equal(t, 1, result.Rows)
	})

	t.Run("column order does not matter", func(t *testing.T) {
		t.Parallel()

		reversed := make([]string, 0, len(types.RequiredFields))
		for i := len(types.RequiredFields) - 1; i >= 0; i-- {
			reversed = append(reversed, types.RequiredFields[i])
		}
		_, err := validation.Validate(datasetWith(append(reversed, "Extra Column")...), validation.DefaultOptions())
		assert.NoError(t, err)
	})
}

func TestValidate_MissingPendingQty(t *testing.T) {
	t.Parallel()

	ds := datasetWith(without(types.RequiredFields, types.FieldPendingQty)...)
	ds.SourceFile = "orders.xlsx"

	result, err := validation.Validate(ds, validation.DefaultOptions())
	require.Error(t, err)
	assert.Nil(t, result)

	var verr *validation.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"Pending Qty"}, verr.Missing)
	assert.Equal(t, "missing columns in orders.xlsx: Pending Qty", verr.Error())
}

func TestValidate_ListsExactlyTheMissingFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		drop []string
	}{
		{name: "first", drop: []string{types.FieldDepartment}},
		{name: "last", drop: []string{types.FieldEndUser}},
		{name: "several", drop: []string{types.FieldStatus, types.FieldPRNo, types.FieldUnitPrice}},
		{name: "all", drop: types.RequiredFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := validation.Validate(datasetWith(without(types.RequiredFields, tt.drop...)...), validation.DefaultOptions())

			var verr *validation.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.ElementsMatch(t, tt.drop, verr.Missing)
		})
	}
}

func TestValidate_MissingReportedInRequiredOrder(t *testing.T) {
	t.Parallel()

	_, err := validation.Validate(datasetWith(types.FieldSupplierName), validation.DefaultOptions())

	var verr *validation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, without(types.RequiredFields, types.FieldSupplierName), verr.Missing)
}

func TestValidate_ExtraRequired(t *testing.T) {
	t.Parallel()

	opts := validation.DefaultOptions()
	opts.ExtraRequired = []string{"E Mail ID"}

	_, err := validation.Validate(datasetWith(types.RequiredFields...), opts)

	var verr *validation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"E Mail ID"}, verr.Missing)

	_, err = validation.Validate(datasetWith(append(append([]string{}, types.RequiredFields...), "E Mail ID")...), opts)
	assert.NoError(t, err)
}

func TestValidate_NoRowsWarns(t *testing.T) {
	t.Parallel()

	ds := &types.Dataset{Columns: append(append([]string{}, types.RequiredFields...), types.FieldCC)}

	result, err := validation.Validate(ds, validation.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "no data rows")
}

func TestValidate_BlankGroupKeyWarns(t *testing.T) {
	t.Parallel()

	cols := append(append([]string{}, types.RequiredFields...), types.FieldCC)
	ds := &types.Dataset{
		Columns: cols,
		Rows: []types.Row{
			{types.FieldSupplierName: types.StringValue("Acme Tools")},
			{types.FieldSupplierName: types.StringValue("   ")},
			{},
		},
	}

	result, err := validation.Validate(ds, validation.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "2 row(s) have a blank 'Supplier Name'")

	opts := validation.DefaultOptions()
	opts.KeyField = "Plant"
	result, err = validation.Validate(ds, opts)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "3 row(s) have a blank 'Plant'")
}

func TestMissingColumns_Deduplicates(t *testing.T) {
	t.Parallel()

	missing := validation.MissingColumns(datasetWith("A"), []string{"B", "A", "B"})
	assert.Equal(t, []string{"B"}, missing)
}

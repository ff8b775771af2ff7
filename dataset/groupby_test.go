package dataset_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vizsolve/vizsolve/dataset"
)

// firstOf evaluates to the context's scalar value of one column; it stands
// in for the expression evaluator in dataset-level tests.
type firstOf string

func (f firstOf) Eval(ctx dataset.Context) (dataset.Value, error) {
	return ctx.Value(string(f))
}

func TestGroups_NilGroupByIsPerRow(t *testing.T) {
	tbl := sampleTable()

	groups, err := tbl.Groups(nil)
	require.NoError(t, err)
	require.Len(t, groups, 4)
	for i, g := range groups {
		require.Equal(t, []int{i}, g.Rows)
	}
}

func TestGroups_FirstAppearanceOrder(t *testing.T) {
	tbl := sampleTable()

	groups, err := tbl.Groups(&dataset.GroupBy{Column: "city"})
	require.NoError(t, err)
	require.Len(t, groups, 3)
	// city column is b, a, b, c: groups appear as b, a, c.
	require.Equal(t, []int{0, 2}, groups[0].Rows)
	require.Equal(t, []int{1}, groups[1].Rows)
	require.Equal(t, []int{3}, groups[2].Rows)
}

func TestGroups_UnknownColumn(t *testing.T) {
	tbl := sampleTable()

	_, err := tbl.Groups(&dataset.GroupBy{Column: "nope"})
	require.ErrorIs(t, err, dataset.ErrUnknownColumn)
}

func TestGroups_DeterministicAcrossCalls(t *testing.T) {
	// Repeated partitioning of the same triple must never reorder groups;
	// scale inference relies on this.
	tbl := sampleTable()
	gb := &dataset.GroupBy{Column: "city"}

	first, err := tbl.Groups(gb)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := tbl.Groups(gb)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestGroupedValues_PerGroup(t *testing.T) {
	tbl := sampleTable()

	vals, err := tbl.GroupedValues(&dataset.GroupBy{Column: "city"}, firstOf("city"))
	require.NoError(t, err)
	require.Len(t, vals, 3)
	require.Equal(t, "b", vals[0].AsString())
	require.Equal(t, "a", vals[1].AsString())
	require.Equal(t, "c", vals[2].AsString())
}

func TestGroupContext_Vector(t *testing.T) {
	tbl := sampleTable()
	ctx := tbl.GroupContext([]int{0, 2})

	vec, err := ctx.Vector("amount")
	require.NoError(t, err)
	require.Len(t, vec, 2)

	n0, _ := vec[0].AsNumber()
	n1, _ := vec[1].AsNumber()
	require.Equal(t, 3.0, n0)
	require.Equal(t, 7.0, n1)

	_, err = ctx.Vector("missing")
	require.ErrorIs(t, err, dataset.ErrUnknownColumn)
}

func TestFromCSV_SniffsTypes(t *testing.T) {
	src := strings.Join([]string{
		"city,amount,active,when",
		"b,3,true,2026-01-01",
		"a,-1,false,2026-01-02",
		"b,7,true,2026-01-03",
		"c,2,false,2026-01-04",
	}, "\n")

	tbl, err := dataset.FromCSV("sales", strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 4, tbl.Len())

	wantKinds := map[string]dataset.Kind{
		"city":   dataset.KindCategorical,
		"amount": dataset.KindNumerical,
		"active": dataset.KindCategorical,
		"when":   dataset.KindTemporal,
	}
	wantTypes := map[string]dataset.Type{
		"city":   dataset.TypeString,
		"amount": dataset.TypeNumber,
		"active": dataset.TypeBoolean,
		"when":   dataset.TypeDate,
	}
	for name, kind := range wantKinds {
		col, err := tbl.Column(name)
		require.NoError(t, err)
		require.Equal(t, kind, col.Kind, "kind of %s", name)
		require.Equal(t, wantTypes[name], col.Type, "type of %s", name)
	}

	v, err := tbl.Cell(1, "amount")
	require.NoError(t, err)
	n, ok := v.AsNumber()
	require.True(t, ok)
	require.Equal(t, -1.0, n)
}

func TestFromCSV_EmptyCellsAreNull(t *testing.T) {
	src := "city,amount\nb,3\na,\n"
	tbl, err := dataset.FromCSV("sales", strings.NewReader(src))
	require.NoError(t, err)

	v, err := tbl.Cell(1, "amount")
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

package scale_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vizsolve/vizsolve/dataset"
	"github.com/vizsolve/vizsolve/scale"
)

// fixture builds (city, amount, when) with city values b, a, b, c.
func fixture() *dataset.Dataset {
	cols := []dataset.Column{
		{Name: "city", Type: dataset.TypeString, Kind: dataset.KindCategorical},
		{Name: "rank", Type: dataset.TypeString, Kind: dataset.KindOrdinal, Order: []string{"low", "mid", "high"}},
		{Name: "amount", Type: dataset.TypeNumber, Kind: dataset.KindNumerical},
		{Name: "when", Type: dataset.TypeDate, Kind: dataset.KindTemporal},
	}
	day := func(d int) dataset.Value {
		return dataset.Date(time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC))
	}
	rows := []dataset.Row{
		{"city": dataset.String("b"), "rank": dataset.String("high"), "amount": dataset.Number(3), "when": day(1)},
		{"city": dataset.String("a"), "rank": dataset.String("low"), "amount": dataset.Number(-1), "when": day(2)},
		{"city": dataset.String("b"), "rank": dataset.String("mid"), "amount": dataset.Number(7), "when": day(3)},
		{"city": dataset.String("c"), "rank": dataset.String("low"), "amount": dataset.Number(2), "when": day(4)},
	}

	return dataset.NewDataset("demo", dataset.NewTable("sales", cols, rows))
}

func newInferencer() *scale.Inferencer {
	return scale.NewInferencer(fixture(), scale.NewRegistry())
}

// ------------------------------------------------------------------------
// 1. Categorical domains and ordering modes.
// ------------------------------------------------------------------------

func TestInfer_CategoryOrder_Occurrence(t *testing.T) {
	inf := newInferencer()
	s, err := inf.Infer(scale.Request{
		Table:       "sales",
		Expressions: []string{"city"},
		Kind:        dataset.KindCategorical,
		Role:        scale.RolePosition,
		OrderMode:   scale.OrderOccurrence,
	})
	require.NoError(t, err)
	require.Equal(t, scale.Categorical, s.Kind)
	// city values are b, a, b, c: distinct order is b, a, c.
	require.Equal(t, []string{"b", "a", "c"}, s.Categories)
}

func TestInfer_CategoryOrder_Alphabetical(t *testing.T) {
	inf := newInferencer()
	s, err := inf.Infer(scale.Request{
		Table:       "sales",
		Expressions: []string{"city"},
		Kind:        dataset.KindCategorical,
		Role:        scale.RolePosition,
		OrderMode:   scale.OrderAlphabetical,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, s.Categories)
}

func TestInfer_CategoryOrder_Explicit(t *testing.T) {
	inf := newInferencer()
	s, err := inf.Infer(scale.Request{
		Table:       "sales",
		Expressions: []string{"city"},
		Kind:        dataset.KindCategorical,
		Role:        scale.RolePosition,
		OrderMode:   scale.OrderExplicit,
		Order:       []string{"c", "b"},
	})
	require.NoError(t, err)
	// Ordered values first, then the unlisted category in occurrence order.
	require.Equal(t, []string{"c", "b", "a"}, s.Categories)
}

func TestInfer_ColumnOrderWins(t *testing.T) {
	// The rank column declares low < mid < high; that beats the mode.
	inf := newInferencer()
	s, err := inf.Infer(scale.Request{
		Table:       "sales",
		Expressions: []string{"rank"},
		Kind:        dataset.KindOrdinal,
		Role:        scale.RolePosition,
		OrderMode:   scale.OrderAlphabetical,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"low", "mid", "high"}, s.Categories)
}

// ------------------------------------------------------------------------
// 2. Numeric and temporal domains.
// ------------------------------------------------------------------------

func TestInfer_LinearDomain(t *testing.T) {
	inf := newInferencer()
	s, err := inf.Infer(scale.Request{
		Table:       "sales",
		Expressions: []string{"amount"},
		Kind:        dataset.KindNumerical,
		Role:        scale.RolePosition,
	})
	require.NoError(t, err)
	require.Equal(t, scale.Linear, s.Kind)
	require.Equal(t, -1.0, s.Min)
	require.Equal(t, 7.0, s.Max)
}

func TestInfer_TemporalDomain(t *testing.T) {
	inf := newInferencer()
	s, err := inf.Infer(scale.Request{
		Table:       "sales",
		Expressions: []string{"when"},
		Kind:        dataset.KindTemporal,
		Role:        scale.RolePosition,
	})
	require.NoError(t, err)
	require.Equal(t, scale.Temporal, s.Kind)

	lo := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	require.Equal(t, float64(lo.UnixMilli()), s.Min)
	require.Equal(t, float64(hi.UnixMilli()), s.Max)
}

func TestInfer_TemporalRejectsNonDates(t *testing.T) {
	inf := newInferencer()
	_, err := inf.Infer(scale.Request{
		Table:       "sales",
		Expressions: []string{"city"},
		Kind:        dataset.KindTemporal,
		Role:        scale.RolePosition,
	})
	require.ErrorIs(t, err, scale.ErrKindMismatch)
}

func TestInfer_EmptyDomain(t *testing.T) {
	empty := dataset.NewDataset("demo", dataset.NewTable("empty",
		[]dataset.Column{{Name: "x", Type: dataset.TypeNumber, Kind: dataset.KindNumerical}}, nil))
	inf := scale.NewInferencer(empty, scale.NewRegistry())

	_, err := inf.Infer(scale.Request{
		Table:       "empty",
		Expressions: []string{"x"},
		Kind:        dataset.KindNumerical,
		Role:        scale.RolePosition,
	})
	require.ErrorIs(t, err, scale.ErrEmptyDomain)
}

func TestInfer_TextRoleWarrantsNoScale(t *testing.T) {
	inf := newInferencer()
	s, err := inf.Infer(scale.Request{
		Table:       "sales",
		Expressions: []string{"city"},
		Kind:        dataset.KindCategorical,
		Role:        scale.RoleText,
	})
	require.NoError(t, err)
	require.Nil(t, s)
}

// ------------------------------------------------------------------------
// 3. Reuse: compatible mappings share one scale id.
// ------------------------------------------------------------------------

func TestInfer_ReusesCompatibleScale(t *testing.T) {
	inf := newInferencer()
	req := scale.Request{
		Table:       "sales",
		Expressions: []string{"city"},
		Kind:        dataset.KindCategorical,
		Role:        scale.RoleColor,
	}

	first, err := inf.Infer(req)
	require.NoError(t, err)
	second, err := inf.Infer(req)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, inf.Registry().All(), 1)
}

func TestInfer_RoleFamiliesDoNotShare(t *testing.T) {
	inf := newInferencer()
	base := scale.Request{
		Table:       "sales",
		Expressions: []string{"city"},
		Kind:        dataset.KindCategorical,
	}

	pos := base
	pos.Role = scale.RolePosition
	col := base
	col.Role = scale.RoleColor

	a, err := inf.Infer(pos)
	require.NoError(t, err)
	b, err := inf.Infer(col)
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
}

func TestInfer_ReuseWidensNumericDomain(t *testing.T) {
	inf := newInferencer()
	a, err := inf.Infer(scale.Request{
		Table: "sales", Expressions: []string{"amount"},
		Kind: dataset.KindNumerical, Role: scale.RolePosition,
	})
	require.NoError(t, err)

	b, err := inf.Infer(scale.Request{
		Table: "sales", Expressions: []string{"amount * 10"},
		Kind: dataset.KindNumerical, Role: scale.RolePosition,
	})
	require.NoError(t, err)
	require.Equal(t, a.ID, b.ID)
	require.Equal(t, -10.0, b.Min)
	require.Equal(t, 70.0, b.Max)
}

func TestInfer_ReuseMergesCategories(t *testing.T) {
	inf := newInferencer()
	a, err := inf.Infer(scale.Request{
		Table: "sales", Expressions: []string{"city"},
		Kind: dataset.KindCategorical, Role: scale.RoleColor,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a", "c"}, a.Categories)

	b, err := inf.Infer(scale.Request{
		Table: "sales", Expressions: []string{"rank"},
		Kind: dataset.KindCategorical, Role: scale.RoleColor,
	})
	require.NoError(t, err)
	require.Equal(t, a.ID, b.ID)
	// Existing slots keep their indices; new categories append in the
	// rank column's declared order.
	require.Equal(t, []string{"b", "a", "c", "low", "mid", "high"}, b.Categories)
}

// ------------------------------------------------------------------------
// 4. Mapping and axis payloads.
// ------------------------------------------------------------------------

func TestScale_MapBandCenters(t *testing.T) {
	s := &scale.Scale{Kind: scale.Categorical, Categories: []string{"b", "a", "c"}}

	x, err := s.Map(dataset.String("b"), 0, 300)
	require.NoError(t, err)
	require.InDelta(t, 50, x, 1e-9)

	x, err = s.Map(dataset.String("c"), 0, 300)
	require.NoError(t, err)
	require.InDelta(t, 250, x, 1e-9)

	_, err = s.Map(dataset.String("zzz"), 0, 300)
	require.ErrorIs(t, err, scale.ErrUnmappable)
}

func TestScale_MapLinear(t *testing.T) {
	s := &scale.Scale{Kind: scale.Linear, Min: -1, Max: 7}

	x, err := s.Map(dataset.Number(-1), 100, 500)
	require.NoError(t, err)
	require.InDelta(t, 100, x, 1e-9)

	x, err = s.Map(dataset.Number(7), 100, 500)
	require.NoError(t, err)
	require.InDelta(t, 500, x, 1e-9)

	x, err = s.Map(dataset.Number(3), 100, 500)
	require.NoError(t, err)
	require.InDelta(t, 300, x, 1e-9)
}

func TestScale_MapCollapsedDomain(t *testing.T) {
	s := &scale.Scale{Kind: scale.Linear, Min: 5, Max: 5}
	x, err := s.Map(dataset.Number(5), 0, 100)
	require.NoError(t, err)
	require.InDelta(t, 50, x, 1e-9)
}

func TestScale_MapColorCycles(t *testing.T) {
	s := &scale.Scale{Kind: scale.Categorical, Categories: []string{"b", "a", "c"}}

	c0, err := s.MapColor(dataset.String("b"))
	require.NoError(t, err)
	c1, err := s.MapColor(dataset.String("a"))
	require.NoError(t, err)
	require.NotEqual(t, c0, c1)
	require.Regexp(t, "^#[0-9A-F]{6}$", c0)
}

func TestScale_AxisMirrorsDomain(t *testing.T) {
	inf := newInferencer()
	s, err := inf.Infer(scale.Request{
		Table:       "sales",
		Expressions: []string{"city"},
		Kind:        dataset.KindCategorical,
		Role:        scale.RolePosition,
	})
	require.NoError(t, err)

	axis := s.Axis("city")
	require.Equal(t, s.ID, axis.ScaleID)
	require.Equal(t, s.Categories, axis.Categories)

	lin, err := inf.Infer(scale.Request{
		Table:       "sales",
		Expressions: []string{"amount"},
		Kind:        dataset.KindNumerical,
		Role:        scale.RolePosition,
	})
	require.NoError(t, err)
	la := lin.Axis("amount")
	require.Equal(t, lin.Min, la.Min)
	require.Equal(t, lin.Max, la.Max)
}

// ------------------------------------------------------------------------
// 5. Registry behavior.
// ------------------------------------------------------------------------

func TestRegistry_AddGetRemove(t *testing.T) {
	reg := scale.NewRegistry()
	s := &scale.Scale{ID: "s1", Kind: scale.Linear}
	reg.Add(s)

	got, err := reg.Get("s1")
	require.NoError(t, err)
	require.Same(t, s, got)
	require.True(t, reg.Has("s1"))

	reg.Remove("s1")
	require.False(t, reg.Has("s1"))
	_, err = reg.Get("s1")
	require.ErrorIs(t, err, scale.ErrUnknownScale)

	// Removing twice is a no-op.
	reg.Remove("s1")
	require.Empty(t, reg.All())
}

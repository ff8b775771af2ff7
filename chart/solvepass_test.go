package chart_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vizsolve/vizsolve/chart"
	"github.com/vizsolve/vizsolve/dataset"
)

// ------------------------------------------------------------------------
// 1. Axis layout.
// ------------------------------------------------------------------------

func TestSolve_CategoricalAxisPositionsGlyphs(t *testing.T) {
	m, _, _, ps := barChart(t)
	require.NoError(t, m.BindDataToAxis(ps.ID, "x", "city", dataset.KindCategorical))

	// Default frame [-300, 300] with 30-unit margins: content region
	// [-270, 270]. Three categories land on band centers.
	st := m.State().Elements[ps.ID]
	require.Len(t, st.Glyphs, 3)
	require.InDelta(t, -180, st.Glyphs[0].Attributes.Number("x"), 1e-3)
	require.InDelta(t, 0, st.Glyphs[1].Attributes.Number("x"), 1e-3)
	require.InDelta(t, 180, st.Glyphs[2].Attributes.Number("x"), 1e-3)
}

func TestSolve_AxisBindingCarriesScaleDomain(t *testing.T) {
	m, _, _, ps := barChart(t)
	require.NoError(t, m.BindDataToAxis(ps.ID, "x", "city", dataset.KindCategorical))

	require.NotNil(t, ps.XAxis)
	require.Equal(t, []string{"a", "b", "c"}, ps.XAxis.Categories)

	sc, err := m.Scales().Get(ps.XAxis.ScaleID)
	require.NoError(t, err)
	require.Equal(t, sc.Categories, ps.XAxis.Categories)
}

func TestSolve_UnboundAxisSpreadsGlyphs(t *testing.T) {
	m, _, _, ps := barChart(t)

	// dodge-x sublayout: glyphs spread across x, centered on y.
	st := m.State().Elements[ps.ID]
	xs := []float64{
		st.Glyphs[0].Attributes.Number("x"),
		st.Glyphs[1].Attributes.Number("x"),
		st.Glyphs[2].Attributes.Number("x"),
	}
	require.Less(t, xs[0], xs[1])
	require.Less(t, xs[1], xs[2])
	require.InDelta(t, 0, st.Glyphs[1].Attributes.Number("y"), 2.0)
}

func TestSolve_FrameStaysAnchored(t *testing.T) {
	m, _, _, ps := barChart(t)
	require.NoError(t, m.BindDataToAxis(ps.ID, "x", "city", dataset.KindCategorical))

	st := m.State().Elements[ps.ID]
	require.InDelta(t, -300, st.Attributes.Number("x1"), 1e-3)
	require.InDelta(t, 300, st.Attributes.Number("x2"), 1e-3)
	require.InDelta(t, -270, st.Attributes.Number("cx1"), 1e-3)
	require.InDelta(t, 270, st.Attributes.Number("cx2"), 1e-3)
}

// ------------------------------------------------------------------------
// 2. Data-driven mark attributes.
// ------------------------------------------------------------------------

func TestSolve_ScaleMappedHeightPerGroup(t *testing.T) {
	m, _, mark, ps := barChart(t)

	// Bare numerical column aggregates per group: avg(amount) is 12, 4
	// and 5 per city, a [4, 12] domain mapped onto [0, 100].
	require.NoError(t, m.MapData(mark.ID, "height", "amount", dataset.KindNumerical, 0, 100))
	require.Equal(t, "avg(amount)", mark.Mappings["height"].Expression)

	st := m.State().Elements[ps.ID]
	require.InDelta(t, 100, st.Glyphs[0].Marks[mark.ID].Number("height"), 1e-3)
	require.InDelta(t, 0, st.Glyphs[1].Marks[mark.ID].Number("height"), 1e-3)
	require.InDelta(t, 12.5, st.Glyphs[2].Marks[mark.ID].Number("height"), 1e-3)
}

func TestSolve_ColorMappingCyclesPalette(t *testing.T) {
	m, _, mark, ps := barChart(t)
	require.NoError(t, m.MapData(mark.ID, "fill", "city", dataset.KindCategorical, 0, 0))

	st := m.State().Elements[ps.ID]
	fills := map[string]bool{}
	for _, gs := range st.Glyphs {
		fills[gs.Marks[mark.ID].String("fill")] = true
	}
	// Three categories, three distinct colors.
	require.Len(t, fills, 3)
}

func TestSolve_MarkIntrinsicsHoldPerInstance(t *testing.T) {
	m, _, mark, ps := barChart(t)
	require.NoError(t, m.MapData(mark.ID, "height", "amount", dataset.KindNumerical, 0, 100))

	st := m.State().Elements[ps.ID]
	for _, gs := range st.Glyphs {
		attrs := gs.Marks[mark.ID]
		require.InDelta(t, attrs.Number("y2")-attrs.Number("y1"), attrs.Number("height"), 1e-3)
		require.InDelta(t, (attrs.Number("x1")+attrs.Number("x2"))/2, attrs.Number("cx"), 1e-3)
	}
}

func TestSolve_MarksRideGlyphAnchor(t *testing.T) {
	m, _, mark, ps := barChart(t)
	require.NoError(t, m.BindDataToAxis(ps.ID, "x", "city", dataset.KindCategorical))

	st := m.State().Elements[ps.ID]
	for _, gs := range st.Glyphs {
		require.InDelta(t, gs.Attributes.Number("x"), gs.Marks[mark.ID].Number("cx"), 0.1)
	}
}

// ------------------------------------------------------------------------
// 3. Snap constraints and direct values.
// ------------------------------------------------------------------------

func TestSolve_SnapBetweenChartElements(t *testing.T) {
	m := chart.NewManager(fixture())
	a, err := m.AddElement(chart.ClassRect)
	require.NoError(t, err)
	b, err := m.AddElement(chart.ClassRect)
	require.NoError(t, err)

	require.NoError(t, m.SetMapping(b.ID, "x2", chart.Mapping{Type: chart.MappingValue, Value: 100}))
	require.NoError(t, m.AddSnapConstraint(a.ID, "x1", b.ID, "x2", 8))

	require.InDelta(t, 108, m.State().Elements[a.ID].Attributes.Number("x1"), 1e-3)
}

func TestSolve_ValueMappingPinsAttribute(t *testing.T) {
	m := chart.NewManager(fixture())
	el, err := m.AddElement(chart.ClassSymbol)
	require.NoError(t, err)

	require.NoError(t, m.SetMapping(el.ID, "x", chart.Mapping{Type: chart.MappingValue, Value: 42}))
	require.Equal(t, 42.0, m.State().Elements[el.ID].Attributes.Number("x"))
}

func TestSolve_ParentMappingTracksChartFrame(t *testing.T) {
	m := chart.NewManager(fixture())
	el, err := m.AddElement(chart.ClassSymbol)
	require.NoError(t, err)

	// Snap to the chart's right edge, 20 units in. Default frame is
	// 800x600 centered on the origin.
	require.NoError(t, m.SetMapping(el.ID, "x", chart.Mapping{
		Type:            chart.MappingParent,
		ParentAttribute: "x2",
		Offset:          -20,
	}))
	require.InDelta(t, 380, m.State().Elements[el.ID].Attributes.Number("x"), 1e-3)
}

func TestSolve_UpdatedAttributeSticks(t *testing.T) {
	m := chart.NewManager(fixture())
	el, err := m.AddElement(chart.ClassLegend)
	require.NoError(t, err)

	require.NoError(t, m.UpdateElementAttribute(el.ID, "x", chart.NumberValue(500)))
	require.NoError(t, m.Resolve())
	require.InDelta(t, 500, m.State().Elements[el.ID].Attributes.Number("x"), 1e-3)
}

// ------------------------------------------------------------------------
// 4. Idempotence and failure reporting.
// ------------------------------------------------------------------------

func TestSolve_RepeatedResolveIsIdempotent(t *testing.T) {
	m, _, mark, ps := barChart(t)
	require.NoError(t, m.BindDataToAxis(ps.ID, "x", "city", dataset.KindCategorical))
	require.NoError(t, m.MapData(mark.ID, "height", "amount", dataset.KindNumerical, 0, 100))

	capture := func() []float64 {
		st := m.State().Elements[ps.ID]
		var out []float64
		for _, gs := range st.Glyphs {
			out = append(out,
				gs.Attributes.Number("x"),
				gs.Attributes.Number("y"),
				gs.Marks[mark.ID].Number("height"),
				gs.Marks[mark.ID].Number("cx"))
		}
		return out
	}

	first := capture()
	require.NoError(t, m.Resolve())
	require.Equal(t, first, capture())
}

func TestSolve_ContradictorySnapsReportFailure(t *testing.T) {
	m := chart.NewManager(fixture())
	a, err := m.AddElement(chart.ClassRect)
	require.NoError(t, err)
	b, err := m.AddElement(chart.ClassRect)
	require.NoError(t, err)

	require.NoError(t, m.SetMapping(a.ID, "x1", chart.Mapping{Type: chart.MappingValue, Value: 0}))
	require.NoError(t, m.SetMapping(b.ID, "x2", chart.Mapping{Type: chart.MappingValue, Value: 100}))
	// a.x1 is pinned at 0 yet snapped to b.x2 + 8: impossible.
	require.NoError(t, m.AddSnapConstraint(a.ID, "x1", b.ID, "x2", 8))

	require.NotEmpty(t, m.LastFailures())
}

// ------------------------------------------------------------------------
// 5. Links.
// ------------------------------------------------------------------------

func TestSolve_LinksCollectGlyphAnchors(t *testing.T) {
	m, _, _, ps := barChart(t)
	require.NoError(t, m.BindDataToAxis(ps.ID, "x", "city", dataset.KindCategorical))

	links, err := m.AddElement(chart.ClassLinks)
	require.NoError(t, err)
	links.Properties["plotSegment"] = ps.ID
	require.NoError(t, m.Resolve())

	anchors := m.State().Elements[links.ID].Attributes["anchors"].Vec
	require.Len(t, anchors, 6) // x, y per glyph
	require.InDelta(t, -180, anchors[0], 1e-3)
	require.InDelta(t, 0, anchors[2], 1e-3)
	require.InDelta(t, 180, anchors[4], 1e-3)
}

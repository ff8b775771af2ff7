package chart_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vizsolve/vizsolve/chart"
	"github.com/vizsolve/vizsolve/dataset"
)

// richChart builds a chart exercising every serialized shape: glyph,
// marks, plot segment with axis and filter, scale mappings, a snap
// constraint and a legend.
func richChart(t *testing.T) *chart.Manager {
	t.Helper()
	m, _, mark, ps := barChart(t)

	require.NoError(t, m.BindDataToAxis(ps.ID, "x", "city", dataset.KindCategorical))
	require.NoError(t, m.MapData(mark.ID, "height", "amount", dataset.KindNumerical, 0, 100))
	require.NoError(t, m.MapData(mark.ID, "fill", "city", dataset.KindCategorical, 0, 0))
	require.NoError(t, m.SetFilter(ps.ID, `city != "c"`))

	legend, err := m.AddElement(chart.ClassLegend)
	require.NoError(t, err)
	require.NoError(t, m.AddSnapConstraint(legend.ID, "x", ps.ID, "x2", 20))

	return m
}

func TestSerialize_JSONRoundTrip(t *testing.T) {
	m := richChart(t)
	doc, err := m.SaveJSON()
	require.NoError(t, err)

	loaded, err := chart.LoadJSON(fixture(), doc)
	require.NoError(t, err)

	again, err := loaded.SaveJSON()
	require.NoError(t, err)
	require.JSONEq(t, string(doc), string(again))
}

func TestSerialize_YAMLRoundTrip(t *testing.T) {
	m := richChart(t)
	doc, err := m.SaveYAML()
	require.NoError(t, err)

	loaded, err := chart.LoadYAML(fixture(), doc)
	require.NoError(t, err)

	again, err := loaded.SaveYAML()
	require.NoError(t, err)
	require.YAMLEq(t, string(doc), string(again))
}

func TestSerialize_LoadRebuildsDerivedState(t *testing.T) {
	m := richChart(t)
	ps := m.Specification().Elements[0]
	want := m.State().Elements[ps.ID]

	doc, err := m.SaveJSON()
	require.NoError(t, err)
	loaded, err := chart.LoadJSON(fixture(), doc)
	require.NoError(t, err)

	got := loaded.State().Elements[ps.ID]
	require.NotNil(t, got)
	require.Len(t, got.Glyphs, len(want.Glyphs))
	for i := range want.Glyphs {
		require.Equal(t, want.Glyphs[i].GroupKey, got.Glyphs[i].GroupKey)
		require.InDelta(t,
			want.Glyphs[i].Attributes.Number("x"),
			got.Glyphs[i].Attributes.Number("x"), 1e-3)
	}

	// Scales arrive with their identity and domain intact.
	require.Len(t, loaded.Scales().All(), len(m.Scales().All()))
	for _, sc := range m.Scales().All() {
		other, err := loaded.Scales().Get(sc.ID)
		require.NoError(t, err)
		require.Equal(t, sc.Categories, other.Categories)
	}
}

func TestSerialize_UnknownClassRejectedOnLoad(t *testing.T) {
	doc := []byte(`{"id":"c1","elements":[{"id":"e1","classId":"mark.hexagon"}]}`)

	_, err := chart.LoadJSON(fixture(), doc)
	require.ErrorIs(t, err, chart.ErrUnknownClass)
}

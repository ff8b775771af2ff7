package chart_test

import (
	"fmt"

	"github.com/vizsolve/vizsolve/chart"
	"github.com/vizsolve/vizsolve/dataset"
)

// ExampleNewManager builds a grouped bar-chart scaffold and shows the
// glyph instances a plot-segment derives from its data groups.
func ExampleNewManager() {
	cols := []dataset.Column{
		{Name: "city", Type: dataset.TypeString, Kind: dataset.KindCategorical},
		{Name: "amount", Type: dataset.TypeNumber, Kind: dataset.KindNumerical},
	}
	rows := []dataset.Row{
		{"city": dataset.String("a"), "amount": dataset.Number(10)},
		{"city": dataset.String("a"), "amount": dataset.Number(14)},
		{"city": dataset.String("b"), "amount": dataset.Number(6)},
		{"city": dataset.String("c"), "amount": dataset.Number(5)},
	}
	ds := dataset.NewDataset("demo", dataset.NewTable("sales", cols, rows))

	m := chart.NewManager(ds)
	g, err := m.AddGlyph("sales")
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	if _, err := m.AddGlyphMark(g.ID, chart.ClassRect); err != nil {
		fmt.Println("error:", err)

		return
	}
	ps, err := m.AddPlotSegment(chart.ClassCartesian, g.ID, "sales", &dataset.GroupBy{Column: "city"})
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	st := m.State().Elements[ps.ID]
	fmt.Println("glyphs:", len(st.Glyphs))
	for _, gs := range st.Glyphs {
		fmt.Println(gs.Rows)
	}
	// Output:
	// glyphs: 3
	// [0 1]
	// [2]
	// [3]
}

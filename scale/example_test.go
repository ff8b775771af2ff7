package scale_test

import (
	"fmt"

	"github.com/vizsolve/vizsolve/dataset"
	"github.com/vizsolve/vizsolve/scale"
)

// ExampleInferencer_Infer infers a categorical position scale from a
// column and maps a category onto a pixel range.
func ExampleInferencer_Infer() {
	cols := []dataset.Column{
		{Name: "city", Type: dataset.TypeString, Kind: dataset.KindCategorical},
	}
	rows := []dataset.Row{
		{"city": dataset.String("a")},
		{"city": dataset.String("a")},
		{"city": dataset.String("b")},
	}
	ds := dataset.NewDataset("demo", dataset.NewTable("sales", cols, rows))

	inf := scale.NewInferencer(ds, scale.NewRegistry())
	sc, err := inf.Infer(scale.Request{
		Table:       "sales",
		Expressions: []string{"city"},
		Kind:        dataset.KindCategorical,
		Role:        scale.RolePosition,
	})
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	fmt.Println(sc.Kind, sc.Categories)
	x, err := sc.Map(dataset.String("a"), 0, 100)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	fmt.Println(x)
	// Output:
	// categorical [a b]
	// 25
}

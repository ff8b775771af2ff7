package expr_test

import (
	"fmt"

	"github.com/vizsolve/vizsolve/dataset"
	"github.com/vizsolve/vizsolve/expr"
)

// exampleTable builds a two-row sales group for the examples.
func exampleTable() *dataset.Table {
	cols := []dataset.Column{
		{Name: "city", Type: dataset.TypeString, Kind: dataset.KindCategorical},
		{Name: "amount", Type: dataset.TypeNumber, Kind: dataset.KindNumerical},
	}
	rows := []dataset.Row{
		{"city": dataset.String("a"), "amount": dataset.Number(10)},
		{"city": dataset.String("a"), "amount": dataset.Number(14)},
	}

	return dataset.NewTable("sales", cols, rows)
}

// ExampleParse compiles an aggregate expression and evaluates it over a
// row group.
func ExampleParse() {
	t := exampleTable()

	e, err := expr.Parse("avg(amount) * 2")
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	v, err := e.Eval(t.GroupContext([]int{0, 1}))
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	fmt.Println(e)
	fmt.Println(v.AsString())
	// Output:
	// (avg(amount) * 2)
	// 24
}

// ExampleParseTemplate renders a label template with a numeric format.
func ExampleParseTemplate() {
	t := exampleTable()

	tpl, err := expr.ParseTemplate("${city}: ${avg(amount):.1f}")
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	s, err := tpl.Eval(t.GroupContext([]int{0, 1}))
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	fmt.Println(s)
	// Output:
	// a: 12.0
}

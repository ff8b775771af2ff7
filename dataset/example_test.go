package dataset_test

import (
	"fmt"
	"strings"

	"github.com/vizsolve/vizsolve/dataset"
)

// ExampleFromCSV ingests raw CSV and shows the sniffed column metadata.
func ExampleFromCSV() {
	r := strings.NewReader("city,amount\na,10\nb,6\n")

	t, err := dataset.FromCSV("sales", r)
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	fmt.Println(t.Name(), t.Len())
	for _, c := range t.Columns() {
		fmt.Println(c.Name, c.Type, c.Kind)
	}
	// Output:
	// sales 2
	// city string categorical
	// amount number numerical
}

// Package solver_test provides benchmarks for the constraint system,
// sized by the number of chained variables in one connected component.
package solver_test

import (
	"fmt"
	"testing"

	"github.com/vizsolve/vizsolve/solver"
)

// benchSizes are the chain lengths to benchmark.
var benchSizes = []int{16, 64, 256}

// sink defeats dead-code elimination.
var sinkF float64

func BenchmarkSolveChain(b *testing.B) {
	b.ReportAllocs()
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				s := solver.New()
				prev := solver.Var("v0", "x")
				s.AddVariable(prev, 0)
				s.Pin(prev, 0)
				for j := 1; j < n; j++ {
					v := solver.Var(fmt.Sprintf("v%d", j), "x")
					s.AddVariable(v, 0)
					s.AddEquality(v, prev, 1)
					prev = v
				}
				sol, err := s.Solve()
				if err != nil {
					b.Fatal(err)
				}
				sinkF = sol.Values[prev]
			}
		})
	}
}

func BenchmarkSolveIndependentComponents(b *testing.B) {
	b.ReportAllocs()
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				s := solver.New()
				for j := 0; j < n; j++ {
					lo := solver.Var(fmt.Sprintf("e%d", j), "x1")
					hi := solver.Var(fmt.Sprintf("e%d", j), "x2")
					s.AddVariable(lo, 0)
					s.AddVariable(hi, 0)
					s.Pin(lo, float64(j))
					s.AddEquality(hi, lo, 20)
				}
				sol, err := s.Solve()
				if err != nil {
					b.Fatal(err)
				}
				sinkF = sol.Values[solver.Var("e0", "x2")]
			}
		})
	}
}

package solver

import (
	"fmt"
	"math"
	"sort"
)

// System accumulates variables, constraints and hints for one solve pass.
// It is not safe for concurrent use; the chart manager builds and solves
// one System per mutation cycle.
type System struct {
	opts    options
	order   []VarID
	index   map[VarID]int
	initial []float64
	fixed   map[VarID]float64
	rows    []row
	err     error
}

// New returns an empty System.
func New(opts ...Option) *System {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &System{
		opts:  o,
		index: make(map[VarID]int),
		fixed: make(map[VarID]float64),
	}
}

// AddVariable registers v with its initial value. The initial value seeds
// the stabilization pull and is what v keeps if its component fails.
// Re-registering updates the initial value.
func (s *System) AddVariable(v VarID, initial float64) {
	s.checkFinite(initial, "initial value of %s", v)
	if i, ok := s.index[v]; ok {
		s.initial[i] = initial
		return
	}
	s.index[v] = len(s.order)
	s.order = append(s.order, v)
	s.initial = append(s.initial, initial)
}

// ensure registers v with initial 0 when a constraint references it
// before AddVariable.
func (s *System) ensure(v VarID) {
	if _, ok := s.index[v]; !ok {
		s.AddVariable(v, 0)
	}
}

// Fix excludes v from solving; value is authoritative and substitutes
// into every constraint referencing v.
func (s *System) Fix(v VarID, value float64) {
	s.checkFinite(value, "fixed value of %s", v)
	s.ensure(v)
	s.fixed[v] = value
}

// Pin adds the hard equality v = value (a mapping constraint that still
// participates in solving).
func (s *System) Pin(v VarID, value float64) {
	s.checkFinite(value, "pin of %s", v)
	s.ensure(v)
	s.rows = append(s.rows, row{
		terms:    []Term{{Var: v, Coeff: 1}},
		constant: value,
		weight:   weightConstraint,
		hard:     true,
		desc:     fmt.Sprintf("%s = %g", v, value),
	})
}

// AddEquality adds the hard snap relation a = b + gap.
func (s *System) AddEquality(a, b VarID, gap float64) {
	s.checkFinite(gap, "gap of %s = %s", a, b)
	s.ensure(a)
	s.ensure(b)
	s.rows = append(s.rows, row{
		terms:    []Term{{Var: a, Coeff: 1}, {Var: b, Coeff: -1}},
		constant: gap,
		weight:   weightConstraint,
		hard:     true,
		desc:     fmt.Sprintf("%s = %s + %g", a, b, gap),
	})
}

// AddLinear adds the hard relation sum(coeff*var) = constant; element
// classes contribute their intrinsic geometry through this.
func (s *System) AddLinear(terms []Term, constant float64) {
	s.checkFinite(constant, "linear constant")
	for _, t := range terms {
		s.checkFinite(t.Coeff, "coefficient of %s", t.Var)
		s.ensure(t.Var)
	}
	own := make([]Term, len(terms))
	copy(own, terms)
	s.rows = append(s.rows, row{
		terms:    own,
		constant: constant,
		weight:   weightConstraint,
		hard:     true,
		desc:     fmt.Sprintf("linear(%d terms) = %g", len(terms), constant),
	})
}

// AddSoftLinear adds sum(coeff*var) = constant at a hint tier instead of
// hard strength; layout preferences (e.g. default glyph spreading) use
// this so data-driven constraints can override them.
func (s *System) AddSoftLinear(terms []Term, constant float64, strength Strength) {
	s.checkFinite(constant, "soft linear constant")
	for _, t := range terms {
		s.checkFinite(t.Coeff, "coefficient of %s", t.Var)
		s.ensure(t.Var)
	}
	own := make([]Term, len(terms))
	copy(own, terms)
	s.rows = append(s.rows, row{
		terms:    own,
		constant: constant,
		weight:   strength.weight(),
		desc:     fmt.Sprintf("%s linear(%d terms) = %g", strength, len(terms), constant),
	})
}

// Hint injects a presolve value for v at the given strength tier. Hints
// bias under-determined components and never override hard constraints.
func (s *System) Hint(v VarID, value float64, strength Strength) {
	s.checkFinite(value, "hint of %s", v)
	s.ensure(v)
	s.rows = append(s.rows, row{
		terms:    []Term{{Var: v, Coeff: 1}},
		constant: value,
		weight:   strength.weight(),
		desc:     fmt.Sprintf("%s hint %s = %g", strength, v, value),
	})
}

func (s *System) checkFinite(f float64, format string, args ...any) {
	if s.err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
		s.err = fmt.Errorf(format+": %w", append(args, ErrNonFinite)...)
	}
}

// Solve resolves every registered variable. Contradictory hard subgraphs
// fail in isolation: they surface in Solution.Failures while all other
// components resolve normally. The returned error covers only malformed
// input (non-finite values), never unsatisfiability.
func (s *System) Solve() (*Solution, error) {
	if s.err != nil {
		return nil, s.err
	}

	sol := &Solution{Values: make(map[VarID]float64, len(s.order))}
	for v, f := range s.fixed {
		sol.Values[v] = f
	}

	reduced, standalone := s.reduceRows()
	s.checkStandalone(standalone, sol)

	comps := s.components(reduced)
	for _, comp := range comps {
		s.solveComponent(comp, reduced, sol)
	}

	// Variables in no component (free, unconstrained) keep their initial.
	for i, v := range s.order {
		if _, done := sol.Values[v]; !done {
			sol.Values[v] = s.initial[i]
		}
	}

	return sol, nil
}

// reduceRows substitutes fixed variables. Rows left with no free terms
// become standalone satisfiability checks.
func (s *System) reduceRows() (reduced []row, standalone []row) {
	for _, r := range s.rows {
		nr := row{constant: r.constant, weight: r.weight, hard: r.hard, desc: r.desc}
		for _, t := range r.terms {
			if fv, ok := s.fixed[t.Var]; ok {
				nr.constant -= t.Coeff * fv
				continue
			}
			nr.terms = append(nr.terms, t)
		}
		if len(nr.terms) == 0 {
			standalone = append(standalone, nr)
			continue
		}
		reduced = append(reduced, nr)
	}

	return reduced, standalone
}

// checkStandalone flags hard rows that were fully fixed yet violated.
func (s *System) checkStandalone(rows []row, sol *Solution) {
	for _, r := range rows {
		if !r.hard {
			continue
		}
		// All terms were fixed: 0 = constant must hold outright.
		res := math.Abs(r.constant)
		if res > s.opts.tolerance {
			sol.Failures = append(sol.Failures, Failure{
				Residual:   res,
				Constraint: r.desc,
				Err:        fmt.Errorf("%s: %w", r.desc, ErrUnsatisfiable),
			})
		}
	}
}

// components partitions free variables into connected components of the
// constraint graph using union-find (rows join their variables).
func (s *System) components(rows []row) [][]int {
	parent := make([]int, len(s.order))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	for _, r := range rows {
		first := s.index[r.terms[0].Var]
		for _, t := range r.terms[1:] {
			union(first, s.index[t.Var])
		}
	}

	// Collect members per root in registration order; skip fixed vars and
	// singletons with no rows (they keep their initial).
	touched := make(map[int]bool)
	for _, r := range rows {
		for _, t := range r.terms {
			touched[s.index[t.Var]] = true
		}
	}

	groups := make(map[int][]int)
	var roots []int
	for i, v := range s.order {
		if _, isFixed := s.fixed[v]; isFixed || !touched[i] {
			continue
		}
		root := find(i)
		if _, ok := groups[root]; !ok {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], i)
	}
	sort.Ints(roots)

	out := make([][]int, 0, len(roots))
	for _, root := range roots {
		out = append(out, groups[root])
	}

	return out
}

// solveComponent assembles and solves one component's weighted normal
// equations, then verifies its hard rows.
func (s *System) solveComponent(comp []int, rows []row, sol *Solution) {
	local := make(map[int]int, len(comp)) // global var index -> local
	for li, gi := range comp {
		local[gi] = li
	}

	// Rows belonging to this component.
	var mine []row
	for _, r := range rows {
		if _, ok := local[s.index[r.terms[0].Var]]; ok {
			mine = append(mine, r)
		}
	}

	n := len(comp)
	m := make([][]float64, n)
	rhs := make([]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}

	// Normal equations: M += w·aᵀa, rhs += w·a·c per row.
	for _, r := range mine {
		for _, ti := range r.terms {
			i := local[s.index[ti.Var]]
			rhs[i] += r.weight * ti.Coeff * r.constant
			for _, tj := range r.terms {
				j := local[s.index[tj.Var]]
				m[i][j] += r.weight * ti.Coeff * tj.Coeff
			}
		}
	}
	// Stabilization keeps under-determined components non-singular and
	// pulls unresolved directions toward the initial values. Its weight
	// is sized to survive float64 addition onto a hard-row diagonal.
	for li, gi := range comp {
		m[li][li] += weightStabilize
		rhs[li] += weightStabilize * s.initial[gi]
	}

	x, err := gaussianSolve(m, rhs)
	if err != nil {
		s.failComponent(comp, 0, "singular system", sol)
		return
	}

	// Hard-row verification: the component is contradictory when any
	// hard residual exceeds tolerance (relative to the constant scale).
	worst, worstDesc := 0.0, ""
	for _, r := range mine {
		if !r.hard {
			continue
		}
		got := 0.0
		for _, t := range r.terms {
			got += t.Coeff * x[local[s.index[t.Var]]]
		}
		res := math.Abs(got - r.constant)
		if rel := res / math.Max(1, math.Abs(r.constant)); rel > s.opts.tolerance && rel > worst {
			worst, worstDesc = rel, r.desc
		}
	}
	if worstDesc != "" {
		s.failComponent(comp, worst, worstDesc, sol)
		return
	}

	for li, gi := range comp {
		sol.Values[s.order[gi]] = x[li]
	}
}

// failComponent records a Failure and leaves the component's variables
// at their initial values.
func (s *System) failComponent(comp []int, residual float64, desc string, sol *Solution) {
	vars := make([]VarID, len(comp))
	for i, gi := range comp {
		vars[i] = s.order[gi]
		sol.Values[s.order[gi]] = s.initial[gi]
	}
	sol.Failures = append(sol.Failures, Failure{
		Vars:       vars,
		Residual:   residual,
		Constraint: desc,
		Err:        fmt.Errorf("%s: %w", desc, ErrUnsatisfiable),
	})
}

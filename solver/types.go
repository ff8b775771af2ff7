// Package solver: variable identity, strength tiers, and the row model
// shared by the public System API and the numeric kernel.
package solver

// VarID names one solver variable: a resolved attribute of one chart
// state node.
type VarID struct {
	// Element is the owning state node's id ("" for the chart itself by
	// caller convention).
	Element string
	// Attribute is the attribute name within the element.
	Attribute string
}

// Var builds a VarID.
func Var(element, attribute string) VarID {
	return VarID{Element: element, Attribute: attribute}
}

// String renders "element.attribute" for logs and failure reports.
func (v VarID) String() string { return v.Element + "." + v.Attribute }

// Strength tiers establish priority among presolve hints. Hard hints
// hold exactly whenever the hard constraint set allows; Strong hints are
// preferred over Weak when the system is under-determined.
type Strength uint8

const (
	// Hard is the top hint tier.
	Hard Strength = iota
	// Strong beats Weak on under-determined subgraphs.
	Strong
	// Weak is the lowest tier.
	Weak
)

// String returns the canonical lower-case tier name.
func (s Strength) String() string {
	switch s {
	case Hard:
		return "hard"
	case Strong:
		return "strong"
	case Weak:
		return "weak"
	default:
		return "weak"
	}
}

// Squared residual weights per tier. Hard constraints sit far above Hard
// hints so a hint can never drag a constraint off its manifold, and the
// stabilization weight sits far below Weak so hints always beat it.
//
// The ladder must fit float64: stabilization has to survive addition to
// a hard-row diagonal (ulp(1e10) is about 2e-6), or components that are
// under-determined along a pure-hard direction assemble to a singular
// normal matrix.
const (
	weightConstraint = 1e10
	weightHardHint   = 1e6
	weightStrong     = 1e2
	weightWeak       = 1.0
	weightStabilize  = 1e-4
)

func (s Strength) weight() float64 {
	switch s {
	case Hard:
		return weightHardHint
	case Strong:
		return weightStrong
	default:
		return weightWeak
	}
}

// Term is one linear summand: Coeff * Var.
type Term struct {
	Var   VarID
	Coeff float64
}

// row is one weighted equation: sum(terms) = constant.
type row struct {
	terms    []Term
	constant float64
	weight   float64
	// hard rows participate in the post-solve satisfiability check.
	hard bool
	desc string
}

// Solution is the outcome of one Solve pass.
type Solution struct {
	// Values holds every free variable's resolved value plus the fixed
	// variables at their authoritative values.
	Values map[VarID]float64

	// Failures lists components whose hard subgraph was contradictory.
	// Their variables keep the initial values they were registered with.
	Failures []Failure
}

// Failure reports one contradictory component.
type Failure struct {
	// Vars are the component's variables, in registration order.
	Vars []VarID
	// Residual is the worst hard-row violation observed.
	Residual float64
	// Constraint describes the most violated row.
	Constraint string
	// Err is ErrUnsatisfiable (wrapped for context).
	Err error
}

// Package solver resolves chart attribute variables under tiered-strength
// constraints: mapping pins, snap equalities, class-intrinsic linear
// relations, and presolve hints.
//
// Overview:
//
//   - Variables are (element, attribute) pairs. Callers register them with
//     an initial value, then add constraints and hints and call Solve.
//   - Mapping constraints pin a variable to a known value (hard equality),
//     or Fix it outright — a fixed variable is excluded from solving and
//     its value is authoritative.
//   - Snap constraints relate two variables: a = b + gap.
//   - Class-intrinsic constraints are arbitrary linear equations over
//     named attributes, opaque to the solver beyond their terms.
//   - Presolve hints bias under-determined systems toward a preferred
//     solution; tiers {Hard, Strong, Weak} order their priority. A Hard
//     hint holds exactly whenever the hard constraint set allows it.
//
// Failure isolation:
//
//   - The constraint graph is decomposed into connected components and
//     each component solves independently. A contradictory hard subgraph
//     fails only its own component: its variables keep their initial
//     values, every other component still resolves, and the failure is
//     reported in Solution.Failures rather than as a Solve error.
//
// Numeric method:
//
//   - Each component assembles a weighted least-squares system (normal
//     equations over its rows, tier weights HARD ≫ STRONG ≫ WEAK, plus a
//     vanishing stabilization pull toward initial values that keeps the
//     matrix non-singular on under-determined subgraphs) and solves it by
//     Gaussian elimination with partial pivoting.
//   - Solving is deterministic: identical inputs produce identical
//     resolved values, so repeated solves are idempotent.
//
// Error handling (sentinel errors):
//
//   - ErrNonFinite:     a constraint constant or hint is NaN/Inf.
//   - ErrUnsatisfiable: reported per component via Solution.Failures.
//   - ErrSingular:      the numeric kernel met a vanishing pivot.
package solver

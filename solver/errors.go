package solver

import "errors"

// Sentinel errors for the constraint solver.
var (
	// ErrNonFinite indicates a NaN or Inf constant, coefficient or hint.
	ErrNonFinite = errors.New("solver: non-finite value")

	// ErrUnsatisfiable indicates a contradictory hard constraint
	// subgraph; carried by Solution.Failures, never fatal to Solve.
	ErrUnsatisfiable = errors.New("solver: hard constraints unsatisfiable")

	// ErrSingular indicates a vanishing pivot inside the numeric kernel.
	ErrSingular = errors.New("solver: singular system")
)

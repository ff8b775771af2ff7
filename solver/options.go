package solver

// Documented defaults for System construction.
const (
	// DefaultTolerance bounds the hard-row residual accepted as
	// satisfied, relative to max(1, |constant|). It sits above the
	// leakage a hard hint can impose on a hard row (hint weight over
	// constraint weight) so the weight tiers never masquerade as
	// contradictions.
	DefaultTolerance = 1e-3
)

// options carries System configuration; fields are unexported and set
// only through Option constructors.
type options struct {
	tolerance float64
}

func defaultOptions() options {
	return options{tolerance: DefaultTolerance}
}

// Option configures a System before use.
type Option func(*options)

// WithTolerance overrides the hard-constraint satisfiability tolerance.
// Non-positive values panic: a zero tolerance would flag every solution
// as contradictory under floating-point arithmetic (programmer error).
func WithTolerance(tol float64) Option {
	if tol <= 0 {
		panic("solver: WithTolerance requires tol > 0")
	}

	return func(o *options) { o.tolerance = tol }
}

package solver_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vizsolve/vizsolve/solver"
)

// ------------------------------------------------------------------------
// 1. Snap propagation (mapping pin + equality + hints).
// ------------------------------------------------------------------------

func TestSolve_SnapPropagation(t *testing.T) {
	// A.x = B.x + 5 with B.x pinned to 10 must resolve A.x = 15.
	sys := solver.New()
	a, b := solver.Var("A", "x"), solver.Var("B", "x")
	sys.AddVariable(a, 0)
	sys.AddVariable(b, 0)
	sys.AddEquality(a, b, 5)
	sys.Pin(b, 10)

	sol, err := sys.Solve()
	require.NoError(t, err)
	require.Empty(t, sol.Failures)
	require.InDelta(t, 10, sol.Values[b], 1e-6)
	require.InDelta(t, 15, sol.Values[a], 1e-6)
}

func TestSolve_SnapWithWeakHint(t *testing.T) {
	// Without the pin, a WEAK hint B.x = 20 disambiguates: A.x = 25.
	sys := solver.New()
	a, b := solver.Var("A", "x"), solver.Var("B", "x")
	sys.AddVariable(a, 0)
	sys.AddVariable(b, 0)
	sys.AddEquality(a, b, 5)
	sys.Hint(b, 20, solver.Weak)

	sol, err := sys.Solve()
	require.NoError(t, err)
	require.Empty(t, sol.Failures)
	// Stabilization pulls toward the 0 initials a few parts in 1e4.
	require.InDelta(t, 20, sol.Values[b], 1e-2)
	require.InDelta(t, 25, sol.Values[a], 1e-2)
}

func TestSolve_FixedVariableSubstitutes(t *testing.T) {
	// A fixed B.x is excluded from solving but still drives the snap.
	sys := solver.New()
	a, b := solver.Var("A", "x"), solver.Var("B", "x")
	sys.AddVariable(a, 0)
	sys.Fix(b, 10)
	sys.AddEquality(a, b, 5)

	sol, err := sys.Solve()
	require.NoError(t, err)
	require.Empty(t, sol.Failures)
	require.Equal(t, 10.0, sol.Values[b])
	require.InDelta(t, 15, sol.Values[a], 1e-6)
}

// ------------------------------------------------------------------------
// 2. Hint tiers.
// ------------------------------------------------------------------------

func TestSolve_StrongBeatsWeak(t *testing.T) {
	sys := solver.New()
	v := solver.Var("A", "x")
	sys.AddVariable(v, 0)
	sys.Hint(v, 100, solver.Weak)
	sys.Hint(v, 10, solver.Strong)

	sol, err := sys.Solve()
	require.NoError(t, err)
	require.InDelta(t, 10, sol.Values[v], 1.0) // strong dominates
}

func TestSolve_HardHintHoldsExactlyWhenSatisfiable(t *testing.T) {
	sys := solver.New()
	v := solver.Var("A", "x")
	sys.AddVariable(v, 0)
	sys.Hint(v, 42, solver.Hard)
	sys.Hint(v, 7, solver.Strong)

	sol, err := sys.Solve()
	require.NoError(t, err)
	require.Empty(t, sol.Failures)
	require.InDelta(t, 42, sol.Values[v], 1e-2)
}

func TestSolve_HardConstraintBeatsHardHint(t *testing.T) {
	// A hard hint contradicting a hard constraint yields the constraint's
	// value without flagging the component.
	sys := solver.New()
	v := solver.Var("A", "x")
	sys.AddVariable(v, 0)
	sys.Pin(v, 1)
	sys.Hint(v, 2, solver.Hard)

	sol, err := sys.Solve()
	require.NoError(t, err)
	require.Empty(t, sol.Failures)
	require.InDelta(t, 1, sol.Values[v], 1e-3)
}

// ------------------------------------------------------------------------
// 3. Failure isolation per component.
// ------------------------------------------------------------------------

func TestSolve_ContradictionIsIsolated(t *testing.T) {
	sys := solver.New()
	bad := solver.Var("bad", "x")
	good, goodTo := solver.Var("good", "x"), solver.Var("good2", "x")
	sys.AddVariable(bad, 123)
	sys.AddVariable(good, 0)
	sys.AddVariable(goodTo, 0)

	// Contradictory subgraph: x pinned to two values.
	sys.Pin(bad, 1)
	sys.Pin(bad, 2)

	// Healthy independent subgraph.
	sys.Pin(good, 10)
	sys.AddEquality(goodTo, good, 5)

	sol, err := sys.Solve()
	require.NoError(t, err)
	require.Len(t, sol.Failures, 1)
	require.ErrorIs(t, sol.Failures[0].Err, solver.ErrUnsatisfiable)
	require.Equal(t, []solver.VarID{bad}, sol.Failures[0].Vars)

	// The failed component keeps its initial value.
	require.Equal(t, 123.0, sol.Values[bad])
	// The healthy component resolved normally.
	require.InDelta(t, 10, sol.Values[good], 1e-6)
	require.InDelta(t, 15, sol.Values[goodTo], 1e-6)
}

func TestSolve_FixedContradictionIsStandaloneFailure(t *testing.T) {
	// Both snap endpoints fixed with an impossible gap: the row reduces
	// to a constant check and fails without touching any free variable.
	sys := solver.New()
	a, b := solver.Var("A", "x"), solver.Var("B", "x")
	sys.Fix(a, 0)
	sys.Fix(b, 0)
	sys.AddEquality(a, b, 5)

	sol, err := sys.Solve()
	require.NoError(t, err)
	require.Len(t, sol.Failures, 1)
	require.ErrorIs(t, sol.Failures[0].Err, solver.ErrUnsatisfiable)
}

// ------------------------------------------------------------------------
// 4. Under-determined systems and idempotence.
// ------------------------------------------------------------------------

func TestSolve_UnconstrainedKeepsInitial(t *testing.T) {
	sys := solver.New()
	v := solver.Var("A", "x")
	sys.AddVariable(v, 77)

	sol, err := sys.Solve()
	require.NoError(t, err)
	require.Equal(t, 77.0, sol.Values[v])
}

func TestSolve_UnderdeterminedChainStaysNearInitial(t *testing.T) {
	// A = B + 5 with no pins and no hints: infinitely many solutions;
	// stabilization picks the one nearest the initial values.
	sys := solver.New()
	a, b := solver.Var("A", "x"), solver.Var("B", "x")
	sys.AddVariable(a, 0)
	sys.AddVariable(b, 0)
	sys.AddEquality(a, b, 5)

	sol, err := sys.Solve()
	require.NoError(t, err)
	require.Empty(t, sol.Failures)
	require.InDelta(t, 5, sol.Values[a]-sol.Values[b], 1e-6)
	// Nearest point to (0, 0) on the line a = b + 5 is (2.5, -2.5).
	require.InDelta(t, 0, sol.Values[a]+sol.Values[b], 1e-3)
}

func TestSolve_Deterministic(t *testing.T) {
	build := func() *solver.System {
		sys := solver.New()
		for _, el := range []string{"A", "B", "C", "D"} {
			sys.AddVariable(solver.Var(el, "x"), 1)
			sys.AddVariable(solver.Var(el, "y"), 2)
		}
		sys.Pin(solver.Var("A", "x"), 3)
		sys.AddEquality(solver.Var("B", "x"), solver.Var("A", "x"), 7)
		sys.AddEquality(solver.Var("C", "y"), solver.Var("B", "x"), -2)
		sys.Hint(solver.Var("D", "y"), 9, solver.Strong)
		return sys
	}

	first, err := build().Solve()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := build().Solve()
		require.NoError(t, err)
		require.Equal(t, first.Values, again.Values)
	}
}

func TestSolve_LinearIntrinsicConstraint(t *testing.T) {
	// Mark geometry: x1 + x2 - 2*cx = 0 and x2 - x1 = width.
	sys := solver.New()
	x1, x2 := solver.Var("m", "x1"), solver.Var("m", "x2")
	cx, w := solver.Var("m", "cx"), solver.Var("m", "width")
	sys.AddVariable(x1, 0)
	sys.AddVariable(x2, 0)
	sys.AddVariable(cx, 0)
	sys.AddVariable(w, 0)

	sys.Pin(x1, 10)
	sys.Pin(x2, 30)
	sys.AddLinear([]solver.Term{{Var: x1, Coeff: 1}, {Var: x2, Coeff: 1}, {Var: cx, Coeff: -2}}, 0)
	sys.AddLinear([]solver.Term{{Var: x2, Coeff: 1}, {Var: x1, Coeff: -1}, {Var: w, Coeff: -1}}, 0)

	sol, err := sys.Solve()
	require.NoError(t, err)
	require.Empty(t, sol.Failures)
	require.InDelta(t, 20, sol.Values[cx], 1e-6)
	require.InDelta(t, 20, sol.Values[w], 1e-6)
}

func TestSolve_NonFiniteInputIsError(t *testing.T) {
	sys := solver.New()
	sys.Pin(solver.Var("A", "x"), math.NaN())

	_, err := sys.Solve()
	require.ErrorIs(t, err, solver.ErrNonFinite)
}

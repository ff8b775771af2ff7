package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGaussianSolve_Simple(t *testing.T) {
	// 2x + y = 5, x - y = 1  =>  x = 2, y = 1
	m := [][]float64{{2, 1}, {1, -1}}
	b := []float64{5, 1}

	x, err := gaussianSolve(m, b)
	require.NoError(t, err)
	require.InDelta(t, 2, x[0], 1e-12)
	require.InDelta(t, 1, x[1], 1e-12)
}

func TestGaussianSolve_NeedsPivoting(t *testing.T) {
	// Zero in the leading position forces a row swap.
	m := [][]float64{{0, 1}, {1, 0}}
	b := []float64{3, 4}

	x, err := gaussianSolve(m, b)
	require.NoError(t, err)
	require.InDelta(t, 4, x[0], 1e-12)
	require.InDelta(t, 3, x[1], 1e-12)
}

func TestGaussianSolve_Singular(t *testing.T) {
	m := [][]float64{{1, 2}, {2, 4}}
	b := []float64{1, 2}

	_, err := gaussianSolve(m, b)
	require.ErrorIs(t, err, ErrSingular)
}

func TestGaussianSolve_LargerSystem(t *testing.T) {
	// Verify against a known solution x = (1, -2, 3).
	a := [][]float64{
		{4, 1, -1},
		{1, 3, 1},
		{-1, 1, 5},
	}
	want := []float64{1, -2, 3}
	b := make([]float64, 3)
	for i := range a {
		for j := range want {
			b[i] += a[i][j] * want[j]
		}
	}

	x, err := gaussianSolve(a, b)
	require.NoError(t, err)
	for i := range want {
		require.InDelta(t, want[i], x[i], 1e-9)
	}
}

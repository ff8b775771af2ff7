package solver

import "math"

// gaussianSolve solves the dense square system m·x = b in place using
// Gaussian elimination with partial pivoting.
// Returns ErrSingular when a pivot vanishes (the stabilization term makes
// this unreachable for well-formed component systems).
// Time Complexity: O(n³), where n = len(b); Memory: O(n) beyond inputs.
func gaussianSolve(m [][]float64, b []float64) ([]float64, error) {
	n := len(b)

	// Stage 1: Forward elimination with row pivoting.
	for col := 0; col < n; col++ {
		// Select the pivot row: largest |m[row][col]| for row >= col.
		pivot := col
		best := math.Abs(m[col][col])
		for row := col + 1; row < n; row++ {
			if a := math.Abs(m[row][col]); a > best {
				best, pivot = a, row
			}
		}
		if best == 0 {
			return nil, ErrSingular
		}
		if pivot != col {
			m[col], m[pivot] = m[pivot], m[col]
			b[col], b[pivot] = b[pivot], b[col]
		}

		// Eliminate the column below the pivot.
		for row := col + 1; row < n; row++ {
			factor := m[row][col] / m[col][col]
			if factor == 0 {
				continue
			}
			m[row][col] = 0
			for k := col + 1; k < n; k++ {
				m[row][k] -= factor * m[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	// Stage 2: Back substitution.
	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < n; k++ {
			sum -= m[row][k] * x[k]
		}
		x[row] = sum / m[row][row]
	}

	return x, nil
}

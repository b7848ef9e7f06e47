package qp

import (
	"gonum.org/v1/gonum/floats"

	"github.com/aesterlin/qpgraph/gaussian"
)

// stepSize runs the ratio test: given the current assignment x and the
// full search direction p = x* − x, it returns the largest α ∈ [0, 1]
// such that x + α·p stays feasible for every inactive inequality row,
// together with the row that first becomes tight at α (the blocking
// constraint), or the sentinel pair when no row binds.
//
// For each inactive inequality row a·x ≤ b: moving along p changes the
// constraint value at rate a·p. A non-positive rate can never newly
// violate the row. Otherwise the boundary is reached exactly at
// α = (b − a·x)/(a·p), and the minimum over all rows, capped at 1,
// never overshoots the unconstrained optimum.
func (s *Solver) stepSize(ws *workingSet, x, p gaussian.Assignment) (alpha float64, factorIdx, rowIdx int) {
	alpha = 1.0
	factorIdx, rowIdx = noIndex, noIndex
	for _, fi := range s.constraintIdx {
		lf := ws.factor(fi)
		for r := 0; r < lf.Rows(); r++ {
			if lf.Role(r) != gaussian.RowInequality || lf.Active(r) {
				continue
			}
			aTp := rowDot(lf, r, p)
			if aTp <= 0 {
				continue
			}
			aTx := rowDot(lf, r, x)
			cand := (lf.B(r) - aTx) / aTp
			// Strict minimum keeps the first-encountered row on ties; the
			// second clause records a row whose boundary is reached exactly
			// at the full step, which would otherwise go unreported.
			if cand < alpha || (cand == alpha && factorIdx == noIndex) {
				alpha = cand
				factorIdx, rowIdx = fi, r
			}
		}
	}

	return alpha, factorIdx, rowIdx
}

// rowDot accumulates a_row · y over every variable touched by the factor.
func rowDot(lf *gaussian.LinearFactor, r int, y gaussian.Assignment) float64 {
	dot := 0.0
	for _, v := range lf.Vars() {
		dot += floats.Dot(lf.Row(v, r), y[v])
	}

	return dot
}

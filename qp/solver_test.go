// Package qp_test contains unit tests for the active-set driver: the
// textbook bounded-prior program, forced working sets with wrong-sign
// multipliers, mixed equality/inequality factors, and the KKT conditions
// at termination.
package qp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/aesterlin/qpgraph/gaussian"
	"github.com/aesterlin/qpgraph/qp"
)

// row builds a one-row linear factor Σ aᵢ·xᵢ = b over scalar variables.
func row(t *testing.T, coeffs map[gaussian.VarID]float64, b, sigma float64) *gaussian.LinearFactor {
	t.Helper()
	var terms []gaussian.LinearTerm
	for v := gaussian.VarID(0); v < 16; v++ {
		if a, ok := coeffs[v]; ok {
			terms = append(terms, gaussian.LinearTerm{Var: v, A: mat.NewDense(1, 1, []float64{a})})
		}
	}
	lf, err := gaussian.NewLinearFactor(terms, []float64{b}, []float64{sigma})
	require.NoError(t, err)

	return lf
}

// boundedPrior builds min ½(x₁−m₁)² + ½(x₂−m₂)² s.t. x₁+x₂ ≤ bound.
// The inequality factor is always at index 2.
func boundedPrior(t *testing.T, m1, m2, bound float64) (*gaussian.Graph, *gaussian.LinearFactor) {
	t.Helper()
	g := gaussian.NewGraph()
	g.Add(row(t, map[gaussian.VarID]float64{1: 1}, m1, 1))
	g.Add(row(t, map[gaussian.VarID]float64{2: 1}, m2, 1))
	ineq := row(t, map[gaussian.VarID]float64{1: 1, 2: 1}, bound, -1)
	g.Add(ineq)

	return g, ineq
}

// ------------------------------------------------------------------------
// 1. Validation.
// ------------------------------------------------------------------------

func TestNewSolver_NilGraph(t *testing.T) {
	_, err := qp.NewSolver(nil)
	require.ErrorIs(t, err, qp.ErrNilGraph)
}

func TestNewSolver_DimMismatch(t *testing.T) {
	g := gaussian.NewGraph()
	g.Add(row(t, map[gaussian.VarID]float64{1: 1}, 0, 1))
	prior, err := gaussian.NewQuadraticPrior(1, mat.NewDense(2, 2, []float64{1, 0, 0, 1}), []float64{0, 0})
	require.NoError(t, err)
	g.Add(prior)

	_, err = qp.NewSolver(g)
	require.ErrorIs(t, err, gaussian.ErrDimMismatch)
}

func TestWithTolerance_PanicsOnBadValue(t *testing.T) {
	require.PanicsWithValue(t, qp.ErrBadTolerance, func() { qp.WithTolerance(0) })
}

// An initial assignment missing a variable, or carrying one at the
// wrong dimension, is rejected up front.
func TestOptimize_BadInitial(t *testing.T) {
	g, _ := boundedPrior(t, 3, 2, 4)
	s, err := qp.NewSolver(g)
	require.NoError(t, err)

	_, err = s.Optimize(gaussian.Assignment{1: {0}})
	require.ErrorIs(t, err, qp.ErrBadInitial)

	_, err = s.Optimize(gaussian.Assignment{1: {0}, 2: {0, 0}})
	require.ErrorIs(t, err, qp.ErrBadInitial)
}

// ------------------------------------------------------------------------
// 2. Driver scenarios.
// ------------------------------------------------------------------------

// A violated inequality must be hit at the right step fraction and the
// iterate must land on its boundary.
func TestOptimize_BindingConstraint(t *testing.T) {
	g, ineq := boundedPrior(t, 3, 2, 4)
	s, err := qp.NewSolver(g)
	require.NoError(t, err)

	x, err := s.Optimize(gaussian.Assignment{1: {0}, 2: {0}})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, x[1][0], 1e-6)
	assert.InDelta(t, 1.5, x[2][0], 1e-6)

	// The problem graph itself must be untouched by the solve.
	require.False(t, ineq.Active(0))
}

// An unconstrained start strictly inside the feasible region converges
// in a single iteration with no activations.
func TestOptimize_StrictlyFeasibleStart(t *testing.T) {
	g, _ := boundedPrior(t, 3, 2, 10)
	s, err := qp.NewSolver(g, qp.WithMaxIterations(1))
	require.NoError(t, err)

	x, err := s.Optimize(gaussian.Assignment{1: {3}, 2: {2}})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, x[1][0], 1e-6)
	assert.InDelta(t, 2.0, x[2][0], 1e-6)
}

// A force-activated constraint whose multiplier has the wrong sign must
// be deactivated, not accepted as converged.
func TestOptimize_WrongSignMultiplier(t *testing.T) {
	g, ineq := boundedPrior(t, 1, 1, 4)
	require.True(t, ineq.SetActive(0, true))

	s, err := qp.NewSolver(g)
	require.NoError(t, err)

	// At the constrained stationary point (2,2) the multiplier is +1:
	// relaxing the constraint lowers the cost.
	lambdas, err := s.DualLambdas(gaussian.Assignment{1: {2}, 2: {2}})
	require.NoError(t, err)
	require.InDelta(t, 1.0, lambdas[gaussian.VarID(2)][0], 1e-6)
	fi, ri := s.WorstViolation(lambdas)
	require.Equal(t, 2, fi)
	require.Equal(t, 0, ri)

	x, err := s.Optimize(gaussian.Assignment{1: {2}, 2: {2}})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, x[1][0], 1e-6)
	assert.InDelta(t, 1.0, x[2][0], 1e-6)
}

// A factor mixing an equality and an inequality row: the equality stays
// enforced throughout while the inactive inequality row is excluded.
func TestOptimize_MixedFactor(t *testing.T) {
	// min ½(x₁−3)² + ½(x₂−1)² s.t. x₁ = x₂ (hard), x₁+x₂ ≤ 4.
	g := gaussian.NewGraph()
	g.Add(row(t, map[gaussian.VarID]float64{1: 1}, 3, 1))
	g.Add(row(t, map[gaussian.VarID]float64{2: 1}, 1, 1))
	mixed, err := gaussian.NewLinearFactor(
		[]gaussian.LinearTerm{
			{Var: 1, A: mat.NewDense(2, 1, []float64{1, 1})},
			{Var: 2, A: mat.NewDense(2, 1, []float64{-1, 1})},
		},
		[]float64{0, 4},
		[]float64{0, -1},
	)
	require.NoError(t, err)
	g.Add(mixed)

	s, err := qp.NewSolver(g)
	require.NoError(t, err)

	// The mixed factor has no free rows, so it contributes no cost
	// information to the reduced subgraph; the two priors do.
	require.Equal(t, 2, s.CostSubgraph().Len())

	x, err := s.Optimize(gaussian.Assignment{1: {0}, 2: {0}})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, x[1][0], 1e-6)
	assert.InDelta(t, 2.0, x[2][0], 1e-6)
}

// Equality-only problems bypass the active-set machinery entirely.
func TestOptimize_EqualityOnly(t *testing.T) {
	g := gaussian.NewGraph()
	g.Add(row(t, map[gaussian.VarID]float64{1: 1}, 3, 1))
	g.Add(row(t, map[gaussian.VarID]float64{2: 1}, 2, 1))
	g.Add(row(t, map[gaussian.VarID]float64{1: 1, 2: 1}, 4, 0))

	s, err := qp.NewSolver(g)
	require.NoError(t, err)
	x, err := s.Optimize(gaussian.Assignment{1: {0}, 2: {0}})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, x[1][0], 1e-6)
	assert.InDelta(t, 1.5, x[2][0], 1e-6)
}

// ------------------------------------------------------------------------
// 3. Termination properties.
// ------------------------------------------------------------------------

// At convergence every inequality multiplier is ≤ 0 and every binding
// row's primal residual vanishes — the joint KKT check.
func TestOptimize_KKTAtConvergence(t *testing.T) {
	g, ineq := boundedPrior(t, 3, 2, 4)
	s, err := qp.NewSolver(g)
	require.NoError(t, err)
	x, err := s.Optimize(gaussian.Assignment{1: {0}, 2: {0}})
	require.NoError(t, err)

	// Primal: the binding row sits exactly on its boundary, and the
	// point is feasible.
	sum := x[1][0] + x[2][0]
	require.InDelta(t, 4.0, sum, 1e-9)
	require.LessOrEqual(t, sum, 4.0+1e-9)

	// Dual: recompute the multiplier independently with the terminal
	// active set and check its sign.
	require.True(t, ineq.SetActive(0, true))
	defer ineq.SetActive(0, false)
	lambdas, err := s.DualLambdas(x)
	require.NoError(t, err)
	require.LessOrEqual(t, lambdas[gaussian.VarID(2)][0], 1e-9)
	fi, ri := s.WorstViolation(lambdas)
	require.Equal(t, -1, fi)
	require.Equal(t, -1, ri)
}

// Re-optimizing from a converged solution returns the same solution.
func TestOptimize_Idempotent(t *testing.T) {
	g, _ := boundedPrior(t, 3, 2, 4)
	s, err := qp.NewSolver(g)
	require.NoError(t, err)

	x, err := s.Optimize(gaussian.Assignment{1: {0}, 2: {0}})
	require.NoError(t, err)
	again, err := s.Optimize(x)
	require.NoError(t, err)
	require.True(t, x.EqualWithin(again, 1e-9))
}

// Distinct Optimize calls never share working state: a solve that bent
// the working set must not influence a later solve.
func TestOptimize_IndependentCalls(t *testing.T) {
	g, _ := boundedPrior(t, 3, 2, 4)
	s, err := qp.NewSolver(g)
	require.NoError(t, err)

	first, err := s.Optimize(gaussian.Assignment{1: {0}, 2: {0}})
	require.NoError(t, err)
	second, err := s.Optimize(gaussian.Assignment{1: {-7}, 2: {5}})
	require.NoError(t, err)
	require.True(t, first.EqualWithin(second, 1e-6))
}

// Every iterate along the search is feasible: a step is truncated at
// the first boundary it reaches and from then on the activated row
// holds exactly. Truncating the solve after each iteration exposes the
// intermediate iterates.
func TestOptimize_FeasibleIterates(t *testing.T) {
	g, _ := boundedPrior(t, 3, 2, 4)
	start := gaussian.Assignment{1: {0}, 2: {0}}

	for limit := 1; limit <= 3; limit++ {
		s, err := qp.NewSolver(g, qp.WithMaxIterations(limit))
		require.NoError(t, err)

		x, err := s.Optimize(start)
		if limit < 3 {
			require.ErrorIs(t, err, qp.ErrIterationLimit)
		} else {
			require.NoError(t, err)
		}

		// Feasible, and sitting exactly on the boundary the first step
		// activated.
		sum := x[1][0] + x[2][0]
		require.LessOrEqual(t, sum, 4.0+1e-9, "iteration cap %d", limit)
		require.InDelta(t, 4.0, sum, 1e-9, "iteration cap %d", limit)
	}

	// The first iterate is the full step cut at the boundary fraction:
	// from (0,0) toward (3,2) with x₁+x₂ ≤ 4 the cut is at 0.8.
	s, err := qp.NewSolver(g, qp.WithMaxIterations(1))
	require.NoError(t, err)
	x, err := s.Optimize(start)
	require.ErrorIs(t, err, qp.ErrIterationLimit)
	require.InDelta(t, 2.4, x[1][0], 1e-9)
	require.InDelta(t, 1.6, x[2][0], 1e-9)
}

func TestOptimize_IterationLimit(t *testing.T) {
	g, _ := boundedPrior(t, 3, 2, 4)
	s, err := qp.NewSolver(g, qp.WithMaxIterations(1))
	require.NoError(t, err)

	// One iteration is not enough from an infeasible-direction start.
	_, err = s.Optimize(gaussian.Assignment{1: {0}, 2: {0}})
	require.ErrorIs(t, err, qp.ErrIterationLimit)
}

// A working set whose sub-problem is rank-deficient is a hard error.
func TestOptimize_IndeterminateWorkingSet(t *testing.T) {
	// x₂ has no cost and no constraint that determines it.
	g := gaussian.NewGraph()
	g.Add(row(t, map[gaussian.VarID]float64{1: 1}, 3, 1))
	g.Add(row(t, map[gaussian.VarID]float64{2: 1}, 4, -1))

	s, err := qp.NewSolver(g)
	require.NoError(t, err)
	_, err = s.Optimize(gaussian.Assignment{1: {0}, 2: {0}})
	require.ErrorIs(t, err, gaussian.ErrIndeterminate)
}

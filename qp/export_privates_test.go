// Package qp: narrow accessors over private solver state, compiled only
// under test, so the black-box tests in qp_test can exercise the ratio
// test, the dual graph, and the cost-subgraph aggregation directly.
package qp

import "github.com/aesterlin/qpgraph/gaussian"

// CostSubgraph exposes the precomputed quadratic-cost subgraph.
func (s *Solver) CostSubgraph() *gaussian.Graph { return s.costGraph }

// StepSize runs the ratio test against a fresh working copy of the
// problem graph (inheriting the problem's activation state).
func (s *Solver) StepSize(x, p gaussian.Assignment) (alpha float64, factorIdx, rowIdx int) {
	return s.stepSize(newWorkingSet(s.graph), x, p)
}

// DualLambdas builds and solves the dual graph at x against a fresh
// working copy of the problem graph.
func (s *Solver) DualLambdas(x gaussian.Assignment) (gaussian.Assignment, error) {
	return gaussian.Solve(s.buildDualGraph(newWorkingSet(s.graph), x))
}

// WorstViolation exposes the multiplier-scan used to pick the constraint
// to deactivate.
func (s *Solver) WorstViolation(lambdas gaussian.Assignment) (factorIdx, rowIdx int) {
	return s.worstViolation(lambdas)
}

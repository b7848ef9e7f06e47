// Package qp implements an active-set solver for convex quadratic
// programs expressed over gaussian factor graphs.
//
// Overview:
//
//   - The problem is a Gaussian factor graph whose linear factors may
//     carry equality rows (always enforced) and inequality rows a·x ≤ b
//     (enforced only while active). Free rows and quadratic factors form
//     the objective.
//   - Solver precomputes, once per instance, the variable adjacency index
//     of the problem and a reduced quadratic-cost subgraph covering the
//     constrained variables. Both are reused across iterations and across
//     repeated Optimize calls.
//   - Each iteration solves the current working sub-problem. If the
//     solution moved, a ratio test finds the largest feasible fraction of
//     the step and activates the first inequality row that becomes tight.
//     If the solution is stationary, Lagrange multipliers are recovered by
//     building and solving a small dual graph; an active inequality with a
//     strictly positive multiplier is deactivated, and if none exists the
//     point satisfies the KKT conditions and the solve terminates.
//
// Ownership:
//
//	The problem graph passed to NewSolver is treated as immutable. Every
//	Optimize call clones it into a private working copy whose only
//	mutation is row activation, so a single Solver may serve concurrent
//	Optimize calls.
//
// Known limitation:
//
//	There is no anti-cycling guard. A degenerate vertex where several
//	constraints bind simultaneously can in principle alternate
//	activations indefinitely; use WithMaxIterations to bound execution.
//
// Errors (sentinel):
//
//	ErrNilGraph          – NewSolver received a nil graph.
//	ErrIterationLimit    – the iteration cap was reached before convergence.
//	ErrBadTolerance      – WithTolerance received a non-positive value.
//	ErrBadInitial        – Optimize received an assignment that does not
//	                       cover every problem variable.
//	gaussian.ErrIndeterminate – a working or dual sub-problem was rank-
//	                       deficient; the active set is not well-posed.
//
// Example usage:
//
//	s, err := qp.NewSolver(g)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	x, err := s.Optimize(initial)
package qp

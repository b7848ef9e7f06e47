// Package qpgraph solves convex quadratic programs expressed over sparse
// factor graphs — quadratic-cost and linear-constraint relations between
// vector-valued variables, as they arise in robotics and estimation when a
// least-squares solution must be refined under equality and inequality
// constraints.
//
// 🚀 What is qpgraph?
//
//	A small, focused library that brings together:
//		• Gaussian factor graphs: quadratic cost blocks & scalar constraint rows
//		• Row roles: free (weighted cost), equality, inequality — per scalar row
//		• A dense equality-constrained linear solver (KKT system, gonum)
//		• An active-set QP driver with dual-graph multiplier computation
//		  and a feasible-step ratio test
//
// ✨ Why choose qpgraph?
//
//   - Explicit state – row roles and activation flags are orthogonal fields,
//     never an overloaded scale scalar
//   - Safe by construction – the original problem graph is immutable; every
//     Optimize call works on its own cloned working set
//   - Observable – wire in a zerolog.Logger to trace every iteration
//
// Under the hood, everything is organized under two subpackages:
//
//	gaussian/ — factor-graph model, variable adjacency index,
//	            equality-constrained dense solve, row→quadratic conversion
//	qp/       — working-set management, dual graph, ratio test,
//	            active-set driver (Solver.Optimize)
//
// Quick sketch of a solve:
//
//	    min ½‖x₁−3‖² + ½‖x₂−2‖²   s.t.  x₁ + x₂ ≤ 4
//
//	starts at the unconstrained optimum (3,2), hits the constraint at
//	α = 4/5, activates it, and converges on the boundary at (2.5, 1.5).
//
//	go get github.com/aesterlin/qpgraph
package qpgraph

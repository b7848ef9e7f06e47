// Package qp_test provides runnable examples for the active-set solver.
package qp_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/aesterlin/qpgraph/gaussian"
	"github.com/aesterlin/qpgraph/qp"
)

// ExampleSolver_Optimize minimizes ½(x₁−3)² + ½(x₂−2)² subject to
// x₁ + x₂ ≤ 4. The unconstrained optimum (3,2) violates the bound, so
// the solver walks to the boundary, activates the constraint, and
// settles at the constrained optimum (2.5, 1.5).
func ExampleSolver_Optimize() {
	g := gaussian.NewGraph()

	// Free cost rows x₁ = 3 and x₂ = 2, unit sigma.
	one := func(v gaussian.VarID, b float64, sigma float64) *gaussian.LinearFactor {
		lf, err := gaussian.NewLinearFactor(
			[]gaussian.LinearTerm{{Var: v, A: mat.NewDense(1, 1, []float64{1})}},
			[]float64{b}, []float64{sigma},
		)
		if err != nil {
			panic(err)
		}
		return lf
	}
	g.Add(one(1, 3, 1))
	g.Add(one(2, 2, 1))

	// Inequality row x₁ + x₂ ≤ 4 (negative sigma marks an inequality).
	ineq, err := gaussian.NewLinearFactor(
		[]gaussian.LinearTerm{
			{Var: 1, A: mat.NewDense(1, 1, []float64{1})},
			{Var: 2, A: mat.NewDense(1, 1, []float64{1})},
		},
		[]float64{4}, []float64{-1},
	)
	if err != nil {
		panic(err)
	}
	g.Add(ineq)

	s, err := qp.NewSolver(g)
	if err != nil {
		panic(err)
	}
	x, err := s.Optimize(gaussian.Assignment{1: {0}, 2: {0}})
	if err != nil {
		panic(err)
	}

	fmt.Printf("x1=%.2f x2=%.2f\n", x[1][0], x[2][0])
	// Output: x1=2.50 x2=1.50
}

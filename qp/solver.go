package qp

import (
	"fmt"
	"sort"

	"github.com/aesterlin/qpgraph/gaussian"
)

// Solver is the active-set driver for a fixed problem graph. It holds
// the immutable problem plus precomputed structures built once at
// construction: the adjacency index of the full graph, the indices of
// the constrained factors, and the quadratic-cost subgraph covering the
// constrained variables with its own adjacency index.
//
// A Solver is read-only after construction; concurrent Optimize calls
// are safe, each owning its private working copy of the graph.
type Solver struct {
	graph *gaussian.Graph
	dims  map[gaussian.VarID]int

	fullIndex     gaussian.VariableIndex
	constraintIdx []int

	costGraph *gaussian.Graph
	costIndex gaussian.VariableIndex

	opts options
}

// NewSolver validates the problem graph and precomputes the solver's
// index structures. The graph must have consistent variable dimensions
// (ErrDimMismatch otherwise) and is never mutated by the solver.
func NewSolver(g *gaussian.Graph, opts ...Option) (*Solver, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	dims, err := g.Dims()
	if err != nil {
		return nil, err
	}

	s := &Solver{
		graph:     g,
		dims:      dims,
		fullIndex: gaussian.NewVariableIndex(g),
		opts:      defaultOptions(),
	}
	for _, opt := range opts {
		opt(&s.opts)
	}

	// Constrained factors and the variables they touch.
	constrained := make(map[gaussian.VarID]struct{})
	for i := 0; i < g.Len(); i++ {
		lf, ok := g.At(i).(*gaussian.LinearFactor)
		if !ok || !lf.Constrained() {
			continue
		}
		s.constraintIdx = append(s.constraintIdx, i)
		for _, v := range lf.Vars() {
			constrained[v] = struct{}{}
		}
	}

	s.costGraph = costSubgraph(g, s.fullIndex, constrained)
	s.costIndex = gaussian.NewVariableIndex(s.costGraph)

	return s, nil
}

// costSubgraph merges every cost contribution touching a constrained
// variable into a quadratic-only graph. Quadratic factors are included
// as-is; linear factors are converted through their free rows, with zero
// weight on constrained rows; factors with no free rows carry no cost
// information and are dropped.
func costSubgraph(g *gaussian.Graph, index gaussian.VariableIndex, vars map[gaussian.VarID]struct{}) *gaussian.Graph {
	touching := make(map[int]struct{})
	for v := range vars {
		for _, fi := range index.Factors(v) {
			touching[fi] = struct{}{}
		}
	}
	order := make([]int, 0, len(touching))
	for fi := range touching {
		order = append(order, fi)
	}
	sort.Ints(order)

	sub := gaussian.NewGraph()
	for _, fi := range order {
		switch f := g.At(fi).(type) {
		case *gaussian.QuadraticFactor:
			sub.Add(f)
		case *gaussian.LinearFactor:
			if qf, ok := f.Quadratic(); ok {
				sub.Add(qf)
			}
		}
	}

	return sub
}

// Optimize runs the active-set iteration from the given starting
// assignment (which need not be feasible) until a KKT-optimal point is
// reached, and returns the final assignment. The initial assignment
// must cover every problem variable at its dimension (ErrBadInitial
// otherwise). The original problem graph is left untouched; all
// working-set state lives in a private clone.
func (s *Solver) Optimize(initial gaussian.Assignment) (gaussian.Assignment, error) {
	for v, dim := range s.dims {
		if got, ok := initial[v]; !ok || len(got) != dim {
			return nil, fmt.Errorf("%w: variable %d needs dimension %d", ErrBadInitial, v, dim)
		}
	}

	ws := newWorkingSet(s.graph)
	current := initial.Clone()
	for iter := 0; ; iter++ {
		if s.opts.maxIter > 0 && iter >= s.opts.maxIter {
			return current, fmt.Errorf("%w after %d iterations", ErrIterationLimit, iter)
		}
		converged, err := s.iterate(ws, current, iter)
		if err != nil {
			return nil, fmt.Errorf("qp: iteration %d: %w", iter, err)
		}
		if converged {
			s.opts.logger.Debug().Int("iterations", iter+1).Msg("converged")

			return current, nil
		}
	}
}

// iterate advances the active-set search by one step, mutating current
// in place. It reports true when current is KKT-optimal for the problem.
func (s *Solver) iterate(ws *workingSet, current gaussian.Assignment, iter int) (bool, error) {
	next, err := gaussian.Solve(ws.graph)
	if err != nil {
		return false, err
	}

	if next.EqualWithin(current, s.opts.tol) {
		// No progress possible under the current active set: recover the
		// multipliers and look for an inequality worth relaxing.
		lambdas, err := gaussian.Solve(s.buildDualGraph(ws, next))
		if err != nil {
			return false, fmt.Errorf("dual solve: %w", err)
		}
		factorIdx, rowIdx := s.worstViolation(lambdas)
		if !ws.Deactivate(factorIdx, rowIdx) {
			return true, nil
		}
		s.opts.logger.Debug().
			Int("iter", iter).
			Int("factor", factorIdx).
			Int("row", rowIdx).
			Msg("deactivated constraint")

		return false, nil
	}

	// Progress is possible: step as far as feasibility allows and
	// activate the blocking row, if any.
	p := next.Sub(current)
	alpha, factorIdx, rowIdx := s.stepSize(ws, current, p)
	if ws.Activate(factorIdx, rowIdx) {
		s.opts.logger.Debug().
			Int("iter", iter).
			Int("factor", factorIdx).
			Int("row", rowIdx).
			Float64("alpha", alpha).
			Msg("activated blocking constraint")
	}
	current.AddScaled(alpha, p)

	return false, nil
}

package qp

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/aesterlin/qpgraph/gaussian"
)

// buildDualGraph constructs the multiplier system for the current
// working set at the stationary candidate x. Its variables are one
// multiplier vector λₖ per constrained factor k (keyed by k's index in
// the problem graph, one component per scalar row), and its rows encode
// the stationarity condition per constrained variable v:
//
//	Σₖ Aₖᵀ·λₖ = ∇f(v)
//
// where ∇f(v) is the unconstrained gradient of the cost subgraph at x
// and Aₖ is factor k's coefficient block for v. Rows of k that are not
// currently enforced contribute a zero column and receive a unit-weight
// zero prior pinning their multiplier component, keeping the system
// determined.
func (s *Solver) buildDualGraph(ws *workingSet, x gaussian.Assignment) *gaussian.Graph {
	dual := gaussian.NewGraph()

	// Deterministic iteration over the constrained variables.
	vars := make([]gaussian.VarID, 0, len(s.costIndex))
	for v := range s.costIndex {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })

	for _, v := range vars {
		costFactors := s.costIndex.Factors(v)
		if len(costFactors) == 0 {
			continue
		}
		dim := s.costGraph.At(costFactors[0]).Dim(v)

		// ∇f(v) = Σ over cost factors of Σⱼ G_{v,j}·xⱼ − η_v.
		grad := make([]float64, dim)
		for _, fi := range costFactors {
			qf := s.costGraph.At(fi).(*gaussian.QuadraticFactor)
			floats.Add(grad, qf.Gradient(v, x))
		}

		// One λ term per constrained factor touching v. The coefficient
		// is the transpose of the factor's block for v, with columns of
		// not-enforced rows zeroed.
		var terms []gaussian.LinearTerm
		type pinned struct{ factorIdx, rowIdx int }
		var pins []pinned
		for _, fi := range s.fullIndex.Factors(v) {
			lf, ok := s.graph.At(fi).(*gaussian.LinearFactor)
			if !ok || !lf.Constrained() {
				continue
			}
			m := lf.Rows()
			at := mat.NewDense(dim, m, nil)
			at.Copy(lf.Block(v).T())
			wf := ws.factor(fi)
			for r := 0; r < m; r++ {
				if wf.Enforced(r) {
					continue
				}
				for k := 0; k < dim; k++ {
					at.Set(k, r, 0)
				}
				pins = append(pins, pinned{factorIdx: fi, rowIdx: r})
			}
			terms = append(terms, gaussian.LinearTerm{Var: gaussian.VarID(fi), A: at})
		}
		if len(terms) == 0 {
			continue
		}

		// Exact stationarity rows (sigma 0), or unit-weight rows when the
		// least-squares fallback is requested.
		sigmas := make([]float64, dim)
		if s.opts.lsqDuals {
			for i := range sigmas {
				sigmas[i] = 1
			}
		}
		dual.Add(mustLinearFactor(terms, grad, sigmas))

		// Zero priors on every pinned multiplier component, without which
		// the system would be under-determined.
		for _, p := range pins {
			m := s.graph.At(p.factorIdx).(*gaussian.LinearFactor).Rows()
			j := mat.NewDense(m, m, nil)
			j.Set(p.rowIdx, p.rowIdx, 1)
			prior := []gaussian.LinearTerm{{Var: gaussian.VarID(p.factorIdx), A: j}}
			dual.Add(mustLinearFactor(prior, make([]float64, m), ones(m)))
		}
	}

	return dual
}

// worstViolation scans the original inequality rows for the active
// constraint with the largest strictly positive multiplier — the
// constraint whose relaxation decreases the cost the most. Ties keep the
// first encountered in factor/row order. It returns the sentinel pair
// (noIndex, noIndex) when every multiplier is ≤ 0, i.e. the current
// point is KKT-optimal.
func (s *Solver) worstViolation(lambdas gaussian.Assignment) (factorIdx, rowIdx int) {
	factorIdx, rowIdx = noIndex, noIndex
	maxLambda := 0.0
	for _, fi := range s.constraintIdx {
		lam, ok := lambdas[gaussian.VarID(fi)]
		if !ok {
			continue
		}
		lf := s.graph.At(fi).(*gaussian.LinearFactor)
		for r := 0; r < lf.Rows(); r++ {
			if lf.Role(r) == gaussian.RowInequality && lam[r] > maxLambda {
				factorIdx, rowIdx = fi, r
				maxLambda = lam[r]
			}
		}
	}

	return factorIdx, rowIdx
}

// mustLinearFactor wraps gaussian.NewLinearFactor for internally built
// factors whose shapes are consistent by construction.
func mustLinearFactor(terms []gaussian.LinearTerm, b, sigmas []float64) *gaussian.LinearFactor {
	lf, err := gaussian.NewLinearFactor(terms, b, sigmas)
	if err != nil {
		panic(err)
	}

	return lf
}

func ones(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}

	return w
}

package gaussian

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// RankTol is the relative singular-value cutoff used when eliminating
// enforced rows: singular values below RankTol·σmax are treated as zero.
const RankTol = 1e-9

// residTol bounds the permitted residual of the enforced rows at the
// particular solution; a larger residual means the rows are mutually
// inconsistent (e.g. conflicting equalities).
const residTol = 1e-8

// Solve minimizes the total quadratic cost of g subject to every
// enforced row being satisfied exactly:
//
//	min  Σ quadratic factors + Σ free rows ½(aᵣ·x − bᵣ)²/σᵣ²
//	s.t. aᵣ·x = bᵣ for every enforced row
//
// Inactive inequality rows carry no cost and no constraint.
//
// The enforced rows C·x = d are eliminated first via SVD: a particular
// solution x₀ is computed and the cost is minimized over the nullspace
// of C, so redundant-but-consistent rows are harmless. The reduced
// Hessian is factorized with Cholesky; failure there, or an enforced-row
// residual at x₀ exceeding tolerance, yields ErrIndeterminate.
func Solve(g *Graph) (Assignment, error) {
	dims, err := g.Dims()
	if err != nil {
		return nil, err
	}
	vars := g.Variables()
	if len(vars) == 0 {
		return Assignment{}, nil
	}

	// Variable offsets into the stacked state vector.
	offset := make(map[VarID]int, len(vars))
	n := 0
	for _, v := range vars {
		offset[v] = n
		n += dims[v]
	}

	h := mat.NewDense(n, n, nil)
	eta := make([]float64, n)

	// Enforced rows, gathered as (coefficients, rhs) pairs.
	var cRows [][]float64
	var d []float64

	for i := 0; i < g.Len(); i++ {
		switch f := g.At(i).(type) {
		case *QuadraticFactor:
			accumulateQuadratic(h, eta, f, offset)
		case *LinearFactor:
			for r := 0; r < f.Rows(); r++ {
				switch {
				case f.Enforced(r):
					cRows = append(cRows, scatterRow(f, r, offset, n))
					d = append(d, f.B(r))
				case f.Role(r) == RowFree:
					w := 1.0 / (f.Sigma(r) * f.Sigma(r))
					accumulateWeightedRow(h, eta, scatterRow(f, r, offset, n), f.B(r), w)
				}
			}
		default:
			return nil, fmt.Errorf("factor %d has unsupported type %T: %w", i, f, ErrBadTerm)
		}
	}

	sol, err := solveConstrained(h, eta, cRows, d, n)
	if err != nil {
		return nil, err
	}

	x := make(Assignment, len(vars))
	for _, v := range vars {
		off := offset[v]
		val := make([]float64, dims[v])
		copy(val, sol[off:off+dims[v]])
		x[v] = val
	}

	return x, nil
}

// solveConstrained minimizes ½xᵀHx − ηᵀx subject to C·x = d.
func solveConstrained(h *mat.Dense, eta []float64, cRows [][]float64, d []float64, n int) ([]float64, error) {
	if len(cRows) == 0 {
		return choleskySolve(h, eta, n)
	}

	mc := len(cRows)
	c := mat.NewDense(mc, n, nil)
	for r, row := range cRows {
		c.SetRow(r, row)
	}

	var svd mat.SVD
	if !svd.Factorize(c, mat.SVDFull) {
		return nil, fmt.Errorf("%w: SVD of constraint rows failed", ErrIndeterminate)
	}
	sv := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	rank := 0
	for _, s := range sv {
		if s > RankTol*sv[0] {
			rank++
		}
	}

	// Particular solution x₀ = V·Σ⁺·Uᵀ·d.
	x0 := make([]float64, n)
	for k := 0; k < rank; k++ {
		uk := 0.0
		for r := 0; r < mc; r++ {
			uk += u.At(r, k) * d[r]
		}
		uk /= sv[k]
		for i := 0; i < n; i++ {
			x0[i] += v.At(i, k) * uk
		}
	}

	// The enforced rows must hold at x₀, or they conflict.
	for r := 0; r < mc; r++ {
		resid := -d[r]
		for i := 0; i < n; i++ {
			resid += c.At(r, i) * x0[i]
		}
		if resid > residTol || resid < -residTol {
			return nil, fmt.Errorf("%w: enforced rows are inconsistent (row %d residual %g)", ErrIndeterminate, r, resid)
		}
	}

	// Fully pinned state: nothing left to minimize.
	free := n - rank
	if free == 0 {
		return x0, nil
	}

	// Minimize over the nullspace basis N = V[:, rank:]:
	// (NᵀHN)·z = Nᵀ(η − H·x₀), x = x₀ + N·z.
	nb := mat.NewDense(n, free, nil)
	for i := 0; i < n; i++ {
		for k := 0; k < free; k++ {
			nb.Set(i, k, v.At(i, rank+k))
		}
	}

	var hn, red mat.Dense
	hn.Mul(h, nb)
	red.Mul(nb.T(), &hn)

	rhs := make([]float64, free)
	for k := 0; k < free; k++ {
		acc := 0.0
		for i := 0; i < n; i++ {
			hx := 0.0
			for j := 0; j < n; j++ {
				hx += h.At(i, j) * x0[j]
			}
			acc += nb.At(i, k) * (eta[i] - hx)
		}
		rhs[k] = acc
	}

	z, err := choleskySolve(&red, rhs, free)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for k := 0; k < free; k++ {
			x0[i] += nb.At(i, k) * z[k]
		}
	}

	return x0, nil
}

// choleskySolve solves the symmetric positive-definite system H·x = b.
// A factorization failure means the quadratic cost does not determine
// every remaining degree of freedom.
func choleskySolve(h *mat.Dense, b []float64, n int) ([]float64, error) {
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			// Average the two triangles; assembly keeps them equal up to
			// floating noise.
			sym.SetSym(i, j, 0.5*(h.At(i, j)+h.At(j, i)))
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return nil, fmt.Errorf("%w: reduced Hessian is not positive definite", ErrIndeterminate)
	}
	var sol mat.VecDense
	if err := chol.SolveVecTo(&sol, mat.NewVecDense(n, b)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndeterminate, err)
	}

	out := make([]float64, n)
	copy(out, sol.RawVector().Data)

	return out, nil
}

// accumulateQuadratic adds a quadratic factor's blocks into the global
// Hessian and linear term.
func accumulateQuadratic(h *mat.Dense, eta []float64, f *QuadraticFactor, offset map[VarID]int) {
	vars := f.Vars()
	for _, u := range vars {
		ou := offset[u]
		for _, v := range vars {
			g := f.Info(u, v)
			ov := offset[v]
			r, c := g.Dims()
			for a := 0; a < r; a++ {
				for b := 0; b < c; b++ {
					h.Set(ou+a, ov+b, h.At(ou+a, ov+b)+g.At(a, b))
				}
			}
		}
		for k, e := range f.Linear(u) {
			eta[ou+k] += e
		}
	}
}

// accumulateWeightedRow adds the rank-one update w·aᵀa to the Hessian
// and w·b·a to the linear term for a free cost row.
func accumulateWeightedRow(h *mat.Dense, eta []float64, a []float64, b, w float64) {
	for i, ai := range a {
		if ai == 0 {
			continue
		}
		for j, aj := range a {
			if aj == 0 {
				continue
			}
			h.Set(i, j, h.At(i, j)+w*ai*aj)
		}
		eta[i] += w * b * ai
	}
}

// scatterRow expands row r of a linear factor into a dense length-n
// coefficient vector over the stacked state.
func scatterRow(f *LinearFactor, r int, offset map[VarID]int, n int) []float64 {
	row := make([]float64, n)
	for _, v := range f.Vars() {
		off := offset[v]
		for j, a := range f.Row(v, r) {
			row[off+j] = a
		}
	}

	return row
}

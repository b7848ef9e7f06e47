package gaussian

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"gonum.org/v1/gonum/mat"
)

// LinearTerm pairs a variable with its coefficient block inside a
// LinearFactor. A is m×dim(Var), one row per scalar row of the factor.
type LinearTerm struct {
	Var VarID
	A   *mat.Dense
}

// LinearFactor is a set of m scalar rows aᵣ·x = bᵣ over the factor's
// variables. Each row carries an immutable RowRole derived from the sign
// of its sigma:
//
//	sigma > 0 → RowFree        (weighted cost row, precision 1/σ²)
//	sigma = 0 → RowEquality    (hard constraint, always enforced)
//	sigma < 0 → RowInequality  (aᵣ·x ≤ bᵣ, enforced only while active)
//
// Role and activation are orthogonal: the role never changes after
// construction, while the activation bit of an inequality row is toggled
// by the active-set machinery on working copies of the graph.
type LinearFactor struct {
	vars   []VarID
	pos    map[VarID]int
	dims   []int
	blocks []*mat.Dense

	b      []float64
	sigmas []float64
	roles  []RowRole

	// active marks enforced inequality rows. Equality rows are enforced
	// unconditionally; free rows never are.
	active *bitset.BitSet
}

// NewLinearFactor builds a linear row factor from per-variable terms, a
// right-hand side b, and per-row sigmas. All term blocks must have
// exactly len(b) rows, and len(sigmas) must equal len(b). Row roles are
// derived from sigma signs; inequality rows start inactive.
func NewLinearFactor(terms []LinearTerm, b, sigmas []float64) (*LinearFactor, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("linear factor with no terms: %w", ErrBadTerm)
	}
	m := len(b)
	if m == 0 || len(sigmas) != m {
		return nil, fmt.Errorf("linear factor with %d rows and %d sigmas: %w", m, len(sigmas), ErrBadTerm)
	}

	f := &LinearFactor{
		vars:   make([]VarID, len(terms)),
		pos:    make(map[VarID]int, len(terms)),
		dims:   make([]int, len(terms)),
		blocks: make([]*mat.Dense, len(terms)),
		b:      append([]float64(nil), b...),
		sigmas: append([]float64(nil), sigmas...),
		roles:  make([]RowRole, m),
		active: bitset.New(uint(m)),
	}
	for i, t := range terms {
		if t.A == nil {
			return nil, fmt.Errorf("nil coefficient block for variable %d: %w", t.Var, ErrBadTerm)
		}
		r, c := t.A.Dims()
		if r != m || c == 0 {
			return nil, fmt.Errorf("block for variable %d is %dx%d, want %d rows: %w", t.Var, r, c, m, ErrBadTerm)
		}
		if _, dup := f.pos[t.Var]; dup {
			return nil, fmt.Errorf("variable %d repeated in factor: %w", t.Var, ErrBadTerm)
		}
		f.vars[i] = t.Var
		f.pos[t.Var] = i
		f.dims[i] = c
		f.blocks[i] = mat.DenseCopyOf(t.A)
	}

	for r := 0; r < m; r++ {
		switch s := sigmas[r]; {
		case s > SigmaZeroTol:
			f.roles[r] = RowFree
		case s < -SigmaZeroTol:
			f.roles[r] = RowInequality
		default:
			f.roles[r] = RowEquality
			f.active.Set(uint(r))
		}
	}

	return f, nil
}

// Vars returns the factor's variables in internal order.
func (f *LinearFactor) Vars() []VarID { return f.vars }

// Dim returns the dimension of v within the factor.
func (f *LinearFactor) Dim(v VarID) int { return f.dims[f.pos[v]] }

// Rows returns the number of scalar rows.
func (f *LinearFactor) Rows() int { return len(f.b) }

// B returns the right-hand side of row r.
func (f *LinearFactor) B(r int) float64 { return f.b[r] }

// Sigma returns the sigma of row r as given at construction.
func (f *LinearFactor) Sigma(r int) float64 { return f.sigmas[r] }

// Role returns the immutable role of row r.
func (f *LinearFactor) Role(r int) RowRole { return f.roles[r] }

// Block returns the m×dim(v) coefficient block for v. The returned
// matrix must not be mutated.
func (f *LinearFactor) Block(v VarID) *mat.Dense { return f.blocks[f.pos[v]] }

// Row returns a copy of row r of the coefficient block for v.
func (f *LinearFactor) Row(v VarID, r int) []float64 {
	return mat.Row(nil, r, f.blocks[f.pos[v]])
}

// Constrained reports whether any row is an equality or inequality.
func (f *LinearFactor) Constrained() bool {
	for _, role := range f.roles {
		if role != RowFree {
			return true
		}
	}

	return false
}

// Active reports whether inequality row r is currently active. It is
// true for equality rows and false for free rows, matching Enforced.
func (f *LinearFactor) Active(r int) bool {
	if f.roles[r] == RowFree {
		return false
	}

	return f.active.Test(uint(r))
}

// Enforced reports whether row r is solved as a hard equality in the
// current sub-problem: equality rows always, inequality rows only while
// active, free rows never.
func (f *LinearFactor) Enforced(r int) bool {
	switch f.roles[r] {
	case RowEquality:
		return true
	case RowInequality:
		return f.active.Test(uint(r))
	default:
		return false
	}
}

// SetActive sets the activation of inequality row r and reports whether
// the row is mutable. Equality and free rows are never mutated and
// report false; an inequality row reports true even when it already had
// the requested state.
func (f *LinearFactor) SetActive(r int, on bool) bool {
	if f.roles[r] != RowInequality {
		return false
	}
	f.active.SetTo(uint(r), on)

	return true
}

// clone returns a copy sharing the immutable coefficient data but owning
// an independent activation set.
func (f *LinearFactor) clone() *LinearFactor {
	cp := *f
	cp.active = f.active.Clone()

	return &cp
}

// Quadratic converts the factor's free rows into an equivalent
// QuadraticFactor via the normal equations
//
//	G = AᵀWA,  η = AᵀWb,  c = ½ bᵀWb
//
// with W = diag(1/σᵣ²) over free rows and zero weight on equality and
// inequality rows. The second result is false when the factor has no
// free rows and therefore contributes no cost information.
func (f *LinearFactor) Quadratic() (*QuadraticFactor, bool) {
	weights := make([]float64, f.Rows())
	free := false
	for r := range weights {
		if f.roles[r] == RowFree {
			weights[r] = 1.0 / (f.sigmas[r] * f.sigmas[r])
			free = true
		}
	}
	if !free {
		return nil, false
	}

	blocks := make(map[[2]int]*mat.Dense, len(f.vars)*(len(f.vars)+1)/2)
	linear := make([][]float64, len(f.vars))
	constant := 0.0

	// Weighted blocks: Gᵢⱼ = Σᵣ wᵣ·Aᵢ[r]ᵀAⱼ[r], ηᵢ = Σᵣ wᵣ·bᵣ·Aᵢ[r].
	for i := range f.vars {
		wa := weightRows(f.blocks[i], weights)
		for j := i; j < len(f.vars); j++ {
			g := mat.NewDense(f.dims[i], f.dims[j], nil)
			g.Mul(wa.T(), f.blocks[j])
			blocks[[2]int{i, j}] = g
		}
		eta := mat.NewVecDense(f.dims[i], nil)
		eta.MulVec(wa.T(), mat.NewVecDense(len(f.b), f.b))
		linear[i] = eta.RawVector().Data
	}
	for r, w := range weights {
		constant += 0.5 * w * f.b[r] * f.b[r]
	}

	qf, err := NewQuadraticFactor(f.vars, f.dims, blocks, linear, constant)
	if err != nil {
		// The inputs above are shape-consistent by construction.
		panic(err)
	}

	return qf, true
}

// weightRows returns diag(w)·A without mutating A.
func weightRows(a *mat.Dense, w []float64) *mat.Dense {
	r, c := a.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		if w[i] == 0 {
			continue
		}
		for j := 0; j < c; j++ {
			out.Set(i, j, w[i]*a.At(i, j))
		}
	}

	return out
}

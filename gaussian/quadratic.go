package gaussian

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// QuadraticFactor is a local quadratic cost block
//
//	f(x) = ½ Σᵢⱼ xᵢᵀ Gᵢⱼ xⱼ − Σᵢ ηᵢᵀ xᵢ + c
//
// over the factor's variables x₁…xₙ. Only the upper triangle of the
// block structure (i ≤ j) is stored; Info hides the storage asymmetry
// and returns the correctly oriented block for any query order.
//
// QuadraticFactor is immutable after construction and safe to share
// between graphs.
type QuadraticFactor struct {
	vars []VarID
	pos  map[VarID]int
	dims []int

	// blocks holds Gᵢⱼ for i ≤ j, keyed by block position.
	blocks map[[2]int]*mat.Dense

	// linear holds ηᵢ per variable.
	linear [][]float64

	constant float64
}

// NewQuadraticFactor builds a quadratic factor over vars with the given
// dimensions. blocks maps ordered position pairs (i ≤ j) to information
// blocks Gᵢⱼ of shape dims[i]×dims[j]; missing pairs are treated as zero
// blocks. linear holds one ηᵢ vector per variable (nil means zero).
func NewQuadraticFactor(vars []VarID, dims []int, blocks map[[2]int]*mat.Dense, linear [][]float64, constant float64) (*QuadraticFactor, error) {
	if len(vars) == 0 || len(dims) != len(vars) {
		return nil, fmt.Errorf("quadratic factor over %d vars with %d dims: %w", len(vars), len(dims), ErrBadTerm)
	}
	if linear != nil && len(linear) != len(vars) {
		return nil, fmt.Errorf("quadratic factor with %d linear terms for %d vars: %w", len(linear), len(vars), ErrBadTerm)
	}

	f := &QuadraticFactor{
		vars:     append([]VarID(nil), vars...),
		pos:      make(map[VarID]int, len(vars)),
		dims:     append([]int(nil), dims...),
		blocks:   make(map[[2]int]*mat.Dense, len(vars)*(len(vars)+1)/2),
		linear:   make([][]float64, len(vars)),
		constant: constant,
	}
	for i, v := range vars {
		if dims[i] <= 0 {
			return nil, fmt.Errorf("variable %d with dimension %d: %w", v, dims[i], ErrBadTerm)
		}
		if _, dup := f.pos[v]; dup {
			return nil, fmt.Errorf("variable %d repeated in factor: %w", v, ErrBadTerm)
		}
		f.pos[v] = i
	}

	// Normalize the block structure: every i ≤ j pair gets a block,
	// missing or nil inputs become zero blocks.
	for i := range vars {
		for j := i; j < len(vars); j++ {
			key := [2]int{i, j}
			g, ok := blocks[key]
			if !ok || g == nil {
				f.blocks[key] = mat.NewDense(dims[i], dims[j], nil)
				continue
			}
			r, c := g.Dims()
			if r != dims[i] || c != dims[j] {
				return nil, fmt.Errorf("block (%d,%d) is %dx%d, want %dx%d: %w", i, j, r, c, dims[i], dims[j], ErrBadTerm)
			}
			f.blocks[key] = mat.DenseCopyOf(g)
		}
	}
	for i := range vars {
		f.linear[i] = make([]float64, dims[i])
		if linear != nil && linear[i] != nil {
			if len(linear[i]) != dims[i] {
				return nil, fmt.Errorf("linear term %d has length %d, want %d: %w", i, len(linear[i]), dims[i], ErrBadTerm)
			}
			copy(f.linear[i], linear[i])
		}
	}

	return f, nil
}

// NewQuadraticPrior builds the quadratic factor of a Gaussian prior
// ½(x−mean)ᵀ·lambda·(x−mean) on a single variable, where lambda is the
// information (inverse covariance) matrix.
func NewQuadraticPrior(v VarID, lambda *mat.Dense, mean []float64) (*QuadraticFactor, error) {
	r, c := lambda.Dims()
	if r != c || r != len(mean) {
		return nil, fmt.Errorf("prior on variable %d: lambda %dx%d, mean length %d: %w", v, r, c, len(mean), ErrBadTerm)
	}

	// η = Λ·mean, constant = ½ meanᵀΛmean.
	eta := mat.NewVecDense(r, nil)
	eta.MulVec(lambda, mat.NewVecDense(r, mean))
	constant := 0.5 * mat.Dot(mat.NewVecDense(r, mean), eta)

	return NewQuadraticFactor(
		[]VarID{v},
		[]int{r},
		map[[2]int]*mat.Dense{{0, 0}: lambda},
		[][]float64{eta.RawVector().Data},
		constant,
	)
}

// Vars returns the factor's variables in internal order.
func (f *QuadraticFactor) Vars() []VarID { return f.vars }

// Dim returns the dimension of v within the factor.
func (f *QuadraticFactor) Dim(v VarID) int { return f.dims[f.pos[v]] }

// Constant returns the constant cost term c.
func (f *QuadraticFactor) Constant() float64 { return f.constant }

// Linear returns ηᵤ, the linear term associated with u. The returned
// slice must not be mutated.
func (f *QuadraticFactor) Linear(u VarID) []float64 { return f.linear[f.pos[u]] }

// Info returns the information block Gᵤᵥ oriented dim(u)×dim(v),
// transposing the stored upper-triangular block when u appears after v
// in the factor's internal ordering.
func (f *QuadraticFactor) Info(u, v VarID) mat.Matrix {
	i, j := f.pos[u], f.pos[v]
	if i <= j {
		return f.blocks[[2]int{i, j}]
	}

	return f.blocks[[2]int{j, i}].T()
}

// Gradient returns this factor's contribution to the unconstrained cost
// gradient with respect to u at assignment x:
//
//	∂f/∂u = Σⱼ Gᵤⱼ·xⱼ − ηᵤ
func (f *QuadraticFactor) Gradient(u VarID, x Assignment) []float64 {
	du := f.Dim(u)
	grad := make([]float64, du)

	var acc mat.VecDense
	for _, vj := range f.vars {
		xj := x[vj]
		acc.Reset()
		acc.MulVec(f.Info(u, vj), mat.NewVecDense(len(xj), xj))
		floats.Add(grad, acc.RawVector().Data)
	}
	floats.Sub(grad, f.linear[f.pos[u]])

	return grad
}

// Package gaussian: central types, sentinel errors and numeric policy
// constants for the factor-graph model.
package gaussian

import "errors"

// Sentinel errors for factor-graph construction and solving.
var (
	// ErrDimMismatch indicates that a variable is referenced with
	// inconsistent dimensions across factors — an ill-formed problem.
	ErrDimMismatch = errors.New("gaussian: variable dimension mismatch across factors")

	// ErrIndeterminate indicates that the assembled linear system is
	// singular or rank-deficient and admits no unique solution.
	ErrIndeterminate = errors.New("gaussian: indeterminate system")

	// ErrBadTerm indicates that a factor constructor received malformed
	// input: an empty term list, a nil coefficient block, or blocks with
	// inconsistent row counts.
	ErrBadTerm = errors.New("gaussian: malformed factor term")
)

// SigmaZeroTol is the classification tolerance for row sigmas: a sigma
// within SigmaZeroTol of zero is treated as exactly zero (an equality
// row) regardless of floating sign noise.
const SigmaZeroTol = 1e-9

// VarID identifies a variable in a graph. Variables are fixed at problem
// construction; the solvers never create or destroy them.
type VarID int

// RowRole is the fixed classification of a scalar row of a LinearFactor,
// derived from the sign of the row's sigma at construction time.
type RowRole uint8

const (
	// RowFree marks an ordinary weighted cost row (sigma > 0). Free rows
	// never enter the active-set machinery.
	RowFree RowRole = iota

	// RowEquality marks a hard equality row (sigma == 0), always enforced.
	RowEquality

	// RowInequality marks an inequality row a·x ≤ b (sigma < 0), enforced
	// only while active.
	RowInequality
)

// String returns the human-readable name of the role.
func (r RowRole) String() string {
	switch r {
	case RowFree:
		return "free"
	case RowEquality:
		return "equality"
	case RowInequality:
		return "inequality"
	default:
		return "unknown"
	}
}

// Factor is the common interface of QuadraticFactor and LinearFactor.
type Factor interface {
	// Vars returns the variables this factor touches, in the factor's
	// internal ordering. The returned slice must not be mutated.
	Vars() []VarID

	// Dim returns the dimension of variable v within this factor.
	// Dim panics if v is not touched by the factor.
	Dim(v VarID) int
}

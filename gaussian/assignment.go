package gaussian

import "gonum.org/v1/gonum/floats"

// Assignment maps each variable to its real vector value. An assignment
// must cover exactly the variables of the graph it is used with.
type Assignment map[VarID][]float64

// Clone returns a deep copy of the assignment.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for v, x := range a {
		cp := make([]float64, len(x))
		copy(cp, x)
		out[v] = cp
	}

	return out
}

// EqualWithin reports whether a and b cover the same variables and every
// component pair is equal within tol.
func (a Assignment) EqualWithin(b Assignment, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for v, x := range a {
		y, ok := b[v]
		if !ok || len(x) != len(y) {
			return false
		}
		if !floats.EqualApprox(x, y, tol) {
			return false
		}
	}

	return true
}

// Sub returns the component-wise difference a − b as a new assignment.
// Both assignments must cover the same variables with equal dimensions.
func (a Assignment) Sub(b Assignment) Assignment {
	out := make(Assignment, len(a))
	for v, x := range a {
		d := make([]float64, len(x))
		floats.SubTo(d, x, b[v])
		out[v] = d
	}

	return out
}

// AddScaled updates a in place to a + alpha·p.
func (a Assignment) AddScaled(alpha float64, p Assignment) {
	for v, x := range a {
		floats.AddScaled(x, alpha, p[v])
	}
}

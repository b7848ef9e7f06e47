package gaussian

import (
	"fmt"
	"sort"
)

// Graph is an ordered collection of factors. Factor indices are stable
// for the lifetime of the graph; the index of a factor is its insertion
// position.
type Graph struct {
	factors []Factor
}

// NewGraph returns an empty factor graph.
func NewGraph(factors ...Factor) *Graph {
	return &Graph{factors: factors}
}

// Add appends a factor and returns its index.
func (g *Graph) Add(f Factor) int {
	g.factors = append(g.factors, f)

	return len(g.factors) - 1
}

// Len returns the number of factors.
func (g *Graph) Len() int { return len(g.factors) }

// At returns the factor at index i.
func (g *Graph) At(i int) Factor { return g.factors[i] }

// Clone returns a working copy of the graph. Quadratic factors are
// immutable and shared; linear factors get independent activation state
// so the copy can be mutated by an active-set search without touching
// the original.
func (g *Graph) Clone() *Graph {
	out := &Graph{factors: make([]Factor, len(g.factors))}
	for i, f := range g.factors {
		if lf, ok := f.(*LinearFactor); ok {
			out.factors[i] = lf.clone()
			continue
		}
		out.factors[i] = f
	}

	return out
}

// Dims returns the dimension of every variable referenced by the graph,
// validating that each variable has a consistent dimension across all
// factors that reference it. An inconsistent reference yields
// ErrDimMismatch.
func (g *Graph) Dims() (map[VarID]int, error) {
	dims := make(map[VarID]int)
	for i, f := range g.factors {
		for _, v := range f.Vars() {
			d := f.Dim(v)
			if prev, seen := dims[v]; seen && prev != d {
				return nil, fmt.Errorf("factor %d sees variable %d with dimension %d, expected %d: %w", i, v, d, prev, ErrDimMismatch)
			}
			dims[v] = d
		}
	}

	return dims, nil
}

// Variables returns the graph's variables in ascending id order.
func (g *Graph) Variables() []VarID {
	seen := make(map[VarID]struct{})
	var vars []VarID
	for _, f := range g.factors {
		for _, v := range f.Vars() {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				vars = append(vars, v)
			}
		}
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })

	return vars
}

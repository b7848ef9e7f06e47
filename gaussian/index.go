package gaussian

// VariableIndex maps each variable to the ordered list of indices of the
// factors touching it. It is a pure function of a graph's factor list,
// built once and consulted in O(1) amortized per factor, avoiding full
// graph scans in hot loops.
type VariableIndex map[VarID][]int

// NewVariableIndex builds the adjacency index of g. An empty graph
// yields an empty index.
func NewVariableIndex(g *Graph) VariableIndex {
	idx := make(VariableIndex)
	for i := 0; i < g.Len(); i++ {
		for _, v := range g.At(i).Vars() {
			idx[v] = append(idx[v], i)
		}
	}

	return idx
}

// Factors returns the indices of the factors touching v, in insertion
// order. The returned slice must not be mutated.
func (ix VariableIndex) Factors(v VarID) []int { return ix[v] }

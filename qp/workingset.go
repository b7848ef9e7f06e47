package qp

import "github.com/aesterlin/qpgraph/gaussian"

// workingSet owns the mutable clone of the problem graph for one
// Optimize call. All working-set changes go through Activate and
// Deactivate so the only mutation ever applied to the clone is row
// activation.
type workingSet struct {
	graph *gaussian.Graph
}

func newWorkingSet(original *gaussian.Graph) *workingSet {
	return &workingSet{graph: original.Clone()}
}

// Activate enforces inequality row rowIdx of factor factorIdx as a hard
// equality in subsequent sub-problem solves. It reports false on the
// sentinel "none" indices so callers can distinguish "nothing to do"
// from "did work".
func (w *workingSet) Activate(factorIdx, rowIdx int) bool {
	return w.set(factorIdx, rowIdx, true)
}

// Deactivate excludes inequality row rowIdx of factor factorIdx from
// subsequent sub-problem solves. Sentinel indices report false.
func (w *workingSet) Deactivate(factorIdx, rowIdx int) bool {
	return w.set(factorIdx, rowIdx, false)
}

func (w *workingSet) set(factorIdx, rowIdx int, on bool) bool {
	if factorIdx < 0 || rowIdx < 0 {
		return false
	}
	lf := w.graph.At(factorIdx).(*gaussian.LinearFactor)

	return lf.SetActive(rowIdx, on)
}

// factor returns the working copy of the linear factor at index i.
func (w *workingSet) factor(i int) *gaussian.LinearFactor {
	return w.graph.At(i).(*gaussian.LinearFactor)
}

// Package gaussian provides the factor-graph data model shared by the
// qpgraph solvers: vector-valued variables, quadratic cost factors,
// linear row factors with per-row roles, variable adjacency indexing,
// and a dense equality-constrained linear solver.
//
// Overview:
//
//   - A Graph is an ordered collection of factors over integer-keyed,
//     vector-valued variables. Insertion order is stable and determines
//     factor indices for the lifetime of the graph.
//   - A QuadraticFactor stores a local quadratic cost ½xᵀGx − ηᵀx + c as
//     symmetric information blocks per variable pair. Only the upper
//     triangle of the block structure is stored; Info returns the block
//     in the requested orientation regardless of storage order.
//   - A LinearFactor stores scalar rows a·x = b. Each row carries a fixed
//     RowRole derived from the sign of its sigma (scale): positive sigma
//     is an ordinary weighted cost row, zero is a hard equality, negative
//     is an inequality a·x ≤ b. Inequality rows additionally carry a
//     mutable activation flag used by the active-set machinery.
//   - Solve minimizes the total quadratic cost of a graph subject to
//     every enforced row being satisfied exactly, by assembling and
//     factorizing the dense KKT system.
//
// Row enforcement:
//
//	Equality rows are always enforced. Inequality rows are enforced only
//	while active. Free rows are never enforced; they contribute weighted
//	least-squares cost with precision 1/σ². Inactive inequality rows are
//	excluded from the solved sub-problem entirely.
//
// Errors (sentinel):
//
//	ErrDimMismatch    – a variable has inconsistent dimensions across factors.
//	ErrIndeterminate  – the assembled system is singular or rank-deficient.
//	ErrBadTerm        – a factor constructor received malformed blocks.
//
// All heavy lifting is done with gonum (mat for blocks and the KKT
// factorization, floats for vector kernels).
package gaussian

// Package qp: sentinel errors, tuning constants and functional options
// for the active-set solver.
package qp

import (
	"errors"

	"github.com/rs/zerolog"
)

// Sentinel errors returned by the solver.
var (
	// ErrNilGraph indicates that a nil problem graph was passed to NewSolver.
	ErrNilGraph = errors.New("qp: problem graph is nil")

	// ErrIterationLimit indicates that the configured iteration cap was
	// reached before the active-set search converged.
	ErrIterationLimit = errors.New("qp: iteration limit reached before convergence")

	// ErrBadTolerance indicates that WithTolerance received a value ≤ 0.
	ErrBadTolerance = errors.New("qp: tolerance must be positive")

	// ErrBadInitial indicates that the initial assignment passed to
	// Optimize does not cover every problem variable at its dimension.
	ErrBadInitial = errors.New("qp: initial assignment does not cover the problem variables")
)

// DefaultTolerance is the default threshold under which two consecutive
// sub-problem solutions are considered identical, triggering the dual
// (multiplier) computation instead of a step.
const DefaultTolerance = 1e-5

// noIndex is the sentinel for "no factor/row selected".
const noIndex = -1

// options collects solver configuration, populated by Option values.
type options struct {
	logger   zerolog.Logger
	tol      float64
	maxIter  int
	lsqDuals bool
}

// Option configures a Solver.
type Option func(*options)

// defaultOptions returns the baseline configuration: silent logger,
// DefaultTolerance, unbounded iterations, exact dual solves.
func defaultOptions() options {
	return options{
		logger: zerolog.Nop(),
		tol:    DefaultTolerance,
	}
}

// WithLogger directs per-iteration debug events (step lengths,
// activations, deactivations, convergence) to l. zerolog.Nop() disables
// logging.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTolerance overrides the solution-unchanged tolerance.
// Panics with ErrBadTolerance if tol ≤ 0.
func WithTolerance(tol float64) Option {
	if tol <= 0 {
		panic(ErrBadTolerance)
	}

	return func(o *options) { o.tol = tol }
}

// WithMaxIterations bounds a single Optimize call to at most n
// iterations, after which ErrIterationLimit is returned together with
// the best iterate so far. n ≤ 0 means unbounded (the default).
func WithMaxIterations(n int) Option {
	return func(o *options) { o.maxIter = n }
}

// WithLeastSquareDuals solves the dual graph as an ordinary unit-weight
// least-squares problem instead of an exact equality system. The result
// is not KKT-exact; useful for diagnosing degenerate multiplier systems.
func WithLeastSquareDuals() Option {
	return func(o *options) { o.lsqDuals = true }
}

package mip

import (
	"context"
	"time"
)

// Status is the terminal state of a solve
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	// StatusTimeLimitFeasible means the budget ran out with an incumbent in hand
	StatusTimeLimitFeasible
	StatusInfeasible
	// StatusTimeLimitNoSolution means the budget ran out before any incumbent was found
	StatusTimeLimitNoSolution
	StatusUnbounded
	// StatusNumericalFailure means the relaxations broke down before any incumbent was found
	StatusNumericalFailure
)

// String method for Status enum
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusTimeLimitFeasible:
		return "time_limit_feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusTimeLimitNoSolution:
		return "time_limit_no_solution"
	case StatusUnbounded:
		return "unbounded"
	case StatusNumericalFailure:
		return "numerical_failure"
	default:
		return "unknown"
	}
}

// HasValues reports whether a status carries variable levels
func (s Status) HasValues() bool {
	return s == StatusOptimal || s == StatusTimeLimitFeasible
}

// Solution is what a Solver hands back
type Solution struct {
	Status    Status
	Objective float64

	// Bound is the best proven lower bound on the objective
	Bound   float64
	Values  []float64
	Nodes   int
	Elapsed time.Duration
}

// Value returns the level of a variable, 0 when the solution carries none
func (s *Solution) Value(id VarID) float64 {
	if s == nil || int(id) >= len(s.Values) {
		return 0
	}
	return s.Values[id]
}

// Gap is the relative distance between incumbent and bound
func (s *Solution) Gap() float64 {
	if !s.Status.HasValues() {
		return 0
	}
	den := s.Objective
	if den < 0 {
		den = -den
	}
	if den < 1e-9 {
		den = 1
	}
	g := (s.Objective - s.Bound) / den
	if g < 0 {
		return 0
	}
	return g
}

// Options tune a solve
type Options struct {
	// TimeLimit of zero means no limit beyond the caller's context
	TimeLimit time.Duration
	// MaxNodes of zero means unlimited branch-and-bound nodes
	MaxNodes int
	// IntegralityTol is how far from an integer a level may sit and still count as integral
	IntegralityTol float64
	// RelativeGap stops the search once the incumbent is proven within this fraction of optimal
	RelativeGap float64
}

// DefaultOptions returns conservative tolerances
func DefaultOptions() Options {
	return Options{
		IntegralityTol: 1e-6,
		RelativeGap:    1e-6,
	}
}

// Solver numerically resolves a Model. Infeasibility and time limits are statuses, not errors;
// errors are reserved for malformed models and numerical breakdown.
type Solver interface {
	Solve(ctx context.Context, m *Model, opts Options) (*Solution, error)
}

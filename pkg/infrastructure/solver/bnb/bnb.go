// Package bnb is an in-process branch-and-bound MIP solver. Node relaxations are solved with
// gonum's dense simplex, so it suits small and medium models; large horizons should plug a
// commercial or HiGHS-backed mip.Solver instead. The time budget is honored inside a node
// as well as between nodes: a relaxation still running at the deadline is abandoned.
package bnb

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-logr/logr"

	"github.com/vsinha/wareopt/pkg/infrastructure/logging"
	"github.com/vsinha/wareopt/pkg/mip"
)

// Solver implements mip.Solver with depth-first branch and bound
type Solver struct {
	// LPTolerance is handed to the simplex and used to detect fixed columns
	LPTolerance float64

	relax relaxFunc
}

var _ mip.Solver = (*Solver)(nil)

// NewSolver creates a solver with default tolerances
func NewSolver() *Solver {
	return &Solver{LPTolerance: 1e-10, relax: solveRelaxation}
}

type relaxOutcome struct {
	relax *relaxation
	err   error
}

// relaxNode solves one node relaxation unless the context ends first. gonum's simplex cannot
// be interrupted, so an abandoned relaxation finishes in the background and is discarded.
func (s *Solver) relaxNode(ctx context.Context, m *mip.Model, lo, hi []float64) (*relaxation, error) {
	relax := s.relax
	if relax == nil {
		relax = solveRelaxation
	}
	done := make(chan relaxOutcome, 1)
	go func() {
		r, err := relax(m, lo, hi, s.LPTolerance)
		done <- relaxOutcome{relax: r, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-done:
		return out.relax, out.err
	}
}

type node struct {
	lo, hi []float64
	bound  float64
	depth  int
}

// Solve runs branch and bound until the tree is exhausted, the gap closes, the node budget is
// spent or the context/time limit expires. On expiry the best incumbent is returned with
// StatusTimeLimitFeasible. A numerical breakdown with no incumbent is reported as
// StatusNumericalFailure rather than an error.
func (s *Solver) Solve(ctx context.Context, m *mip.Model, opts mip.Options) (*mip.Solution, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", m.Name, err)
	}
	if opts.IntegralityTol <= 0 {
		opts.IntegralityTol = mip.DefaultOptions().IntegralityTol
	}
	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}
	log := logr.FromContextOrDiscard(ctx).WithValues("model", m.Name)
	start := time.Now()

	n := m.NumVars()
	root := node{lo: make([]float64, n), hi: make([]float64, n), bound: math.Inf(-1)}
	for j, v := range m.Vars() {
		root.lo[j], root.hi[j] = v.Lower, v.Upper
		if v.IsIntegral() {
			root.lo[j] = math.Ceil(v.Lower - opts.IntegralityTol)
			if !math.IsInf(v.Upper, 1) {
				root.hi[j] = math.Floor(v.Upper + opts.IntegralityTol)
			}
		}
	}

	var (
		incumbent    []float64
		incumbentObj = math.Inf(1)
		stack        = []node{root}
		nodes        int
		truncated    bool
		numericSkips int
	)

	for len(stack) > 0 {
		if ctx.Err() != nil || (opts.MaxNodes > 0 && nodes >= opts.MaxNodes) {
			truncated = true
			break
		}
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if nd.bound >= incumbentObj-gapTolerance(incumbentObj, opts.RelativeGap) {
			continue
		}
		nodes++

		relax, err := s.relaxNode(ctx, m, nd.lo, nd.hi)
		if ctx.Err() != nil {
			// the interrupted node stays open so its bound still counts
			stack = append(stack, nd)
			truncated = true
			break
		}
		if err != nil {
			numericSkips++
			if nodes == 1 {
				log.Info("Root relaxation failed", "error", err.Error())
			} else {
				log.V(logging.DEBUG).Info("Skipping node after numerical failure", "depth", nd.depth, "error", err)
			}
			continue
		}
		switch relax.status {
		case relaxInfeasible:
			continue
		case relaxUnbounded:
			if nodes == 1 {
				return &mip.Solution{Status: mip.StatusUnbounded, Nodes: nodes, Elapsed: time.Since(start)}, nil
			}
			continue
		}
		if relax.objective >= incumbentObj-gapTolerance(incumbentObj, opts.RelativeGap) {
			continue
		}

		branchVar, frac := mostFractional(m, relax.values, opts.IntegralityTol)
		if branchVar < 0 {
			incumbent = roundIntegral(m, relax.values)
			incumbentObj = m.Evaluate(incumbent)
			log.V(logging.DEBUG).Info("New incumbent", "objective", incumbentObj, "nodes", nodes, "depth", nd.depth)
			continue
		}

		x := relax.values[branchVar]
		down := node{lo: clone(nd.lo), hi: clone(nd.hi), bound: relax.objective, depth: nd.depth + 1}
		down.hi[branchVar] = math.Floor(x)
		up := node{lo: clone(nd.lo), hi: clone(nd.hi), bound: relax.objective, depth: nd.depth + 1}
		up.lo[branchVar] = math.Ceil(x)

		// the child nearer the relaxed level is explored first
		if frac < 0.5 {
			stack = append(stack, up, down)
		} else {
			stack = append(stack, down, up)
		}
	}

	sol := &mip.Solution{Nodes: nodes, Elapsed: time.Since(start)}
	exhaustive := !truncated && numericSkips == 0
	switch {
	case incumbent == nil && exhaustive:
		sol.Status = mip.StatusInfeasible
	case incumbent == nil && truncated:
		sol.Status = mip.StatusTimeLimitNoSolution
	case incumbent == nil:
		sol.Status = mip.StatusNumericalFailure
	case exhaustive:
		sol.Status = mip.StatusOptimal
	default:
		sol.Status = mip.StatusTimeLimitFeasible
	}

	if incumbent != nil {
		sol.Values = incumbent
		sol.Objective = incumbentObj
		sol.Bound = incumbentObj
		if !exhaustive {
			for _, open := range stack {
				if open.bound < sol.Bound {
					sol.Bound = open.bound
				}
			}
		}
	}
	log.Info("Branch and bound finished",
		"status", sol.Status.String(),
		"objective", sol.Objective,
		"nodes", nodes,
		"elapsed", sol.Elapsed)
	return sol, nil
}

func gapTolerance(incumbent, relGap float64) float64 {
	if math.IsInf(incumbent, 1) {
		return 0
	}
	return math.Max(1e-9, relGap*math.Abs(incumbent))
}

// mostFractional picks the integral variable furthest from an integer level.
// It returns -1 when every integral variable is within tol.
func mostFractional(m *mip.Model, values []float64, tol float64) (mip.VarID, float64) {
	best := mip.VarID(-1)
	bestDist := tol
	bestFrac := 0.0
	for j, v := range m.Vars() {
		if !v.IsIntegral() {
			continue
		}
		x := values[j]
		frac := x - math.Floor(x)
		dist := math.Min(frac, 1-frac)
		if dist > bestDist {
			best, bestDist, bestFrac = mip.VarID(j), dist, frac
		}
	}
	return best, bestFrac
}

func roundIntegral(m *mip.Model, values []float64) []float64 {
	out := clone(values)
	for j, v := range m.Vars() {
		if v.IsIntegral() {
			out[j] = math.Round(out[j])
		}
	}
	return out
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

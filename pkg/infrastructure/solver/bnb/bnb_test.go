package bnb

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/wareopt/pkg/mip"
)

func knapsack() (*mip.Model, []mip.VarID) {
	m := mip.NewModel("knapsack")
	values := []float64{8, 11, 6, 4}
	weights := []float64{5, 7, 4, 3}
	ids := make([]mip.VarID, len(values))
	terms := make([]mip.Term, len(values))
	for i := range values {
		ids[i] = m.NewBinary("x")
		m.AddObjective(ids[i], -values[i])
		terms[i] = mip.Term{Var: ids[i], Coef: weights[i]}
	}
	m.AddConstraint(mip.NewConstraint("capacity", mip.LessOrEqual, 14, terms...))
	return m, ids
}

func TestSolver_LinearProgram(t *testing.T) {
	m := mip.NewModel("lp")
	x := m.NewContinuous("x")
	y := m.NewContinuous("y")
	m.AddObjective(x, -1)
	m.AddObjective(y, -1)
	m.AddConstraint(
		mip.NewConstraint("a", mip.LessOrEqual, 4, mip.Term{Var: x, Coef: 1}, mip.Term{Var: y, Coef: 2}),
		mip.NewConstraint("b", mip.LessOrEqual, 6, mip.Term{Var: x, Coef: 3}, mip.Term{Var: y, Coef: 1}),
	)

	sol, err := NewSolver().Solve(context.Background(), m, mip.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, mip.StatusOptimal, sol.Status)
	assert.InDelta(t, -2.8, sol.Objective, 1e-7)
	assert.InDelta(t, 1.6, sol.Value(x), 1e-7)
	assert.InDelta(t, 1.2, sol.Value(y), 1e-7)
}

func TestSolver_KnapsackNeedsBranching(t *testing.T) {
	m, ids := knapsack()

	sol, err := NewSolver().Solve(context.Background(), m, mip.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, mip.StatusOptimal, sol.Status)
	assert.InDelta(t, -21, sol.Objective, 1e-7)
	assert.Greater(t, sol.Nodes, 1)
	assert.Empty(t, m.Check(sol.Values, 1e-6))

	got := []float64{sol.Value(ids[0]), sol.Value(ids[1]), sol.Value(ids[2]), sol.Value(ids[3])}
	assert.Equal(t, []float64{0, 1, 1, 1}, got)
}

func TestSolver_EqualityAndBounds(t *testing.T) {
	m := mip.NewModel("equality")
	x := m.AddVar("x", mip.Integer, 1, 10)
	y := m.AddVar("y", mip.Continuous, 0.5, 3)
	m.AddObjective(x, 2)
	m.AddObjective(y, 1)
	m.AddConstraint(mip.NewConstraint("sum", mip.Equal, 4.5, mip.Term{Var: x, Coef: 1}, mip.Term{Var: y, Coef: 1}))

	sol, err := NewSolver().Solve(context.Background(), m, mip.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, mip.StatusOptimal, sol.Status)
	// y is capped at 3, so x must cover 1.5 and round up to 2
	assert.InDelta(t, 2, sol.Value(x), 1e-9)
	assert.InDelta(t, 2.5, sol.Value(y), 1e-7)
	assert.InDelta(t, 6.5, sol.Objective, 1e-7)
}

func TestSolver_Infeasible(t *testing.T) {
	t.Run("linear", func(t *testing.T) {
		m := mip.NewModel("lp-infeasible")
		x := m.NewContinuous("x")
		m.AddConstraint(
			mip.NewConstraint("floor", mip.GreaterOrEqual, 2, mip.Term{Var: x, Coef: 1}),
			mip.NewConstraint("ceiling", mip.LessOrEqual, 1, mip.Term{Var: x, Coef: 1}),
		)
		sol, err := NewSolver().Solve(context.Background(), m, mip.DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, mip.StatusInfeasible, sol.Status)
		assert.Nil(t, sol.Values)
	})

	t.Run("integrality", func(t *testing.T) {
		m := mip.NewModel("mip-infeasible")
		a := m.NewBinary("a")
		b := m.NewBinary("b")
		m.AddConstraint(mip.NewConstraint("half", mip.Equal, 1.5, mip.Term{Var: a, Coef: 1}, mip.Term{Var: b, Coef: 1}))
		sol, err := NewSolver().Solve(context.Background(), m, mip.DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, mip.StatusInfeasible, sol.Status)
	})
}

func TestSolver_Unbounded(t *testing.T) {
	m := mip.NewModel("unbounded")
	x := m.NewContinuous("x")
	m.AddObjective(x, -1)
	sol, err := NewSolver().Solve(context.Background(), m, mip.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, mip.StatusUnbounded, sol.Status)
}

func TestSolver_TruncationKeepsIncumbent(t *testing.T) {
	m := mip.NewModel("truncated")
	x := m.NewInteger("x", 10)
	m.AddObjective(x, -1)
	m.AddConstraint(mip.NewConstraint("cap", mip.LessOrEqual, 4, mip.Term{Var: x, Coef: 3}))

	opts := mip.DefaultOptions()
	opts.MaxNodes = 2
	sol, err := NewSolver().Solve(context.Background(), m, opts)
	require.NoError(t, err)
	assert.Equal(t, mip.StatusTimeLimitFeasible, sol.Status)
	assert.InDelta(t, 1, sol.Value(x), 1e-9)
	assert.InDelta(t, -4.0/3.0, sol.Bound, 1e-7)
	assert.Greater(t, sol.Gap(), 0.0)
}

func TestSolver_ExpiredContextHasNoSolution(t *testing.T) {
	m, _ := knapsack()
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	sol, err := NewSolver().Solve(ctx, m, mip.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, mip.StatusTimeLimitNoSolution, sol.Status)
	assert.Zero(t, sol.Nodes)
}

func TestSolver_BalanceChainWithRedundantRow(t *testing.T) {
	const slots = 30
	m := mip.NewModel("chain")
	var prev mip.VarID = -1
	demand := 0.0
	for i := 0; i < slots; i++ {
		d := float64(i%3 + 1)
		demand += d
		order := m.NewInteger(fmt.Sprintf("order_%d", i), 5)
		inv := m.NewContinuous(fmt.Sprintf("inv_%d", i))
		m.AddObjective(order, 1)
		m.AddObjective(inv, 0.1)

		terms := []mip.Term{{Var: inv, Coef: 1}, {Var: order, Coef: -1}}
		if prev >= 0 {
			terms = append(terms, mip.Term{Var: prev, Coef: -1})
		}
		m.AddConstraint(mip.NewConstraint(fmt.Sprintf("balance_%d", i), mip.Equal, -d, terms...))
		if i == slots/2 {
			m.AddConstraint(mip.NewConstraint("balance_again", mip.Equal, -d, terms...))
		}
		prev = inv
	}

	sol, err := NewSolver().Solve(context.Background(), m, mip.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, mip.StatusOptimal, sol.Status)
	assert.InDelta(t, demand, sol.Objective, 1e-6)
	assert.Empty(t, m.Check(sol.Values, 1e-6))
}

func TestSolver_TimeLimitInterruptsRelaxation(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	blocking := func(*mip.Model, []float64, []float64, float64) (*relaxation, error) {
		<-release
		return &relaxation{status: relaxInfeasible}, nil
	}

	t.Run("no incumbent", func(t *testing.T) {
		m, _ := knapsack()
		s := NewSolver()
		s.relax = blocking

		opts := mip.DefaultOptions()
		opts.TimeLimit = 50 * time.Millisecond
		start := time.Now()
		sol, err := s.Solve(context.Background(), m, opts)
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 2*time.Second)
		assert.Equal(t, mip.StatusTimeLimitNoSolution, sol.Status)
		assert.Equal(t, 1, sol.Nodes)
	})

	t.Run("keeps incumbent", func(t *testing.T) {
		m, _ := knapsack()
		var found atomic.Bool
		s := NewSolver()
		s.relax = func(m *mip.Model, lo, hi []float64, tol float64) (*relaxation, error) {
			if found.Load() {
				return blocking(m, lo, hi, tol)
			}
			r, err := solveRelaxation(m, lo, hi, tol)
			if err == nil && r.status == relaxOptimal {
				if v, _ := mostFractional(m, r.values, 1e-6); v < 0 {
					found.Store(true)
				}
			}
			return r, err
		}

		opts := mip.DefaultOptions()
		opts.TimeLimit = 100 * time.Millisecond
		sol, err := s.Solve(context.Background(), m, opts)
		require.NoError(t, err)
		require.Equal(t, mip.StatusTimeLimitFeasible, sol.Status)
		assert.Empty(t, m.Check(sol.Values, 1e-6))
		assert.LessOrEqual(t, sol.Bound, sol.Objective)
	})
}

func TestSolver_RootNumericalFailureIsAStatus(t *testing.T) {
	m, _ := knapsack()
	s := NewSolver()
	s.relax = func(*mip.Model, []float64, []float64, float64) (*relaxation, error) {
		return nil, errors.New("matrix singular")
	}

	sol, err := s.Solve(context.Background(), m, mip.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, mip.StatusNumericalFailure, sol.Status)
	assert.False(t, sol.Status.HasValues())
	assert.Nil(t, sol.Values)
}

func TestSolver_RejectsInvalidModel(t *testing.T) {
	m := mip.NewModel("broken")
	m.AddVar("x", mip.Continuous, 3, 1)
	_, err := NewSolver().Solve(context.Background(), m, mip.DefaultOptions())
	assert.ErrorContains(t, err, "invalid model broken")
}

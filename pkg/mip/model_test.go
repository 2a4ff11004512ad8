package mip

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_BuildAndCheck(t *testing.T) {
	m := NewModel("check")
	x := m.NewContinuous("x")
	y := m.NewInteger("y", 5)
	z := m.NewBinary("z")
	m.AddObjective(x, 1)
	m.AddObjective(y, 2)
	m.AddObjective(y, 1)
	m.AddObjectiveConstant(10)

	m.AddConstraint(
		NewConstraint("cover", GreaterOrEqual, 4, Term{x, 1}, Term{y, 1}, Term{z, 0}),
		NewConstraint("gate", LessOrEqual, 0, Term{y, 1}, Term{z, -5}),
	)

	require.NoError(t, m.Validate())
	assert.Equal(t, 3, m.NumVars())
	assert.Equal(t, 2, m.NumConstraints())
	assert.Len(t, m.Constraints()[0].Terms, 2, "zero coefficient should be dropped")
	assert.Equal(t, 3.0, m.ObjectiveCoef(y))
	assert.Equal(t, 1.0, m.Var(z).Upper)

	good := []float64{1, 3, 1}
	assert.Empty(t, m.Check(good, 1e-9))
	assert.InDelta(t, 20.0, m.Evaluate(good), 1e-12)

	bad := []float64{0, 2.5, 0}
	violations := m.Check(bad, 1e-9)
	names := make([]string, 0, len(violations))
	for _, v := range violations {
		names = append(names, v.Name)
	}
	assert.ElementsMatch(t, []string{"y integrality", "cover", "gate"}, names)
}

func TestModel_ValidateRejectsBadBounds(t *testing.T) {
	m := NewModel("bad")
	m.AddVar("free", Continuous, math.Inf(-1), 1)
	assert.EqualError(t, m.Validate(), "variable free: lower bound must be finite")

	m = NewModel("crossed")
	m.AddVar("x", Continuous, 2, 1)
	assert.EqualError(t, m.Validate(), "variable x: upper bound 1 below lower bound 2")

	m = NewModel("dangling")
	m.AddConstraint(NewConstraint("c", Equal, 0, Term{Var: 3, Coef: 1}))
	assert.EqualError(t, m.Validate(), "constraint c references unknown variable 3")
}

func TestSolution_Gap(t *testing.T) {
	s := &Solution{Status: StatusTimeLimitFeasible, Objective: 110, Bound: 100}
	assert.InDelta(t, 10.0/110.0, s.Gap(), 1e-12)
	assert.Equal(t, 0.0, (&Solution{Status: StatusInfeasible}).Gap())
	assert.Equal(t, 0.0, (*Solution)(nil).Value(0))
	assert.Equal(t, "time_limit_feasible", StatusTimeLimitFeasible.String())
	assert.True(t, StatusOptimal.HasValues())
	assert.False(t, StatusTimeLimitNoSolution.HasValues())
	assert.False(t, StatusNumericalFailure.HasValues())
	assert.Equal(t, "numerical_failure", StatusNumericalFailure.String())
}

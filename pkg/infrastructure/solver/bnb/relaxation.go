package bnb

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/vsinha/wareopt/pkg/mip"
)

type relaxStatus int

const (
	relaxOptimal relaxStatus = iota
	relaxInfeasible
	relaxUnbounded
)

// artificialWeight scales the largest objective coefficient into the price of an artificial column
const artificialWeight = 1e4

// relaxation is the LP solved at one branch-and-bound node
type relaxation struct {
	status    relaxStatus
	values    []float64
	objective float64
}

// relaxFunc solves the LP relaxation of a model under node bounds
type relaxFunc func(m *mip.Model, lo, hi []float64, tol float64) (*relaxation, error)

// standardForm is min cᵀx s.t. Ax = b, x ≥ 0 with b ≥ 0. Columns are laid out as
// structural, then slack, then artificial; basis holds one unit column per row.
type standardForm struct {
	A     *mat.Dense
	b     []float64
	cost  []float64
	basis []int
	art   []int
}

// solveRelaxation drops integrality, applies the node bounds and solves the LP with gonum's simplex.
//
// Fixed columns are substituted out and the remaining ones shifted by their lower bound.
// Inequalities get one slack, equalities none, and finite upper bounds become rows. Rows whose
// slack cannot start basic get an artificial column, so the simplex always starts from an
// identity basis instead of searching for one. Artificials are priced out with a big weight;
// when one survives, a pure phase one decides between infeasibility and a heavier retry.
func solveRelaxation(m *mip.Model, lo, hi []float64, tol float64) (*relaxation, error) {
	n := m.NumVars()
	values := make([]float64, n)
	column := make([]int, n)
	free := make([]int, 0, n)

	for j := 0; j < n; j++ {
		if hi[j] < lo[j]-tol {
			return &relaxation{status: relaxInfeasible}, nil
		}
		values[j] = lo[j]
		if hi[j]-lo[j] <= tol {
			column[j] = -1
			continue
		}
		column[j] = len(free)
		free = append(free, j)
	}

	type row struct {
		coefs map[int]float64
		rhs   float64
		sense mip.Sense
	}
	rows := make([]row, 0, m.NumConstraints()+len(free))
	used := make([]bool, len(free))

	for _, c := range m.Constraints() {
		rhs := c.RHS
		coefs := make(map[int]float64, len(c.Terms))
		for _, t := range c.Terms {
			if col := column[t.Var]; col >= 0 {
				coefs[col] += t.Coef
			}
			rhs -= t.Coef * lo[t.Var]
		}
		for col, v := range coefs {
			if v == 0 {
				delete(coefs, col)
			}
		}
		if len(coefs) == 0 {
			if !constantSatisfied(c.Sense, rhs, tol*math.Max(1, math.Abs(c.RHS))) {
				return &relaxation{status: relaxInfeasible}, nil
			}
			continue
		}
		for col := range coefs {
			used[col] = true
		}
		rows = append(rows, row{coefs: coefs, rhs: rhs, sense: c.Sense})
	}

	for col, j := range free {
		if !math.IsInf(hi[j], 1) {
			rows = append(rows, row{coefs: map[int]float64{col: 1}, rhs: hi[j] - lo[j], sense: mip.LessOrEqual})
			used[col] = true
		}
	}

	// Columns that appear nowhere sit at their lower bound unless they pay to grow.
	active := make([]int, 0, len(free))
	remap := make([]int, len(free))
	for col, j := range free {
		if !used[col] {
			if m.ObjectiveCoef(mip.VarID(j)) < 0 {
				return &relaxation{status: relaxUnbounded}, nil
			}
			remap[col] = -1
			continue
		}
		remap[col] = len(active)
		active = append(active, j)
	}

	if len(rows) == 0 {
		return &relaxation{status: relaxOptimal, values: values, objective: m.Evaluate(values)}, nil
	}

	// slackSign is the slack coefficient after the row is flipped to a non-negative rhs;
	// zero means the row carries no slack.
	slackSign := make([]float64, len(rows))
	nSlack, nArt := 0, 0
	for i, r := range rows {
		flip := 1.0
		if r.rhs < 0 {
			flip = -1
		}
		switch r.sense {
		case mip.LessOrEqual:
			slackSign[i] = flip
		case mip.GreaterOrEqual:
			slackSign[i] = -flip
		}
		if slackSign[i] != 0 {
			nSlack++
		}
		if slackSign[i] <= 0 {
			nArt++
		}
	}

	nStruct := len(active)
	rowsN := len(rows)
	cols := nStruct + nSlack + nArt
	sf := &standardForm{
		A:     mat.NewDense(rowsN, cols, nil),
		b:     make([]float64, rowsN),
		cost:  make([]float64, cols),
		basis: make([]int, rowsN),
		art:   make([]int, 0, nArt),
	}

	maxCost := 1.0
	for k, j := range active {
		sf.cost[k] = m.ObjectiveCoef(mip.VarID(j))
		maxCost = math.Max(maxCost, math.Abs(sf.cost[k]))
	}

	nextSlack, nextArt := nStruct, nStruct+nSlack
	for i, r := range rows {
		flip := 1.0
		if r.rhs < 0 {
			flip = -1
		}
		for col, v := range r.coefs {
			if k := remap[col]; k >= 0 {
				sf.A.Set(i, k, flip*v)
			}
		}
		sf.b[i] = flip * r.rhs
		if slackSign[i] != 0 {
			sf.A.Set(i, nextSlack, slackSign[i])
			if slackSign[i] > 0 {
				sf.basis[i] = nextSlack
			}
			nextSlack++
		}
		if slackSign[i] <= 0 {
			sf.A.Set(i, nextArt, 1)
			sf.basis[i] = nextArt
			sf.art = append(sf.art, nextArt)
			nextArt++
		}
	}

	x, status, err := sf.solve(maxCost*artificialWeight, tol)
	if err != nil {
		return nil, err
	}
	if status != relaxOptimal {
		return &relaxation{status: status}, nil
	}

	for k, j := range active {
		v := lo[j] + x[k]
		if v > hi[j] {
			v = hi[j]
		}
		values[j] = v
	}
	return &relaxation{status: relaxOptimal, values: values, objective: m.Evaluate(values)}, nil
}

// solve runs the big-weight simplex and escalates the weight while artificials survive on a
// feasible program.
func (sf *standardForm) solve(weight, tol float64) ([]float64, relaxStatus, error) {
	feasTol := 1e-7 * math.Max(1, floatsMax(sf.b))

	for attempt := 0; attempt < 3; attempt++ {
		c := append([]float64(nil), sf.cost...)
		for _, k := range sf.art {
			c[k] = weight
		}
		x, err := sf.simplex(c, tol)
		switch {
		case errors.Is(err, lp.ErrUnbounded):
			return nil, relaxUnbounded, nil
		case errors.Is(err, lp.ErrInfeasible):
			return nil, relaxInfeasible, nil
		case err != nil:
			return nil, relaxOptimal, err
		}
		if sf.artificialSum(x) <= feasTol {
			return x, relaxOptimal, nil
		}

		phaseOne := make([]float64, len(sf.cost))
		for _, k := range sf.art {
			phaseOne[k] = 1
		}
		y, err := sf.simplex(phaseOne, tol)
		if err != nil {
			return nil, relaxOptimal, err
		}
		if sf.artificialSum(y) > feasTol {
			return nil, relaxInfeasible, nil
		}
		weight *= 1e3
	}
	return nil, relaxOptimal, fmt.Errorf("artificial columns stay basic on a feasible %d x %d program", len(sf.b), len(sf.cost))
}

func (sf *standardForm) artificialSum(x []float64) float64 {
	sum := 0.0
	for _, k := range sf.art {
		sum += x[k]
	}
	return sum
}

// simplex calls gonum from the identity basis. The dense simplex panics on some degenerate
// inputs; those come back as errors.
func (sf *standardForm) simplex(c []float64, tol float64) (x []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("simplex panicked: %v", r)
		}
	}()
	rows, cols := sf.A.Dims()
	_, x, err = lp.Simplex(c, sf.A, sf.b, tol, append([]int(nil), sf.basis...))
	if err != nil && !errors.Is(err, lp.ErrInfeasible) && !errors.Is(err, lp.ErrUnbounded) {
		return nil, fmt.Errorf("simplex on %d rows x %d columns: %w", rows, cols, err)
	}
	return x, err
}

func floatsMax(v []float64) float64 {
	out := 0.0
	for _, x := range v {
		out = math.Max(out, x)
	}
	return out
}

func constantSatisfied(sense mip.Sense, rhs, tol float64) bool {
	switch sense {
	case mip.LessOrEqual:
		return rhs >= -tol
	case mip.GreaterOrEqual:
		return rhs <= tol
	default:
		return math.Abs(rhs) <= tol
	}
}

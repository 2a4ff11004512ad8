// Package planner assembles the warehouse inventory and logistics program of one scenario,
// hands it to a mip.Solver and reads the plan back out.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/wareopt/pkg/application/dto"
	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/domain/services"
	"github.com/vsinha/wareopt/pkg/infrastructure/logging"
	"github.com/vsinha/wareopt/pkg/mip"
)

// Generator emits one block of constraints. Generators only read the index and the
// variable maps, so any number of them may run at once.
type Generator struct {
	Name string
	Emit func(ix *Index, v *Variables, s entities.Settings) ([]mip.Constraint, error)
}

// Generators lists the constraint blocks in the order they are appended to the model
var Generators = []Generator{
	{Name: "order_split", Emit: OrderLinkConstraints},
	{Name: "balance", Emit: BalanceConstraints},
	{Name: "demand", Emit: DemandConstraints},
	{Name: "coverage", Emit: CoverageConstraints},
	{Name: "packages", Emit: PackageConstraints},
	{Name: "capacity", Emit: CapacityConstraints},
	{Name: "expansion", Emit: ExpansionConstraints},
	{Name: "dispatch", Emit: DispatchConstraints},
}

// Assembly is a fully built program together with the index it was built over
type Assembly struct {
	Model *mip.Model
	Index *Index
	Vars  *Variables
}

// Config tunes the planner
type Config struct {
	// MaxNodes caps branch-and-bound nodes per scenario; 0 leaves it to the solver
	MaxNodes int
	// RelativeGap stops the search once the incumbent is within this fraction of the bound
	RelativeGap float64
}

// Planner validates, assembles, solves and extracts one scenario at a time.
// It holds no per-scenario state and is safe for concurrent use.
type Planner struct {
	solver    mip.Solver
	validator *services.DatasetValidator
	config    Config
}

// NewPlanner creates a planner backed by the given solver
func NewPlanner(solver mip.Solver) *Planner {
	return NewPlannerWithConfig(solver, Config{RelativeGap: mip.DefaultOptions().RelativeGap})
}

// NewPlannerWithConfig creates a planner with custom search limits
func NewPlannerWithConfig(solver mip.Solver, config Config) *Planner {
	return &Planner{
		solver:    solver,
		validator: services.NewDatasetValidator(),
		config:    config,
	}
}

// Assemble builds the program for a dataset and scenario. The inputs are assumed valid.
func Assemble(ctx context.Context, ds *entities.Dataset, sc *entities.Scenario) (*Assembly, error) {
	ix, err := BuildIndex(ds, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	m := mip.NewModel(sc.ID)
	v := DeclareVariables(m, ix, sc.Settings)

	blocks := make([][]mip.Constraint, len(Generators))
	g, _ := errgroup.WithContext(ctx)
	for i, gen := range Generators {
		i, gen := i, gen
		g.Go(func() error {
			rows, err := gen.Emit(ix, v, sc.Settings)
			if err != nil {
				return fmt.Errorf("%s constraints: %w", gen.Name, err)
			}
			blocks[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, rows := range blocks {
		m.AddConstraint(rows...)
	}

	BuildObjective(m, ix, v, sc.Settings)
	return &Assembly{Model: m, Index: ix, Vars: v}, nil
}

// Plan runs one scenario end to end. Malformed input and structural inconsistencies are
// returned as errors before anything is built. Infeasibility and time limits are reported
// through the result status; a result without values carries only the status and stats.
func (p *Planner) Plan(ctx context.Context, ds *entities.Dataset, sc *entities.Scenario) (*dto.PlanResult, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("scenario", sc.ID)

	// Step 1: Validate scenario and dataset
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", services.ErrInputMalformed, err)
	}
	if result := p.validator.ValidateDataset(ds); result.HasErrors() {
		return nil, fmt.Errorf("scenario %s: %w", sc.ID, result.Err())
	}

	// Step 2: Assemble the program
	start := time.Now()
	asm, err := Assemble(ctx, ds, sc)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.ID, err)
	}
	log.V(logging.DEBUG).Info("Model assembled",
		"variables", asm.Model.NumVars(),
		"constraints", asm.Model.NumConstraints(),
		"elapsed", time.Since(start))

	// Step 3: Solve under the scenario's budget
	opts := mip.DefaultOptions()
	opts.TimeLimit = sc.TimeLimit
	opts.MaxNodes = p.config.MaxNodes
	if p.config.RelativeGap > 0 {
		opts.RelativeGap = p.config.RelativeGap
	}
	sol, err := p.solver.Solve(logr.NewContext(ctx, log), asm.Model, opts)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: solve failed: %w", sc.ID, err)
	}
	log.Info("Scenario solved", "status", sol.Status.String(), "objective", sol.Objective, "nodes", sol.Nodes)

	// Step 4: Extract the plan
	if !sol.Status.HasValues() {
		return &dto.PlanResult{
			ScenarioID: sc.ID,
			Status:     sol.Status.String(),
			Nodes:      sol.Nodes,
			SolveTime:  sol.Elapsed,
			ModelStats: modelStats(asm.Model),
		}, nil
	}
	result := Extract(sc, asm.Model, asm.Index, asm.Vars, sol)
	if n := len(result.Shortfalls()); n > 0 {
		log.Info("Dispatches below minimum fill", "count", n, "threshold", sc.Settings.MinUtilization)
	}
	if n := len(result.Blocked); n > 0 {
		log.Info("Dispatches blocked by minimum fill", "count", n, "threshold", sc.Settings.MinUtilization)
	}
	return result, nil
}

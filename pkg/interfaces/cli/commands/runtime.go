// Package commands implements the wareopt subcommands. Each command owns its flags'
// resolved configuration and writes its report to an io.Writer.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/vsinha/wareopt/pkg/application/dto"
	"github.com/vsinha/wareopt/pkg/application/planner"
	"github.com/vsinha/wareopt/pkg/application/scenario"
	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/domain/repositories"
	"github.com/vsinha/wareopt/pkg/infrastructure/events"
	"github.com/vsinha/wareopt/pkg/infrastructure/metrics"
	"github.com/vsinha/wareopt/pkg/infrastructure/repositories/tabular"
	"github.com/vsinha/wareopt/pkg/infrastructure/results"
	"github.com/vsinha/wareopt/pkg/infrastructure/solver/bnb"
	"github.com/vsinha/wareopt/pkg/interfaces/cli/config"
	"github.com/vsinha/wareopt/pkg/interfaces/cli/output"
)

// Command is one wareopt subcommand
type Command interface {
	Execute(ctx context.Context) error
}

// Options are shared by the commands that plan scenarios
type Options struct {
	Config *config.File
	Help   bool
	Out    io.Writer
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o Options) verbose() bool {
	return o.Config.Log.Verbosity > 0
}

func (o Options) outputConfig() output.Config {
	return output.Config{
		Format:    o.Config.Output.Format,
		OutputDir: o.Config.Output.Dir,
		Verbose:   o.verbose(),
		Out:       o.out(),
	}
}

// loadRepositories reads the dataset tables from a workbook or a CSV directory
func loadRepositories(cfg *config.File) (repositories.Set, error) {
	var src tabular.Source
	switch {
	case cfg.Data.Workbook != "":
		wb, err := tabular.OpenWorkbook(cfg.Data.Workbook)
		if err != nil {
			return repositories.Set{}, err
		}
		defer wb.Close()
		src = wb
	case cfg.Data.Dir != "":
		if _, err := os.Stat(cfg.Data.Dir); err != nil {
			return repositories.Set{}, fmt.Errorf("data directory not found: %s", cfg.Data.Dir)
		}
		src = tabular.NewCSVDir(cfg.Data.Dir)
	default:
		return repositories.Set{}, fmt.Errorf("must specify either --data directory or --workbook file")
	}
	return tabular.NewLoader(src, cfg.Calendar).Load()
}

// openStore picks Postgres when a database URL is configured, the result directory otherwise
func openStore(ctx context.Context, cfg *config.File) (scenario.ResultStore, func(), error) {
	if cfg.Results.DatabaseURL != "" {
		pool, err := results.NewPool(ctx, cfg.Results.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store, err := results.NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	}

	store, err := results.NewFileStore(cfg.Results.Dir)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

// batch is one wired run of the scenario runner
type batch struct {
	opts     Options
	store    scenario.ResultStore
	events   *events.InMemoryEventStore
	recorder *metrics.Recorder
	runner   *scenario.Runner
}

func newBatch(ctx context.Context, opts Options, store scenario.ResultStore) *batch {
	cfg := opts.Config
	b := &batch{
		opts:     opts,
		store:    store,
		events:   events.NewInMemoryEventStore(logr.FromContextOrDiscard(ctx)),
		recorder: metrics.NewRecorder(),
	}

	p := planner.NewPlannerWithConfig(bnb.NewSolver(), planner.Config{
		MaxNodes:    cfg.Solver.MaxNodes,
		RelativeGap: cfg.Solver.RelativeGap,
	})
	b.runner = scenario.NewRunner(p, store, b.events, b.recorder, scenario.Config{
		Parallelism: cfg.Runner.Parallelism,
		Force:       cfg.Runner.Force,
	})

	if opts.verbose() {
		types := append([]string{events.DispatchShortfallEvent, events.DemandUnmetEvent}, events.LifecycleEvents...)
		_ = b.events.Subscribe(types, &events.HandlerFunc{Fn: b.printProgress})
	}
	return b
}

func (b *batch) printProgress(event events.Event) error {
	out := b.opts.out()
	switch data := event.Data().(type) {
	case events.ScenarioStarted:
		fmt.Fprintf(out, "🔄 %s: solving (%s utilization)\n", event.StreamID(), data.Policy)
	case events.ScenarioSkipped:
		fmt.Fprintf(out, "⏭️  %s: skipped, %s\n", event.StreamID(), data.Reason)
	case events.ScenarioSolved:
		fmt.Fprintf(out, "✅ %s: %s in %v (objective %.2f)\n", event.StreamID(), data.Status, data.SolveTime, data.Objective)
	case events.ScenarioFailed:
		fmt.Fprintf(out, "❌ %s: %s\n", event.StreamID(), data.Error)
	case events.DispatchShortfall:
		fmt.Fprintf(out, "⚠️  %s: %s → %s at %s filled to %.1f%% (%s binding)\n",
			event.StreamID(), data.Group, data.Facility, data.Slot, data.Utilization, data.Binding)
	case events.DemandUnmet:
		fmt.Fprintf(out, "⚠️  %s: %.0f units of demand unmet (penalty %.2f)\n", event.StreamID(), data.Units, data.Penalty)
	}
	return nil
}

// run solves the scenarios and returns one result per scenario that has one, stored
// results included for skipped scenarios. Failed scenarios are counted, not returned.
func (b *batch) run(ctx context.Context, repos repositories.Set, scenarios []*entities.Scenario) ([]*dto.PlanResult, error) {
	cfg := b.opts.Config
	outcomes, err := b.runner.RunFromRepositories(ctx, repos, cfg.Calendar, scenarios)
	if err != nil {
		return nil, err
	}

	var planned []*dto.PlanResult
	var failures []error
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failures = append(failures, o.Err)
		case o.Skipped:
			result, err := b.store.Load(ctx, o.ScenarioID)
			if err != nil {
				return nil, fmt.Errorf("failed to load stored result for %s: %w", o.ScenarioID, err)
			}
			planned = append(planned, result)
		default:
			planned = append(planned, o.Result)
		}
	}

	if cfg.Results.MetricsFile != "" {
		if err := b.recorder.WriteTextfile(cfg.Results.MetricsFile); err != nil {
			return nil, err
		}
	}

	if len(failures) > 0 {
		return planned, fmt.Errorf("%d of %d scenarios failed: %w", len(failures), len(outcomes), errors.Join(failures...))
	}
	return planned, nil
}

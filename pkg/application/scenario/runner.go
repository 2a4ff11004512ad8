// Package scenario runs batches of scenarios against one dataset, persisting each result
// under its scenario ID so an interrupted sweep can be resumed.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/wareopt/pkg/application/dto"
	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/domain/repositories"
	"github.com/vsinha/wareopt/pkg/infrastructure/events"
	"github.com/vsinha/wareopt/pkg/infrastructure/metrics"
)

// Planner solves one scenario
type Planner interface {
	Plan(ctx context.Context, ds *entities.Dataset, sc *entities.Scenario) (*dto.PlanResult, error)
}

// Config tunes a Runner
type Config struct {
	// Parallelism bounds the scenarios solved at once; values below 1 mean 1
	Parallelism int
	// Force re-solves scenarios that already have a stored result
	Force bool
}

// Outcome is what happened to one scenario of a batch
type Outcome struct {
	ScenarioID string
	Result     *dto.PlanResult
	Skipped    bool
	Err        error
}

// Runner solves scenarios in parallel. Each scenario gets its own model; only the
// read-only dataset is shared.
type Runner struct {
	planner Planner
	store   ResultStore
	events  events.EventStore
	metrics *metrics.Recorder
	config  Config
}

// NewRunner creates a runner. The event store and metrics recorder are optional.
func NewRunner(
	planner Planner,
	store ResultStore,
	eventStore events.EventStore,
	recorder *metrics.Recorder,
	config Config,
) *Runner {
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}
	return &Runner{
		planner: planner,
		store:   store,
		events:  eventStore,
		metrics: recorder,
		config:  config,
	}
}

// RunFromRepositories snapshots the repositories into a dataset and runs the batch
func (r *Runner) RunFromRepositories(
	ctx context.Context,
	repos repositories.Set,
	cal entities.Calendar,
	scenarios []*entities.Scenario,
) ([]Outcome, error) {
	ds, err := repos.Dataset(cal)
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset: %w", err)
	}
	return r.Run(ctx, ds, scenarios)
}

// Run solves every scenario, in input order in the returned outcomes. A scenario that
// fails to plan is reported in its outcome and does not stop the others. Store failures
// and cancellation abort the batch.
func (r *Runner) Run(ctx context.Context, ds *entities.Dataset, scenarios []*entities.Scenario) ([]Outcome, error) {
	log := logr.FromContextOrDiscard(ctx)

	seen := make(map[string]bool, len(scenarios))
	for _, sc := range scenarios {
		if seen[sc.ID] {
			return nil, fmt.Errorf("duplicate scenario id %q", sc.ID)
		}
		seen[sc.ID] = true
		r.publish(sc.ID, events.ScenarioQueuedEvent, events.ScenarioQueued{
			CoverageDays: sc.CoverageDays,
			TimeLimit:    sc.TimeLimit,
		})
	}

	outcomes := make([]Outcome, len(scenarios))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Parallelism)

	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			outcome, err := r.runOne(logr.NewContext(gctx, log.WithValues("scenario", sc.ID)), ds, sc)
			outcomes[i] = outcome
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}

	solved, skipped, failed := 0, 0, 0
	for _, o := range outcomes {
		switch {
		case o.Skipped:
			skipped++
		case o.Err != nil:
			failed++
		default:
			solved++
		}
	}
	log.Info("Scenario batch finished", "solved", solved, "skipped", skipped, "failed", failed)
	return outcomes, nil
}

func (r *Runner) runOne(ctx context.Context, ds *entities.Dataset, sc *entities.Scenario) (Outcome, error) {
	log := logr.FromContextOrDiscard(ctx)
	outcome := Outcome{ScenarioID: sc.ID}

	if err := ctx.Err(); err != nil {
		return outcome, err
	}

	if !r.config.Force {
		exists, err := r.store.Exists(ctx, sc.ID)
		if err != nil {
			return outcome, fmt.Errorf("scenario %s: %w", sc.ID, err)
		}
		if exists {
			log.Info("Result already stored, skipping")
			outcome.Skipped = true
			r.publish(sc.ID, events.ScenarioSkippedEvent, events.ScenarioSkipped{Reason: "result exists"})
			r.observeOutcome("skipped")
			return outcome, nil
		}
	}

	r.publish(sc.ID, events.ScenarioStartedEvent, events.ScenarioStarted{Policy: sc.Settings.UtilizationPolicy})
	start := time.Now()
	result, err := r.planner.Plan(ctx, ds, sc)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return outcome, err
		}
		log.Error(err, "Scenario failed")
		outcome.Err = err
		r.publish(sc.ID, events.ScenarioFailedEvent, events.ScenarioFailed{Error: err.Error()})
		r.observeOutcome("failed")
		return outcome, nil
	}
	outcome.Result = result

	if err := r.store.Save(ctx, result); err != nil {
		return outcome, fmt.Errorf("scenario %s: %w", sc.ID, err)
	}

	r.publishResult(sc, result, time.Since(start))
	if r.metrics != nil {
		r.metrics.ObserveResult(result)
	}
	return outcome, nil
}

func (r *Runner) publishResult(sc *entities.Scenario, result *dto.PlanResult, elapsed time.Duration) {
	shortfalls := result.Shortfalls()
	r.publish(sc.ID, events.ScenarioSolvedEvent, events.ScenarioSolved{
		Status:     result.Status,
		Objective:  result.Objective,
		Gap:        result.Gap,
		SolveTime:  elapsed,
		Shortfalls: len(shortfalls),
	})
	for _, d := range shortfalls {
		r.publish(sc.ID, events.DispatchShortfallEvent, events.DispatchShortfall{
			Group:       d.Group,
			Facility:    d.Facility,
			Slot:        d.Slot,
			Binding:     d.Binding,
			Utilization: max(d.WeightUtilization, d.VolumeUtilization),
		})
	}
	if units := result.SlackTotal(dto.SlackDemand); units > 0 {
		r.publish(sc.ID, events.DemandUnmetEvent, events.DemandUnmet{
			Units:   units,
			Penalty: units * sc.Settings.Penalties.Demand,
		})
	}
}

func (r *Runner) publish(scenarioID, eventType string, payload interface{}) {
	if r.events == nil {
		return
	}
	// the in-memory store never fails; a durable one should not stop a solve
	_ = r.events.AppendEvent(scenarioID, events.NewEvent(eventType, scenarioID, payload))
}

func (r *Runner) observeOutcome(outcome string) {
	if r.metrics != nil {
		r.metrics.ObserveOutcome(outcome)
	}
}

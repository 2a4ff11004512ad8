package scenario_test

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vsinha/wareopt/pkg/application/dto"
	"github.com/vsinha/wareopt/pkg/application/planner"
	"github.com/vsinha/wareopt/pkg/application/scenario"
	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/domain/repositories"
	"github.com/vsinha/wareopt/pkg/domain/services"
	"github.com/vsinha/wareopt/pkg/infrastructure/events"
	"github.com/vsinha/wareopt/pkg/infrastructure/metrics"
	"github.com/vsinha/wareopt/pkg/infrastructure/results"
	"github.com/vsinha/wareopt/pkg/infrastructure/solver/bnb"
	testhelpers "github.com/vsinha/wareopt/pkg/infrastructure/testing"
)

func reportScenario(id string) *entities.Scenario {
	sc, err := entities.NewScenario(id, nil, 30*time.Second)
	Expect(err).NotTo(HaveOccurred())
	sc.Settings.UtilizationPolicy = entities.UtilizationReport
	return sc
}

func eventTypes(store events.EventStore, scenarioID string) []string {
	evs, err := store.ReadEvents(scenarioID, 1)
	Expect(err).NotTo(HaveOccurred())
	var out []string
	for _, e := range evs {
		out = append(out, e.Type())
	}
	return out
}

var _ = Describe("Runner", func() {
	var (
		ctx      context.Context
		cal      entities.Calendar
		repos    repositories.Set
		store    *results.FileStore
		eventLog *events.InMemoryEventStore
		recorder *metrics.Recorder
		runner   *scenario.Runner
	)

	BeforeEach(func() {
		ctx = context.Background()
		cal, repos = testhelpers.BuildRegionalTestData()

		var err error
		store, err = results.NewFileStore(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		eventLog = events.NewInMemoryEventStore(logr.Discard())
		recorder = metrics.NewRecorder()
		runner = scenario.NewRunner(planner.NewPlanner(bnb.NewSolver()), store, eventLog, recorder,
			scenario.Config{Parallelism: 2})
	})

	Context("with a fresh result store", func() {
		It("should solve and persist every scenario", func() {
			outcomes, err := runner.RunFromRepositories(ctx, repos, cal, []*entities.Scenario{
				reportScenario("regional_a"),
				reportScenario("regional_b"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(outcomes).To(HaveLen(2))

			for _, o := range outcomes {
				Expect(o.Err).NotTo(HaveOccurred())
				Expect(o.Skipped).To(BeFalse())
				Expect(o.Result.Status).To(Equal("optimal"))
				Expect(o.Result.SlackTotal(dto.SlackDemand)).To(BeNumerically("~", 0, 1e-6))

				stored, err := store.Load(ctx, o.ScenarioID)
				Expect(err).NotTo(HaveOccurred())
				Expect(stored.Objective).To(BeNumerically("~", o.Result.Objective, 1e-9))
			}
			Expect(outcomes[0].ScenarioID).To(Equal("regional_a"))
			Expect(outcomes[1].ScenarioID).To(Equal("regional_b"))

			Expect(eventTypes(eventLog, "regional_a")).To(Equal([]string{
				events.ScenarioQueuedEvent,
				events.ScenarioStartedEvent,
				events.ScenarioSolvedEvent,
			}))
		})

		It("should report a malformed scenario without stopping the batch", func() {
			bad := reportScenario("bad")
			bad.Settings.MinUtilization = 2

			outcomes, err := runner.RunFromRepositories(ctx, repos, cal, []*entities.Scenario{
				bad,
				reportScenario("good"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(outcomes[0].Err).To(MatchError(services.ErrInputMalformed))
			Expect(outcomes[1].Err).NotTo(HaveOccurred())
			Expect(outcomes[1].Result).NotTo(BeNil())

			exists, err := store.Exists(ctx, "bad")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
			Expect(eventTypes(eventLog, "bad")).To(ContainElement(events.ScenarioFailedEvent))

			series, err := testutil.GatherAndCount(recorder.Registry(), "wareopt_scenarios_total")
			Expect(err).NotTo(HaveOccurred())
			Expect(series).To(Equal(2))
		})

		It("should reject duplicate scenario ids", func() {
			_, err := runner.RunFromRepositories(ctx, repos, cal, []*entities.Scenario{
				reportScenario("dup"),
				reportScenario("dup"),
			})
			Expect(err).To(MatchError(ContainSubstring("duplicate scenario id")))
		})
	})

	Context("when a result already exists", func() {
		BeforeEach(func() {
			Expect(store.Save(ctx, &dto.PlanResult{ScenarioID: "regional_a", Status: "optimal", Objective: -1})).To(Succeed())
		})

		It("should skip it on rerun", func() {
			outcomes, err := runner.RunFromRepositories(ctx, repos, cal, []*entities.Scenario{reportScenario("regional_a")})
			Expect(err).NotTo(HaveOccurred())
			Expect(outcomes[0].Skipped).To(BeTrue())
			Expect(outcomes[0].Result).To(BeNil())

			stored, err := store.Load(ctx, "regional_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Objective).To(Equal(-1.0))
			Expect(eventTypes(eventLog, "regional_a")).To(Equal([]string{
				events.ScenarioQueuedEvent,
				events.ScenarioSkippedEvent,
			}))
		})

		It("should re-solve it when forced", func() {
			forced := scenario.NewRunner(planner.NewPlanner(bnb.NewSolver()), store, nil, nil,
				scenario.Config{Force: true})

			outcomes, err := forced.RunFromRepositories(ctx, repos, cal, []*entities.Scenario{reportScenario("regional_a")})
			Expect(err).NotTo(HaveOccurred())
			Expect(outcomes[0].Skipped).To(BeFalse())

			stored, err := store.Load(ctx, "regional_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Objective).To(BeNumerically(">", 0))
		})
	})
})

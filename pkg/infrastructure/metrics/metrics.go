// Package metrics records scenario solve statistics in a private Prometheus registry.
// Batch runs have no scrape endpoint, so the registry is written out in the node
// exporter textfile format at the end of a sweep.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vsinha/wareopt/pkg/application/dto"
)

const namespace = "wareopt"

// Recorder owns the solve metrics
type Recorder struct {
	registry *prometheus.Registry

	solveDuration *prometheus.HistogramVec
	scenarios     *prometheus.CounterVec
	nodes         prometheus.Histogram
	objective     *prometheus.GaugeVec
	slack         *prometheus.GaugeVec
	shortfalls    prometheus.Counter
}

// NewRecorder registers every collector on a fresh registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		solveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Wall time spent solving one scenario.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"status"}),
		scenarios: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenarios_total",
			Help:      "Scenarios processed, by outcome.",
		}, []string{"outcome"}),
		nodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bnb_nodes",
			Help:      "Branch-and-bound nodes explored per scenario.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		objective: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "objective",
			Help:      "Objective value of the last solve of each scenario.",
		}, []string{"scenario"}),
		slack: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "slack_total",
			Help:      "Slack totals of the last solve, by scenario and family.",
		}, []string{"scenario", "family"}),
		shortfalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_shortfalls_total",
			Help:      "Dispatches planned below the minimum fill.",
		}),
	}
	r.registry.MustRegister(r.solveDuration, r.scenarios, r.nodes, r.objective, r.slack, r.shortfalls)
	return r
}

// Registry exposes the underlying registry for gathering
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveResult records one finished solve; the outcome label is the result status
func (r *Recorder) ObserveResult(result *dto.PlanResult) {
	r.scenarios.WithLabelValues(result.Status).Inc()
	r.solveDuration.WithLabelValues(result.Status).Observe(result.SolveTime.Seconds())
	r.nodes.Observe(float64(result.Nodes))
	r.shortfalls.Add(float64(len(result.Shortfalls())))

	if len(result.Slack) == 0 {
		return
	}
	r.objective.WithLabelValues(result.ScenarioID).Set(result.Objective)
	for _, s := range result.Slack {
		r.slack.WithLabelValues(result.ScenarioID, s.Family).Set(s.Total)
	}
}

// ObserveOutcome counts a scenario that produced no result, e.g. "skipped" or "failed"
func (r *Recorder) ObserveOutcome(outcome string) {
	r.scenarios.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes the registry atomically in the textfile collector format
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

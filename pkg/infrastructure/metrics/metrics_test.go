package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/wareopt/pkg/application/dto"
)

func TestRecorder_ObserveResult(t *testing.T) {
	r := NewRecorder()

	r.ObserveResult(&dto.PlanResult{
		ScenarioID: "base",
		Status:     "optimal",
		Objective:  205,
		Nodes:      7,
		SolveTime:  250 * time.Millisecond,
		Dispatches: []dto.DispatchRecord{{Vehicles: 1, Shortfall: true}, {Vehicles: 2}},
		Slack:      []dto.SlackSummary{{Family: dto.SlackDispatchOverage, Total: 1}},
	})
	r.ObserveResult(&dto.PlanResult{ScenarioID: "tight", Status: "infeasible"})
	r.ObserveOutcome("skipped")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.scenarios.WithLabelValues("optimal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.scenarios.WithLabelValues("infeasible")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.scenarios.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.shortfalls))
	assert.Equal(t, 205.0, testutil.ToFloat64(r.objective.WithLabelValues("base")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.slack.WithLabelValues("base", dto.SlackDispatchOverage)))

	// results without values leave the per-scenario gauges untouched
	assert.Equal(t, 1, testutil.CollectAndCount(r.objective))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveOutcome("failed")

	path := filepath.Join(t.TempDir(), "wareopt.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `wareopt_scenarios_total{outcome="failed"} 1`))
}

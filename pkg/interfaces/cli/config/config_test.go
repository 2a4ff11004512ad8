package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/wareopt/pkg/domain/entities"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wareopt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, entities.DefaultSettings(), cfg.Settings)
	assert.Equal(t, entities.DefaultSubPeriodsPerPeriod, cfg.Calendar.SubPeriodsPerPeriod)
	assert.Equal(t, 5*time.Minute, cfg.TimeLimit)
	assert.Equal(t, 1, cfg.Runner.Parallelism)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, "results", cfg.Results.Dir)

	scenarios, err := cfg.PlanScenarios()
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "base", scenarios[0].ID)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
data:
  dir: ./data
calendar:
  sub_periods_per_period: 4
  periods: 6
time_limit: 90s
settings:
  utilization_policy: soft
  min_utilization: 0.8
  penalties:
    demand: 5000
scenarios:
  - id: lean
    coverage_days: {Domestic: 15}
  - id: deep
    coverage_days: {Domestic: 60, International: 90}
    time_limit: 10m
sweep:
  prefix: grid
  grid:
    Domestic: [15, 30]
    International: [45, 60, 90]
`)
	cfg, err := Load(newFlags(t, "--config", path))
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.Data.Dir)
	assert.Equal(t, entities.Calendar{SubPeriodsPerPeriod: 4, Periods: 6}, cfg.Calendar)
	assert.Equal(t, 90*time.Second, cfg.TimeLimit)
	assert.Equal(t, entities.UtilizationSoft, cfg.Settings.UtilizationPolicy)
	assert.InDelta(t, 0.8, cfg.Settings.MinUtilization, 1e-9)
	assert.InDelta(t, 5000, cfg.Settings.Penalties.Demand, 1e-9)
	// untouched penalties keep their defaults
	assert.InDelta(t, entities.DefaultSettings().Penalties.Coverage, cfg.Settings.Penalties.Coverage, 1e-9)

	scenarios, err := cfg.PlanScenarios()
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, 90*time.Second, scenarios[0].TimeLimit)
	assert.Equal(t, 10*time.Minute, scenarios[1].TimeLimit)
	assert.InDelta(t, 90, scenarios[1].Coverage("International"), 1e-9)
	assert.Equal(t, entities.UtilizationSoft, scenarios[1].Settings.UtilizationPolicy)

	sweep, err := cfg.SweepScenarios()
	require.NoError(t, err)
	assert.Len(t, sweep, 6)
	for _, sc := range sweep {
		assert.Contains(t, sc.ID, "grid_")
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
runner:
  parallelism: 2
settings:
  delivery_window: 1
output:
  format: json
`)
	t.Setenv("WAREOPT_SETTINGS_DELIVERY_WINDOW", "3")
	t.Setenv("WAREOPT_RUNNER_PARALLELISM", "4")

	cfg, err := Load(newFlags(t, "--config", path, "-j", "8", "--coverage", "Domestic=30"))
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Runner.Parallelism, "flag beats env and file")
	assert.Equal(t, 3, cfg.Settings.DeliveryWindow, "env beats file")
	assert.Equal(t, "json", cfg.Output.Format, "file beats default")
	assert.Equal(t, map[string]float64{"Domestic": 30}, cfg.Coverage)
}

func TestLoad_ShelfFillCap(t *testing.T) {
	cfg, err := Load(newFlags(t, "--shelf-fill-cap", "0.93"))
	require.NoError(t, err)
	assert.InDelta(t, 0.93, cfg.Settings.ShelfFillCap, 1e-9)

	scenarios, err := cfg.PlanScenarios()
	require.NoError(t, err)
	assert.InDelta(t, 0.93, scenarios[0].Settings.ShelfFillCap, 1e-9)

	_, err = Load(newFlags(t, "--shelf-fill-cap", "1.5"))
	assert.ErrorContains(t, err, "shelf_fill_cap")
}

func TestLoad_DatabaseURLFallback(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/wareopt")

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/wareopt", cfg.Results.DatabaseURL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad policy", []string{"--policy", "lenient"}, "settings"},
		{"bad calendar", []string{"--periods", "0"}, "calendar"},
		{"no parallelism", []string{"-j", "0"}, "parallelism"},
		{"bad coverage", []string{"--coverage", "Domestic=lots"}, "invalid coverage"},
		{"missing file", []string{"--config", "/nonexistent/wareopt.yaml"}, "failed to read config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newFlags(t, tt.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSweepScenarios_RequiresGrid(t *testing.T) {
	cfg := Defaults()
	_, err := cfg.SweepScenarios()
	assert.Error(t, err)

	cfg.Sweep.Grid = map[string][]float64{"Domestic": {}}
	_, err = cfg.SweepScenarios()
	assert.Error(t, err)
}

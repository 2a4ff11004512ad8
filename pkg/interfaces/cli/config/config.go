// Package config resolves the CLI configuration from flags, WAREOPT_ environment
// variables, an optional YAML or JSON file and built-in defaults, in that order.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vsinha/wareopt/pkg/domain/entities"
)

// EnvPrefix namespaces environment overrides, e.g. WAREOPT_SETTINGS_BIG_M
const EnvPrefix = "WAREOPT"

// File is the complete configuration document
type File struct {
	Data      DataConfig         `mapstructure:"data" json:"data" yaml:"data"`
	Calendar  entities.Calendar  `mapstructure:"calendar" json:"calendar" yaml:"calendar"`
	Settings  entities.Settings  `mapstructure:"settings" json:"settings" yaml:"settings"`
	TimeLimit time.Duration      `mapstructure:"time_limit" json:"time_limit" yaml:"time_limit" jsonschema:"type=string,description=Per-scenario solve budget such as 90s or 5m"`
	Coverage  map[string]float64 `mapstructure:"coverage" json:"coverage,omitempty" yaml:"coverage,omitempty" jsonschema_description:"Days of coverage per SKU coverage group for the base scenario"`
	Scenarios []ScenarioConfig   `mapstructure:"scenarios" json:"scenarios,omitempty" yaml:"scenarios,omitempty"`
	Sweep     SweepConfig        `mapstructure:"sweep" json:"sweep" yaml:"sweep"`
	Solver    SolverConfig       `mapstructure:"solver" json:"solver" yaml:"solver"`
	Runner    RunnerConfig       `mapstructure:"runner" json:"runner" yaml:"runner"`
	Results   ResultsConfig      `mapstructure:"results" json:"results" yaml:"results"`
	Output    OutputConfig       `mapstructure:"output" json:"output" yaml:"output"`
	Log       LogConfig          `mapstructure:"log" json:"log" yaml:"log"`
}

// DataConfig locates the input tables; a workbook takes precedence over a directory
type DataConfig struct {
	Dir      string `mapstructure:"dir" json:"dir,omitempty" yaml:"dir,omitempty" jsonschema_description:"Directory of CSV tables"`
	Workbook string `mapstructure:"workbook" json:"workbook,omitempty" yaml:"workbook,omitempty" jsonschema_description:"XLSX workbook with one sheet per table"`
}

// ScenarioConfig names one scenario to plan
type ScenarioConfig struct {
	ID           string             `mapstructure:"id" json:"id" yaml:"id"`
	CoverageDays map[string]float64 `mapstructure:"coverage_days" json:"coverage_days,omitempty" yaml:"coverage_days,omitempty"`
	TimeLimit    time.Duration      `mapstructure:"time_limit" json:"time_limit,omitempty" yaml:"time_limit,omitempty" jsonschema:"type=string"`
}

// SweepConfig is a grid of coverage values expanded into scenarios
type SweepConfig struct {
	Prefix string               `mapstructure:"prefix" json:"prefix" yaml:"prefix"`
	Grid   map[string][]float64 `mapstructure:"grid" json:"grid,omitempty" yaml:"grid,omitempty"`
}

// SolverConfig bounds the branch-and-bound search
type SolverConfig struct {
	MaxNodes    int     `mapstructure:"max_nodes" json:"max_nodes" yaml:"max_nodes"`
	RelativeGap float64 `mapstructure:"relative_gap" json:"relative_gap" yaml:"relative_gap"`
}

// RunnerConfig controls batch execution
type RunnerConfig struct {
	Parallelism int  `mapstructure:"parallelism" json:"parallelism" yaml:"parallelism"`
	Force       bool `mapstructure:"force" json:"force" yaml:"force"`
}

// ResultsConfig selects the result store; a database URL selects Postgres
type ResultsConfig struct {
	Dir         string `mapstructure:"dir" json:"dir" yaml:"dir"`
	DatabaseURL string `mapstructure:"database_url" json:"database_url,omitempty" yaml:"database_url,omitempty"`
	MetricsFile string `mapstructure:"metrics_file" json:"metrics_file,omitempty" yaml:"metrics_file,omitempty" jsonschema_description:"Write Prometheus textfile metrics here after a run"`
}

// OutputConfig selects how results are rendered
type OutputConfig struct {
	Format string `mapstructure:"format" json:"format" yaml:"format" jsonschema:"enum=text,enum=json,enum=yaml,enum=csv,enum=svg"`
	Dir    string `mapstructure:"dir" json:"dir,omitempty" yaml:"dir,omitempty"`
}

// LogConfig tunes the zap logger
type LogConfig struct {
	Verbosity   int  `mapstructure:"verbosity" json:"verbosity" yaml:"verbosity"`
	Development bool `mapstructure:"development" json:"development" yaml:"development"`
}

// Defaults returns the configuration used when nothing overrides it
func Defaults() File {
	return File{
		Calendar: entities.Calendar{
			SubPeriodsPerPeriod: entities.DefaultSubPeriodsPerPeriod,
			Periods:             12,
		},
		Settings:  entities.DefaultSettings(),
		TimeLimit: 5 * time.Minute,
		Sweep:     SweepConfig{Prefix: "sweep"},
		Solver:    SolverConfig{RelativeGap: 1e-4},
		Runner:    RunnerConfig{Parallelism: 1},
		Results:   ResultsConfig{Dir: "results"},
		Output:    OutputConfig{Format: "text"},
	}
}

// RegisterFlags adds the common flags to a flag set
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.StringP("config", "c", "", "Path to a YAML or JSON config file")
	fs.String("data", "", "Directory containing the CSV tables")
	fs.String("workbook", "", "XLSX workbook with one sheet per table")
	fs.Int("periods", d.Calendar.Periods, "Number of periods in the horizon")
	fs.Int("sub-periods", d.Calendar.SubPeriodsPerPeriod, "Sub-periods per period")
	fs.Duration("time-limit", d.TimeLimit, "Solve time budget per scenario")
	fs.StringToString("coverage", nil, "Coverage days per group for the base scenario, e.g. Domestic=30")
	fs.String("policy", string(d.Settings.UtilizationPolicy), "Vehicle utilization policy: strict, soft or report")
	fs.Float64("min-utilization", d.Settings.MinUtilization, "Minimum vehicle fill as a fraction")
	fs.Int("delivery-window", d.Settings.DeliveryWindow, "Slots an order may arrive after its lead time")
	fs.Float64("shelf-fill-cap", d.Settings.ShelfFillCap, "Usable fraction of shelving capacity")
	fs.Int("max-nodes", d.Solver.MaxNodes, "Branch-and-bound node limit per scenario, 0 for none")
	fs.IntP("parallelism", "j", d.Runner.Parallelism, "Scenarios solved at once")
	fs.Bool("force", false, "Re-solve scenarios that already have a stored result")
	fs.String("results", d.Results.Dir, "Directory for stored results")
	fs.String("database-url", "", "Postgres URL for stored results, overrides --results")
	fs.String("metrics-file", "", "Write Prometheus textfile metrics to this path")
	fs.StringP("format", "f", d.Output.Format, "Output format: text, json, yaml, csv, svg")
	fs.StringP("output", "o", "", "Output directory (stdout when empty)")
	fs.CountP("verbose", "v", "Increase log verbosity")
	fs.Bool("dev-log", false, "Human-readable development logging")
}

var flagKeys = map[string]string{
	"data":            "data.dir",
	"workbook":        "data.workbook",
	"periods":         "calendar.periods",
	"sub-periods":     "calendar.sub_periods_per_period",
	"time-limit":      "time_limit",
	"policy":          "settings.utilization_policy",
	"min-utilization": "settings.min_utilization",
	"delivery-window": "settings.delivery_window",
	"shelf-fill-cap":  "settings.shelf_fill_cap",
	"max-nodes":       "solver.max_nodes",
	"parallelism":     "runner.parallelism",
	"force":           "runner.force",
	"results":         "results.dir",
	"database-url":    "results.database_url",
	"metrics-file":    "results.metrics_file",
	"format":          "output.format",
	"output":          "output.dir",
	"verbose":         "log.verbosity",
	"dev-log":         "log.development",
}

// Load resolves the configuration. A .env file in the working directory is read first
// so its values behave like environment variables.
func Load(fs *pflag.FlagSet) (*File, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// accept the conventional DATABASE_URL when the prefixed one is unset
	if err := v.BindEnv("results.database_url", EnvPrefix+"_RESULTS_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, err
	}

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if f := fs.Lookup("coverage"); f != nil && f.Changed {
		raw, _ := fs.GetStringToString("coverage")
		coverage, err := parseCoverage(raw)
		if err != nil {
			return nil, err
		}
		cfg.Coverage = coverage
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d File) {
	s := d.Settings
	for key, value := range map[string]interface{}{
		"calendar.sub_periods_per_period":     d.Calendar.SubPeriodsPerPeriod,
		"calendar.periods":                    d.Calendar.Periods,
		"settings.penalties.demand":           s.Penalties.Demand,
		"settings.penalties.overcapacity":     s.Penalties.Overcapacity,
		"settings.penalties.coverage":         s.Penalties.Coverage,
		"settings.penalties.dispatch_overage": s.Penalties.DispatchOverage,
		"settings.penalties.utilization":      s.Penalties.Utilization,
		"settings.big_m":                      s.BigM,
		"settings.holding_cost":               s.HoldingCost,
		"settings.vehicle_cost":               s.VehicleCost,
		"settings.utilization_policy":         string(s.UtilizationPolicy),
		"settings.min_utilization":            s.MinUtilization,
		"settings.delivery_window":            s.DeliveryWindow,
		"settings.integer_shelves":            s.IntegerShelves,
		"settings.shelf_fill_cap":             s.ShelfFillCap,
		"time_limit":                          d.TimeLimit,
		"sweep.prefix":                        d.Sweep.Prefix,
		"solver.max_nodes":                    d.Solver.MaxNodes,
		"solver.relative_gap":                 d.Solver.RelativeGap,
		"runner.parallelism":                  d.Runner.Parallelism,
		"runner.force":                        d.Runner.Force,
		"results.dir":                         d.Results.Dir,
		"results.metrics_file":                "",
		"output.format":                       d.Output.Format,
		"output.dir":                          "",
		"data.dir":                            "",
		"data.workbook":                       "",
		"log.verbosity":                       0,
		"log.development":                     false,
	} {
		v.SetDefault(key, value)
	}
}

func parseCoverage(raw map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for group, s := range raw {
		days, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coverage days for %s: %q", group, s)
		}
		out[group] = days
	}
	return out, nil
}

// Validate checks the resolved configuration
func (f *File) Validate() error {
	if err := f.Calendar.Validate(); err != nil {
		return fmt.Errorf("calendar: %w", err)
	}
	if err := f.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if f.Runner.Parallelism < 1 {
		return fmt.Errorf("runner.parallelism must be at least 1, got %d", f.Runner.Parallelism)
	}
	return nil
}

// PlanScenarios returns the configured scenarios, or a single "base" scenario built from
// the top-level coverage when none are listed
func (f *File) PlanScenarios() ([]*entities.Scenario, error) {
	if len(f.Scenarios) == 0 {
		return []*entities.Scenario{{
			ID:           "base",
			CoverageDays: f.Coverage,
			TimeLimit:    f.TimeLimit,
			Settings:     f.Settings,
		}}, nil
	}

	out := make([]*entities.Scenario, 0, len(f.Scenarios))
	for _, sc := range f.Scenarios {
		limit := sc.TimeLimit
		if limit == 0 {
			limit = f.TimeLimit
		}
		s := &entities.Scenario{ID: sc.ID, CoverageDays: sc.CoverageDays, TimeLimit: limit, Settings: f.Settings}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// SweepScenarios expands the sweep grid
func (f *File) SweepScenarios() ([]*entities.Scenario, error) {
	if len(f.Sweep.Grid) == 0 {
		return nil, fmt.Errorf("sweep.grid is empty")
	}
	for g, values := range f.Sweep.Grid {
		if len(values) == 0 {
			return nil, fmt.Errorf("sweep.grid.%s has no values", g)
		}
	}
	return entities.CoverageGrid(f.Sweep.Prefix, f.Sweep.Grid, f.Settings, f.TimeLimit), nil
}

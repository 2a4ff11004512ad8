package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vsinha/wareopt/pkg/interfaces/cli/output"
)

// SweepCommand plans every combination of a coverage grid and compares the results
type SweepCommand struct {
	opts Options
}

// NewSweepCommand creates a new sweep command with the given options
func NewSweepCommand(opts Options) *SweepCommand {
	return &SweepCommand{opts: opts}
}

// Execute runs the sweep command
func (c *SweepCommand) Execute(ctx context.Context) error {
	if c.opts.Help {
		c.showHelp()
		return nil
	}

	cfg := c.opts.Config
	scenarios, err := cfg.SweepScenarios()
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	out := c.opts.out()
	verbose := c.opts.verbose()
	if verbose {
		groups := make([]string, 0, len(cfg.Sweep.Grid))
		for g, values := range cfg.Sweep.Grid {
			groups = append(groups, fmt.Sprintf("%s=%v", g, values))
		}
		sort.Strings(groups)
		fmt.Fprintf(out, "🧮 Coverage sweep: %d scenarios over %s\n", len(scenarios), strings.Join(groups, " "))
		fmt.Fprintln(out, "📂 Loading dataset...")
	}

	repos, err := loadRepositories(cfg)
	if err != nil {
		return fmt.Errorf("error loading dataset: %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("error opening result store: %w", err)
	}
	defer closeStore()

	startTime := time.Now()
	planned, runErr := newBatch(ctx, c.opts, store).run(ctx, repos, scenarios)
	if verbose {
		fmt.Fprintf(out, "✅ Sweep finished in %v\n\n", time.Since(startTime))
	}

	if err := output.GenerateSummary(planned, c.opts.outputConfig()); err != nil {
		return fmt.Errorf("error generating summary: %w", err)
	}
	return runErr
}

// showHelp displays the help message
func (c *SweepCommand) showHelp() {
	fmt.Fprint(c.opts.out(), `Coverage Sweep - plan every combination of per-group coverage targets

USAGE:
    wareopt sweep --config <wareopt.yaml> [OPTIONS]

The grid comes from the config file:

    sweep:
      prefix: q3
      grid:
        Domestic: [15, 30, 45]
        International: [30, 60]

Each combination becomes one scenario, e.g. q3_Domestic30_International60. Results are
stored under their scenario ID, so rerunning a sweep only solves what is missing unless
--force is given. All plan options apply; see "wareopt plan --help".

OUTPUT:
    text   comparison table on stdout (default)
    json   summary.json / yaml summary.yaml / csv summary.csv, in --output or on stdout

EXAMPLES:
    # Sweep four at a time and keep Prometheus metrics for the run
    wareopt sweep -c wareopt.yaml -j 4 --metrics-file sweep.prom

    # Write a CSV comparison
    wareopt sweep -c wareopt.yaml -f csv -o reports/
`)
}

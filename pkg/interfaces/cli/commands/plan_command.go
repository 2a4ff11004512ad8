package commands

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/vsinha/wareopt/pkg/interfaces/cli/output"
)

// PlanCommand solves the configured scenarios and renders each plan
type PlanCommand struct {
	opts Options
}

// NewPlanCommand creates a new plan command with the given options
func NewPlanCommand(opts Options) *PlanCommand {
	return &PlanCommand{opts: opts}
}

// Execute runs the plan command
func (c *PlanCommand) Execute(ctx context.Context) error {
	if c.opts.Help {
		c.showHelp()
		return nil
	}

	cfg := c.opts.Config
	scenarios, err := cfg.PlanScenarios()
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !slices.Contains(output.Formats, cfg.Output.Format) {
		return fmt.Errorf("validation error: unsupported output format: %s", cfg.Output.Format)
	}

	out := c.opts.out()
	verbose := c.opts.verbose()
	if verbose {
		c.printHeader(len(scenarios))
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
		fmt.Fprintf(out, "✅ %d scenarios planned in %v\n\n", len(planned), time.Since(startTime))
	}

	for _, result := range planned {
		if err := output.Generate(result, c.opts.outputConfig()); err != nil {
			return fmt.Errorf("error generating output: %w", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	if verbose {
		fmt.Fprintln(out, "🏁 Planning complete!")
	}
	return nil
}

// printHeader prints the command header information
func (c *PlanCommand) printHeader(scenarios int) {
	cfg := c.opts.Config
	out := c.opts.out()
	fmt.Fprintf(out, "🚀 Warehouse Planner\n")
	if cfg.Data.Workbook != "" {
		fmt.Fprintf(out, "Workbook: %s\n", cfg.Data.Workbook)
	} else {
		fmt.Fprintf(out, "Data directory: %s\n", cfg.Data.Dir)
	}
	fmt.Fprintf(out, "Horizon: %d periods × %d sub-periods\n", cfg.Calendar.Periods, cfg.Calendar.SubPeriodsPerPeriod)
	fmt.Fprintf(out, "Scenarios: %d (parallelism %d)\n", scenarios, cfg.Runner.Parallelism)
	fmt.Fprintf(out, "Utilization policy: %s (min %.0f%%)\n", cfg.Settings.UtilizationPolicy, 100*cfg.Settings.MinUtilization)
	fmt.Fprintf(out, "Output format: %s\n", cfg.Output.Format)
	if cfg.Output.Dir != "" {
		fmt.Fprintf(out, "Output directory: %s\n", cfg.Output.Dir)
	}
	fmt.Fprintln(out)
}

// showHelp displays the help message
func (c *PlanCommand) showHelp() {
	fmt.Fprint(c.opts.out(), `Warehouse Planner - inventory, expansion and dispatch planning for a warehouse network

USAGE:
    wareopt plan --data <directory> [OPTIONS]
    wareopt plan --workbook <file.xlsx> [OPTIONS]
    wareopt plan --config <wareopt.yaml> [OPTIONS]

OPTIONS:
    -c, --config <file>         YAML or JSON config file
        --data <dir>            Directory containing the CSV tables
        --workbook <file>       XLSX workbook with one sheet per table
        --periods <n>           Periods on the horizon (default: 12)
        --sub-periods <n>       Sub-periods per period (default: 21)
        --coverage <g=days>     Coverage days per group, e.g. Domestic=30,International=60
        --time-limit <dur>      Solve time budget per scenario (default: 5m)
        --policy <p>            Vehicle utilization policy: strict, soft, report (default: strict)
        --min-utilization <f>   Minimum vehicle fill as a fraction (default: 0.90)
        --delivery-window <n>   Slots an order may arrive late (default: 0)
        --max-nodes <n>         Branch-and-bound node limit per scenario
    -j, --parallelism <n>       Scenarios solved at once (default: 1)
        --force                 Re-solve scenarios that already have a stored result
        --results <dir>         Directory for stored results (default: results)
        --database-url <url>    Store results in Postgres instead
        --metrics-file <file>   Write Prometheus textfile metrics after the run
    -f, --format <fmt>          Output format: text, json, yaml, csv, svg (default: text)
    -o, --output <dir>          Output directory (default: stdout)
    -v, --verbose               Increase verbosity (repeatable)
    -h, --help                  Show this help message

Every option can also be set in the config file or as a WAREOPT_ environment variable,
e.g. WAREOPT_SETTINGS_MIN_UTILIZATION=0.85. DATABASE_URL is honored for --database-url.

DATA TABLES:
    skus.csv             sku,description,storage_type,bulk_volume,bulk_weight,unit_volume,unit_weight,
                         units_per_package,repack_eligible,supplier_group,coverage_group
    facilities.csv       facility,expandable,ceiling
    shelves.csv          facility,storage_type,current,volume,weight,max_packages,area_per_shelf
    expansion_tiers.csv  facility,tier,width,price                     (optional)
    suppliers.csv        supplier_group,vehicle_weight,vehicle_volume,max_dispatches (optional)
    lead_times.csv       sku,facility,lead_time,unit
    demand.csv           sku,period,sub_period,quantity

EXAMPLES:
    # Plan a generated network with 30 days of domestic coverage
    wareopt plan --data ./small_network --coverage Domestic=30 -v

    # Plan every scenario in a config file, four at a time, as JSON files
    wareopt plan -c wareopt.yaml -j 4 -f json -o plans/

    # Report dispatches below 85% fill instead of enforcing them
    wareopt plan --workbook network.xlsx --policy report --min-utilization 0.85
`)
}

package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vsinha/wareopt/pkg/application/dto"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	// Out receives stdout output; nil means os.Stdout
	Out io.Writer
}

func (c Config) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Formats lists the supported output formats
var Formats = []string{"text", "json", "yaml", "csv", "svg"}

// Generate renders one plan result in the configured format
func Generate(result *dto.PlanResult, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(result, config)
	case "json":
		return generateEncodedOutput(result, config, "json")
	case "yaml":
		return generateEncodedOutput(result, config, "yaml")
	case "csv":
		return generateCSVOutput(result, config)
	case "svg":
		return generateSVGOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(result *dto.PlanResult, config Config) error {
	w := config.out()

	fmt.Fprintf(w, "📊 Scenario %s\n", result.ScenarioID)
	fmt.Fprintf(w, "======================\n\n")

	fmt.Fprintf(w, "Status: %s\n", result.Status)
	fmt.Fprintf(w, "Solve Time: %v (%d nodes)\n", result.SolveTime, result.Nodes)
	fmt.Fprintf(w, "Model: %d variables (%d integer), %d constraints\n",
		result.ModelStats.Variables, result.ModelStats.Integers, result.ModelStats.Constraints)
	if len(result.Slack) == 0 {
		fmt.Fprintln(w, "No solution available.")
		return nil
	}
	fmt.Fprintf(w, "Objective: %.4f", result.Objective)
	if result.Gap > 0 {
		fmt.Fprintf(w, " (gap %.2f%%)", result.Gap*100)
	}
	fmt.Fprintf(w, "\n\n")

	fmt.Fprintf(w, "💰 Costs: expansion %s, dispatch %s, penalties %s, holding %s\n\n",
		result.Costs.Expansion.StringFixed(2), result.Costs.Dispatch.StringFixed(2),
		result.Costs.Penalties.StringFixed(2), result.Costs.Holding.StringFixed(2))

	if len(result.Expansions) > 0 {
		fmt.Fprintf(w, "🏗️  Expansions:\n")
		fmt.Fprintf(w, "%-10s %-10s %-12s %-30s\n", "Facility", "Area", "Cost", "Shelves Added")
		fmt.Fprintf(w, "%-10s %-10s %-12s %-30s\n", "----------", "----------", "------------", "------------------------------")
		for _, e := range result.Expansions {
			shelves := ""
			for i, s := range e.Shelves {
				if i > 0 {
					shelves += ", "
				}
				shelves += fmt.Sprintf("%s +%g", s.StorageType, s.Added)
			}
			fmt.Fprintf(w, "%-10s %-10.1f %-12s %-30s\n", e.Facility, e.Area, e.Cost.StringFixed(2), shelves)
		}
		fmt.Fprintln(w)
	}

	if len(result.Repack) > 0 {
		fmt.Fprintf(w, "📦 Repack Decisions:\n")
		for _, r := range result.Repack {
			if r.Repacked {
				fmt.Fprintf(w, "  %s @ %s: repacked\n", r.SKU, r.Facility)
			}
		}
		fmt.Fprintln(w)
	}

	if len(result.Dispatches) > 0 {
		fmt.Fprintf(w, "🚚 Dispatches:\n")
		fmt.Fprintf(w, "%-12s %-10s %-8s %-8s %-10s %-10s %-8s %-9s\n",
			"Group", "Facility", "Slot", "Trucks", "Weight %", "Volume %", "Binding", "Shortfall")
		fmt.Fprintf(w, "%-12s %-10s %-8s %-8s %-10s %-10s %-8s %-9s\n",
			"------------", "----------", "--------", "--------", "----------", "----------", "--------", "---------")
		for _, d := range result.Dispatches {
			shortfall := ""
			if d.Shortfall {
				shortfall = "⚠️"
			}
			fmt.Fprintf(w, "%-12s %-10s %-8s %-8d %-10.1f %-10.1f %-8s %-9s\n",
				d.Group, d.Facility, d.Slot, d.Vehicles, d.WeightUtilization, d.VolumeUtilization, d.Binding, shortfall)
		}
		fmt.Fprintln(w)
	}

	if len(result.Blocked) > 0 {
		fmt.Fprintf(w, "⛔ Blocked by minimum fill:\n")
		fmt.Fprintf(w, "%-12s %-10s %-8s %-10s %-8s %-10s %-10s %-8s\n",
			"Group", "Facility", "Slot", "Unmet", "Trucks", "Weight %", "Volume %", "Binding")
		for _, b := range result.Blocked {
			fmt.Fprintf(w, "%-12s %-10s %-8s %-10.2f %-8d %-10.1f %-10.1f %-8s\n",
				b.Group, b.Facility, b.Slot, b.UnmetUnits, b.Vehicles, b.WeightUtilization, b.VolumeUtilization, b.Binding)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "⚖️  Slack:\n")
	for _, s := range result.Slack {
		fmt.Fprintf(w, "  %-18s %12.4f  (penalty %g, contributes %.4f)\n", s.Family, s.Total, s.Penalty, s.Contribution)
	}
	fmt.Fprintln(w)

	if config.Verbose && len(result.Flows) > 0 {
		fmt.Fprintf(w, "📋 Flows:\n")
		fmt.Fprintf(w, "%-8s %-12s %-10s %-10s %-10s %-10s %-10s\n",
			"Slot", "SKU", "Facility", "Ordered", "Arrived", "Shipped", "Inventory")
		for _, f := range result.Flows {
			fmt.Fprintf(w, "%-8s %-12s %-10s %-10.2f %-10.2f %-10.2f %-10.2f\n",
				f.Slot, f.SKU, f.Facility, f.Ordered, f.Arrived, f.Shipped, f.Inventory)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// generateEncodedOutput writes the full result as JSON or YAML
func generateEncodedOutput(result *dto.PlanResult, config Config, format string) error {
	var (
		data []byte
		err  error
	)
	if format == "json" {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = yaml.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", format, err)
	}
	return emit(config, result.ScenarioID+"."+format, data)
}

// generateSVGOutput draws the dispatch timeline
func generateSVGOutput(result *dto.PlanResult, config Config) error {
	chart := NewDispatchChart(result)
	return emit(config, result.ScenarioID+"_dispatch.svg", []byte(chart.GenerateSVG(result)))
}

func emit(config Config, filename string, data []byte) error {
	if config.OutputDir == "" {
		_, err := fmt.Fprintln(config.out(), string(data))
		return err
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(config.OutputDir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 Results saved to: %s\n", path)
	}
	return nil
}

// generateCSVOutput writes one CSV per record family into the output directory
func generateCSVOutput(result *dto.PlanResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tables := map[string][][]string{
		"flows":      flowRows(result),
		"dispatches": dispatchRows(result),
		"expansions": expansionRows(result),
		"repack":     repackRows(result),
		"slack":      slackRows(result),
	}
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(config.OutputDir, fmt.Sprintf("%s_%s.csv", result.ScenarioID, name))
		if err := writeCSV(path, tables[name]); err != nil {
			return fmt.Errorf("failed to write %s CSV: %w", name, err)
		}
		if config.Verbose {
			fmt.Fprintf(config.out(), "💾 %s: %s\n", name, path)
		}
	}
	return nil
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func flowRows(result *dto.PlanResult) [][]string {
	rows := [][]string{{"period", "sub_period", "sku", "facility", "ordered", "arrived", "arrived_units", "shipped", "inventory"}}
	for _, f := range result.Flows {
		rows = append(rows, []string{
			strconv.Itoa(f.Slot.Period), strconv.Itoa(f.Slot.SubPeriod), string(f.SKU), string(f.Facility),
			ftoa(f.Ordered), ftoa(f.Arrived), ftoa(f.ArrivedUnits), ftoa(f.Shipped), ftoa(f.Inventory),
		})
	}
	return rows
}

func dispatchRows(result *dto.PlanResult) [][]string {
	rows := [][]string{{"group", "facility", "period", "sub_period", "vehicles", "weight_load", "volume_load",
		"weight_utilization_pct", "volume_utilization_pct", "binding", "shortfall"}}
	for _, d := range result.Dispatches {
		rows = append(rows, []string{
			string(d.Group), string(d.Facility), strconv.Itoa(d.Slot.Period), strconv.Itoa(d.Slot.SubPeriod),
			strconv.Itoa(d.Vehicles), ftoa(d.WeightLoad), ftoa(d.VolumeLoad),
			ftoa(d.WeightUtilization), ftoa(d.VolumeUtilization), d.Binding, strconv.FormatBool(d.Shortfall),
		})
	}
	return rows
}

func expansionRows(result *dto.PlanResult) [][]string {
	rows := [][]string{{"facility", "tier", "area", "price", "cost"}}
	for _, e := range result.Expansions {
		for _, t := range e.Tiers {
			rows = append(rows, []string{
				string(e.Facility), strconv.Itoa(t.Tier), ftoa(t.Area), t.Price.String(), t.Cost.String(),
			})
		}
	}
	return rows
}

func repackRows(result *dto.PlanResult) [][]string {
	rows := [][]string{{"sku", "facility", "eligible", "repacked"}}
	for _, r := range result.Repack {
		rows = append(rows, []string{
			string(r.SKU), string(r.Facility), strconv.FormatBool(r.Eligible), strconv.FormatBool(r.Repacked),
		})
	}
	return rows
}

func slackRows(result *dto.PlanResult) [][]string {
	rows := [][]string{{"family", "total", "penalty", "contribution"}}
	for _, s := range result.Slack {
		rows = append(rows, []string{s.Family, ftoa(s.Total), ftoa(s.Penalty), ftoa(s.Contribution)})
	}
	return rows
}

package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vsinha/wareopt/pkg/application/dto"
)

// SummaryRow is one line of a sweep comparison
type SummaryRow struct {
	ScenarioID    string  `json:"scenario_id" yaml:"scenario_id"`
	Status        string  `json:"status" yaml:"status"`
	Objective     float64 `json:"objective" yaml:"objective"`
	ExpansionCost string  `json:"expansion_cost" yaml:"expansion_cost"`
	Area          float64 `json:"area" yaml:"area"`
	Vehicles      int     `json:"vehicles" yaml:"vehicles"`
	Shortfalls    int     `json:"shortfalls" yaml:"shortfalls"`
	UnmetDemand   float64 `json:"unmet_demand" yaml:"unmet_demand"`
	CoverageGap   float64 `json:"coverage_gap" yaml:"coverage_gap"`
	SolveSeconds  float64 `json:"solve_seconds" yaml:"solve_seconds"`
}

// Summarize reduces each result to a comparison row, in input order
func Summarize(results []*dto.PlanResult) []SummaryRow {
	rows := make([]SummaryRow, 0, len(results))
	for _, r := range results {
		row := SummaryRow{
			ScenarioID:    r.ScenarioID,
			Status:        r.Status,
			Objective:     r.Objective,
			ExpansionCost: r.Costs.Expansion.StringFixed(2),
			Shortfalls:    len(r.Shortfalls()),
			UnmetDemand:   r.SlackTotal(dto.SlackDemand),
			CoverageGap:   r.SlackTotal(dto.SlackCoverage),
			SolveSeconds:  r.SolveTime.Seconds(),
		}
		for _, e := range r.Expansions {
			row.Area += e.Area
		}
		for _, d := range r.Dispatches {
			row.Vehicles += d.Vehicles
		}
		rows = append(rows, row)
	}
	return rows
}

// GenerateSummary renders the sweep comparison table
func GenerateSummary(results []*dto.PlanResult, config Config) error {
	rows := Summarize(results)
	w := config.out()

	switch config.Format {
	case "text", "svg":
		fmt.Fprintf(w, "📈 Sweep Summary (%d scenarios)\n\n", len(rows))
		fmt.Fprintf(w, "%-28s %-22s %-14s %-12s %-10s %-9s %-10s %-10s %-10s\n",
			"Scenario", "Status", "Objective", "Expansion", "Area", "Trucks", "Short", "Unmet", "Cov. Gap")
		for _, r := range rows {
			fmt.Fprintf(w, "%-28s %-22s %-14.2f %-12s %-10.1f %-9d %-10d %-10.2f %-10.2f\n",
				r.ScenarioID, r.Status, r.Objective, r.ExpansionCost, r.Area, r.Vehicles, r.Shortfalls,
				r.UnmetDemand, r.CoverageGap)
		}
		return nil
	case "json":
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		return emit(config, "summary.json", data)
	case "yaml":
		data, err := yaml.Marshal(rows)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		return emit(config, "summary.yaml", data)
	case "csv":
		var buf bytes.Buffer
		cw := csv.NewWriter(&buf)
		_ = cw.Write([]string{"scenario_id", "status", "objective", "expansion_cost", "area", "vehicles",
			"shortfalls", "unmet_demand", "coverage_gap", "solve_seconds"})
		for _, r := range rows {
			_ = cw.Write([]string{
				r.ScenarioID, r.Status, ftoa(r.Objective), r.ExpansionCost, ftoa(r.Area),
				strconv.Itoa(r.Vehicles), strconv.Itoa(r.Shortfalls), ftoa(r.UnmetDemand),
				ftoa(r.CoverageGap), ftoa(r.SolveSeconds),
			})
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		return emit(config, "summary.csv", bytes.TrimRight(buf.Bytes(), "\n"))
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

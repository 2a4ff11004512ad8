package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/wareopt/pkg/application/dto"
	"github.com/vsinha/wareopt/pkg/domain/entities"
)

func sampleResult() *dto.PlanResult {
	return &dto.PlanResult{
		ScenarioID: "dom30",
		Status:     "optimal",
		Objective:  403,
		Nodes:      5,
		SolveTime:  2 * time.Second,
		Expansions: []dto.FacilityExpansion{{
			Facility: "SAC",
			Area:     150,
			Cost:     decimal.NewFromInt(400),
			Tiers: []dto.TierUsage{
				{Tier: 1, Area: 100, Price: decimal.NewFromInt(2), Cost: decimal.NewFromInt(200)},
				{Tier: 2, Area: 50, Price: decimal.NewFromInt(4), Cost: decimal.NewFromInt(200)},
			},
			Shelves: []dto.ShelfAddition{{StorageType: entities.Rack, Added: 3}},
		}},
		Flows: []dto.FlowRecord{{
			Slot: entities.TimeSlot{Period: 1, SubPeriod: 1}, SKU: "BOLT-M8", Facility: "SAC",
			Ordered: 5, Shipped: 500, Inventory: 0,
		}},
		Dispatches: []dto.DispatchRecord{
			{Group: "FASTCO", Facility: "SAC", Slot: entities.TimeSlot{Period: 1, SubPeriod: 2}, SlotIndex: 1,
				Vehicles: 1, WeightUtilization: 88.89, VolumeUtilization: 55.56, Binding: "weight", Shortfall: true},
			{Group: "FASTCO", Facility: "RNO", Slot: entities.TimeSlot{Period: 2, SubPeriod: 1}, SlotIndex: 2,
				Vehicles: 2, WeightUtilization: 95, VolumeUtilization: 91, Binding: "weight"},
		},
		Slack: []dto.SlackSummary{
			{Family: dto.SlackDemand, Total: 0, Penalty: 1000},
			{Family: dto.SlackCoverage, Total: 12.5, Penalty: 10, Contribution: 125},
		},
		Costs: dto.CostBreakdown{
			Expansion: decimal.NewFromInt(400),
			Dispatch:  decimal.NewFromInt(300),
			Penalties: decimal.NewFromInt(125),
			Holding:   decimal.Zero,
		},
	}
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(sampleResult(), Config{Format: "text", Out: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Scenario dom30", "Status: optimal", "400.00", "Rack +3", "FASTCO", "coverage"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected text output to contain %q", want)
		}
	}
	if strings.Contains(out, "Flows:") {
		t.Error("Expected flows only in verbose output")
	}
}

func TestGenerate_TextBlockedDispatches(t *testing.T) {
	result := sampleResult()
	result.Blocked = []dto.BlockedDispatch{{
		Group: "TRUCK", Facility: "SAC", Slot: entities.TimeSlot{Period: 1, SubPeriod: 2}, SlotIndex: 1,
		UnmetUnits: 100, Vehicles: 1, WeightUtilization: 88.89, VolumeUtilization: 55.56, Binding: "weight",
	}}

	var buf bytes.Buffer
	if err := Generate(result, Config{Format: "text", Out: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Blocked by minimum fill", "TRUCK", "100.00", "88.9", "55.6"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected text output to contain %q", want)
		}
	}
}

func TestGenerate_TextWithoutSolution(t *testing.T) {
	var buf bytes.Buffer
	result := &dto.PlanResult{ScenarioID: "x", Status: "infeasible"}
	if err := Generate(result, Config{Format: "text", Out: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No solution available.") {
		t.Errorf("Expected a no-solution notice, got:\n%s", buf.String())
	}
}

func TestGenerate_EncodedFormats(t *testing.T) {
	dir := t.TempDir()

	if err := Generate(sampleResult(), Config{Format: "json", OutputDir: dir}); err != nil {
		t.Fatalf("json: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "dom30.json"))
	if err != nil {
		t.Fatalf("Expected json file: %v", err)
	}
	var decoded dto.PlanResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Invalid json: %v", err)
	}
	if len(decoded.Dispatches) != 2 {
		t.Errorf("Expected 2 dispatches, got %d", len(decoded.Dispatches))
	}

	var buf bytes.Buffer
	if err := Generate(sampleResult(), Config{Format: "yaml", Out: &buf}); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var generic map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &generic); err != nil {
		t.Fatalf("Invalid yaml: %v", err)
	}
	if generic["scenario_id"] != "dom30" {
		t.Errorf("Expected scenario_id dom30, got %v", generic["scenario_id"])
	}
}

func TestGenerate_CSV(t *testing.T) {
	if err := Generate(sampleResult(), Config{Format: "csv"}); err == nil {
		t.Error("Expected an error without an output directory")
	}

	dir := t.TempDir()
	if err := Generate(sampleResult(), Config{Format: "csv", OutputDir: dir}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	file, err := os.Open(filepath.Join(dir, "dom30_expansions.csv"))
	if err != nil {
		t.Fatalf("Expected expansions file: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Invalid csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header and 2 tier rows, got %d rows", len(rows))
	}
	if rows[2][1] != "2" || rows[2][4] != "200" {
		t.Errorf("Unexpected second tier row: %v", rows[2])
	}

	for _, name := range []string{"flows", "dispatches", "repack", "slack"} {
		if _, err := os.Stat(filepath.Join(dir, "dom30_"+name+".csv")); err != nil {
			t.Errorf("Expected %s CSV: %v", name, err)
		}
	}
}

func TestGenerate_SVG(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(sampleResult(), Config{Format: "svg", Out: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	svg := buf.String()
	if !strings.HasPrefix(svg, "<svg") {
		t.Fatalf("Expected an svg document")
	}
	if strings.Count(svg, `class="dispatch-cell"`) != 2 {
		t.Errorf("Expected one cell per dispatch")
	}
	if !strings.Contains(svg, "#FF9800") {
		t.Error("Expected the shortfall colour")
	}

	buf.Reset()
	if err := Generate(&dto.PlanResult{ScenarioID: "empty"}, Config{Format: "svg", Out: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No Dispatches Planned") {
		t.Error("Expected the empty chart")
	}
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	if err := Generate(sampleResult(), Config{Format: "pdf"}); err == nil {
		t.Error("Expected an error for an unsupported format")
	}
}

func TestSummarize(t *testing.T) {
	rows := Summarize([]*dto.PlanResult{sampleResult(), {ScenarioID: "bad", Status: "infeasible"}})
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	got := rows[0]
	if got.Vehicles != 3 || got.Shortfalls != 1 || got.Area != 150 || got.CoverageGap != 12.5 || got.ExpansionCost != "400.00" {
		t.Errorf("Unexpected summary row: %+v", got)
	}
	if rows[1].Status != "infeasible" || rows[1].Vehicles != 0 {
		t.Errorf("Unexpected summary row: %+v", rows[1])
	}

	var buf bytes.Buffer
	if err := GenerateSummary([]*dto.PlanResult{sampleResult()}, Config{Format: "csv", Out: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "dom30,optimal,403,400.00,150,3,1,0,12.5,2") {
		t.Errorf("Unexpected csv summary: %v", lines)
	}
}

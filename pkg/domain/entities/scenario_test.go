package entities

import (
	"testing"
	"time"
)

func TestScenario_Validation(t *testing.T) {
	sc, err := NewScenario("base", map[string]float64{"Domestic": 1, "International": 3}, time.Minute)
	if err != nil {
		t.Fatalf("Expected valid scenario: %v", err)
	}
	if sc.Coverage("International") != 3 || sc.Coverage("missing") != 0 {
		t.Errorf("Unexpected coverage lookup")
	}

	testCases := []struct {
		name        string
		mutate      func(*Scenario)
		expectError string
	}{
		{"empty id", func(s *Scenario) { s.ID = "" }, "scenario id cannot be empty"},
		{"negative coverage", func(s *Scenario) { s.CoverageDays["Domestic"] = -1 },
			`coverage days for group "Domestic" cannot be negative, got -1`},
		{"bad policy", func(s *Scenario) { s.Settings.UtilizationPolicy = "sometimes" },
			`scenario base: unknown utilization_policy "sometimes"`},
		{"threshold above one", func(s *Scenario) { s.Settings.MinUtilization = 1.5 },
			"scenario base: min_utilization must be between 0 and 1, got 1.50"},
		{"zero big M", func(s *Scenario) { s.Settings.BigM = 0 }, "scenario base: big_m must be positive, got 0"},
		{"unset fill cap", func(s *Scenario) { s.Settings.ShelfFillCap = 0 },
			"scenario base: shelf_fill_cap must be above 0 and at most 1, got 0.00"},
		{"fill cap above one", func(s *Scenario) { s.Settings.ShelfFillCap = 1.2 },
			"scenario base: shelf_fill_cap must be above 0 and at most 1, got 1.20"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := &Scenario{ID: "base", CoverageDays: map[string]float64{"Domestic": 1}, Settings: DefaultSettings()}
			tc.mutate(s)
			err := s.Validate()
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestCoverageGrid(t *testing.T) {
	grid := map[string][]float64{
		"International": {3, 5},
		"Domestic":      {1, 2, 3},
	}
	scenarios := CoverageGrid("sweep", grid, DefaultSettings(), 0)
	if len(scenarios) != 6 {
		t.Fatalf("Expected 6 scenarios, got %d", len(scenarios))
	}
	if scenarios[0].ID != "sweep_Domestic1_International3" {
		t.Errorf("Unexpected first scenario id %s", scenarios[0].ID)
	}
	seen := make(map[string]bool)
	for _, sc := range scenarios {
		if seen[sc.ID] {
			t.Errorf("Duplicate scenario id %s", sc.ID)
		}
		seen[sc.ID] = true
	}
}

func TestSpreadPeriodDemand(t *testing.T) {
	cal := Calendar{SubPeriodsPerPeriod: 21, Periods: 2}
	demands, err := SpreadPeriodDemand(cal, "SKU", 2, 420)
	if err != nil {
		t.Fatalf("SpreadPeriodDemand failed: %v", err)
	}
	if len(demands) != 21 {
		t.Fatalf("Expected 21 daily rows, got %d", len(demands))
	}
	if demands[0].Slot != 21 || demands[0].Quantity != 20 {
		t.Errorf("Expected first row at slot 21 with 20 units, got %+v", demands[0])
	}
	if _, err := SpreadPeriodDemand(cal, "SKU", 3, 1); err == nil {
		t.Errorf("Expected out-of-horizon period to be rejected")
	}
}

package entities

import (
	"fmt"
	"sort"
	"time"
)

// UtilizationPolicy controls how the minimum vehicle fill is enforced
type UtilizationPolicy string

const (
	// UtilizationStrict makes the minimum fill a hard bound on both weight and volume
	UtilizationStrict UtilizationPolicy = "strict"
	// UtilizationSoft lets the fill fall short against a penalized slack
	UtilizationSoft UtilizationPolicy = "soft"
	// UtilizationReport imposes no lower bound and flags shortfalls after the solve
	UtilizationReport UtilizationPolicy = "report"
)

// Penalties are the per-unit weights of each soft-constraint family
type Penalties struct {
	Demand          float64 `json:"demand" yaml:"demand" mapstructure:"demand"`
	Overcapacity    float64 `json:"overcapacity" yaml:"overcapacity" mapstructure:"overcapacity"`
	Coverage        float64 `json:"coverage" yaml:"coverage" mapstructure:"coverage"`
	DispatchOverage float64 `json:"dispatch_overage" yaml:"dispatch_overage" mapstructure:"dispatch_overage"`
	Utilization     float64 `json:"utilization" yaml:"utilization" mapstructure:"utilization"`
}

// Settings are the immutable model constants shared by every generator of one scenario
type Settings struct {
	Penalties         Penalties         `json:"penalties" yaml:"penalties" mapstructure:"penalties"`
	BigM              float64           `json:"big_m" yaml:"big_m" mapstructure:"big_m" jsonschema_description:"Upper bound linking package counts to the repack decision"`
	HoldingCost       float64           `json:"holding_cost" yaml:"holding_cost" mapstructure:"holding_cost" jsonschema_description:"Cost per unit held per slot; breaks ties toward lean stock"`
	VehicleCost       float64           `json:"vehicle_cost" yaml:"vehicle_cost" mapstructure:"vehicle_cost"`
	UtilizationPolicy UtilizationPolicy `json:"utilization_policy" yaml:"utilization_policy" mapstructure:"utilization_policy" jsonschema:"enum=strict,enum=soft,enum=report"`
	MinUtilization    float64           `json:"min_utilization" yaml:"min_utilization" mapstructure:"min_utilization"`
	DeliveryWindow    int               `json:"delivery_window" yaml:"delivery_window" mapstructure:"delivery_window" jsonschema_description:"Slots an order may arrive after its nominal lead time"`
	IntegerShelves    bool              `json:"integer_shelves" yaml:"integer_shelves" mapstructure:"integer_shelves"`
	// ShelfFillCap is the usable fraction of shelving: of current shelves at a fixed facility,
	// of added shelves only at an expandable one
	ShelfFillCap float64 `json:"shelf_fill_cap" yaml:"shelf_fill_cap" mapstructure:"shelf_fill_cap"`
}

// DefaultSettings returns the production defaults: demand > overcapacity > coverage > dispatch overage.
func DefaultSettings() Settings {
	return Settings{
		Penalties: Penalties{
			Demand:          1000,
			Overcapacity:    100,
			Coverage:        10,
			DispatchOverage: 5,
			Utilization:     1,
		},
		BigM:              1e6,
		HoldingCost:       0.01,
		VehicleCost:       100,
		UtilizationPolicy: UtilizationStrict,
		MinUtilization:    0.90,
		DeliveryWindow:    0,
		IntegerShelves:    true,
		ShelfFillCap:      1,
	}
}

// Validate checks the settings for internal consistency
func (s Settings) Validate() error {
	p := s.Penalties
	for name, v := range map[string]float64{
		"demand": p.Demand, "overcapacity": p.Overcapacity, "coverage": p.Coverage,
		"dispatch_overage": p.DispatchOverage, "utilization": p.Utilization,
	} {
		if v < 0 {
			return fmt.Errorf("penalty %s cannot be negative, got %g", name, v)
		}
	}
	if s.BigM <= 0 {
		return fmt.Errorf("big_m must be positive, got %g", s.BigM)
	}
	if s.HoldingCost < 0 {
		return fmt.Errorf("holding_cost cannot be negative, got %g", s.HoldingCost)
	}
	if s.VehicleCost < 0 {
		return fmt.Errorf("vehicle_cost cannot be negative, got %g", s.VehicleCost)
	}
	switch s.UtilizationPolicy {
	case UtilizationStrict, UtilizationSoft, UtilizationReport:
	default:
		return fmt.Errorf("unknown utilization_policy %q", s.UtilizationPolicy)
	}
	if s.MinUtilization < 0 || s.MinUtilization > 1 {
		return fmt.Errorf("min_utilization must be between 0 and 1, got %.2f", s.MinUtilization)
	}
	if s.ShelfFillCap <= 0 || s.ShelfFillCap > 1 {
		return fmt.Errorf("shelf_fill_cap must be above 0 and at most 1, got %.2f", s.ShelfFillCap)
	}
	if s.DeliveryWindow < 0 {
		return fmt.Errorf("delivery_window cannot be negative, got %d", s.DeliveryWindow)
	}
	return nil
}

// Scenario is one parameterization of the optimization run
type Scenario struct {
	ID string `json:"id" yaml:"id" mapstructure:"id"`
	// CoverageDays maps a SKU coverage group to its required days of inventory
	CoverageDays map[string]float64 `json:"coverage_days" yaml:"coverage_days" mapstructure:"coverage_days"`
	TimeLimit    time.Duration      `json:"time_limit,omitempty" yaml:"time_limit,omitempty" mapstructure:"time_limit"`
	Settings     Settings           `json:"settings" yaml:"settings" mapstructure:"settings"`
}

// NewScenario creates a scenario with default settings
func NewScenario(id string, coverageDays map[string]float64, timeLimit time.Duration) (*Scenario, error) {
	sc := &Scenario{
		ID:           id,
		CoverageDays: coverageDays,
		TimeLimit:    timeLimit,
		Settings:     DefaultSettings(),
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Validate checks the scenario
func (sc *Scenario) Validate() error {
	if sc.ID == "" {
		return fmt.Errorf("scenario id cannot be empty")
	}
	if sc.TimeLimit < 0 {
		return fmt.Errorf("time limit cannot be negative, got %s", sc.TimeLimit)
	}
	for group, days := range sc.CoverageDays {
		if days < 0 {
			return fmt.Errorf("coverage days for group %q cannot be negative, got %g", group, days)
		}
	}
	if err := sc.Settings.Validate(); err != nil {
		return fmt.Errorf("scenario %s: %w", sc.ID, err)
	}
	return nil
}

// Coverage returns the coverage target for a group, zero when none is configured
func (sc *Scenario) Coverage(group string) float64 {
	return sc.CoverageDays[group]
}

// CoverageGrid expands every combination of per-group coverage values into scenarios.
// IDs are derived from the values so a rerun maps to the same keys.
func CoverageGrid(prefix string, grid map[string][]float64, base Settings, timeLimit time.Duration) []*Scenario {
	groups := make([]string, 0, len(grid))
	for g := range grid {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	combos := []map[string]float64{{}}
	for _, g := range groups {
		next := make([]map[string]float64, 0, len(combos)*len(grid[g]))
		for _, c := range combos {
			for _, v := range grid[g] {
				m := make(map[string]float64, len(c)+1)
				for k, x := range c {
					m[k] = x
				}
				m[g] = v
				next = append(next, m)
			}
		}
		combos = next
	}

	out := make([]*Scenario, 0, len(combos))
	for _, c := range combos {
		id := prefix
		for _, g := range groups {
			id += fmt.Sprintf("_%s%g", g, c[g])
		}
		out = append(out, &Scenario{ID: id, CoverageDays: c, TimeLimit: timeLimit, Settings: base})
	}
	return out
}

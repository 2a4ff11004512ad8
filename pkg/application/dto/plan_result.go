package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/wareopt/pkg/domain/entities"
)

// Slack family names as reported in results
const (
	SlackDemand          = "demand"
	SlackCoverage        = "coverage"
	SlackOvercapacity    = "overcapacity"
	SlackDispatchOverage = "dispatch_overage"
	SlackUtilization     = "utilization"
)

// PlanResult contains the complete output of one scenario solve
type PlanResult struct {
	ScenarioID string        `json:"scenario_id" yaml:"scenario_id"`
	Status     string        `json:"status" yaml:"status"`
	Objective  float64       `json:"objective" yaml:"objective"`
	Bound      float64       `json:"bound" yaml:"bound"`
	Gap        float64       `json:"gap" yaml:"gap"`
	Nodes      int           `json:"nodes" yaml:"nodes"`
	SolveTime  time.Duration `json:"solve_time" yaml:"solve_time"`
	ModelStats ModelStats    `json:"model_stats" yaml:"model_stats"`

	Expansions []FacilityExpansion `json:"expansions" yaml:"expansions"`
	Flows      []FlowRecord        `json:"flows" yaml:"flows"`
	Repack     []RepackDecision    `json:"repack" yaml:"repack"`
	Dispatches []DispatchRecord    `json:"dispatches" yaml:"dispatches"`
	Blocked    []BlockedDispatch   `json:"blocked_dispatches,omitempty" yaml:"blocked_dispatches,omitempty"`
	Slack      []SlackSummary      `json:"slack" yaml:"slack"`
	Costs      CostBreakdown       `json:"costs" yaml:"costs"`
}

// ModelStats sizes the assembled program
type ModelStats struct {
	Variables   int `json:"variables" yaml:"variables"`
	Integers    int `json:"integers" yaml:"integers"`
	Constraints int `json:"constraints" yaml:"constraints"`
}

// FacilityExpansion is the capacity decision for one expandable facility
type FacilityExpansion struct {
	Facility entities.FacilityID `json:"facility" yaml:"facility"`
	Area     float64             `json:"area" yaml:"area"`
	Cost     decimal.Decimal     `json:"cost" yaml:"cost"`
	Tiers    []TierUsage         `json:"tiers" yaml:"tiers"`
	Shelves  []ShelfAddition     `json:"shelves" yaml:"shelves"`
}

// TierUsage is the area bought in one price tier
type TierUsage struct {
	Tier  int             `json:"tier" yaml:"tier"`
	Area  float64         `json:"area" yaml:"area"`
	Price decimal.Decimal `json:"price" yaml:"price"`
	Cost  decimal.Decimal `json:"cost" yaml:"cost"`
}

// ShelfAddition is the number of shelves added for one storage type
type ShelfAddition struct {
	StorageType entities.StorageType `json:"storage_type" yaml:"storage_type"`
	Added       float64              `json:"added" yaml:"added"`
}

// FlowRecord is the material flow of one SKU at one facility in one slot.
// Ordered and Arrived count as-received packs; the other quantities are units.
type FlowRecord struct {
	Slot             entities.TimeSlot   `json:"slot" yaml:"slot"`
	SlotIndex        entities.SlotIndex  `json:"slot_index" yaml:"slot_index"`
	SKU              entities.SKUID      `json:"sku" yaml:"sku"`
	Facility         entities.FacilityID `json:"facility" yaml:"facility"`
	Ordered          float64             `json:"ordered" yaml:"ordered"`
	Arrived          float64             `json:"arrived" yaml:"arrived"`
	ArrivedUnits     float64             `json:"arrived_units" yaml:"arrived_units"`
	Shipped          float64             `json:"shipped" yaml:"shipped"`
	Inventory        float64             `json:"inventory" yaml:"inventory"`
	PackagesReceived float64             `json:"packages_as_received" yaml:"packages_as_received"`
	PackagesRepacked float64             `json:"packages_repacked" yaml:"packages_repacked"`
}

// RepackDecision is the storage format chosen for a SKU at a facility
type RepackDecision struct {
	SKU      entities.SKUID      `json:"sku" yaml:"sku"`
	Facility entities.FacilityID `json:"facility" yaml:"facility"`
	Eligible bool                `json:"eligible" yaml:"eligible"`
	Repacked bool                `json:"repacked" yaml:"repacked"`
}

// DispatchRecord is the vehicle plan of one supplier group at one facility in one slot
type DispatchRecord struct {
	Group             entities.SupplierGroupID `json:"group" yaml:"group"`
	Facility          entities.FacilityID      `json:"facility" yaml:"facility"`
	Slot              entities.TimeSlot        `json:"slot" yaml:"slot"`
	SlotIndex         entities.SlotIndex       `json:"slot_index" yaml:"slot_index"`
	Vehicles          int                      `json:"vehicles" yaml:"vehicles"`
	WeightLoad        float64                  `json:"weight_load" yaml:"weight_load"`
	VolumeLoad        float64                  `json:"volume_load" yaml:"volume_load"`
	WeightUtilization float64                  `json:"weight_utilization_pct" yaml:"weight_utilization_pct"`
	VolumeUtilization float64                  `json:"volume_utilization_pct" yaml:"volume_utilization_pct"`
	Binding           string                   `json:"binding" yaml:"binding"`
	Shortfall         bool                     `json:"shortfall" yaml:"shortfall"`
}

// BlockedDispatch is a lane and slot where a hard minimum fill kept a load off the road.
// The load is what the lane carried plus the unmet demand that would have arrived on it;
// the utilizations are for the fewest vehicles able to carry that load.
type BlockedDispatch struct {
	Group             entities.SupplierGroupID `json:"group" yaml:"group"`
	Facility          entities.FacilityID      `json:"facility" yaml:"facility"`
	Slot              entities.TimeSlot        `json:"slot" yaml:"slot"`
	SlotIndex         entities.SlotIndex       `json:"slot_index" yaml:"slot_index"`
	UnmetUnits        float64                  `json:"unmet_units" yaml:"unmet_units"`
	Vehicles          int                      `json:"vehicles" yaml:"vehicles"`
	WeightLoad        float64                  `json:"weight_load" yaml:"weight_load"`
	VolumeLoad        float64                  `json:"volume_load" yaml:"volume_load"`
	WeightUtilization float64                  `json:"weight_utilization_pct" yaml:"weight_utilization_pct"`
	VolumeUtilization float64                  `json:"volume_utilization_pct" yaml:"volume_utilization_pct"`
	Binding           string                   `json:"binding" yaml:"binding"`
}

// SlackSummary totals one soft-constraint family
type SlackSummary struct {
	Family       string  `json:"family" yaml:"family"`
	Total        float64 `json:"total" yaml:"total"`
	Penalty      float64 `json:"penalty" yaml:"penalty"`
	Contribution float64 `json:"contribution" yaml:"contribution"`
}

// CostBreakdown splits the objective into its parts
type CostBreakdown struct {
	Expansion decimal.Decimal `json:"expansion" yaml:"expansion"`
	Dispatch  decimal.Decimal `json:"dispatch" yaml:"dispatch"`
	Penalties decimal.Decimal `json:"penalties" yaml:"penalties"`
	Holding   decimal.Decimal `json:"holding" yaml:"holding"`
}

// SlackTotal returns the total of one slack family, 0 when absent
func (r *PlanResult) SlackTotal(family string) float64 {
	for _, s := range r.Slack {
		if s.Family == family {
			return s.Total
		}
	}
	return 0
}

// Shortfalls lists dispatches below the minimum fill
func (r *PlanResult) Shortfalls() []DispatchRecord {
	var out []DispatchRecord
	for _, d := range r.Dispatches {
		if d.Shortfall {
			out = append(out, d)
		}
	}
	return out
}

// GetSummary renders a one-line digest of the result
func (r *PlanResult) GetSummary() map[string]interface{} {
	return map[string]interface{}{
		"scenario":   r.ScenarioID,
		"status":     r.Status,
		"objective":  r.Objective,
		"expansions": len(r.Expansions),
		"dispatches": len(r.Dispatches),
		"shortfalls": len(r.Shortfalls()),
		"blocked":    len(r.Blocked),
		"solve_time": r.SolveTime.String(),
	}
}

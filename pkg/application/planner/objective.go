package planner

import (
	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/mip"
)

// BuildObjective sets the minimization objective: expansion tiers at their prices,
// every slack family at its penalty, vehicles at the per-dispatch cost and a small
// holding charge on inventory.
func BuildObjective(m *mip.Model, ix *Index, v *Variables, s entities.Settings) {
	for _, f := range ix.Facilities {
		for k, tier := range f.Expansion.Tiers {
			if id, ok := v.Tier[tierKey{facility: f.ID, tier: k}]; ok {
				m.AddObjective(id, tier.Price.InexactFloat64())
			}
		}
	}

	for _, id := range v.DemandSlack {
		m.AddObjective(id, s.Penalties.Demand)
	}
	for _, id := range v.CoverageSlack {
		m.AddObjective(id, s.Penalties.Coverage)
	}
	for _, id := range v.CapacitySlack {
		m.AddObjective(id, s.Penalties.Overcapacity)
	}
	for _, id := range v.UtilizationSlack {
		m.AddObjective(id, s.Penalties.Utilization)
	}
	for _, id := range v.OverageSlack {
		m.AddObjective(id, s.Penalties.DispatchOverage)
	}

	for _, id := range v.Vehicles {
		m.AddObjective(id, s.VehicleCost)
	}
	if s.HoldingCost != 0 {
		for _, id := range v.Inventory {
			m.AddObjective(id, s.HoldingCost)
		}
	}
}

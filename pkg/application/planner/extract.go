package planner

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/wareopt/pkg/application/dto"
	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/domain/services"
	"github.com/vsinha/wareopt/pkg/mip"
)

const levelTolerance = 1e-6

// level reads a variable and snaps solver noise: integral columns are rounded,
// continuous ones lose anything below the tolerance.
func level(m *mip.Model, sol *mip.Solution, id mip.VarID) float64 {
	x := sol.Value(id)
	if m.Var(id).IsIntegral() {
		return math.Round(x)
	}
	if math.Abs(x) < levelTolerance {
		return 0
	}
	return math.Round(x/levelTolerance) * levelTolerance
}

// Extract turns the variable levels of a solved model into a plan result.
// The solution must carry values; callers check Status.HasValues first.
func Extract(sc *entities.Scenario, m *mip.Model, ix *Index, v *Variables, sol *mip.Solution) *dto.PlanResult {
	s := sc.Settings
	result := &dto.PlanResult{
		ScenarioID: sc.ID,
		Status:     sol.Status.String(),
		Objective:  sol.Objective,
		Bound:      sol.Bound,
		Gap:        sol.Gap(),
		Nodes:      sol.Nodes,
		SolveTime:  sol.Elapsed,
		ModelStats: modelStats(m),
	}

	result.Expansions = extractExpansions(m, ix, v, sol)
	result.Flows = extractFlows(m, ix, v, sol)
	result.Repack = extractRepack(m, ix, v, sol)
	result.Dispatches = extractDispatches(m, ix, v, sol, s.MinUtilization)
	result.Blocked = extractBlocked(m, ix, v, sol, s)
	result.Slack = extractSlack(m, v, sol, s.Penalties)

	expansion := decimal.Zero
	for _, e := range result.Expansions {
		expansion = expansion.Add(e.Cost)
	}
	vehicles := 0
	for _, d := range result.Dispatches {
		vehicles += d.Vehicles
	}
	penalties := decimal.Zero
	for _, sl := range result.Slack {
		penalties = penalties.Add(decimal.NewFromFloat(sl.Contribution))
	}
	held := 0.0
	for _, f := range result.Flows {
		held += f.Inventory
	}
	result.Costs = dto.CostBreakdown{
		Expansion: expansion,
		Dispatch:  decimal.NewFromFloat(s.VehicleCost).Mul(decimal.NewFromInt(int64(vehicles))),
		Penalties: penalties.Round(4),
		Holding:   decimal.NewFromFloat(s.HoldingCost).Mul(decimal.NewFromFloat(held)).Round(4),
	}
	return result
}

func modelStats(m *mip.Model) dto.ModelStats {
	stats := dto.ModelStats{Variables: m.NumVars(), Constraints: m.NumConstraints()}
	for _, x := range m.Vars() {
		if x.IsIntegral() {
			stats.Integers++
		}
	}
	return stats
}

func extractExpansions(m *mip.Model, ix *Index, v *Variables, sol *mip.Solution) []dto.FacilityExpansion {
	var out []dto.FacilityExpansion
	for _, f := range ix.Facilities {
		areaVar, ok := v.Area[f.ID]
		if !ok {
			continue
		}
		e := dto.FacilityExpansion{Facility: f.ID, Area: level(m, sol, areaVar), Cost: decimal.Zero}
		for k, tier := range f.Expansion.Tiers {
			used := level(m, sol, v.Tier[tierKey{facility: f.ID, tier: k}])
			cost := tier.Price.Mul(decimal.NewFromFloat(used))
			e.Tiers = append(e.Tiers, dto.TierUsage{Tier: k + 1, Area: used, Price: tier.Price, Cost: cost})
			e.Cost = e.Cost.Add(cost)
		}
		for _, c := range ix.Cells {
			if c.Facility.ID != f.ID {
				continue
			}
			added := level(m, sol, v.AddShelves[cellKey{facility: f.ID, st: c.StorageType}])
			e.Shelves = append(e.Shelves, dto.ShelfAddition{StorageType: c.StorageType, Added: added})
		}
		out = append(out, e)
	}
	return out
}

func extractFlows(m *mip.Model, ix *Index, v *Variables, sol *mip.Solution) []dto.FlowRecord {
	out := make([]dto.FlowRecord, 0, len(ix.Pairs)*ix.Slots)
	for _, p := range ix.Pairs {
		for t := 0; t < ix.Slots; t++ {
			slot := entities.SlotIndex(t)
			k := flowKey{sku: p.SKU.ID, facility: p.Facility.ID, t: slot}
			r := dto.FlowRecord{
				Slot:             ix.Calendar.Slot(slot),
				SlotIndex:        slot,
				SKU:              p.SKU.ID,
				Facility:         p.Facility.ID,
				Inventory:        level(m, sol, v.Inventory[k]),
				PackagesReceived: level(m, sol, v.PkgReceived[k]),
				PackagesRepacked: level(m, sol, v.PkgRepacked[k]),
			}
			if id, ok := v.Order[k]; ok {
				r.Ordered = level(m, sol, id)
			}
			if id, ok := v.Ship[k]; ok {
				r.Shipped = level(m, sol, id)
			}
			for _, l := range ix.Incoming(p, slot) {
				r.Arrived += level(m, sol, v.DeliveryVar(l))
			}
			r.ArrivedUnits = r.Arrived * p.SKU.ConversionRatio
			out = append(out, r)
		}
	}
	return out
}

func extractRepack(m *mip.Model, ix *Index, v *Variables, sol *mip.Solution) []dto.RepackDecision {
	out := make([]dto.RepackDecision, 0, len(ix.Pairs))
	for _, p := range ix.Pairs {
		out = append(out, dto.RepackDecision{
			SKU:      p.SKU.ID,
			Facility: p.Facility.ID,
			Eligible: p.SKU.RepackEligible,
			Repacked: level(m, sol, v.Repack[p.key()]) > 0.5,
		})
	}
	return out
}

func extractDispatches(m *mip.Model, ix *Index, v *Variables, sol *mip.Solution, minUtilization float64) []dto.DispatchRecord {
	var out []dto.DispatchRecord
	for _, lane := range ix.Lanes {
		for t := 0; t < ix.Slots; t++ {
			slot := entities.SlotIndex(t)
			id, ok := v.Vehicles[laneKey{group: lane.Group.ID, facility: lane.Facility.ID, t: slot}]
			if !ok {
				continue
			}
			count := int(level(m, sol, id))
			if count == 0 {
				continue
			}
			weight, volume := carriedLoad(m, ix, v, sol, lane, slot)
			a := services.AnalyzeDispatch(weight, volume, count, lane.Group.Vehicle, minUtilization)
			out = append(out, dto.DispatchRecord{
				Group:             lane.Group.ID,
				Facility:          lane.Facility.ID,
				Slot:              ix.Calendar.Slot(slot),
				SlotIndex:         slot,
				Vehicles:          count,
				WeightLoad:        weight,
				VolumeLoad:        volume,
				WeightUtilization: a.WeightUtilization,
				VolumeUtilization: a.VolumeUtilization,
				Binding:           string(a.Binding),
				Shortfall:         a.Shortfall,
			})
		}
	}
	return out
}

// carriedLoad is the bulk weight and volume arriving on a lane in a slot
func carriedLoad(m *mip.Model, ix *Index, v *Variables, sol *mip.Solution, lane Lane, t entities.SlotIndex) (weight, volume float64) {
	for _, p := range lane.Pairs {
		for _, l := range ix.Incoming(p, t) {
			units := level(m, sol, v.DeliveryVar(l))
			weight += units * p.SKU.Bulk.Weight
			volume += units * p.SKU.Bulk.Volume
		}
	}
	return weight, volume
}

// extractBlocked names the lanes whose strict minimum fill kept unmet demand off the road.
// Unmet units of a SKU are laid on the first lane able to deliver it in the slot of the
// demand, on top of what that lane carried there. Lanes whose combined load would have
// cleared the minimum are left out: something other than the fill blocked them.
func extractBlocked(m *mip.Model, ix *Index, v *Variables, sol *mip.Solution, s entities.Settings) []dto.BlockedDispatch {
	if s.UtilizationPolicy != entities.UtilizationStrict {
		return nil
	}
	type pending struct {
		lane           Lane
		units          float64
		weight, volume float64
	}
	var keys []laneKey
	loads := make(map[laneKey]*pending)
	for _, sku := range ix.SKUs {
		for t := 0; t < ix.Slots; t++ {
			slot := entities.SlotIndex(t)
			id, ok := v.DemandSlack[skuSlotKey{sku: sku.ID, t: slot}]
			if !ok {
				continue
			}
			unmet := level(m, sol, id)
			if unmet <= 0 {
				continue
			}
			lane, ok := deliveringLane(ix, v, sku.ID, slot)
			if !ok {
				continue
			}
			k := laneKey{group: lane.Group.ID, facility: lane.Facility.ID, t: slot}
			p, seen := loads[k]
			if !seen {
				weight, volume := carriedLoad(m, ix, v, sol, lane, slot)
				p = &pending{lane: lane, weight: weight, volume: volume}
				loads[k] = p
				keys = append(keys, k)
			}
			p.units += unmet
			p.weight += unmet * sku.Bulk.Weight
			p.volume += unmet * sku.Bulk.Volume
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.t != b.t {
			return a.t < b.t
		}
		if a.group != b.group {
			return a.group < b.group
		}
		return a.facility < b.facility
	})

	var out []dto.BlockedDispatch
	for _, k := range keys {
		p := loads[k]
		vehicle := p.lane.Group.Vehicle
		count := services.VehiclesRequired(p.weight, p.volume, vehicle)
		if count < 1 {
			count = 1
		}
		a := services.AnalyzeDispatch(p.weight, p.volume, count, vehicle, s.MinUtilization)
		if a.MeetsStrictMinimum(s.MinUtilization) {
			continue
		}
		out = append(out, dto.BlockedDispatch{
			Group:             k.group,
			Facility:          k.facility,
			Slot:              ix.Calendar.Slot(k.t),
			SlotIndex:         k.t,
			UnmetUnits:        p.units,
			Vehicles:          count,
			WeightLoad:        p.weight,
			VolumeLoad:        p.volume,
			WeightUtilization: a.WeightUtilization,
			VolumeUtilization: a.VolumeUtilization,
			Binding:           string(a.Binding),
		})
	}
	return out
}

// deliveringLane finds the first lane with a vehicle decision in slot t that delivers the SKU there
func deliveringLane(ix *Index, v *Variables, sku entities.SKUID, t entities.SlotIndex) (Lane, bool) {
	for _, lane := range ix.Lanes {
		if _, ok := v.Vehicles[laneKey{group: lane.Group.ID, facility: lane.Facility.ID, t: t}]; !ok {
			continue
		}
		for _, p := range lane.Pairs {
			if p.SKU.ID == sku && len(ix.Incoming(p, t)) > 0 {
				return lane, true
			}
		}
	}
	return Lane{}, false
}

func extractSlack(m *mip.Model, v *Variables, sol *mip.Solution, p entities.Penalties) []dto.SlackSummary {
	families := []struct {
		name    string
		penalty float64
		total   float64
	}{
		{dto.SlackDemand, p.Demand, sumLevels(m, sol, v.DemandSlack)},
		{dto.SlackCoverage, p.Coverage, sumLevels(m, sol, v.CoverageSlack)},
		{dto.SlackOvercapacity, p.Overcapacity, sumLevels(m, sol, v.CapacitySlack)},
		{dto.SlackDispatchOverage, p.DispatchOverage, sumLevels(m, sol, v.OverageSlack)},
		{dto.SlackUtilization, p.Utilization, sumLevels(m, sol, v.UtilizationSlack)},
	}
	out := make([]dto.SlackSummary, 0, len(families))
	for _, f := range families {
		out = append(out, dto.SlackSummary{
			Family:       f.name,
			Total:        f.total,
			Penalty:      f.penalty,
			Contribution: f.total * f.penalty,
		})
	}
	return out
}

func sumLevels[K comparable](m *mip.Model, sol *mip.Solution, ids map[K]mip.VarID) float64 {
	total := 0.0
	for _, id := range ids {
		total += level(m, sol, id)
	}
	return total
}

package planner

import (
	"fmt"

	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/mip"
)

// DispatchConstraints size the vehicle count of each lane and slot to the load it
// carries. Loads are the bulk weight and volume of every delivery arriving on the lane.
//
//	load ≤ cap × vehicles                       always
//	load ≥ minUtil × cap × vehicles             strict
//	load + slack ≥ minUtil × cap × vehicles     soft
//	vehicles - overage ≤ maxDispatches          when the group caps dispatches
func DispatchConstraints(ix *Index, v *Variables, s entities.Settings) ([]mip.Constraint, error) {
	var rows []mip.Constraint
	for _, lane := range ix.Lanes {
		g, f := lane.Group, lane.Facility
		for t := 0; t < ix.Slots; t++ {
			slot := entities.SlotIndex(t)
			k := laneKey{group: g.ID, facility: f.ID, t: slot}
			vehicles, ok := v.Vehicles[k]
			if !ok {
				continue
			}
			for _, dim := range []Dimension{DimWeight, DimVolume} {
				capacity := vehicleCapacity(g.Vehicle, dim)
				load := laneLoad(ix, v, lane, slot, dim)

				upper := append(append([]mip.Term{}, load...), mip.Term{Var: vehicles, Coef: -capacity})
				rows = append(rows, mip.NewConstraint(
					fmt.Sprintf("vehicle_cap[%s,%s,%d,%s]", g.ID, f.ID, t, dim), mip.LessOrEqual, 0, upper...))

				if s.UtilizationPolicy == entities.UtilizationReport {
					continue
				}
				lower := append(append([]mip.Term{}, load...), mip.Term{Var: vehicles, Coef: -capacity * s.MinUtilization})
				if slack, ok := v.UtilizationSlack[utilKey{laneKey: k, dim: dim}]; ok {
					lower = append(lower, mip.Term{Var: slack, Coef: 1})
				}
				rows = append(rows, mip.NewConstraint(
					fmt.Sprintf("vehicle_fill[%s,%s,%d,%s]", g.ID, f.ID, t, dim), mip.GreaterOrEqual, 0, lower...))
			}

			if overage, ok := v.OverageSlack[k]; ok {
				rows = append(rows, mip.NewConstraint(
					fmt.Sprintf("max_dispatches[%s,%s,%d]", g.ID, f.ID, t), mip.LessOrEqual, float64(g.MaxDispatches),
					mip.Term{Var: vehicles, Coef: 1},
					mip.Term{Var: overage, Coef: -1}))
			}
		}
	}
	return rows, nil
}

func laneLoad(ix *Index, v *Variables, lane Lane, t entities.SlotIndex, dim Dimension) []mip.Term {
	var terms []mip.Term
	for _, p := range lane.Pairs {
		per := p.SKU.Bulk.Volume
		if dim == DimWeight {
			per = p.SKU.Bulk.Weight
		}
		for _, l := range ix.Incoming(p, t) {
			terms = append(terms, mip.Term{Var: v.DeliveryVar(l), Coef: per})
		}
	}
	return terms
}

func vehicleCapacity(vehicle entities.Vehicle, dim Dimension) float64 {
	if dim == DimWeight {
		return vehicle.Weight
	}
	return vehicle.Volume
}

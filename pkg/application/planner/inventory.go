package planner

import (
	"fmt"

	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/mip"
)

// OrderLinkConstraints splits each order across its delivery slots.
// Without a delivery window an order is its own delivery and no rows are needed.
func OrderLinkConstraints(ix *Index, v *Variables, s entities.Settings) ([]mip.Constraint, error) {
	if s.DeliveryWindow <= 0 {
		return nil, nil
	}
	var rows []mip.Constraint
	for _, p := range ix.Pairs {
		for t := 0; t < ix.Slots; t++ {
			slot := entities.SlotIndex(t)
			out := ix.Outgoing(p, slot)
			if len(out) == 0 {
				continue
			}
			order, ok := v.Order[flowKey{sku: p.SKU.ID, facility: p.Facility.ID, t: slot}]
			if !ok {
				return nil, fmt.Errorf("order %s@%s slot %d was not declared", p.SKU.ID, p.Facility.ID, t)
			}
			terms := []mip.Term{{Var: order, Coef: 1}}
			for _, l := range out {
				terms = append(terms, mip.Term{Var: v.DeliveryVar(l), Coef: -1})
			}
			rows = append(rows, mip.NewConstraint(
				fmt.Sprintf("order_split[%s,%s,%d]", p.SKU.ID, p.Facility.ID, t), mip.Equal, 0, terms...))
		}
	}
	return rows, nil
}

// BalanceConstraints carries inventory forward from zero opening stock:
// inv[t] = inv[t-1] + ratio × arrivals[t] - ship[t].
func BalanceConstraints(ix *Index, v *Variables, _ entities.Settings) ([]mip.Constraint, error) {
	var rows []mip.Constraint
	for _, p := range ix.Pairs {
		sid, fid := p.SKU.ID, p.Facility.ID
		for t := 0; t < ix.Slots; t++ {
			slot := entities.SlotIndex(t)
			k := flowKey{sku: sid, facility: fid, t: slot}
			terms := []mip.Term{{Var: v.Inventory[k], Coef: 1}}
			if t > 0 {
				prev := flowKey{sku: sid, facility: fid, t: slot - 1}
				terms = append(terms, mip.Term{Var: v.Inventory[prev], Coef: -1})
			}
			for _, l := range ix.Incoming(p, slot) {
				terms = append(terms, mip.Term{Var: v.DeliveryVar(l), Coef: -p.SKU.ConversionRatio})
			}
			if ship, ok := v.Ship[k]; ok {
				terms = append(terms, mip.Term{Var: ship, Coef: 1})
			}
			rows = append(rows, mip.NewConstraint(fmt.Sprintf("balance[%s,%s,%d]", sid, fid, t), mip.Equal, 0, terms...))
		}
	}
	return rows, nil
}

// DemandConstraints bound total shipments of a SKU in a slot between the demand
// less its slack and the demand itself.
func DemandConstraints(ix *Index, v *Variables, _ entities.Settings) ([]mip.Constraint, error) {
	var rows []mip.Constraint
	for _, sku := range ix.SKUs {
		pairs := ix.PairsOf(sku.ID)
		for t := 0; t < ix.Slots; t++ {
			slot := entities.SlotIndex(t)
			demand := ix.Demand(sku.ID, slot)
			if demand <= 0 {
				continue
			}
			var ships []mip.Term
			for _, p := range pairs {
				ships = append(ships, mip.Term{Var: v.Ship[flowKey{sku: sku.ID, facility: p.Facility.ID, t: slot}], Coef: 1})
			}
			slack := v.DemandSlack[skuSlotKey{sku: sku.ID, t: slot}]
			floor := append(append([]mip.Term{}, ships...), mip.Term{Var: slack, Coef: 1})
			rows = append(rows,
				mip.NewConstraint(fmt.Sprintf("demand[%s,%d]", sku.ID, t), mip.GreaterOrEqual, demand, floor...),
				mip.NewConstraint(fmt.Sprintf("ship_cap[%s,%d]", sku.ID, t), mip.LessOrEqual, demand, ships...),
			)
		}
	}
	return rows, nil
}

// CoverageConstraints hold a network-wide buffer of coverageDays × demand rate
// for every slot with demand.
func CoverageConstraints(ix *Index, v *Variables, _ entities.Settings) ([]mip.Constraint, error) {
	var rows []mip.Constraint
	for _, sku := range ix.SKUs {
		days := ix.CoverageDays(sku.ID)
		if days <= 0 {
			continue
		}
		pairs := ix.PairsOf(sku.ID)
		for t := 0; t < ix.Slots; t++ {
			slot := entities.SlotIndex(t)
			demand := ix.Demand(sku.ID, slot)
			if demand <= 0 {
				continue
			}
			terms := []mip.Term{{Var: v.CoverageSlack[skuSlotKey{sku: sku.ID, t: slot}], Coef: 1}}
			for _, p := range pairs {
				terms = append(terms, mip.Term{Var: v.Inventory[flowKey{sku: sku.ID, facility: p.Facility.ID, t: slot}], Coef: 1})
			}
			rows = append(rows, mip.NewConstraint(
				fmt.Sprintf("coverage[%s,%d]", sku.ID, t), mip.GreaterOrEqual, demand*days, terms...))
		}
	}
	return rows, nil
}

package planner

import (
	"fmt"

	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/mip"
)

// PackageConstraints tie stored units to package counts and gate the two package
// formats on the repack decision:
//
//	inv = ratio × (received + repacked)
//	repacked ≤ M × repack
//	received ≤ M × (1 - repack)
func PackageConstraints(ix *Index, v *Variables, s entities.Settings) ([]mip.Constraint, error) {
	if s.BigM <= 0 {
		return nil, fmt.Errorf("big_m must be positive, got %g", s.BigM)
	}
	var rows []mip.Constraint
	for _, p := range ix.Pairs {
		sid, fid := p.SKU.ID, p.Facility.ID
		ratio := p.SKU.ConversionRatio
		repack := v.Repack[p.key()]
		for t := 0; t < ix.Slots; t++ {
			k := flowKey{sku: sid, facility: fid, t: entities.SlotIndex(t)}
			received, repacked := v.PkgReceived[k], v.PkgRepacked[k]
			rows = append(rows,
				mip.NewConstraint(fmt.Sprintf("packages[%s,%s,%d]", sid, fid, t), mip.Equal, 0,
					mip.Term{Var: v.Inventory[k], Coef: 1},
					mip.Term{Var: received, Coef: -ratio},
					mip.Term{Var: repacked, Coef: -ratio}),
				mip.NewConstraint(fmt.Sprintf("repacked_gate[%s,%s,%d]", sid, fid, t), mip.LessOrEqual, 0,
					mip.Term{Var: repacked, Coef: 1},
					mip.Term{Var: repack, Coef: -s.BigM}),
				mip.NewConstraint(fmt.Sprintf("received_gate[%s,%s,%d]", sid, fid, t), mip.LessOrEqual, s.BigM,
					mip.Term{Var: received, Coef: 1},
					mip.Term{Var: repack, Coef: s.BigM}),
			)
		}
	}
	return rows, nil
}

// CapacityConstraints keep every storage cell within its shelving on each
// dimension, with added shelves and a penalized overflow. The fill cap f scales the
// current shelves of a fixed facility and the added shelves of an expandable one:
//
//	Σ footprint × packages - f × cap × added - slack ≤ cap × current
//	Σ footprint × packages - slack ≤ f × cap × current
func CapacityConstraints(ix *Index, v *Variables, s entities.Settings) ([]mip.Constraint, error) {
	fill := s.ShelfFillCap
	if fill <= 0 || fill > 1 {
		return nil, fmt.Errorf("shelf_fill_cap must be above 0 and at most 1, got %g", fill)
	}
	var rows []mip.Constraint
	for _, c := range ix.Cells {
		ck := cellKey{facility: c.Facility.ID, st: c.StorageType}
		added, expandable := v.AddShelves[ck]
		for t := 0; t < ix.Slots; t++ {
			slot := entities.SlotIndex(t)
			for _, dim := range cellDimensions(c) {
				perShelf := shelfCapacity(c.Shelf, dim)
				var terms []mip.Term
				for _, p := range c.Pairs {
					k := flowKey{sku: p.SKU.ID, facility: p.Facility.ID, t: slot}
					asReceived, repacked := packageLoad(p.SKU, dim)
					terms = append(terms,
						mip.Term{Var: v.PkgReceived[k], Coef: asReceived},
						mip.Term{Var: v.PkgRepacked[k], Coef: repacked})
				}
				current := float64(c.Shelf.Current) * perShelf
				if expandable {
					terms = append(terms, mip.Term{Var: added, Coef: -fill * perShelf})
				} else {
					current *= fill
				}
				terms = append(terms, mip.Term{Var: v.CapacitySlack[capKey{cellKey: ck, t: slot, dim: dim}], Coef: -1})
				rows = append(rows, mip.NewConstraint(
					fmt.Sprintf("capacity[%s,%s,%d,%s]", c.Facility.ID, c.StorageType, t, dim),
					mip.LessOrEqual, current, terms...))
			}
		}
	}
	return rows, nil
}

// ExpansionConstraints price the area taken by added shelves through ordered tiers.
// Tier k+1 may only fill once tier k is saturated, whatever the prices.
func ExpansionConstraints(ix *Index, v *Variables, _ entities.Settings) ([]mip.Constraint, error) {
	var rows []mip.Constraint
	for _, f := range ix.Facilities {
		area, ok := v.Area[f.ID]
		if !ok {
			continue
		}
		shelves := []mip.Term{{Var: area, Coef: 1}}
		for _, c := range ix.Cells {
			if c.Facility.ID != f.ID {
				continue
			}
			shelves = append(shelves, mip.Term{Var: v.AddShelves[cellKey{facility: f.ID, st: c.StorageType}], Coef: -c.Shelf.AreaPerShelf})
		}
		rows = append(rows, mip.NewConstraint(fmt.Sprintf("area[%s]", f.ID), mip.Equal, 0, shelves...))

		tiers := f.Expansion.Tiers
		split := []mip.Term{{Var: area, Coef: -1}}
		for k := range tiers {
			split = append(split, mip.Term{Var: v.Tier[tierKey{facility: f.ID, tier: k}], Coef: 1})
		}
		rows = append(rows, mip.NewConstraint(fmt.Sprintf("tier_split[%s]", f.ID), mip.Equal, 0, split...))

		for k := 0; k+1 < len(tiers); k++ {
			tk := tierKey{facility: f.ID, tier: k}
			next := tierKey{facility: f.ID, tier: k + 1}
			full := v.TierFull[tk]
			rows = append(rows,
				mip.NewConstraint(fmt.Sprintf("tier_full[%s,%d]", f.ID, k+1), mip.GreaterOrEqual, 0,
					mip.Term{Var: v.Tier[tk], Coef: 1},
					mip.Term{Var: full, Coef: -tiers[k].Width}),
				mip.NewConstraint(fmt.Sprintf("tier_order[%s,%d]", f.ID, k+2), mip.LessOrEqual, 0,
					mip.Term{Var: v.Tier[next], Coef: 1},
					mip.Term{Var: full, Coef: -tiers[k+1].Width}),
			)
		}
	}
	return rows, nil
}

func shelfCapacity(spec entities.ShelfSpec, dim Dimension) float64 {
	switch dim {
	case DimWeight:
		return spec.Weight
	case DimPackages:
		return spec.MaxPackages
	default:
		return spec.Volume
	}
}

// packageLoad returns what one as-received and one repacked package consume on a dimension
func packageLoad(sku *entities.SKU, dim Dimension) (asReceived, repacked float64) {
	switch dim {
	case DimWeight:
		return sku.Bulk.Weight, sku.RepackedPackage().Weight
	case DimPackages:
		return 1, sku.ConversionRatio
	default:
		return sku.Bulk.Volume, sku.RepackedPackage().Volume
	}
}

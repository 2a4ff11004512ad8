package planner

import (
	"fmt"
	"math"

	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/mip"
)

// Dimension is a capacity axis
type Dimension int

const (
	DimVolume Dimension = iota
	DimWeight
	DimPackages
)

// String method for Dimension enum
func (d Dimension) String() string {
	switch d {
	case DimVolume:
		return "volume"
	case DimWeight:
		return "weight"
	case DimPackages:
		return "packages"
	default:
		return "unknown"
	}
}

type flowKey struct {
	sku      entities.SKUID
	facility entities.FacilityID
	t        entities.SlotIndex
}

type skuSlotKey struct {
	sku entities.SKUID
	t   entities.SlotIndex
}

type cellKey struct {
	facility entities.FacilityID
	st       entities.StorageType
}

type capKey struct {
	cellKey
	t   entities.SlotIndex
	dim Dimension
}

type tierKey struct {
	facility entities.FacilityID
	tier     int
}

type laneKey struct {
	group    entities.SupplierGroupID
	facility entities.FacilityID
	t        entities.SlotIndex
}

type utilKey struct {
	laneKey
	dim Dimension
}

// Variables maps every index tuple to its column in the model
type Variables struct {
	Inventory map[flowKey]mip.VarID
	Ship      map[flowKey]mip.VarID
	Order     map[flowKey]mip.VarID
	// Delivery holds split deliveries when a delivery window is configured;
	// without one an order's column doubles as its delivery.
	Delivery    map[ArrivalLink]mip.VarID
	PkgReceived map[flowKey]mip.VarID
	PkgRepacked map[flowKey]mip.VarID
	Repack      map[pairKey]mip.VarID

	AddShelves map[cellKey]mip.VarID
	Area       map[entities.FacilityID]mip.VarID
	Tier       map[tierKey]mip.VarID
	TierFull   map[tierKey]mip.VarID

	Vehicles map[laneKey]mip.VarID

	DemandSlack      map[skuSlotKey]mip.VarID
	CoverageSlack    map[skuSlotKey]mip.VarID
	CapacitySlack    map[capKey]mip.VarID
	UtilizationSlack map[utilKey]mip.VarID
	OverageSlack     map[laneKey]mip.VarID
}

// DeliveryVar returns the column carrying the quantity of a link
func (v *Variables) DeliveryVar(l ArrivalLink) mip.VarID {
	if id, ok := v.Delivery[l]; ok {
		return id
	}
	return v.Order[flowKey{sku: l.SKU, facility: l.Facility, t: l.Order}]
}

// DeclareVariables creates every decision variable over its index domain.
// Declaration is sequential; the generators that follow only read the returned maps.
func DeclareVariables(m *mip.Model, ix *Index, s entities.Settings) *Variables {
	v := &Variables{
		Inventory:        make(map[flowKey]mip.VarID),
		Ship:             make(map[flowKey]mip.VarID),
		Order:            make(map[flowKey]mip.VarID),
		Delivery:         make(map[ArrivalLink]mip.VarID),
		PkgReceived:      make(map[flowKey]mip.VarID),
		PkgRepacked:      make(map[flowKey]mip.VarID),
		Repack:           make(map[pairKey]mip.VarID),
		AddShelves:       make(map[cellKey]mip.VarID),
		Area:             make(map[entities.FacilityID]mip.VarID),
		Tier:             make(map[tierKey]mip.VarID),
		TierFull:         make(map[tierKey]mip.VarID),
		Vehicles:         make(map[laneKey]mip.VarID),
		DemandSlack:      make(map[skuSlotKey]mip.VarID),
		CoverageSlack:    make(map[skuSlotKey]mip.VarID),
		CapacitySlack:    make(map[capKey]mip.VarID),
		UtilizationSlack: make(map[utilKey]mip.VarID),
		OverageSlack:     make(map[laneKey]mip.VarID),
	}

	for _, p := range ix.Pairs {
		sid, fid := p.SKU.ID, p.Facility.ID
		repack := m.NewBinary(fmt.Sprintf("repack[%s,%s]", sid, fid))
		if !p.SKU.RepackEligible {
			m.SetUpper(repack, 0)
		}
		v.Repack[p.key()] = repack

		for t := 0; t < ix.Slots; t++ {
			slot := entities.SlotIndex(t)
			k := flowKey{sku: sid, facility: fid, t: slot}
			v.Inventory[k] = m.NewContinuous(fmt.Sprintf("inv[%s,%s,%d]", sid, fid, t))
			v.PkgReceived[k] = m.NewContinuous(fmt.Sprintf("pkg_received[%s,%s,%d]", sid, fid, t))
			v.PkgRepacked[k] = m.NewContinuous(fmt.Sprintf("pkg_repacked[%s,%s,%d]", sid, fid, t))
			if ix.Demand(sid, slot) > 0 {
				v.Ship[k] = m.NewContinuous(fmt.Sprintf("ship[%s,%s,%d]", sid, fid, t))
			}
			out := ix.Outgoing(p, slot)
			if len(out) == 0 {
				continue
			}
			v.Order[k] = m.NewContinuous(fmt.Sprintf("order[%s,%s,%d]", sid, fid, t))
			if s.DeliveryWindow > 0 {
				for _, l := range out {
					v.Delivery[l] = m.NewContinuous(fmt.Sprintf("deliver[%s,%s,%d+%d]", sid, fid, t, l.Delay))
				}
			}
		}
	}

	for _, sku := range ix.SKUs {
		for t := 0; t < ix.Slots; t++ {
			slot := entities.SlotIndex(t)
			if ix.Demand(sku.ID, slot) <= 0 {
				continue
			}
			k := skuSlotKey{sku: sku.ID, t: slot}
			v.DemandSlack[k] = m.NewContinuous(fmt.Sprintf("slack_demand[%s,%d]", sku.ID, t))
			if ix.CoverageDays(sku.ID) > 0 {
				v.CoverageSlack[k] = m.NewContinuous(fmt.Sprintf("slack_coverage[%s,%d]", sku.ID, t))
			}
		}
	}

	shelfKind := mip.Continuous
	if s.IntegerShelves {
		shelfKind = mip.Integer
	}
	for _, c := range ix.Cells {
		ck := cellKey{facility: c.Facility.ID, st: c.StorageType}
		if c.Facility.Expandable {
			upper := math.Floor(c.Facility.EffectiveCeiling() / c.Shelf.AreaPerShelf)
			v.AddShelves[ck] = m.AddVar(fmt.Sprintf("add_shelves[%s,%s]", c.Facility.ID, c.StorageType), shelfKind, 0, upper)
		}
		for t := 0; t < ix.Slots; t++ {
			for _, dim := range cellDimensions(c) {
				k := capKey{cellKey: ck, t: entities.SlotIndex(t), dim: dim}
				v.CapacitySlack[k] = m.NewContinuous(fmt.Sprintf("slack_capacity[%s,%s,%d,%s]", c.Facility.ID, c.StorageType, t, dim))
			}
		}
	}

	for _, f := range ix.Facilities {
		if !f.Expandable || !hasCellIn(ix, f.ID) {
			continue
		}
		v.Area[f.ID] = m.AddVar(fmt.Sprintf("area[%s]", f.ID), mip.Continuous, 0, f.EffectiveCeiling())
		tiers := f.Expansion.Tiers
		for k, tier := range tiers {
			tk := tierKey{facility: f.ID, tier: k}
			v.Tier[tk] = m.AddVar(fmt.Sprintf("tier[%s,%d]", f.ID, k+1), mip.Continuous, 0, tier.Width)
			if k < len(tiers)-1 {
				v.TierFull[tk] = m.NewBinary(fmt.Sprintf("tier_full[%s,%d]", f.ID, k+1))
			}
		}
	}

	for _, lane := range ix.Lanes {
		for t := 0; t < ix.Slots; t++ {
			slot := entities.SlotIndex(t)
			if !laneReceives(ix, lane, slot) {
				continue
			}
			k := laneKey{group: lane.Group.ID, facility: lane.Facility.ID, t: slot}
			v.Vehicles[k] = m.NewInteger(fmt.Sprintf("vehicles[%s,%s,%d]", lane.Group.ID, lane.Facility.ID, t), math.Inf(1))
			if s.UtilizationPolicy == entities.UtilizationSoft {
				for _, dim := range []Dimension{DimWeight, DimVolume} {
					v.UtilizationSlack[utilKey{laneKey: k, dim: dim}] = m.NewContinuous(
						fmt.Sprintf("slack_utilization[%s,%s,%d,%s]", lane.Group.ID, lane.Facility.ID, t, dim))
				}
			}
			if lane.Group.MaxDispatches > 0 {
				v.OverageSlack[k] = m.NewContinuous(fmt.Sprintf("slack_overage[%s,%s,%d]", lane.Group.ID, lane.Facility.ID, t))
			}
		}
	}

	return v
}

func cellDimensions(c Cell) []Dimension {
	if c.Shelf.MaxPackages > 0 {
		return []Dimension{DimVolume, DimWeight, DimPackages}
	}
	return []Dimension{DimVolume, DimWeight}
}

func hasCellIn(ix *Index, f entities.FacilityID) bool {
	for _, c := range ix.Cells {
		if c.Facility.ID == f {
			return true
		}
	}
	return false
}

func laneReceives(ix *Index, lane Lane, t entities.SlotIndex) bool {
	for _, p := range lane.Pairs {
		if len(ix.Incoming(p, t)) > 0 {
			return true
		}
	}
	return false
}

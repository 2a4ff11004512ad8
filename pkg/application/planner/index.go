package planner

import (
	"fmt"
	"sort"

	"github.com/vsinha/wareopt/pkg/domain/entities"
)

type pairKey struct {
	sku      entities.SKUID
	facility entities.FacilityID
}

// Pair is a SKU stocked at a facility
type Pair struct {
	SKU      *entities.SKU
	Facility *entities.Facility
	LeadTime int
}

func (p Pair) key() pairKey {
	return pairKey{sku: p.SKU.ID, facility: p.Facility.ID}
}

// Cell is one storage type inside one facility together with the SKUs it holds
type Cell struct {
	Facility    *entities.Facility
	StorageType entities.StorageType
	Shelf       entities.ShelfSpec
	Pairs       []Pair
}

// Lane is one supplier group delivering into one facility
type Lane struct {
	Group    *entities.SupplierGroup
	Facility *entities.Facility
	Pairs    []Pair
}

// Index holds the finite index sets and coefficients of one scenario, all keyed on flat slots.
type Index struct {
	Calendar   entities.Calendar
	Slots      int
	SKUs       []*entities.SKU
	Facilities []*entities.Facility
	Pairs      []Pair
	Cells      []Cell
	Lanes      []Lane
	Links      []ArrivalLink

	demand   map[entities.SKUID][]float64
	coverage map[entities.SKUID]float64
	incoming map[pairKey][][]ArrivalLink
	outgoing map[pairKey][][]ArrivalLink
}

// BuildIndex assembles index sets from a validated dataset and scenario.
func BuildIndex(ds *entities.Dataset, sc *entities.Scenario) (*Index, error) {
	cal := ds.Calendar
	ix := &Index{
		Calendar: cal,
		Slots:    cal.Len(),
		demand:   make(map[entities.SKUID][]float64, len(ds.SKUs)),
		coverage: make(map[entities.SKUID]float64, len(ds.SKUs)),
		incoming: make(map[pairKey][][]ArrivalLink),
		outgoing: make(map[pairKey][][]ArrivalLink),
	}

	ix.SKUs = append(ix.SKUs, ds.SKUs...)
	sort.Slice(ix.SKUs, func(i, j int) bool { return ix.SKUs[i].ID < ix.SKUs[j].ID })
	ix.Facilities = append(ix.Facilities, ds.Facilities...)
	sort.Slice(ix.Facilities, func(i, j int) bool { return ix.Facilities[i].ID < ix.Facilities[j].ID })

	skuByID := make(map[entities.SKUID]*entities.SKU, len(ix.SKUs))
	for _, s := range ix.SKUs {
		skuByID[s.ID] = s
		ix.demand[s.ID] = make([]float64, ix.Slots)
		ix.coverage[s.ID] = sc.Coverage(s.CoverageGroup)
	}
	facByID := make(map[entities.FacilityID]*entities.Facility, len(ix.Facilities))
	for _, f := range ix.Facilities {
		facByID[f.ID] = f
	}
	groupByID := make(map[entities.SupplierGroupID]*entities.SupplierGroup, len(ds.SupplierGroups))
	for _, g := range ds.SupplierGroups {
		groupByID[g.ID] = g
	}

	for _, d := range ds.Demands {
		row, ok := ix.demand[d.SKU]
		if !ok || !cal.Contains(d.Slot) {
			return nil, fmt.Errorf("demand for %s at slot %d does not match the index", d.SKU, d.Slot)
		}
		row[d.Slot] += d.Quantity
	}

	for _, lt := range ds.LeadTimes {
		s, okS := skuByID[lt.SKU]
		f, okF := facByID[lt.Facility]
		if !okS || !okF {
			return nil, fmt.Errorf("lead time %s@%s does not match the index", lt.SKU, lt.Facility)
		}
		ix.Pairs = append(ix.Pairs, Pair{SKU: s, Facility: f, LeadTime: lt.SubPeriods})
	}
	sort.Slice(ix.Pairs, func(i, j int) bool {
		a, b := ix.Pairs[i], ix.Pairs[j]
		if a.SKU.ID != b.SKU.ID {
			return a.SKU.ID < b.SKU.ID
		}
		return a.Facility.ID < b.Facility.ID
	})

	window := sc.Settings.DeliveryWindow
	for _, p := range ix.Pairs {
		links := LinkArrivals(cal, p.SKU.ID, p.Facility.ID, p.LeadTime, window)
		in := make([][]ArrivalLink, ix.Slots)
		out := make([][]ArrivalLink, ix.Slots)
		for _, l := range links {
			in[l.Arrival] = append(in[l.Arrival], l)
			out[l.Order] = append(out[l.Order], l)
		}
		ix.incoming[p.key()] = in
		ix.outgoing[p.key()] = out
		ix.Links = append(ix.Links, links...)
	}

	ix.buildCells()
	if err := ix.buildLanes(groupByID); err != nil {
		return nil, err
	}
	return ix, nil
}

func (ix *Index) buildCells() {
	type cellKey struct {
		f  entities.FacilityID
		st entities.StorageType
	}
	byCell := make(map[cellKey]*Cell)
	var order []cellKey
	for _, p := range ix.Pairs {
		k := cellKey{f: p.Facility.ID, st: p.SKU.StorageType}
		c, ok := byCell[k]
		if !ok {
			shelf, _ := p.Facility.Shelf(p.SKU.StorageType)
			c = &Cell{Facility: p.Facility, StorageType: p.SKU.StorageType, Shelf: shelf}
			byCell[k] = c
			order = append(order, k)
		}
		c.Pairs = append(c.Pairs, p)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].f != order[j].f {
			return order[i].f < order[j].f
		}
		return order[i].st < order[j].st
	})
	for _, k := range order {
		ix.Cells = append(ix.Cells, *byCell[k])
	}
}

func (ix *Index) buildLanes(groups map[entities.SupplierGroupID]*entities.SupplierGroup) error {
	type laneKey struct {
		g entities.SupplierGroupID
		f entities.FacilityID
	}
	byLane := make(map[laneKey]*Lane)
	var order []laneKey
	for _, p := range ix.Pairs {
		if p.SKU.SupplierGroup == "" {
			continue
		}
		g, ok := groups[p.SKU.SupplierGroup]
		if !ok {
			return fmt.Errorf("sku %s references unknown supplier group %s", p.SKU.ID, p.SKU.SupplierGroup)
		}
		k := laneKey{g: g.ID, f: p.Facility.ID}
		l, ok := byLane[k]
		if !ok {
			l = &Lane{Group: g, Facility: p.Facility}
			byLane[k] = l
			order = append(order, k)
		}
		l.Pairs = append(l.Pairs, p)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].g != order[j].g {
			return order[i].g < order[j].g
		}
		return order[i].f < order[j].f
	})
	for _, k := range order {
		ix.Lanes = append(ix.Lanes, *byLane[k])
	}
	return nil
}

// Demand is the units of a SKU required in slot t
func (ix *Index) Demand(sku entities.SKUID, t entities.SlotIndex) float64 {
	return ix.demand[sku][t]
}

// CoverageDays is the coverage target of a SKU in this scenario
func (ix *Index) CoverageDays(sku entities.SKUID) float64 {
	return ix.coverage[sku]
}

// Incoming lists the links arriving at a pair in slot t
func (ix *Index) Incoming(p Pair, t entities.SlotIndex) []ArrivalLink {
	return ix.incoming[p.key()][t]
}

// Outgoing lists the links of orders placed by a pair in slot t
func (ix *Index) Outgoing(p Pair, t entities.SlotIndex) []ArrivalLink {
	return ix.outgoing[p.key()][t]
}

// PairsOf returns the stocked pairs of a SKU
func (ix *Index) PairsOf(sku entities.SKUID) []Pair {
	var out []Pair
	for _, p := range ix.Pairs {
		if p.SKU.ID == sku {
			out = append(out, p)
		}
	}
	return out
}

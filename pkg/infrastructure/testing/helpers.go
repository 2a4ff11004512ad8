package testing

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/domain/repositories"
	"github.com/vsinha/wareopt/pkg/infrastructure/repositories/memory"
)

// DatasetBuilder assembles small datasets for tests. Invalid rows panic.
type DatasetBuilder struct {
	ds *entities.Dataset
}

// NewDatasetBuilder starts a dataset over the given calendar
func NewDatasetBuilder(subPeriods, periods int) *DatasetBuilder {
	return &DatasetBuilder{ds: &entities.Dataset{
		Calendar: entities.Calendar{SubPeriodsPerPeriod: subPeriods, Periods: periods},
	}}
}

// SKU adds a SKU
func (b *DatasetBuilder) SKU(
	id entities.SKUID,
	bulk, unit entities.Footprint,
	ratio float64,
	eligible bool,
	st entities.StorageType,
	group entities.SupplierGroupID,
	coverageGroup string,
) *DatasetBuilder {
	b.ds.SKUs = append(b.ds.SKUs, mustSKU(id, bulk, unit, ratio, eligible, st, group, coverageGroup))
	return b
}

// Facility adds a facility with its shelving
func (b *DatasetBuilder) Facility(
	id entities.FacilityID,
	expandable bool,
	expansion entities.ExpansionPolicy,
	shelves map[entities.StorageType]entities.ShelfSpec,
) *DatasetBuilder {
	f, err := entities.NewFacility(id, expandable, expansion)
	if err != nil {
		panic(err)
	}
	for st, spec := range shelves {
		mustShelf(f, st, spec)
	}
	b.ds.Facilities = append(b.ds.Facilities, f)
	return b
}

// Group adds a supplier group
func (b *DatasetBuilder) Group(id entities.SupplierGroupID, vehicle entities.Vehicle, maxDispatches int) *DatasetBuilder {
	g, err := entities.NewSupplierGroup(id, vehicle, maxDispatches)
	if err != nil {
		panic(err)
	}
	b.ds.SupplierGroups = append(b.ds.SupplierGroups, g)
	return b
}

// LeadTime stocks a SKU at a facility
func (b *DatasetBuilder) LeadTime(sku entities.SKUID, facility entities.FacilityID, subPeriods int) *DatasetBuilder {
	b.ds.LeadTimes = append(b.ds.LeadTimes, mustLeadTime(sku, facility, subPeriods))
	return b
}

// Demand adds units required in one slot
func (b *DatasetBuilder) Demand(sku entities.SKUID, slot entities.SlotIndex, quantity float64) *DatasetBuilder {
	b.ds.Demands = append(b.ds.Demands, mustDemand(sku, slot, quantity))
	return b
}

// Build returns the dataset
func (b *DatasetBuilder) Build() *entities.Dataset {
	return b.ds
}

// BuildRegionalTestData builds a two-warehouse network: an expandable hub with tiered
// expansion pricing and a fixed satellite, three SKUs across two coverage groups and one
// trucking supplier. Capacity is ample: under the report utilization policy every scenario
// meets demand without slack.
func BuildRegionalTestData() (entities.Calendar, repositories.Set) {
	cal := entities.Calendar{SubPeriodsPerPeriod: 2, Periods: 2}

	hub, err := entities.NewFacility("SAC", true, entities.ExpansionPolicy{
		Tiers: []entities.ExpansionTier{
			{Width: 500, Price: decimal.NewFromInt(40)},
			{Width: 500, Price: decimal.NewFromInt(65)},
		},
	})
	if err != nil {
		panic(err)
	}
	mustShelf(hub, entities.Rack, entities.ShelfSpec{Current: 20, Volume: 100, Weight: 4000, AreaPerShelf: 50})
	mustShelf(hub, entities.Bin, entities.ShelfSpec{Current: 40, Volume: 10, Weight: 200, MaxPackages: 60, AreaPerShelf: 50})

	satellite, err := entities.NewFacility("RNO", false, entities.ExpansionPolicy{})
	if err != nil {
		panic(err)
	}
	mustShelf(satellite, entities.Rack, entities.ShelfSpec{Current: 10, Volume: 100, Weight: 4000})

	facilityRepo := memory.NewFacilityRepository()
	_ = facilityRepo.LoadFacilities([]*entities.Facility{hub, satellite})

	skus := []*entities.SKU{
		mustSKU("BOLT-M8", entities.Footprint{Volume: 2, Weight: 40}, entities.Footprint{Volume: 0.01, Weight: 0.2},
			100, true, entities.Bin, "FASTCO", "Domestic"),
		mustSKU("PANEL-2X4", entities.Footprint{Volume: 12, Weight: 90}, entities.Footprint{Volume: 3, Weight: 22},
			4, false, entities.Rack, "FASTCO", "Domestic"),
		mustSKU("PUMP-110", entities.Footprint{Volume: 8, Weight: 60}, entities.Footprint{Volume: 8, Weight: 60},
			1, false, entities.Rack, "", "International"),
	}
	skuRepo := memory.NewSKURepository(len(skus))
	_ = skuRepo.LoadSKUs(skus)

	group, err := entities.NewSupplierGroup("FASTCO", entities.Vehicle{Weight: 45000, Volume: 3600}, 0)
	if err != nil {
		panic(err)
	}
	supplierRepo := memory.NewSupplierRepository()
	_ = supplierRepo.LoadSupplierGroups([]*entities.SupplierGroup{group})
	_ = supplierRepo.LoadLeadTimes([]*entities.LeadTime{
		mustLeadTime("BOLT-M8", "SAC", 1),
		mustLeadTime("PANEL-2X4", "SAC", 1),
		mustLeadTime("PANEL-2X4", "RNO", 2),
		mustLeadTime("PUMP-110", "SAC", 2),
	})

	demandRepo := memory.NewDemandRepository()
	var demands []*entities.Demand
	for slot := entities.SlotIndex(2); slot < entities.SlotIndex(cal.Len()); slot++ {
		demands = append(demands,
			mustDemand("BOLT-M8", slot, 500),
			mustDemand("PANEL-2X4", slot, 8),
			mustDemand("PUMP-110", slot, 3),
		)
	}
	_ = demandRepo.LoadDemands(demands)

	return cal, repositories.Set{
		SKUs:       skuRepo,
		Facilities: facilityRepo,
		Suppliers:  supplierRepo,
		Demand:     demandRepo,
	}
}

func mustShelf(f *entities.Facility, st entities.StorageType, spec entities.ShelfSpec) {
	if err := f.SetShelf(st, spec); err != nil {
		panic(err)
	}
}

func mustSKU(
	id entities.SKUID,
	bulk, unit entities.Footprint,
	ratio float64,
	eligible bool,
	st entities.StorageType,
	group entities.SupplierGroupID,
	coverageGroup string,
) *entities.SKU {
	sku, err := entities.NewSKU(id, bulk, unit, ratio, eligible, st, group, coverageGroup)
	if err != nil {
		panic(err)
	}
	return sku
}

func mustLeadTime(sku entities.SKUID, facility entities.FacilityID, subPeriods int) *entities.LeadTime {
	lt, err := entities.NewLeadTime(sku, facility, subPeriods)
	if err != nil {
		panic(err)
	}
	return lt
}

func mustDemand(sku entities.SKUID, slot entities.SlotIndex, quantity float64) *entities.Demand {
	d, err := entities.NewDemand(sku, slot, quantity)
	if err != nil {
		panic(err)
	}
	return d
}

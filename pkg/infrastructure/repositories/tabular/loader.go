// Package tabular loads a planning dataset from a set of named tables. The tables can
// come from a directory of CSV files or from the sheets of one XLSX workbook; both go
// through the same header checks and row parsers.
package tabular

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/domain/repositories"
	"github.com/vsinha/wareopt/pkg/domain/services"
	"github.com/vsinha/wareopt/pkg/infrastructure/repositories/memory"
)

// Table names
const (
	TableSKUs           = "skus"
	TableFacilities     = "facilities"
	TableShelves        = "shelves"
	TableExpansionTiers = "expansion_tiers"
	TableSuppliers      = "suppliers"
	TableLeadTimes      = "lead_times"
	TableDemand         = "demand"
)

// Expected headers, in column order
var (
	skuHeader      = []string{"sku", "description", "storage_type", "bulk_volume", "bulk_weight", "unit_volume", "unit_weight", "units_per_package", "repack_eligible", "supplier_group", "coverage_group"}
	facilityHeader = []string{"facility", "expandable", "ceiling"}
	shelfHeader    = []string{"facility", "storage_type", "current", "volume", "weight", "max_packages", "area_per_shelf"}
	tierHeader     = []string{"facility", "tier", "width", "price"}
	supplierHeader = []string{"supplier_group", "vehicle_weight", "vehicle_volume", "max_dispatches"}
	leadTimeHeader = []string{"sku", "facility", "lead_time", "unit"}
	demandHeader   = []string{"sku", "period", "sub_period", "quantity"}
)

// ErrTableMissing is returned by a Source that has no table of the requested name
var ErrTableMissing = errors.New("table missing")

// Source yields the raw rows of a named table, header first
type Source interface {
	Table(name string) ([][]string, error)
}

// Loader parses tables into in-memory repositories
type Loader struct {
	src Source
	cal entities.Calendar
}

// NewLoader creates a loader; the calendar places demand rows on the horizon
func NewLoader(src Source, cal entities.Calendar) *Loader {
	return &Loader{src: src, cal: cal}
}

// Load reads every table. expansion_tiers and suppliers are optional.
func (l *Loader) Load() (repositories.Set, error) {
	skus, err := l.LoadSKUs()
	if err != nil {
		return repositories.Set{}, err
	}
	facilities, err := l.LoadFacilities()
	if err != nil {
		return repositories.Set{}, err
	}
	groups, err := l.LoadSupplierGroups()
	if err != nil {
		return repositories.Set{}, err
	}
	leadTimes, err := l.LoadLeadTimes()
	if err != nil {
		return repositories.Set{}, err
	}
	demands, err := l.LoadDemands()
	if err != nil {
		return repositories.Set{}, err
	}

	skuRepo := memory.NewSKURepository(len(skus))
	if err := skuRepo.LoadSKUs(skus); err != nil {
		return repositories.Set{}, err
	}
	facilityRepo := memory.NewFacilityRepository()
	if err := facilityRepo.LoadFacilities(facilities); err != nil {
		return repositories.Set{}, err
	}
	supplierRepo := memory.NewSupplierRepository()
	if err := supplierRepo.LoadSupplierGroups(groups); err != nil {
		return repositories.Set{}, err
	}
	if err := supplierRepo.LoadLeadTimes(leadTimes); err != nil {
		return repositories.Set{}, err
	}
	demandRepo := memory.NewDemandRepository()
	if err := demandRepo.LoadDemands(demands); err != nil {
		return repositories.Set{}, err
	}

	return repositories.Set{
		SKUs:       skuRepo,
		Facilities: facilityRepo,
		Suppliers:  supplierRepo,
		Demand:     demandRepo,
	}, nil
}

// LoadSKUs parses the skus table
func (l *Loader) LoadSKUs() ([]*entities.SKU, error) {
	rows, err := l.rows(TableSKUs, skuHeader, true)
	if err != nil {
		return nil, err
	}

	var skus []*entities.SKU
	for i, record := range rows {
		sku, err := parseSKU(record)
		if err != nil {
			return nil, rowError(TableSKUs, i, err)
		}
		skus = append(skus, sku)
	}
	return skus, nil
}

// LoadFacilities parses the facilities table, then attaches shelves and expansion tiers
func (l *Loader) LoadFacilities() ([]*entities.Facility, error) {
	rows, err := l.rows(TableFacilities, facilityHeader, true)
	if err != nil {
		return nil, err
	}

	tiers, err := l.loadTiers()
	if err != nil {
		return nil, err
	}

	var facilities []*entities.Facility
	byID := make(map[entities.FacilityID]*entities.Facility)
	for i, record := range rows {
		id := entities.FacilityID(strings.TrimSpace(record[0]))
		expandable, err := parseBool(record[1])
		if err != nil {
			return nil, rowError(TableFacilities, i, fmt.Errorf("expandable: %w", err))
		}
		ceiling, err := parseOptionalFloat(record[2])
		if err != nil {
			return nil, rowError(TableFacilities, i, fmt.Errorf("ceiling: %w", err))
		}

		policy := entities.ExpansionPolicy{Ceiling: ceiling}
		if expandable {
			policy.Tiers = tiers[id]
		} else if len(tiers[id]) > 0 {
			return nil, rowError(TableFacilities, i, fmt.Errorf("facility %s has expansion tiers but is not expandable", id))
		}

		f, err := entities.NewFacility(id, expandable, policy)
		if err != nil {
			return nil, rowError(TableFacilities, i, err)
		}
		if _, dup := byID[id]; dup {
			return nil, rowError(TableFacilities, i, fmt.Errorf("duplicate facility %s", id))
		}
		byID[id] = f
		facilities = append(facilities, f)
	}

	if err := l.attachShelves(byID); err != nil {
		return nil, err
	}
	return facilities, nil
}

func (l *Loader) attachShelves(byID map[entities.FacilityID]*entities.Facility) error {
	rows, err := l.rows(TableShelves, shelfHeader, true)
	if err != nil {
		return err
	}

	for i, record := range rows {
		id := entities.FacilityID(strings.TrimSpace(record[0]))
		f, ok := byID[id]
		if !ok {
			return rowError(TableShelves, i, fmt.Errorf("unknown facility %s", id))
		}
		st, err := entities.ParseStorageType(record[1])
		if err != nil {
			return rowError(TableShelves, i, err)
		}
		current, err := parseInt(record[2])
		if err != nil {
			return rowError(TableShelves, i, fmt.Errorf("current: %w", err))
		}
		nums, err := parseFloats(record[3:7])
		if err != nil {
			return rowError(TableShelves, i, err)
		}
		spec := entities.ShelfSpec{
			Current:      current,
			Volume:       nums[0],
			Weight:       nums[1],
			MaxPackages:  nums[2],
			AreaPerShelf: nums[3],
		}
		if err := f.SetShelf(st, spec); err != nil {
			return rowError(TableShelves, i, err)
		}
	}
	return nil
}

func (l *Loader) loadTiers() (map[entities.FacilityID][]entities.ExpansionTier, error) {
	rows, err := l.rows(TableExpansionTiers, tierHeader, false)
	if err != nil {
		return nil, err
	}

	type numbered struct {
		n    int
		tier entities.ExpansionTier
	}
	grouped := make(map[entities.FacilityID][]numbered)
	for i, record := range rows {
		id := entities.FacilityID(strings.TrimSpace(record[0]))
		n, err := parseInt(record[1])
		if err != nil {
			return nil, rowError(TableExpansionTiers, i, fmt.Errorf("tier: %w", err))
		}
		width, err := parseFloat(record[2])
		if err != nil {
			return nil, rowError(TableExpansionTiers, i, fmt.Errorf("width: %w", err))
		}
		price, err := decimal.NewFromString(strings.TrimSpace(record[3]))
		if err != nil {
			return nil, rowError(TableExpansionTiers, i, fmt.Errorf("price: %w", err))
		}
		for _, existing := range grouped[id] {
			if existing.n == n {
				return nil, rowError(TableExpansionTiers, i, fmt.Errorf("duplicate tier %d for facility %s", n, id))
			}
		}
		grouped[id] = append(grouped[id], numbered{n: n, tier: entities.ExpansionTier{Width: width, Price: price}})
	}

	out := make(map[entities.FacilityID][]entities.ExpansionTier, len(grouped))
	for id, tiers := range grouped {
		sort.Slice(tiers, func(i, j int) bool { return tiers[i].n < tiers[j].n })
		for _, t := range tiers {
			out[id] = append(out[id], t.tier)
		}
	}
	return out, nil
}

// LoadSupplierGroups parses the suppliers table. Blank vehicle limits take the standard trailer.
func (l *Loader) LoadSupplierGroups() ([]*entities.SupplierGroup, error) {
	rows, err := l.rows(TableSuppliers, supplierHeader, false)
	if err != nil {
		return nil, err
	}

	var groups []*entities.SupplierGroup
	for i, record := range rows {
		weight, err := parseOptionalFloat(record[1])
		if err != nil {
			return nil, rowError(TableSuppliers, i, fmt.Errorf("vehicle_weight: %w", err))
		}
		volume, err := parseOptionalFloat(record[2])
		if err != nil {
			return nil, rowError(TableSuppliers, i, fmt.Errorf("vehicle_volume: %w", err))
		}
		maxDispatches := 0
		if strings.TrimSpace(record[3]) != "" {
			if maxDispatches, err = parseInt(record[3]); err != nil {
				return nil, rowError(TableSuppliers, i, fmt.Errorf("max_dispatches: %w", err))
			}
		}
		if weight == 0 {
			weight = entities.DefaultVehicleWeight
		}
		if volume == 0 {
			volume = entities.DefaultVehicleVolume
		}

		g, err := entities.NewSupplierGroup(
			entities.SupplierGroupID(strings.TrimSpace(record[0])),
			entities.Vehicle{Weight: weight, Volume: volume},
			maxDispatches,
		)
		if err != nil {
			return nil, rowError(TableSuppliers, i, err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// LoadLeadTimes parses the lead_times table. A unit of "calendar_days" is converted to
// business days; "sub_periods" or blank is taken as is.
func (l *Loader) LoadLeadTimes() ([]*entities.LeadTime, error) {
	rows, err := l.rows(TableLeadTimes, leadTimeHeader, true)
	if err != nil {
		return nil, err
	}

	var leadTimes []*entities.LeadTime
	seen := make(map[string]int, len(rows))
	for i, record := range rows {
		key := strings.TrimSpace(record[0]) + "@" + strings.TrimSpace(record[1])
		if first, dup := seen[key]; dup {
			return nil, rowError(TableLeadTimes, i, fmt.Errorf("duplicate lead time for %s, first given on row %d", key, first+2))
		}
		seen[key] = i
		lead, err := parseInt(record[2])
		if err != nil {
			return nil, rowError(TableLeadTimes, i, fmt.Errorf("lead_time: %w", err))
		}
		switch strings.ToLower(strings.TrimSpace(record[3])) {
		case "", "sub_periods", "business_days":
		case "calendar_days":
			lead = entities.BusinessDays(lead)
		default:
			return nil, rowError(TableLeadTimes, i, fmt.Errorf("unknown lead time unit %q", record[3]))
		}

		lt, err := entities.NewLeadTime(
			entities.SKUID(strings.TrimSpace(record[0])),
			entities.FacilityID(strings.TrimSpace(record[1])),
			lead,
		)
		if err != nil {
			return nil, rowError(TableLeadTimes, i, err)
		}
		leadTimes = append(leadTimes, lt)
	}
	return leadTimes, nil
}

// LoadDemands parses the demand table. A blank sub_period spreads the quantity evenly
// over every sub-period of the period.
func (l *Loader) LoadDemands() ([]*entities.Demand, error) {
	rows, err := l.rows(TableDemand, demandHeader, true)
	if err != nil {
		return nil, err
	}

	var demands []*entities.Demand
	for i, record := range rows {
		sku := entities.SKUID(strings.TrimSpace(record[0]))
		period, err := parseInt(record[1])
		if err != nil {
			return nil, rowError(TableDemand, i, fmt.Errorf("period: %w", err))
		}
		quantity, err := parseFloat(record[3])
		if err != nil {
			return nil, rowError(TableDemand, i, fmt.Errorf("quantity: %w", err))
		}

		if strings.TrimSpace(record[2]) == "" {
			spread, err := entities.SpreadPeriodDemand(l.cal, sku, period, quantity)
			if err != nil {
				return nil, rowError(TableDemand, i, err)
			}
			demands = append(demands, spread...)
			continue
		}

		sub, err := parseInt(record[2])
		if err != nil {
			return nil, rowError(TableDemand, i, fmt.Errorf("sub_period: %w", err))
		}
		slot, err := l.cal.ParseSlot(period, sub)
		if err != nil {
			return nil, rowError(TableDemand, i, err)
		}
		d, err := entities.NewDemand(sku, l.cal.Index(slot), quantity)
		if err != nil {
			return nil, rowError(TableDemand, i, err)
		}
		demands = append(demands, d)
	}
	return demands, nil
}

// rows fetches a table, checks its header and pads short rows to the header width.
// A missing optional table yields no rows.
func (l *Loader) rows(name string, expected []string, required bool) ([][]string, error) {
	records, err := l.src.Table(name)
	if errors.Is(err, ErrTableMissing) && !required {
		return nil, nil
	}
	if err != nil {
		return nil, &services.InputError{Table: name, Key: "table", Reason: err.Error()}
	}
	if len(records) == 0 {
		return nil, &services.InputError{Table: name, Key: "header", Reason: "table is empty"}
	}
	if !validateHeader(records[0], expected) {
		return nil, &services.InputError{
			Table:  name,
			Key:    "header",
			Reason: fmt.Sprintf("header mismatch. Expected: %v, Got: %v", expected, records[0]),
		}
	}

	var out [][]string
	for i, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		if len(record) > len(expected) {
			return nil, rowError(name, i, fmt.Errorf("expected %d columns, got %d", len(expected), len(record)))
		}
		for len(record) < len(expected) {
			record = append(record, "")
		}
		out = append(out, record)
	}
	return out, nil
}

// rowError points at the 1-based file row, counting the header
func rowError(table string, i int, err error) error {
	return &services.InputError{Table: table, Key: fmt.Sprintf("row %d", i+2), Reason: err.Error()}
}

func validateHeader(actual, expected []string) bool {
	// spreadsheets drop trailing empty cells but never header names
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func isBlank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseSKU(record []string) (*entities.SKU, error) {
	st, err := entities.ParseStorageType(record[2])
	if err != nil {
		return nil, err
	}
	nums, err := parseFloats(record[3:8])
	if err != nil {
		return nil, err
	}
	eligible, err := parseBool(record[8])
	if err != nil {
		return nil, fmt.Errorf("repack_eligible: %w", err)
	}

	sku, err := entities.NewSKU(
		entities.SKUID(strings.TrimSpace(record[0])),
		entities.Footprint{Volume: nums[0], Weight: nums[1]},
		entities.Footprint{Volume: nums[2], Weight: nums[3]},
		nums[4],
		eligible,
		st,
		entities.SupplierGroupID(strings.TrimSpace(record[9])),
		strings.TrimSpace(record[10]),
	)
	if err != nil {
		return nil, err
	}
	sku.Description = strings.TrimSpace(record[1])
	return sku, nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := parseOptionalFloat(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

func parseOptionalFloat(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return parseFloat(s)
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return v, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

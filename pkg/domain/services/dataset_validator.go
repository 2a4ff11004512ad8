package services

import (
	"errors"
	"fmt"

	"github.com/vsinha/wareopt/pkg/domain/entities"
)

// DatasetValidator checks referential integrity of the input tables before model assembly
type DatasetValidator struct{}

// NewDatasetValidator creates a new dataset validator
func NewDatasetValidator() *DatasetValidator {
	return &DatasetValidator{}
}

// ValidationResult contains every problem found in a dataset
type ValidationResult struct {
	InputErrors      []*InputError
	StructuralErrors []*StructuralError
}

// HasErrors reports whether any problem was found
func (r *ValidationResult) HasErrors() bool {
	return len(r.InputErrors) > 0 || len(r.StructuralErrors) > 0
}

// Err joins every problem into one error, nil when the dataset is clean
func (r *ValidationResult) Err() error {
	if !r.HasErrors() {
		return nil
	}
	errs := make([]error, 0, len(r.InputErrors)+len(r.StructuralErrors))
	for _, e := range r.StructuralErrors {
		errs = append(errs, e)
	}
	for _, e := range r.InputErrors {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

func (r *ValidationResult) input(table, key, format string, args ...any) {
	r.InputErrors = append(r.InputErrors, inputErrorf(table, key, format, args...))
}

// ValidateDataset performs all table checks and returns the collected result
func (v *DatasetValidator) ValidateDataset(ds *entities.Dataset) *ValidationResult {
	result := &ValidationResult{}

	if err := ds.Calendar.Validate(); err != nil {
		result.StructuralErrors = append(result.StructuralErrors, &StructuralError{Key: "calendar", Err: err})
		return result
	}

	skus := make(map[entities.SKUID]*entities.SKU, len(ds.SKUs))
	for _, s := range ds.SKUs {
		if _, dup := skus[s.ID]; dup {
			result.input("skus", string(s.ID), "duplicate sku")
			continue
		}
		skus[s.ID] = s
	}

	facilities := make(map[entities.FacilityID]*entities.Facility, len(ds.Facilities))
	for _, f := range ds.Facilities {
		if _, dup := facilities[f.ID]; dup {
			result.input("facilities", string(f.ID), "duplicate facility")
			continue
		}
		facilities[f.ID] = f
		if err := f.ValidateExpansion(); err != nil {
			result.StructuralErrors = append(result.StructuralErrors, &StructuralError{Key: string(f.ID), Err: err})
		}
	}

	groups := make(map[entities.SupplierGroupID]bool, len(ds.SupplierGroups))
	for _, g := range ds.SupplierGroups {
		if groups[g.ID] {
			result.input("suppliers", string(g.ID), "duplicate supplier group")
		}
		groups[g.ID] = true
	}

	for _, s := range ds.SKUs {
		if s.SupplierGroup != "" && !groups[s.SupplierGroup] {
			result.input("skus", string(s.ID), "unknown supplier group %q", s.SupplierGroup)
		}
	}

	stocked := make(map[entities.SKUID]int)
	seen := make(map[string]bool, len(ds.LeadTimes))
	for _, lt := range ds.LeadTimes {
		key := fmt.Sprintf("%s@%s", lt.SKU, lt.Facility)
		if seen[key] {
			result.input("lead_times", key, "duplicate lead time")
			continue
		}
		seen[key] = true
		sku, okSKU := skus[lt.SKU]
		f, okFacility := facilities[lt.Facility]
		switch {
		case !okSKU:
			result.input("lead_times", key, "unknown sku")
			continue
		case !okFacility:
			result.input("lead_times", key, "unknown facility")
			continue
		case lt.SubPeriods < 0:
			result.input("lead_times", key, "lead time cannot be negative, got %d", lt.SubPeriods)
			continue
		}
		if _, ok := f.Shelf(sku.StorageType); !ok {
			result.input("lead_times", key, "facility has no %s shelving for this sku", sku.StorageType)
			continue
		}
		stocked[lt.SKU]++
	}

	demanded := make(map[entities.SKUID]bool)
	for _, d := range ds.Demands {
		key := fmt.Sprintf("%s@%s", d.SKU, ds.Calendar.Slot(d.Slot))
		if _, ok := skus[d.SKU]; !ok {
			result.input("demand", key, "unknown sku")
			continue
		}
		if !ds.Calendar.Contains(d.Slot) {
			result.input("demand", key, "slot %d outside horizon of %d slots", d.Slot, ds.Calendar.Len())
			continue
		}
		if d.Quantity < 0 {
			result.input("demand", key, "quantity cannot be negative, got %g", d.Quantity)
			continue
		}
		if d.Quantity > 0 {
			demanded[d.SKU] = true
		}
	}

	for _, s := range ds.SKUs {
		if demanded[s.ID] && stocked[s.ID] == 0 {
			result.input("lead_times", string(s.ID), "sku has demand but no lead time at any facility")
		}
	}

	return result
}

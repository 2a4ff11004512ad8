package entities

import "fmt"

// SupplierGroupID identifies a set of SKUs that ship on shared vehicles
type SupplierGroupID string

// Standard trailer limits used when a supplier table does not override them.
const (
	DefaultVehicleWeight = 45000.0
	DefaultVehicleVolume = 3600.0
)

// Vehicle is the weight and volume ceiling of one dispatch unit
type Vehicle struct {
	Weight float64 `json:"weight" yaml:"weight"`
	Volume float64 `json:"volume" yaml:"volume"`
}

// SupplierGroup represents a consolidation group for inbound deliveries
type SupplierGroup struct {
	ID      SupplierGroupID `json:"id" yaml:"id"`
	Vehicle Vehicle         `json:"vehicle" yaml:"vehicle"`
	// MaxDispatches caps vehicles per (facility, slot); 0 leaves the count unconstrained
	MaxDispatches int `json:"max_dispatches,omitempty" yaml:"max_dispatches,omitempty"`
}

// NewSupplierGroup creates a new supplier group with validation
func NewSupplierGroup(id SupplierGroupID, vehicle Vehicle, maxDispatches int) (*SupplierGroup, error) {
	if id == "" {
		return nil, fmt.Errorf("supplier group id cannot be empty")
	}
	if vehicle.Weight <= 0 {
		return nil, fmt.Errorf("vehicle weight capacity must be positive, got %g", vehicle.Weight)
	}
	if vehicle.Volume <= 0 {
		return nil, fmt.Errorf("vehicle volume capacity must be positive, got %g", vehicle.Volume)
	}
	if maxDispatches < 0 {
		return nil, fmt.Errorf("max dispatches cannot be negative, got %d", maxDispatches)
	}
	return &SupplierGroup{ID: id, Vehicle: vehicle, MaxDispatches: maxDispatches}, nil
}

// LeadTime is the replenishment delay, in sub-periods, for a SKU delivered to a facility.
// A lead-time row also marks the facility as stocking the SKU.
type LeadTime struct {
	SKU        SKUID      `json:"sku" yaml:"sku"`
	Facility   FacilityID `json:"facility" yaml:"facility"`
	SubPeriods int        `json:"sub_periods" yaml:"sub_periods"`
}

// NewLeadTime creates a new lead time with validation
func NewLeadTime(sku SKUID, facility FacilityID, subPeriods int) (*LeadTime, error) {
	if sku == "" {
		return nil, fmt.Errorf("sku id cannot be empty")
	}
	if facility == "" {
		return nil, fmt.Errorf("facility id cannot be empty")
	}
	if subPeriods < 0 {
		return nil, fmt.Errorf("lead time cannot be negative, got %d", subPeriods)
	}
	return &LeadTime{SKU: sku, Facility: facility, SubPeriods: subPeriods}, nil
}

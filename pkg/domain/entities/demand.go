package entities

import "fmt"

// Demand represents units of a SKU required in one slot, summed across facilities
type Demand struct {
	SKU      SKUID     `json:"sku" yaml:"sku"`
	Slot     SlotIndex `json:"slot" yaml:"slot"`
	Quantity float64   `json:"quantity" yaml:"quantity"`
}

// NewDemand creates a new demand with validation
func NewDemand(sku SKUID, slot SlotIndex, quantity float64) (*Demand, error) {
	if sku == "" {
		return nil, fmt.Errorf("sku id cannot be empty")
	}
	if slot < 0 {
		return nil, fmt.Errorf("slot index cannot be negative, got %d", slot)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("demand quantity cannot be negative, got %g", quantity)
	}
	return &Demand{SKU: sku, Slot: slot, Quantity: quantity}, nil
}

// SpreadPeriodDemand distributes a whole-period quantity evenly across its sub-periods.
func SpreadPeriodDemand(cal Calendar, sku SKUID, period int, quantity float64) ([]*Demand, error) {
	if period < 1 || period > cal.Periods {
		return nil, fmt.Errorf("period must be in [1, %d], got %d", cal.Periods, period)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("demand quantity cannot be negative, got %g", quantity)
	}
	perSlot := quantity / float64(cal.SubPeriodsPerPeriod)
	out := make([]*Demand, 0, cal.SubPeriodsPerPeriod)
	for sub := 1; sub <= cal.SubPeriodsPerPeriod; sub++ {
		d, err := NewDemand(sku, cal.Index(TimeSlot{Period: period, SubPeriod: sub}), perSlot)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

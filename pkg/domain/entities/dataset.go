package entities

// Dataset is the full static input of one optimization run
type Dataset struct {
	Calendar       Calendar
	SKUs           []*SKU
	Facilities     []*Facility
	SupplierGroups []*SupplierGroup
	LeadTimes      []*LeadTime
	Demands        []*Demand
}

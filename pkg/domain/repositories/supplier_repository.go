package repositories

import "github.com/vsinha/wareopt/pkg/domain/entities"

// SupplierRepository provides access to supplier groups and replenishment lead times
type SupplierRepository interface {
	GetSupplierGroup(id entities.SupplierGroupID) (*entities.SupplierGroup, error)
	GetAllSupplierGroups() ([]*entities.SupplierGroup, error)
	LoadSupplierGroups(groups []*entities.SupplierGroup) error

	// GetLeadTime reports the lead time for a SKU at a facility; ok is false when the facility does not stock it
	GetLeadTime(sku entities.SKUID, facility entities.FacilityID) (leadTime int, ok bool)
	GetAllLeadTimes() ([]*entities.LeadTime, error)
	LoadLeadTimes(leadTimes []*entities.LeadTime) error
}

package memory

import (
	"fmt"

	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/domain/repositories"
	"github.com/vsinha/wareopt/pkg/domain/services"
)

type leadTimeKey struct {
	sku      entities.SKUID
	facility entities.FacilityID
}

// SupplierRepository provides in-memory supplier group and lead time storage
type SupplierRepository struct {
	groups      []entities.SupplierGroup
	groupsMap   map[entities.SupplierGroupID]int
	leadTimes   []entities.LeadTime
	leadTimeMap map[leadTimeKey]int
}

// NewSupplierRepository creates a new in-memory supplier repository
func NewSupplierRepository() *SupplierRepository {
	return &SupplierRepository{
		groupsMap:   make(map[entities.SupplierGroupID]int),
		leadTimeMap: make(map[leadTimeKey]int),
	}
}

// Verify interface compliance
var _ repositories.SupplierRepository = (*SupplierRepository)(nil)

// LoadSupplierGroups loads supplier groups into the repository
func (r *SupplierRepository) LoadSupplierGroups(groups []*entities.SupplierGroup) error {
	for _, g := range groups {
		if index, exists := r.groupsMap[g.ID]; exists {
			r.groups[index] = *g
			continue
		}
		r.groupsMap[g.ID] = len(r.groups)
		r.groups = append(r.groups, *g)
	}
	return nil
}

// GetSupplierGroup returns a supplier group by id
func (r *SupplierRepository) GetSupplierGroup(id entities.SupplierGroupID) (*entities.SupplierGroup, error) {
	index, exists := r.groupsMap[id]
	if !exists {
		return nil, fmt.Errorf("supplier group not found: %s", id)
	}
	return &r.groups[index], nil
}

// GetAllSupplierGroups returns all supplier groups in load order
func (r *SupplierRepository) GetAllSupplierGroups() ([]*entities.SupplierGroup, error) {
	out := make([]*entities.SupplierGroup, 0, len(r.groups))
	for i := range r.groups {
		out = append(out, &r.groups[i])
	}
	return out, nil
}

// LoadLeadTimes loads lead times. A second row for the same (SKU, facility) is rejected.
func (r *SupplierRepository) LoadLeadTimes(leadTimes []*entities.LeadTime) error {
	for _, lt := range leadTimes {
		key := leadTimeKey{sku: lt.SKU, facility: lt.Facility}
		if _, exists := r.leadTimeMap[key]; exists {
			return &services.InputError{
				Table:  "lead_times",
				Key:    fmt.Sprintf("%s@%s", lt.SKU, lt.Facility),
				Reason: "duplicate lead time",
			}
		}
		r.leadTimeMap[key] = len(r.leadTimes)
		r.leadTimes = append(r.leadTimes, *lt)
	}
	return nil
}

// GetLeadTime returns the lead time for a SKU at a facility
func (r *SupplierRepository) GetLeadTime(sku entities.SKUID, facility entities.FacilityID) (int, bool) {
	index, exists := r.leadTimeMap[leadTimeKey{sku: sku, facility: facility}]
	if !exists {
		return 0, false
	}
	return r.leadTimes[index].SubPeriods, true
}

// GetAllLeadTimes returns all lead times in load order
func (r *SupplierRepository) GetAllLeadTimes() ([]*entities.LeadTime, error) {
	out := make([]*entities.LeadTime, 0, len(r.leadTimes))
	for i := range r.leadTimes {
		out = append(out, &r.leadTimes[i])
	}
	return out, nil
}

package repositories

import (
	"fmt"

	"github.com/vsinha/wareopt/pkg/domain/entities"
)

// Set bundles the repositories one planning run reads from
type Set struct {
	SKUs       SKURepository
	Facilities FacilityRepository
	Suppliers  SupplierRepository
	Demand     DemandRepository
}

// Dataset snapshots every repository into a dataset over the given calendar
func (s Set) Dataset(cal entities.Calendar) (*entities.Dataset, error) {
	skus, err := s.SKUs.GetAllSKUs()
	if err != nil {
		return nil, fmt.Errorf("failed to read skus: %w", err)
	}
	facilities, err := s.Facilities.GetAllFacilities()
	if err != nil {
		return nil, fmt.Errorf("failed to read facilities: %w", err)
	}
	groups, err := s.Suppliers.GetAllSupplierGroups()
	if err != nil {
		return nil, fmt.Errorf("failed to read supplier groups: %w", err)
	}
	leadTimes, err := s.Suppliers.GetAllLeadTimes()
	if err != nil {
		return nil, fmt.Errorf("failed to read lead times: %w", err)
	}
	demands, err := s.Demand.GetDemands()
	if err != nil {
		return nil, fmt.Errorf("failed to read demand: %w", err)
	}
	return &entities.Dataset{
		Calendar:       cal,
		SKUs:           skus,
		Facilities:     facilities,
		SupplierGroups: groups,
		LeadTimes:      leadTimes,
		Demands:        demands,
	}, nil
}

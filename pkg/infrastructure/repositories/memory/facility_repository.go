package memory

import (
	"fmt"

	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/domain/repositories"
)

// FacilityRepository provides in-memory facility storage
type FacilityRepository struct {
	facilities    []*entities.Facility
	facilitiesMap map[entities.FacilityID]int
}

// NewFacilityRepository creates a new in-memory facility repository
func NewFacilityRepository() *FacilityRepository {
	return &FacilityRepository{
		facilitiesMap: make(map[entities.FacilityID]int),
	}
}

// Verify interface compliance
var _ repositories.FacilityRepository = (*FacilityRepository)(nil)

// LoadFacilities loads facilities into the repository
func (r *FacilityRepository) LoadFacilities(facilities []*entities.Facility) error {
	for _, f := range facilities {
		if f == nil {
			return fmt.Errorf("cannot load nil facility")
		}
		if index, exists := r.facilitiesMap[f.ID]; exists {
			r.facilities[index] = f
			continue
		}
		r.facilitiesMap[f.ID] = len(r.facilities)
		r.facilities = append(r.facilities, f)
	}
	return nil
}

// GetFacility returns a facility by id
func (r *FacilityRepository) GetFacility(id entities.FacilityID) (*entities.Facility, error) {
	index, exists := r.facilitiesMap[id]
	if !exists {
		return nil, fmt.Errorf("facility not found: %s", id)
	}
	return r.facilities[index], nil
}

// GetAllFacilities returns all facilities in load order
func (r *FacilityRepository) GetAllFacilities() ([]*entities.Facility, error) {
	out := make([]*entities.Facility, len(r.facilities))
	copy(out, r.facilities)
	return out, nil
}

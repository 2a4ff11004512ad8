package repositories

import "github.com/vsinha/wareopt/pkg/domain/entities"

// FacilityRepository provides access to warehouses, their shelving and expansion terms
type FacilityRepository interface {
	GetFacility(id entities.FacilityID) (*entities.Facility, error)
	GetAllFacilities() ([]*entities.Facility, error)
	LoadFacilities(facilities []*entities.Facility) error
}

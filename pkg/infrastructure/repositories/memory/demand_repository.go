package memory

import (
	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/domain/repositories"
)

// DemandRepository provides in-memory demand storage
type DemandRepository struct {
	demands []entities.Demand
	bySKU   map[entities.SKUID][]int
}

// NewDemandRepository creates a new in-memory demand repository
func NewDemandRepository() *DemandRepository {
	return &DemandRepository{
		demands: []entities.Demand{},
		bySKU:   make(map[entities.SKUID][]int),
	}
}

// Verify interface compliance
var _ repositories.DemandRepository = (*DemandRepository)(nil)

// LoadDemands loads demands into the repository
func (r *DemandRepository) LoadDemands(demands []*entities.Demand) error {
	for _, demand := range demands {
		r.bySKU[demand.SKU] = append(r.bySKU[demand.SKU], len(r.demands))
		r.demands = append(r.demands, *demand)
	}
	return nil
}

// GetDemands returns all demand rows
func (r *DemandRepository) GetDemands() ([]*entities.Demand, error) {
	demands := make([]*entities.Demand, 0, len(r.demands))
	for i := range r.demands {
		demands = append(demands, &r.demands[i])
	}
	return demands, nil
}

// GetDemandsForSKU returns the demand rows of one SKU
func (r *DemandRepository) GetDemandsForSKU(sku entities.SKUID) ([]*entities.Demand, error) {
	indexes := r.bySKU[sku]
	demands := make([]*entities.Demand, 0, len(indexes))
	for _, i := range indexes {
		demands = append(demands, &r.demands[i])
	}
	return demands, nil
}

package repositories

import "github.com/vsinha/wareopt/pkg/domain/entities"

// DemandRepository provides access to per-slot SKU demand
type DemandRepository interface {
	GetDemands() ([]*entities.Demand, error)
	GetDemandsForSKU(sku entities.SKUID) ([]*entities.Demand, error)
	LoadDemands(demands []*entities.Demand) error
}

package memory

import (
	"fmt"

	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/domain/repositories"
)

// SKURepository provides in-memory SKU storage
type SKURepository struct {
	skus    []entities.SKU
	skusMap map[entities.SKUID]int
}

// NewSKURepository creates a new in-memory SKU repository
func NewSKURepository(expectedSKUs int) *SKURepository {
	return &SKURepository{
		skus:    make([]entities.SKU, 0, expectedSKUs),
		skusMap: make(map[entities.SKUID]int, expectedSKUs),
	}
}

// Verify interface compliance
var _ repositories.SKURepository = (*SKURepository)(nil)

// LoadSKUs loads SKUs into the repository
func (r *SKURepository) LoadSKUs(skus []*entities.SKU) error {
	for _, sku := range skus {
		r.AddSKU(*sku)
	}
	return nil
}

// AddSKU adds a SKU, replacing any earlier record with the same id
func (r *SKURepository) AddSKU(sku entities.SKU) {
	if index, exists := r.skusMap[sku.ID]; exists {
		r.skus[index] = sku
		return
	}
	r.skusMap[sku.ID] = len(r.skus)
	r.skus = append(r.skus, sku)
}

// GetSKU returns SKU master data
func (r *SKURepository) GetSKU(id entities.SKUID) (*entities.SKU, error) {
	index, exists := r.skusMap[id]
	if !exists {
		return nil, fmt.Errorf("sku not found: %s", id)
	}
	return &r.skus[index], nil
}

// GetAllSKUs returns all SKUs in load order
func (r *SKURepository) GetAllSKUs() ([]*entities.SKU, error) {
	skus := make([]*entities.SKU, 0, len(r.skus))
	for i := range r.skus {
		skus = append(skus, &r.skus[i])
	}
	return skus, nil
}

package repositories

import "github.com/vsinha/wareopt/pkg/domain/entities"

// SKURepository provides access to SKU master data
type SKURepository interface {
	GetSKU(id entities.SKUID) (*entities.SKU, error)
	GetAllSKUs() ([]*entities.SKU, error)
	LoadSKUs(skus []*entities.SKU) error
}

package entities

import (
	"fmt"
	"strings"
)

// SKUID represents a unique stock-keeping unit identifier
type SKUID string

// StorageType represents the shelf family a SKU is stored on
type StorageType int

const (
	Bin StorageType = iota
	Rack
	Pallet
	Hazmat
)

// StorageTypes lists every storage type in canonical order
var StorageTypes = []StorageType{Bin, Rack, Pallet, Hazmat}

// String method for StorageType enum
func (s StorageType) String() string {
	switch s {
	case Bin:
		return "Bin"
	case Rack:
		return "Rack"
	case Pallet:
		return "Pallet"
	case Hazmat:
		return "Hazmat"
	default:
		return "Unknown"
	}
}

// ParseStorageType accepts the canonical names plus the plural and long forms found in shelf tables.
func ParseStorageType(raw string) (StorageType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "bin", "bins":
		return Bin, nil
	case "rack", "racks", "racking":
		return Rack, nil
	case "pallet", "pallets":
		return Pallet, nil
	case "hazmat":
		return Hazmat, nil
	default:
		return 0, fmt.Errorf("unknown storage type %q", raw)
	}
}

// MarshalText renders the storage type by name in JSON/YAML map keys and values
func (s StorageType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a storage type name
func (s *StorageType) UnmarshalText(text []byte) error {
	parsed, err := ParseStorageType(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Footprint is the physical volume and weight of one handling unit
type Footprint struct {
	Volume float64 `json:"volume" yaml:"volume"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Scale multiplies both dimensions by k
func (f Footprint) Scale(k float64) Footprint {
	return Footprint{Volume: f.Volume * k, Weight: f.Weight * k}
}

// SKU represents a stocked item with its as-received and repacked footprints
type SKU struct {
	ID              SKUID           `json:"id" yaml:"id"`
	Description     string          `json:"description,omitempty" yaml:"description,omitempty"`
	Bulk            Footprint       `json:"bulk" yaml:"bulk"`
	Unit            Footprint       `json:"unit" yaml:"unit"`
	ConversionRatio float64         `json:"conversion_ratio" yaml:"conversion_ratio"`
	RepackEligible  bool            `json:"repack_eligible" yaml:"repack_eligible"`
	StorageType     StorageType     `json:"storage_type" yaml:"storage_type"`
	SupplierGroup   SupplierGroupID `json:"supplier_group,omitempty" yaml:"supplier_group,omitempty"`
	CoverageGroup   string          `json:"coverage_group,omitempty" yaml:"coverage_group,omitempty"`
}

// NewSKU creates a new SKU with validation
func NewSKU(
	id SKUID,
	bulk, unit Footprint,
	conversionRatio float64,
	repackEligible bool,
	storageType StorageType,
	supplierGroup SupplierGroupID,
	coverageGroup string,
) (*SKU, error) {
	if id == "" {
		return nil, fmt.Errorf("sku id cannot be empty")
	}
	if conversionRatio <= 0 {
		return nil, fmt.Errorf("conversion ratio must be positive, got %g", conversionRatio)
	}
	if err := validateFootprint("bulk", bulk); err != nil {
		return nil, err
	}
	if err := validateFootprint("unit", unit); err != nil {
		return nil, err
	}
	if storageType < Bin || storageType > Hazmat {
		return nil, fmt.Errorf("invalid storage type %d", int(storageType))
	}

	return &SKU{
		ID:              id,
		Bulk:            bulk,
		Unit:            unit,
		ConversionRatio: conversionRatio,
		RepackEligible:  repackEligible,
		StorageType:     storageType,
		SupplierGroup:   supplierGroup,
		CoverageGroup:   coverageGroup,
	}, nil
}

// RepackedPackage is the footprint of one as-received pack once broken into units.
func (s *SKU) RepackedPackage() Footprint {
	return s.Unit.Scale(s.ConversionRatio)
}

// PackageFootprint selects the footprint of one package for the given storage format.
func (s *SKU) PackageFootprint(repacked bool) Footprint {
	if repacked {
		return s.RepackedPackage()
	}
	return s.Bulk
}

func validateFootprint(kind string, f Footprint) error {
	if f.Volume < 0 {
		return fmt.Errorf("%s volume cannot be negative, got %g", kind, f.Volume)
	}
	if f.Weight < 0 {
		return fmt.Errorf("%s weight cannot be negative, got %g", kind, f.Weight)
	}
	return nil
}

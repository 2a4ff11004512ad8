package entities

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// FacilityID represents a unique warehouse identifier
type FacilityID string

// DefaultAreaPerShelf is the square footage recorded for a shelf of a fixed facility when the
// table gives none. Fixed facilities never add shelves, so the figure is never priced.
const DefaultAreaPerShelf = 50.0

// ShelfSpec describes one storage type inside a facility
type ShelfSpec struct {
	Current int `json:"current" yaml:"current"`
	// Per-shelf capacities
	Volume      float64 `json:"volume" yaml:"volume"`
	Weight      float64 `json:"weight" yaml:"weight"`
	MaxPackages float64 `json:"max_packages,omitempty" yaml:"max_packages,omitempty"` // 0 means no package limit
	// AreaPerShelf is the floor area one added shelf consumes
	AreaPerShelf float64 `json:"area_per_shelf" yaml:"area_per_shelf"`
}

// ExpansionTier is one segment of a piecewise-linear expansion price
type ExpansionTier struct {
	Width float64         `json:"width" yaml:"width"`
	Price decimal.Decimal `json:"price" yaml:"price"`
}

// ExpansionPolicy is the cost function and hard ceiling of an expandable facility
type ExpansionPolicy struct {
	Tiers   []ExpansionTier `json:"tiers" yaml:"tiers"`
	Ceiling float64         `json:"ceiling" yaml:"ceiling"`
}

// FlatExpansion builds a single-tier policy priced uniformly up to the ceiling
func FlatExpansion(price decimal.Decimal, ceiling float64) ExpansionPolicy {
	return ExpansionPolicy{
		Tiers:   []ExpansionTier{{Width: ceiling, Price: price}},
		Ceiling: ceiling,
	}
}

// TotalWidth sums every tier width
func (p ExpansionPolicy) TotalWidth() float64 {
	total := 0.0
	for _, t := range p.Tiers {
		total += t.Width
	}
	return total
}

// Cost prices an expansion area by filling tiers in order
func (p ExpansionPolicy) Cost(area float64) decimal.Decimal {
	cost := decimal.Zero
	remaining := area
	for _, t := range p.Tiers {
		if remaining <= 0 {
			break
		}
		used := t.Width
		if remaining < used {
			used = remaining
		}
		cost = cost.Add(t.Price.Mul(decimal.NewFromFloat(used)))
		remaining -= used
	}
	return cost
}

// Facility represents a warehouse with per-storage-type shelving
type Facility struct {
	ID         FacilityID                `json:"id" yaml:"id"`
	Expandable bool                      `json:"expandable" yaml:"expandable"`
	Shelves    map[StorageType]ShelfSpec `json:"shelves" yaml:"shelves"`
	Expansion  ExpansionPolicy           `json:"expansion" yaml:"expansion"`
}

// NewFacility creates a facility; expansion may be empty for non-expandable sites.
func NewFacility(id FacilityID, expandable bool, expansion ExpansionPolicy) (*Facility, error) {
	if id == "" {
		return nil, fmt.Errorf("facility id cannot be empty")
	}
	if !expandable && len(expansion.Tiers) > 0 {
		return nil, fmt.Errorf("facility %s is not expandable but has %d expansion tiers", id, len(expansion.Tiers))
	}
	return &Facility{
		ID:         id,
		Expandable: expandable,
		Shelves:    make(map[StorageType]ShelfSpec),
		Expansion:  expansion,
	}, nil
}

// SetShelf registers or replaces the spec for one storage type. An expandable facility must
// state the floor area of a shelf, since added shelves are charged against it.
func (f *Facility) SetShelf(st StorageType, spec ShelfSpec) error {
	if spec.Current < 0 {
		return fmt.Errorf("facility %s %s: current shelves cannot be negative, got %d", f.ID, st, spec.Current)
	}
	if spec.Volume < 0 || spec.Weight < 0 || spec.MaxPackages < 0 {
		return fmt.Errorf("facility %s %s: shelf capacities cannot be negative", f.ID, st)
	}
	if spec.AreaPerShelf < 0 {
		return fmt.Errorf("facility %s %s: area per shelf cannot be negative, got %g", f.ID, st, spec.AreaPerShelf)
	}
	if spec.AreaPerShelf == 0 {
		if f.Expandable {
			return fmt.Errorf("facility %s %s: expandable facility needs an area per shelf", f.ID, st)
		}
		spec.AreaPerShelf = DefaultAreaPerShelf
	}
	if f.Shelves == nil {
		f.Shelves = make(map[StorageType]ShelfSpec)
	}
	f.Shelves[st] = spec
	return nil
}

// Shelf returns the spec for a storage type
func (f *Facility) Shelf(st StorageType) (ShelfSpec, bool) {
	spec, ok := f.Shelves[st]
	return spec, ok
}

// StorageTypes returns the storage types configured at the facility in canonical order
func (f *Facility) StorageTypes() []StorageType {
	types := make([]StorageType, 0, len(f.Shelves))
	for st := range f.Shelves {
		types = append(types, st)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// ValidateExpansion checks tier geometry against the ceiling. A zero ceiling means "sum of widths".
func (f *Facility) ValidateExpansion() error {
	if !f.Expandable {
		return nil
	}
	if len(f.Expansion.Tiers) == 0 {
		return fmt.Errorf("facility %s is expandable but has no expansion tiers", f.ID)
	}
	for i, t := range f.Expansion.Tiers {
		if t.Width <= 0 {
			return fmt.Errorf("facility %s tier %d: width must be positive, got %g", f.ID, i+1, t.Width)
		}
		if t.Price.IsNegative() {
			return fmt.Errorf("facility %s tier %d: price cannot be negative, got %s", f.ID, i+1, t.Price)
		}
		if i > 0 && t.Price.LessThan(f.Expansion.Tiers[i-1].Price) {
			return fmt.Errorf("facility %s tier %d: price %s is lower than tier %d price %s",
				f.ID, i+1, t.Price, i, f.Expansion.Tiers[i-1].Price)
		}
	}
	if f.Expansion.Ceiling < 0 {
		return fmt.Errorf("facility %s: expansion ceiling cannot be negative, got %g", f.ID, f.Expansion.Ceiling)
	}
	if f.Expansion.Ceiling > f.Expansion.TotalWidth() {
		return fmt.Errorf("facility %s: expansion ceiling %g exceeds total tier width %g",
			f.ID, f.Expansion.Ceiling, f.Expansion.TotalWidth())
	}
	return nil
}

// EffectiveCeiling is the usable expansion area
func (f *Facility) EffectiveCeiling() float64 {
	if !f.Expandable {
		return 0
	}
	if f.Expansion.Ceiling > 0 {
		return f.Expansion.Ceiling
	}
	return f.Expansion.TotalWidth()
}

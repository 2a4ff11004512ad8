package entities

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func tieredFacility(t *testing.T, ceiling float64) *Facility {
	t.Helper()
	f, err := NewFacility("SAC", true, ExpansionPolicy{
		Tiers: []ExpansionTier{
			{Width: 100000, Price: decimal.NewFromFloat(2.0)},
			{Width: 150000, Price: decimal.NewFromFloat(4.0)},
		},
		Ceiling: ceiling,
	})
	if err != nil {
		t.Fatalf("Expected valid facility: %v", err)
	}
	return f
}

func TestExpansionPolicy_Cost(t *testing.T) {
	f := tieredFacility(t, 250000)

	testCases := []struct {
		area     float64
		expected string
	}{
		{0, "0"},
		{50000, "100000"},
		{100000, "200000"},
		{120000, "280000"},
		{250000, "800000"},
	}
	for _, tc := range testCases {
		got := f.Expansion.Cost(tc.area)
		if !got.Equal(decimal.RequireFromString(tc.expected)) {
			t.Errorf("Cost(%g) = %s, want %s", tc.area, got, tc.expected)
		}
	}

	flat := FlatExpansion(decimal.NewFromFloat(1.5), 200000)
	if got := flat.Cost(1000); !got.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Flat cost = %s, want 1500", got)
	}
}

func TestFacility_ValidateExpansion(t *testing.T) {
	if err := tieredFacility(t, 250000).ValidateExpansion(); err != nil {
		t.Errorf("Expected consistent tiers to validate: %v", err)
	}
	if got := tieredFacility(t, 0).EffectiveCeiling(); got != 250000 {
		t.Errorf("Expected zero ceiling to default to total width, got %g", got)
	}

	err := tieredFacility(t, 300000).ValidateExpansion()
	if err == nil || err.Error() != "facility SAC: expansion ceiling 300000 exceeds total tier width 250000" {
		t.Errorf("Expected ceiling/width inconsistency, got %v", err)
	}

	f := tieredFacility(t, 250000)
	f.Expansion.Tiers[1].Price = decimal.NewFromInt(1)
	if err := f.ValidateExpansion(); err == nil {
		t.Errorf("Expected decreasing tier price to be rejected")
	}

	if _, err := NewFacility("COL", false, FlatExpansion(decimal.NewFromInt(1), 10)); err == nil {
		t.Errorf("Expected non-expandable facility with tiers to be rejected")
	}
}

func TestFacility_SetShelf(t *testing.T) {
	f, _ := NewFacility("AUS", false, ExpansionPolicy{})
	if err := f.SetShelf(Pallet, ShelfSpec{Current: 10, Volume: 100, Weight: 4000}); err != nil {
		t.Fatalf("SetShelf failed: %v", err)
	}
	spec, ok := f.Shelf(Pallet)
	if !ok || spec.AreaPerShelf != DefaultAreaPerShelf {
		t.Errorf("Expected default area per shelf, got %+v", spec)
	}
	if err := f.SetShelf(Bin, ShelfSpec{Current: -1}); err == nil {
		t.Errorf("Expected negative shelf count to be rejected")
	}
	if got := f.StorageTypes(); len(got) != 1 || got[0] != Pallet {
		t.Errorf("Expected [Pallet], got %v", got)
	}
}

func TestFacility_SetShelfExpandableNeedsArea(t *testing.T) {
	f := tieredFacility(t, 0)

	err := f.SetShelf(Rack, ShelfSpec{Current: 4, Volume: 100})
	if err == nil || !strings.Contains(err.Error(), "SAC Rack: expandable facility needs an area per shelf") {
		t.Errorf("Expected missing area to be rejected, got %v", err)
	}
	if _, ok := f.Shelf(Rack); ok {
		t.Errorf("Expected rejected spec not to be registered")
	}
	if err := f.SetShelf(Rack, ShelfSpec{Current: 4, Volume: 100, AreaPerShelf: -5}); err == nil {
		t.Errorf("Expected negative area to be rejected")
	}
	if err := f.SetShelf(Rack, ShelfSpec{Current: 4, Volume: 100, AreaPerShelf: 35}); err != nil {
		t.Fatalf("SetShelf failed: %v", err)
	}
	if spec, _ := f.Shelf(Rack); spec.AreaPerShelf != 35 {
		t.Errorf("Expected stated area to be kept, got %g", spec.AreaPerShelf)
	}
}

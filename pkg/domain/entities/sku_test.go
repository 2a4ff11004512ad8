package entities

import (
	"math"
	"testing"
)

func TestSKU_Validation(t *testing.T) {
	bulk := Footprint{Volume: 2, Weight: 20}
	unit := Footprint{Volume: 0.1, Weight: 1.5}

	sku, err := NewSKU("SKU-1", bulk, unit, 12, true, Rack, "ACME", "Domestic")
	if err != nil {
		t.Fatalf("Expected valid SKU creation to succeed: %v", err)
	}
	if got := sku.RepackedPackage(); math.Abs(got.Volume-1.2) > 1e-9 {
		t.Errorf("Expected repacked volume 1.2, got %g", got.Volume)
	}
	if got := sku.PackageFootprint(false); got != bulk {
		t.Errorf("Expected as-received footprint %v, got %v", bulk, got)
	}
	if got := sku.PackageFootprint(true); got.Weight != 18 {
		t.Errorf("Expected repacked weight 18, got %g", got.Weight)
	}

	testCases := []struct {
		name        string
		id          SKUID
		bulk        Footprint
		ratio       float64
		storage     StorageType
		expectError string
	}{
		{"empty id", "", bulk, 1, Bin, "sku id cannot be empty"},
		{"zero ratio", "S", bulk, 0, Bin, "conversion ratio must be positive, got 0"},
		{"negative bulk volume", "S", Footprint{Volume: -1}, 1, Bin, "bulk volume cannot be negative, got -1"},
		{"bad storage type", "S", bulk, 1, StorageType(9), "invalid storage type 9"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSKU(tc.id, tc.bulk, unit, tc.ratio, false, tc.storage, "", "")
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestParseStorageType(t *testing.T) {
	testCases := map[string]StorageType{
		"Bin": Bin, "bins": Bin, "Racking": Rack, "rack": Rack, " Pallet ": Pallet, "HAZMAT": Hazmat,
	}
	for raw, want := range testCases {
		got, err := ParseStorageType(raw)
		if err != nil {
			t.Fatalf("ParseStorageType(%q) failed: %v", raw, err)
		}
		if got != want {
			t.Errorf("ParseStorageType(%q) = %s, want %s", raw, got, want)
		}
	}
	if _, err := ParseStorageType("shelf"); err == nil {
		t.Errorf("Expected unknown storage type to fail")
	}
}

package memory

import (
	"errors"
	"strings"
	"testing"

	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/domain/services"
)

func TestSKURepository_ReplaceAndLookup(t *testing.T) {
	repo := NewSKURepository(2)

	first := &entities.SKU{ID: "A", ConversionRatio: 4, StorageType: entities.Bin}
	second := &entities.SKU{ID: "B", ConversionRatio: 1, StorageType: entities.Rack}
	replaced := &entities.SKU{ID: "A", ConversionRatio: 6, StorageType: entities.Bin}

	if err := repo.LoadSKUs([]*entities.SKU{first, second, replaced}); err != nil {
		t.Fatalf("Failed to load SKUs: %v", err)
	}

	all, _ := repo.GetAllSKUs()
	if len(all) != 2 {
		t.Fatalf("Expected 2 SKUs after replacement, got %d", len(all))
	}
	if all[0].ID != "A" || all[0].ConversionRatio != 6 {
		t.Errorf("Expected replaced SKU A to keep its position with ratio 6, got %+v", all[0])
	}

	_, err := repo.GetSKU("missing")
	if err == nil || !strings.Contains(err.Error(), "sku not found: missing") {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestSupplierRepository_LeadTimes(t *testing.T) {
	repo := NewSupplierRepository()
	lt1, _ := entities.NewLeadTime("A", "SAC", 3)
	lt2, _ := entities.NewLeadTime("A", "AUS", 0)
	if err := repo.LoadLeadTimes([]*entities.LeadTime{lt1, lt2}); err != nil {
		t.Fatalf("Failed to load lead times: %v", err)
	}

	if lt, ok := repo.GetLeadTime("A", "SAC"); !ok || lt != 3 {
		t.Errorf("Expected lead time 3, got %d (ok=%v)", lt, ok)
	}
	if lt, ok := repo.GetLeadTime("A", "AUS"); !ok || lt != 0 {
		t.Errorf("Expected zero lead time to be stored, got %d (ok=%v)", lt, ok)
	}
	if _, ok := repo.GetLeadTime("A", "COL"); ok {
		t.Errorf("Expected no lead time for unstocked facility")
	}

	g, _ := entities.NewSupplierGroup("ACME", entities.Vehicle{Weight: 45000, Volume: 3600}, 0)
	_ = repo.LoadSupplierGroups([]*entities.SupplierGroup{g})
	got, err := repo.GetSupplierGroup("ACME")
	if err != nil || got.Vehicle.Weight != 45000 {
		t.Errorf("Expected ACME group, got %+v (%v)", got, err)
	}
}

func TestSupplierRepository_RejectsDuplicateLeadTime(t *testing.T) {
	repo := NewSupplierRepository()
	lt1, _ := entities.NewLeadTime("A", "SAC", 3)
	lt2, _ := entities.NewLeadTime("A", "SAC", 5)

	err := repo.LoadLeadTimes([]*entities.LeadTime{lt1, lt2})
	if !errors.Is(err, services.ErrInputMalformed) {
		t.Fatalf("Expected malformed input error, got %v", err)
	}
	if !strings.Contains(err.Error(), "A@SAC") {
		t.Errorf("Expected the offending key in %q", err.Error())
	}
	if lt, ok := repo.GetLeadTime("A", "SAC"); !ok || lt != 3 {
		t.Errorf("Expected the first row to stay, got %d (ok=%v)", lt, ok)
	}
}

func TestDemandRepository_BySKU(t *testing.T) {
	repo := NewDemandRepository()
	d1, _ := entities.NewDemand("A", 0, 10)
	d2, _ := entities.NewDemand("B", 0, 4)
	d3, _ := entities.NewDemand("A", 1, 12)
	_ = repo.LoadDemands([]*entities.Demand{d1, d2, d3})

	forA, _ := repo.GetDemandsForSKU("A")
	if len(forA) != 2 || forA[1].Quantity != 12 {
		t.Errorf("Expected two rows for A, got %+v", forA)
	}
	all, _ := repo.GetDemands()
	if len(all) != 3 {
		t.Errorf("Expected 3 demand rows, got %d", len(all))
	}
}

func TestFacilityRepository(t *testing.T) {
	repo := NewFacilityRepository()
	f, _ := entities.NewFacility("COL", false, entities.ExpansionPolicy{})
	if err := repo.LoadFacilities([]*entities.Facility{f}); err != nil {
		t.Fatalf("Failed to load facilities: %v", err)
	}
	if err := repo.LoadFacilities([]*entities.Facility{nil}); err == nil {
		t.Errorf("Expected nil facility to be rejected")
	}
	got, err := repo.GetFacility("COL")
	if err != nil || got != f {
		t.Errorf("Expected stored facility pointer, got %v (%v)", got, err)
	}
}

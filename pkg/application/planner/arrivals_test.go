package planner

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vsinha/wareopt/pkg/domain/entities"
)

func TestLinkArrivals_CrossesPeriodBoundary(t *testing.T) {
	cal := entities.Calendar{SubPeriodsPerPeriod: 3, Periods: 2}

	links := LinkArrivals(cal, "A", "SAC", 2, 0)
	if len(links) != 4 {
		t.Fatalf("Expected 4 links inside a 6-slot horizon, got %d", len(links))
	}

	for _, l := range links {
		if l.Arrival != l.Order+2 {
			t.Errorf("Expected arrival %d for order %d, got %d", l.Order+2, l.Order, l.Arrival)
		}
		slot := cal.Slot(l.Arrival)
		if slot.SubPeriod < 1 || slot.SubPeriod > cal.SubPeriodsPerPeriod {
			t.Errorf("Arrival %d de-linearized to invalid %s", l.Arrival, slot)
		}
	}

	// ordered at P1.2, lands at P2.1
	if got := cal.Slot(links[1].Arrival); got != (entities.TimeSlot{Period: 2, SubPeriod: 1}) {
		t.Errorf("Expected P2.1, got %s", got)
	}
}

func TestLinkArrivals_DeliveryWindow(t *testing.T) {
	cal := entities.Calendar{SubPeriodsPerPeriod: 3, Periods: 2}

	links := LinkArrivals(cal, "A", "SAC", 2, 1)

	type pair struct {
		Order, Arrival entities.SlotIndex
		Delay          int
	}
	var got []pair
	for _, l := range links {
		got = append(got, pair{l.Order, l.Arrival, l.Delay})
	}
	want := []pair{
		{0, 2, 0}, {0, 3, 1},
		{1, 3, 0}, {1, 4, 1},
		{2, 4, 0}, {2, 5, 1},
		{3, 5, 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unexpected links (-want +got):\n%s", diff)
	}
}

func TestLinkArrivals_EdgeCases(t *testing.T) {
	cal := entities.Calendar{SubPeriodsPerPeriod: 2, Periods: 1}

	if links := LinkArrivals(cal, "A", "SAC", -1, 0); links != nil {
		t.Errorf("Expected no links for a negative lead time, got %v", links)
	}
	if links := LinkArrivals(cal, "A", "SAC", 2, 0); len(links) != 0 {
		t.Errorf("Expected every arrival past the horizon to be dropped, got %v", links)
	}

	links := LinkArrivals(cal, "A", "SAC", 0, 0)
	if len(links) != 2 || links[0].Arrival != 0 || links[1].Arrival != 1 {
		t.Errorf("Expected same-slot arrivals for zero lead time, got %v", links)
	}
}

package planner

import "github.com/vsinha/wareopt/pkg/domain/entities"

// ArrivalLink ties an order slot to the slot its delivery lands in.
// Delay counts slots beyond the nominal lead time; it is 0 unless a delivery window is configured.
type ArrivalLink struct {
	SKU      entities.SKUID
	Facility entities.FacilityID
	Order    entities.SlotIndex
	Arrival  entities.SlotIndex
	Delay    int
}

// LinkArrivals enumerates every (order, arrival) pair of a SKU at a facility that lands inside
// the horizon. Orders whose delivery would fall past the last slot are dropped outright.
func LinkArrivals(cal entities.Calendar, sku entities.SKUID, facility entities.FacilityID, leadTime, window int) []ArrivalLink {
	if leadTime < 0 {
		return nil
	}
	var links []ArrivalLink
	for o := 0; o < cal.Len(); o++ {
		order := cal.Slot(entities.SlotIndex(o))
		for delay := 0; delay <= window; delay++ {
			arrival := cal.Index(cal.Add(order, leadTime+delay))
			if !cal.Contains(arrival) {
				break
			}
			links = append(links, ArrivalLink{
				SKU:      sku,
				Facility: facility,
				Order:    entities.SlotIndex(o),
				Arrival:  arrival,
				Delay:    delay,
			})
		}
	}
	return links
}

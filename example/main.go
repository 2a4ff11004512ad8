package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/shopspring/decimal"

	"github.com/vsinha/wareopt/pkg/application/planner"
	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/infrastructure/logging"
	"github.com/vsinha/wareopt/pkg/infrastructure/solver/bnb"
)

func main() {
	log, err := logging.NewLogger(0, true)
	if err != nil {
		fmt.Printf("❌ Logger setup failed: %v\n", err)
		return
	}
	ctx := logr.NewContext(context.Background(), log)

	// Set up a two-warehouse network for one quarter of weekly slots
	ds, err := buildNetwork()
	if err != nil {
		fmt.Printf("❌ Invalid network: %v\n", err)
		return
	}

	// 30 days of domestic coverage, tolerate light trucks but report them
	sc, err := entities.NewScenario("q3_domestic30", map[string]float64{"Domestic": 30}, time.Minute)
	if err != nil {
		fmt.Printf("❌ Invalid scenario: %v\n", err)
		return
	}
	sc.Settings.UtilizationPolicy = entities.UtilizationReport

	fmt.Println("🏭 Planning Sacramento hub and Reno satellite...")
	fmt.Printf("Horizon: %d periods × %d sub-periods\n", ds.Calendar.Periods, ds.Calendar.SubPeriodsPerPeriod)
	fmt.Println()

	result, err := planner.NewPlanner(bnb.NewSolver()).Plan(ctx, ds, sc)
	if err != nil {
		fmt.Printf("❌ Planning failed: %v\n", err)
		return
	}

	fmt.Println("📊 Plan Results:")
	fmt.Printf("  Status: %s\n", result.Status)
	fmt.Printf("  Objective: %.2f\n", result.Objective)
	fmt.Printf("  Nodes: %d in %v\n", result.Nodes, result.SolveTime)
	fmt.Println()

	if len(result.Expansions) > 0 {
		fmt.Println("🏗️  Expansion:")
		for _, e := range result.Expansions {
			fmt.Printf("  %s: %.0f sq ft for $%s\n", e.Facility, e.Area, e.Cost.StringFixed(2))
		}
		fmt.Println()
	}

	if len(result.Dispatches) > 0 {
		fmt.Println("🚚 Dispatches:")
		for _, d := range result.Dispatches {
			flag := ""
			if d.Shortfall {
				flag = " ⚠️"
			}
			fmt.Printf("  %s %s → %s: %d trucks, %.0f%% by weight, %.0f%% by volume%s\n",
				d.Slot, d.Group, d.Facility, d.Vehicles, d.WeightUtilization, d.VolumeUtilization, flag)
		}
		fmt.Println()
	}

	for _, s := range result.Slack {
		if s.Total > 0 {
			fmt.Printf("⚠️  %s slack: %.2f\n", s.Family, s.Total)
		}
	}
	fmt.Println("✅ Done")
}

func buildNetwork() (*entities.Dataset, error) {
	cal := entities.Calendar{SubPeriodsPerPeriod: 4, Periods: 3}

	hub, err := entities.NewFacility("SAC", true, entities.ExpansionPolicy{
		Tiers: []entities.ExpansionTier{
			{Width: 500, Price: decimal.NewFromInt(40)},
			{Width: 500, Price: decimal.NewFromInt(65)},
		},
	})
	if err != nil {
		return nil, err
	}
	if err := hub.SetShelf(entities.Rack, entities.ShelfSpec{Current: 8, Volume: 100, Weight: 4000}); err != nil {
		return nil, err
	}
	if err := hub.SetShelf(entities.Bin, entities.ShelfSpec{Current: 20, Volume: 10, Weight: 200, MaxPackages: 60}); err != nil {
		return nil, err
	}

	reno, err := entities.NewFacility("RNO", false, entities.ExpansionPolicy{})
	if err != nil {
		return nil, err
	}
	if err := reno.SetShelf(entities.Rack, entities.ShelfSpec{Current: 6, Volume: 100, Weight: 4000}); err != nil {
		return nil, err
	}

	bolt, err := entities.NewSKU("BOLT-M8",
		entities.Footprint{Volume: 2, Weight: 40}, entities.Footprint{Volume: 0.01, Weight: 0.2},
		100, true, entities.Bin, "FASTCO", "Domestic")
	if err != nil {
		return nil, err
	}
	panel, err := entities.NewSKU("PANEL-2X4",
		entities.Footprint{Volume: 12, Weight: 90}, entities.Footprint{Volume: 3, Weight: 22},
		4, false, entities.Rack, "FASTCO", "Domestic")
	if err != nil {
		return nil, err
	}

	fastco, err := entities.NewSupplierGroup("FASTCO", entities.Vehicle{Weight: 45000, Volume: 3600}, 2)
	if err != nil {
		return nil, err
	}

	ds := &entities.Dataset{
		Calendar:       cal,
		SKUs:           []*entities.SKU{bolt, panel},
		Facilities:     []*entities.Facility{hub, reno},
		SupplierGroups: []*entities.SupplierGroup{fastco},
	}

	for _, lt := range []struct {
		sku      entities.SKUID
		facility entities.FacilityID
		lead     int
	}{
		{"BOLT-M8", "SAC", 1},
		{"PANEL-2X4", "SAC", 1},
		{"PANEL-2X4", "RNO", 2},
	} {
		l, err := entities.NewLeadTime(lt.sku, lt.facility, lt.lead)
		if err != nil {
			return nil, err
		}
		ds.LeadTimes = append(ds.LeadTimes, l)
	}

	// demand ramps up through the quarter
	for period := 2; period <= cal.Periods; period++ {
		bolts, err := entities.SpreadPeriodDemand(cal, "BOLT-M8", period, float64(1500*period))
		if err != nil {
			return nil, err
		}
		panels, err := entities.SpreadPeriodDemand(cal, "PANEL-2X4", period, float64(30*period))
		if err != nil {
			return nil, err
		}
		ds.Demands = append(ds.Demands, bolts...)
		ds.Demands = append(ds.Demands, panels...)
	}
	return ds, nil
}

package services

import (
	"math"

	"github.com/vsinha/wareopt/pkg/domain/entities"
)

// BindingConstraint names the tighter of the two vehicle limits
type BindingConstraint string

const (
	BindingNone   BindingConstraint = ""
	BindingWeight BindingConstraint = "weight"
	BindingVolume BindingConstraint = "volume"
)

// DispatchAnalysis summarizes how well a set of vehicles is filled
type DispatchAnalysis struct {
	Vehicles          int
	WeightUtilization float64 // percent of weight capacity used
	VolumeUtilization float64 // percent of volume capacity used
	Binding           BindingConstraint
	AvgWeight         float64
	AvgVolume         float64
	// Shortfall is set when vehicles run below the minimum fill on the binding dimension
	Shortfall bool
}

// VehiclesRequired is the smallest count that carries the load on both dimensions
func VehiclesRequired(weight, volume float64, v entities.Vehicle) int {
	byWeight := int(math.Ceil(weight/v.Weight - 1e-9))
	byVolume := int(math.Ceil(volume/v.Volume - 1e-9))
	if byWeight > byVolume {
		return byWeight
	}
	return byVolume
}

// AnalyzeDispatch computes utilization percentages for count vehicles carrying the load.
// The binding constraint is weight whenever weight utilization is at least volume utilization.
// A count of zero yields an empty analysis; minUtilization is a fraction in [0, 1].
func AnalyzeDispatch(weight, volume float64, count int, v entities.Vehicle, minUtilization float64) DispatchAnalysis {
	if count <= 0 {
		return DispatchAnalysis{}
	}
	n := float64(count)
	a := DispatchAnalysis{
		Vehicles:          count,
		WeightUtilization: weight / (n * v.Weight) * 100,
		VolumeUtilization: volume / (n * v.Volume) * 100,
		AvgWeight:         weight / n,
		AvgVolume:         volume / n,
	}
	binding := a.VolumeUtilization
	a.Binding = BindingVolume
	if a.WeightUtilization >= a.VolumeUtilization {
		binding = a.WeightUtilization
		a.Binding = BindingWeight
	}
	a.Shortfall = binding < minUtilization*100-1e-9
	return a
}

// MeetsStrictMinimum reports whether both dimensions clear the minimum fill,
// the condition a hard utilization bound imposes.
func (a DispatchAnalysis) MeetsStrictMinimum(minUtilization float64) bool {
	if a.Vehicles == 0 {
		return true
	}
	threshold := minUtilization*100 - 1e-9
	return a.WeightUtilization >= threshold && a.VolumeUtilization >= threshold
}

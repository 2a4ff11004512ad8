package events

import (
	"time"

	"github.com/vsinha/wareopt/pkg/domain/entities"
)

const (
	ScenarioQueuedEvent  = "scenario.queued"
	ScenarioSkippedEvent = "scenario.skipped"
	ScenarioStartedEvent = "scenario.started"
	ScenarioSolvedEvent  = "scenario.solved"
	ScenarioFailedEvent  = "scenario.failed"

	DispatchShortfallEvent = "dispatch.shortfall"
	DemandUnmetEvent       = "demand.unmet"
)

// LifecycleEvents lists every scenario lifecycle event type
var LifecycleEvents = []string{
	ScenarioQueuedEvent,
	ScenarioSkippedEvent,
	ScenarioStartedEvent,
	ScenarioSolvedEvent,
	ScenarioFailedEvent,
}

type ScenarioQueued struct {
	CoverageDays map[string]float64 `json:"coverage_days"`
	TimeLimit    time.Duration      `json:"time_limit"`
}

type ScenarioSkipped struct {
	Reason string `json:"reason"`
}

type ScenarioStarted struct {
	Policy entities.UtilizationPolicy `json:"utilization_policy"`
}

type ScenarioSolved struct {
	Status     string        `json:"status"`
	Objective  float64       `json:"objective"`
	Gap        float64       `json:"gap"`
	SolveTime  time.Duration `json:"solve_time"`
	Shortfalls int           `json:"shortfalls"`
}

type ScenarioFailed struct {
	Error string `json:"error"`
}

type DispatchShortfall struct {
	Group       entities.SupplierGroupID `json:"group"`
	Facility    entities.FacilityID      `json:"facility"`
	Slot        entities.TimeSlot        `json:"slot"`
	Binding     string                   `json:"binding"`
	Utilization float64                  `json:"utilization_pct"`
}

type DemandUnmet struct {
	Units   float64 `json:"units"`
	Penalty float64 `json:"penalty"`
}

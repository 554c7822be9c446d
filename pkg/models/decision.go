package models

import "time"

type ScheduleAction string

const (
	ActionMaintain  ScheduleAction = "maintain"
	ActionScaleUp   ScheduleAction = "scale_up"
	ActionScaleDown ScheduleAction = "scale_down"
	ActionOptimize  ScheduleAction = "optimize"
)

// AggregateMetrics summarizes the forecast window a decision was based on
type AggregateMetrics struct {
	AvgCPU    float64 `json:"avg_cpu"`
	AvgMemory float64 `json:"avg_memory"`
	MaxCPU    float64 `json:"max_cpu"`
	MaxMemory float64 `json:"max_memory"`
}

// Decision is a scheduling recommendation for a resource. The engine
// never executes it; persisting and acting on it belongs to callers.
type Decision struct {
	ResourceID string           `json:"resource_id"`
	Timestamp  time.Time        `json:"timestamp"`
	Action     ScheduleAction   `json:"action"`
	Confidence float64          `json:"confidence"`
	Aggregates AggregateMetrics `json:"predicted_metrics"`
	Reasoning  string           `json:"reasoning"`
}

func (d *Decision) IsActionable() bool {
	return d.Action != ActionMaintain
}

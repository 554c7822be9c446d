package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/cloudsched/scheduler/pkg/models"
)

// PolicyConfig tunes the decision rules; zero values take the
// documented defaults.
type PolicyConfig struct {
	WindowHours         int     // forecast points considered, default 6
	PeakThreshold       float64 // any-point scale_up trigger, default 85
	SustainedThreshold  float64 // average scale_up trigger, default 70
	IdleCPUThreshold    float64 // default 20
	IdleMemoryThreshold float64 // default 30
	IdlePeakCPU         float64 // default 40
	VolatilityThreshold float64 // stdev optimize trigger, default 20
}

func (c *PolicyConfig) applyDefaults() {
	if c.WindowHours == 0 {
		c.WindowHours = 6
	}
	if c.PeakThreshold == 0 {
		c.PeakThreshold = 85.0
	}
	if c.SustainedThreshold == 0 {
		c.SustainedThreshold = 70.0
	}
	if c.IdleCPUThreshold == 0 {
		c.IdleCPUThreshold = 20.0
	}
	if c.IdleMemoryThreshold == 0 {
		c.IdleMemoryThreshold = 30.0
	}
	if c.IdlePeakCPU == 0 {
		c.IdlePeakCPU = 40.0
	}
	if c.VolatilityThreshold == 0 {
		c.VolatilityThreshold = 20.0
	}
}

// evaluatePolicy applies the scheduling rules in fixed order over the
// near-term forecast window; a later matching rule overrides an
// earlier one. The volatility rule is deliberately checked last and
// can reclassify a scale decision as optimize.
func evaluatePolicy(resourceID string, current map[string]float64, predictions []models.ForecastPoint, cfg PolicyConfig) *models.Decision {
	cfg.applyDefaults()

	window := predictions
	if len(window) > cfg.WindowHours {
		window = window[:cfg.WindowHours]
	}

	// An empty forecast gives the rules nothing to judge; hold the
	// current allocation rather than reading zero statistics as idle.
	if len(window) == 0 {
		return &models.Decision{
			ResourceID: resourceID,
			Timestamp:  time.Now(),
			Action:     models.ActionMaintain,
			Confidence: 0.8,
			Reasoning: fmt.Sprintf(
				"no forecast available (current CPU %.1f%%, memory %.1f%%), keeping current allocation",
				current["cpu_usage_percent"], current["memory_usage_percent"],
			),
		}
	}

	cpu := make([]float64, len(window))
	mem := make([]float64, len(window))
	for i, p := range window {
		cpu[i] = p.CPUPercent
		mem[i] = p.MemoryPercent
	}

	avgCPU := windowMean(cpu)
	avgMem := windowMean(mem)
	maxCPU := windowMax(cpu)
	maxMem := windowMax(mem)

	decision := &models.Decision{
		ResourceID: resourceID,
		Timestamp:  time.Now(),
		Action:     models.ActionMaintain,
		Confidence: 0.8,
		Aggregates: models.AggregateMetrics{
			AvgCPU:    avgCPU,
			AvgMemory: avgMem,
			MaxCPU:    maxCPU,
			MaxMemory: maxMem,
		},
		Reasoning: fmt.Sprintf(
			"resource usage is normal (current CPU %.1f%%, memory %.1f%%), keeping current allocation",
			current["cpu_usage_percent"], current["memory_usage_percent"],
		),
	}

	if maxCPU > cfg.PeakThreshold || maxMem > cfg.PeakThreshold {
		decision.Action = models.ActionScaleUp
		decision.Confidence = 0.9
		decision.Reasoning = fmt.Sprintf(
			"forecast CPU or memory exceeds %.0f%% within the next %d hours (CPU %.1f%%, memory %.1f%%), scale up recommended",
			cfg.PeakThreshold, cfg.WindowHours, maxCPU, maxMem,
		)
	} else if avgCPU > cfg.SustainedThreshold || avgMem > cfg.SustainedThreshold {
		decision.Action = models.ActionScaleUp
		decision.Confidence = 0.7
		decision.Reasoning = fmt.Sprintf(
			"forecast average load over the next %d hours is high (CPU %.1f%%, memory %.1f%%), moderate scale up recommended",
			cfg.WindowHours, avgCPU, avgMem,
		)
	} else if avgCPU < cfg.IdleCPUThreshold && avgMem < cfg.IdleMemoryThreshold && maxCPU < cfg.IdlePeakCPU {
		decision.Action = models.ActionScaleDown
		decision.Confidence = 0.6
		decision.Reasoning = fmt.Sprintf(
			"forecast load over the next %d hours is low (CPU %.1f%%, memory %.1f%%), scale down to reduce cost",
			cfg.WindowHours, avgCPU, avgMem,
		)
	}

	stdCPU := windowStdDev(cpu)
	stdMem := windowStdDev(mem)
	if stdCPU > cfg.VolatilityThreshold || stdMem > cfg.VolatilityThreshold {
		decision.Action = models.ActionOptimize
		decision.Confidence = 0.5
		decision.Reasoning = fmt.Sprintf(
			"forecast load is highly volatile (CPU stdev %.1f, memory stdev %.1f), scheduling optimization recommended",
			stdCPU, stdMem,
		)
	}

	return decision
}

// Window statistics evaluate to 0 on an empty slice, never panic.

func windowMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func windowMax(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

func windowStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := windowMean(values)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

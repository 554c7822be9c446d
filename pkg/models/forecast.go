package models

import "time"

// ForecastPoint is one predicted hourly step. Percent fields are kept
// in [0,100] and network usage is non-negative.
type ForecastPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	CPUPercent    float64   `json:"cpu_usage_percent"`
	MemoryPercent float64   `json:"memory_usage_percent"`
	DiskPercent   float64   `json:"disk_usage_percent"`
	NetworkUsage  float64   `json:"network_usage"`
}

// Clamp bounds the point to its invariants in place
func (p *ForecastPoint) Clamp() {
	p.CPUPercent = clampPercent(p.CPUPercent)
	p.MemoryPercent = clampPercent(p.MemoryPercent)
	p.DiskPercent = clampPercent(p.DiskPercent)
	if p.NetworkUsage < 0 {
		p.NetworkUsage = 0
	}
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ModelInfo describes which forecasters contributed to a forecast
type ModelInfo struct {
	SequenceUsed  bool   `json:"sequence_used"`
	EnsembleUsed  bool   `json:"ensemble_used"`
	Blended       bool   `json:"blended"`
	FallbackSteps int    `json:"fallback_steps,omitempty"`
	ModelVersion  string `json:"model_version,omitempty"`
}

// Forecast is the result of a single prediction call
type Forecast struct {
	ResourceID  string          `json:"resource_id"`
	Horizon     int             `json:"prediction_horizon"`
	Predictions []ForecastPoint `json:"predictions"`
	Confidence  float64         `json:"confidence"`
	ModelInfo   ModelInfo       `json:"model_info"`
	GeneratedAt time.Time       `json:"generated_at"`
}

package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsched/scheduler/pkg/models"
)

func flatPredictions(n int, cpu, mem float64) []models.ForecastPoint {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	points := make([]models.ForecastPoint, n)
	for i := range points {
		points[i] = models.ForecastPoint{
			Timestamp:     base.Add(time.Duration(i+1) * time.Hour),
			CPUPercent:    cpu,
			MemoryPercent: mem,
			DiskPercent:   40,
			NetworkUsage:  5000,
		}
	}
	return points
}

func TestEvaluatePolicy(t *testing.T) {
	tests := []struct {
		name               string
		predictions        []models.ForecastPoint
		expectedAction     models.ScheduleAction
		expectedConfidence float64
	}{
		{
			name:               "peak above threshold scales up",
			predictions:        flatPredictions(6, 90, 50),
			expectedAction:     models.ActionScaleUp,
			expectedConfidence: 0.9,
		},
		{
			name:               "peak memory alone scales up",
			predictions:        flatPredictions(6, 40, 92),
			expectedAction:     models.ActionScaleUp,
			expectedConfidence: 0.9,
		},
		{
			name:               "sustained high average scales up moderately",
			predictions:        flatPredictions(6, 75, 50),
			expectedAction:     models.ActionScaleUp,
			expectedConfidence: 0.7,
		},
		{
			name:               "idle load scales down",
			predictions:        flatPredictions(6, 10, 15),
			expectedAction:     models.ActionScaleDown,
			expectedConfidence: 0.6,
		},
		{
			name:               "normal load maintains",
			predictions:        flatPredictions(6, 50, 55),
			expectedAction:     models.ActionMaintain,
			expectedConfidence: 0.8,
		},
		{
			name:               "empty forecast holds current allocation",
			predictions:        nil,
			expectedAction:     models.ActionMaintain,
			expectedConfidence: 0.8,
		},
	}

	current := map[string]float64{"cpu_usage_percent": 50, "memory_usage_percent": 55}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := evaluatePolicy("res-1", current, tt.predictions, PolicyConfig{})

			require.NotNil(t, decision)
			assert.Equal(t, tt.expectedAction, decision.Action)
			assert.Equal(t, tt.expectedConfidence, decision.Confidence)
			assert.Equal(t, "res-1", decision.ResourceID)
			assert.NotEmpty(t, decision.Reasoning)
		})
	}
}

func TestEvaluatePolicy_VolatilityOverridesScaling(t *testing.T) {
	// alternating low and high CPU keeps average below the sustained
	// threshold while the stdev crosses the volatility threshold
	predictions := make([]models.ForecastPoint, 6)
	for i := range predictions {
		cpu := 20.0
		if i%2 == 0 {
			cpu = 80.0
		}
		predictions[i] = models.ForecastPoint{CPUPercent: cpu, MemoryPercent: 50}
	}

	decision := evaluatePolicy("res-1", nil, predictions, PolicyConfig{})

	assert.Equal(t, models.ActionOptimize, decision.Action)
	assert.Equal(t, 0.5, decision.Confidence)
}

func TestEvaluatePolicy_VolatilityOverridesScaleUp(t *testing.T) {
	// flat cpu at 90 trips the peak rule on its own
	steady := flatPredictions(6, 90, 50)
	decision := evaluatePolicy("res-1", nil, steady, PolicyConfig{})
	assert.Equal(t, models.ActionScaleUp, decision.Action)
	assert.Equal(t, 0.9, decision.Confidence)

	// same cpu series but memory swinging between 25 and 75 (stdev 25)
	// reclassifies the scale_up as optimize
	volatile := flatPredictions(6, 90, 50)
	for i := range volatile {
		volatile[i].MemoryPercent = 25.0
		if i%2 == 0 {
			volatile[i].MemoryPercent = 75.0
		}
	}
	decision = evaluatePolicy("res-1", nil, volatile, PolicyConfig{})
	assert.Equal(t, models.ActionOptimize, decision.Action)
	assert.Equal(t, 0.5, decision.Confidence)
}

func TestEvaluatePolicy_EmptyForecastSkipsRules(t *testing.T) {
	current := map[string]float64{"cpu_usage_percent": 12, "memory_usage_percent": 18}

	decision := evaluatePolicy("res-1", current, []models.ForecastPoint{}, PolicyConfig{})

	require.NotNil(t, decision)
	// zero window statistics must not be read as idle load
	assert.Equal(t, models.ActionMaintain, decision.Action)
	assert.Equal(t, 0.8, decision.Confidence)
	assert.Zero(t, decision.Aggregates.AvgCPU)
	assert.Zero(t, decision.Aggregates.MaxCPU)
}

func TestEvaluatePolicy_WindowTruncation(t *testing.T) {
	// spike outside the 6 hour window must not trigger the peak rule
	predictions := flatPredictions(12, 50, 50)
	predictions[10].CPUPercent = 99

	decision := evaluatePolicy("res-1", nil, predictions, PolicyConfig{})

	assert.Equal(t, models.ActionMaintain, decision.Action)
	assert.InDelta(t, 50.0, decision.Aggregates.MaxCPU, 1e-9)
}

func TestEvaluatePolicy_Aggregates(t *testing.T) {
	predictions := flatPredictions(6, 50, 50)
	predictions[2].CPUPercent = 70
	predictions[3].MemoryPercent = 65

	decision := evaluatePolicy("res-1", nil, predictions, PolicyConfig{})

	assert.InDelta(t, (50*5+70)/6.0, decision.Aggregates.AvgCPU, 1e-9)
	assert.InDelta(t, 70.0, decision.Aggregates.MaxCPU, 1e-9)
	assert.InDelta(t, 65.0, decision.Aggregates.MaxMemory, 1e-9)
}

package unit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsched/scheduler/pkg/models"
)

func TestForecastPoint_Clamp(t *testing.T) {
	tests := []struct {
		name     string
		point    models.ForecastPoint
		expected models.ForecastPoint
	}{
		{
			name:     "values in range unchanged",
			point:    models.ForecastPoint{CPUPercent: 50, MemoryPercent: 60, DiskPercent: 40, NetworkUsage: 5000},
			expected: models.ForecastPoint{CPUPercent: 50, MemoryPercent: 60, DiskPercent: 40, NetworkUsage: 5000},
		},
		{
			name:     "percentages clamped to 100",
			point:    models.ForecastPoint{CPUPercent: 130, MemoryPercent: 101, DiskPercent: 100},
			expected: models.ForecastPoint{CPUPercent: 100, MemoryPercent: 100, DiskPercent: 100},
		},
		{
			name:     "negative values clamped to zero",
			point:    models.ForecastPoint{CPUPercent: -5, MemoryPercent: -0.1, NetworkUsage: -200},
			expected: models.ForecastPoint{CPUPercent: 0, MemoryPercent: 0, NetworkUsage: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.point.Clamp()

			assert.Equal(t, tt.expected, tt.point)
		})
	}
}

func TestCurrentMetrics(t *testing.T) {
	history := []models.MetricSample{
		{CPUPercent: 30, MemoryPercent: 40, DiskPercent: 20, NetworkInBytes: 1000},
		{CPUPercent: 55, MemoryPercent: 65, DiskPercent: 45, NetworkInBytes: 7500},
	}

	current := models.CurrentMetrics(history)

	require.NotNil(t, current)
	assert.Equal(t, 55.0, current["cpu_usage_percent"])
	assert.Equal(t, 65.0, current["memory_usage_percent"])
	assert.Equal(t, 45.0, current["disk_usage_percent"])
	assert.Equal(t, 7500.0, current["network_in_bytes"])
}

func TestCurrentMetrics_EmptyHistory(t *testing.T) {
	assert.Nil(t, models.CurrentMetrics(nil))
	assert.Nil(t, models.CurrentMetrics([]models.MetricSample{}))
}

func TestSampleRecord_ToSample(t *testing.T) {
	now := time.Now()
	record := models.SampleRecord{
		Time:            now,
		ResourceID:      "web-01",
		CPUPercent:      55,
		MemoryPercent:   65,
		DiskPercent:     45,
		NetworkInBytes:  7500,
		NetworkOutBytes: 4500,
	}

	sample := record.ToSample()

	assert.Equal(t, now, sample.Timestamp)
	assert.Equal(t, 55.0, sample.CPUPercent)
	assert.Equal(t, 65.0, sample.MemoryPercent)
	assert.Equal(t, 4500.0, sample.NetworkOutBytes)
}

func TestDecision_IsActionable(t *testing.T) {
	tests := []struct {
		action   models.ScheduleAction
		expected bool
	}{
		{action: models.ActionMaintain, expected: false},
		{action: models.ActionScaleUp, expected: true},
		{action: models.ActionScaleDown, expected: true},
		{action: models.ActionOptimize, expected: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			d := models.Decision{Action: tt.action}

			assert.Equal(t, tt.expected, d.IsActionable())
		})
	}
}

package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsched/scheduler/pkg/models"
)

func hourlySamples(n int, cpu, mem float64) []models.MetricSample {
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	samples := make([]models.MetricSample, n)
	for i := range samples {
		samples[i] = models.MetricSample{
			Timestamp:      base.Add(time.Duration(i) * time.Hour),
			CPUPercent:     cpu,
			MemoryPercent:  mem,
			DiskPercent:    40.0,
			NetworkInBytes: 5000.0,
		}
	}
	return samples
}

func TestExtractFeatures_Errors(t *testing.T) {
	tests := []struct {
		name    string
		samples []models.MetricSample
	}{
		{
			name:    "empty sequence",
			samples: nil,
		},
		{
			name: "NaN metric",
			samples: []models.MetricSample{
				{CPUPercent: math.NaN(), MemoryPercent: 50},
			},
		},
		{
			name: "infinite metric",
			samples: []models.MetricSample{
				{CPUPercent: 50, NetworkInBytes: math.Inf(1)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractFeatures(tt.samples)

			require.Error(t, err)
			var fe *FeatureExtractionError
			assert.ErrorAs(t, err, &fe)
		})
	}
}

func TestExtractFeatures_WithTimestamps(t *testing.T) {
	features, err := ExtractFeatures(hourlySamples(48, 50, 60))

	require.NoError(t, err)
	assert.Equal(t, 48, features.Len())
	assert.True(t, features.HasTime())
	// base metrics + hour/weekday/day + four moving averages
	assert.Equal(t, numBaseCols+3+4, features.Width())

	row := features.Row(0)
	assert.Equal(t, 50.0, row[colCPU])
	assert.Equal(t, 60.0, row[colMemory])
	assert.Equal(t, 0.0, row[numBaseCols]) // midnight
}

func TestExtractFeatures_MissingTimestamps(t *testing.T) {
	samples := hourlySamples(24, 50, 60)
	samples[5].Timestamp = time.Time{}

	features, err := ExtractFeatures(samples)

	require.NoError(t, err)
	assert.False(t, features.HasTime())
	// one zero timestamp drops the calendar columns for the whole set
	assert.Equal(t, numBaseCols+4, features.Width())
}

func TestTrailingMean(t *testing.T) {
	rows := [][]float64{{10}, {20}, {30}, {40}, {50}}

	out := trailingMean(rows, 0, 3)

	require.Len(t, out, 5)
	assert.InDelta(t, 20.0, out[2], 1e-9)
	assert.InDelta(t, 30.0, out[3], 1e-9)
	assert.InDelta(t, 40.0, out[4], 1e-9)
	// leading rows backfilled with the first full-window value
	assert.InDelta(t, 20.0, out[0], 1e-9)
	assert.InDelta(t, 20.0, out[1], 1e-9)
}

func TestTrailingMean_WindowNeverFills(t *testing.T) {
	rows := [][]float64{{10}, {20}}

	out := trailingMean(rows, 0, 12)

	assert.Equal(t, []float64{0, 0}, out)
}

func TestFeatureMatrix_Tail(t *testing.T) {
	features, err := ExtractFeatures(hourlySamples(48, 50, 60))
	require.NoError(t, err)

	tail := features.Tail(24)
	assert.Equal(t, 24, tail.Len())
	assert.True(t, tail.HasTime())

	// n larger than the matrix returns everything
	assert.Equal(t, 48, features.Tail(100).Len())
}

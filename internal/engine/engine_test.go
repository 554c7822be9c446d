package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsched/scheduler/pkg/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := New(Config{Seed: 42})
	require.NoError(t, err)
	return eng
}

func TestNew_Defaults(t *testing.T) {
	eng, err := New(Config{})

	require.NoError(t, err)
	assert.Equal(t, 24, eng.Horizon())
	assert.Equal(t, 24, eng.MinHistory())
}

func TestForecast_InsufficientHistory(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Forecast("res-1", hourlySamples(5, 50, 60), 24)

	require.Error(t, err)
	assert.True(t, IsInsufficientHistory(err))

	var ihe *InsufficientHistoryError
	require.ErrorAs(t, err, &ihe)
	assert.Equal(t, 5, ihe.Got)
	assert.Equal(t, 24, ihe.Need)
}

func TestForecastAt_HorizonAndTimestamps(t *testing.T) {
	eng := newTestEngine(t)
	base := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		horizon  int
		expected int
	}{
		{name: "explicit horizon", horizon: 12, expected: 12},
		{name: "zero takes default", horizon: 0, expected: 24},
		{name: "single step", horizon: 1, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forecast, err := eng.ForecastAt("res-1", hourlySamples(72, 50, 60), tt.horizon, base)

			require.NoError(t, err)
			assert.Len(t, forecast.Predictions, tt.expected)
			assert.Equal(t, tt.expected, forecast.Horizon)

			for i, p := range forecast.Predictions {
				assert.Equal(t, base.Add(time.Duration(i+1)*time.Hour), p.Timestamp)
			}
		})
	}
}

func TestForecastAt_Deterministic(t *testing.T) {
	base := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)
	history := hourlySamples(168, 55, 65)

	first, err := newTestEngine(t).ForecastAt("res-1", history, 24, base)
	require.NoError(t, err)
	second, err := newTestEngine(t).ForecastAt("res-1", history, 24, base)
	require.NoError(t, err)

	assert.Equal(t, first.Predictions, second.Predictions)
	assert.Equal(t, first.Confidence, second.Confidence)
}

func TestForecastAt_SeedChangesOutput(t *testing.T) {
	base := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)
	history := hourlySamples(168, 55, 65)

	a, err := New(Config{Seed: 42})
	require.NoError(t, err)
	b, err := New(Config{Seed: 7})
	require.NoError(t, err)

	fa, err := a.ForecastAt("res-1", history, 24, base)
	require.NoError(t, err)
	fb, err := b.ForecastAt("res-1", history, 24, base)
	require.NoError(t, err)

	assert.NotEqual(t, fa.Predictions, fb.Predictions)
}

func TestForecastAt_PredictionsWithinBounds(t *testing.T) {
	eng := newTestEngine(t)
	base := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)

	histories := map[string][]models.MetricSample{
		"mid load":  hourlySamples(72, 50, 60),
		"near zero": hourlySamples(72, 0.5, 1),
		"saturated": hourlySamples(72, 99, 99),
	}

	for name, history := range histories {
		t.Run(name, func(t *testing.T) {
			forecast, err := eng.ForecastAt("res-1", history, 24, base)
			require.NoError(t, err)

			for _, p := range forecast.Predictions {
				assert.GreaterOrEqual(t, p.CPUPercent, 0.0)
				assert.LessOrEqual(t, p.CPUPercent, 100.0)
				assert.GreaterOrEqual(t, p.MemoryPercent, 0.0)
				assert.LessOrEqual(t, p.MemoryPercent, 100.0)
				assert.GreaterOrEqual(t, p.DiskPercent, 0.0)
				assert.LessOrEqual(t, p.DiskPercent, 100.0)
				assert.GreaterOrEqual(t, p.NetworkUsage, 0.0)
			}
		})
	}
}

func TestForecastAt_ConfidenceBounds(t *testing.T) {
	eng := newTestEngine(t)
	base := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)

	forecast, err := eng.ForecastAt("res-1", hourlySamples(168, 50, 60), 24, base)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, forecast.Confidence, 0.1)
	assert.LessOrEqual(t, forecast.Confidence, 0.95)

	// perfectly flat week of history scores the ceiling
	assert.InDelta(t, 0.95, forecast.Confidence, 1e-9)
}

func TestForecastAt_ModelInfo(t *testing.T) {
	eng := newTestEngine(t)
	base := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)

	forecast, err := eng.ForecastAt("res-1", hourlySamples(72, 50, 60), 24, base)
	require.NoError(t, err)

	assert.True(t, forecast.ModelInfo.Blended)
	assert.True(t, forecast.ModelInfo.SequenceUsed)
	assert.True(t, forecast.ModelInfo.EnsembleUsed)
	assert.NotEmpty(t, forecast.ModelInfo.ModelVersion)
	assert.Equal(t, base, forecast.GeneratedAt)
}

func TestForecastAt_SequenceFailureStillFullHorizon(t *testing.T) {
	eng := newTestEngine(t)
	// width mismatch makes every forward pass fail, forcing the whole
	// sequence side onto the trend fallback
	eng.model.InputSize = seqInputSize + 1

	base := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)
	forecast, err := eng.ForecastAt("res-1", hourlySamples(72, 50, 60), 24, base)

	require.NoError(t, err)
	assert.Len(t, forecast.Predictions, 24)
	assert.False(t, forecast.ModelInfo.SequenceUsed)
	assert.True(t, forecast.ModelInfo.EnsembleUsed)
	assert.Equal(t, 24, forecast.ModelInfo.FallbackSteps)

	for i, p := range forecast.Predictions {
		assert.Equal(t, base.Add(time.Duration(i+1)*time.Hour), p.Timestamp)
		assert.GreaterOrEqual(t, p.CPUPercent, 0.0)
		assert.LessOrEqual(t, p.CPUPercent, 100.0)
	}
}

func TestConfidenceScore_ShortHistory(t *testing.T) {
	features, err := ExtractFeatures(hourlySamples(10, 50, 60))
	require.NoError(t, err)

	assert.Equal(t, 0.5, confidenceScore(features))
}

func TestConfidenceScore_StabilityOrdering(t *testing.T) {
	stable, err := ExtractFeatures(hourlySamples(168, 50, 60))
	require.NoError(t, err)

	noisy := hourlySamples(168, 50, 60)
	rng := rand.New(rand.NewSource(1))
	for i := range noisy {
		noisy[i].CPUPercent = 50 + rng.Float64()*45
		noisy[i].MemoryPercent = 10 + rng.Float64()*80
	}
	volatile, err := ExtractFeatures(noisy)
	require.NoError(t, err)

	assert.Greater(t, confidenceScore(stable), confidenceScore(volatile))
}

func TestDecide_NeverReturnsNil(t *testing.T) {
	eng := newTestEngine(t)

	decision := eng.Decide("res-1", nil, nil)

	require.NotNil(t, decision)
	assert.Equal(t, "res-1", decision.ResourceID)
	assert.Equal(t, models.ActionMaintain, decision.Action)
	assert.NotEmpty(t, decision.Reasoning)

	decision = eng.Decide("res-1", map[string]float64{}, nil)
	require.NotNil(t, decision)
	assert.Equal(t, models.ActionMaintain, decision.Action)
}

func TestDecide_UsesForecastWindow(t *testing.T) {
	eng := newTestEngine(t)
	current := map[string]float64{"cpu_usage_percent": 50, "memory_usage_percent": 55}

	decision := eng.Decide("res-1", current, flatPredictions(6, 90, 50))

	assert.Equal(t, models.ActionScaleUp, decision.Action)
	assert.Equal(t, 0.9, decision.Confidence)
}

func TestCombineForecasts(t *testing.T) {
	sequence := flatPredictions(4, 80, 40)
	ensemble := flatPredictions(4, 40, 80)

	combined := combineForecasts(sequence, ensemble, 0.6, 0.4)

	require.Len(t, combined, 4)
	for _, p := range combined {
		assert.InDelta(t, 0.6*80+0.4*40, p.CPUPercent, 1e-9)
		assert.InDelta(t, 0.6*40+0.4*80, p.MemoryPercent, 1e-9)
	}

	// one side empty passes the other through
	assert.Equal(t, ensemble, combineForecasts(nil, ensemble, 0.6, 0.4))
	assert.Equal(t, sequence, combineForecasts(sequence, nil, 0.6, 0.4))
}

func TestFallbackForecast(t *testing.T) {
	base := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)

	t.Run("empty history uses baselines", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		points := fallbackForecast(FeatureMatrix{}, 0, 12, base, rng)

		require.Len(t, points, 12)
		for _, p := range points {
			assert.InDelta(t, baselineCPU, p.CPUPercent, baselineCPU*0.6)
			assert.InDelta(t, baselineMemory, p.MemoryPercent, baselineMemory*0.6)
		}
	})

	t.Run("history uses recent means", func(t *testing.T) {
		features, err := ExtractFeatures(hourlySamples(48, 70, 60))
		require.NoError(t, err)

		rng := rand.New(rand.NewSource(42))
		points := fallbackForecast(features, 0, 12, base, rng)

		require.Len(t, points, 12)
		for _, p := range points {
			assert.InDelta(t, 70.0, p.CPUPercent, 70.0*0.6)
		}
	})

	t.Run("partial fallback starts mid horizon", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		points := fallbackForecast(FeatureMatrix{}, 8, 12, base, rng)

		require.Len(t, points, 4)
		assert.Equal(t, base.Add(9*time.Hour), points[0].Timestamp)
	})
}

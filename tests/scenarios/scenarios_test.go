package scenarios

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsched/scheduler/internal/engine"
	"github.com/cloudsched/scheduler/internal/simulator"
	"github.com/cloudsched/scheduler/pkg/models"
)

var scenarioBase = time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)

func newScenarioEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New(engine.Config{Seed: 42})
	require.NoError(t, err)
	return eng
}

func TestScenario_StableWeekOfHistory(t *testing.T) {
	eng := newScenarioEngine(t)
	gen := simulator.NewGenerator(simulator.GeneratorConfig{
		BaseCPU:  50,
		Variance: 2,
		Pattern:  simulator.PatternSteady,
		Seed:     1,
	})

	forecast, err := eng.ForecastAt("web-01", gen.History(scenarioBase, 168), 24, scenarioBase)

	require.NoError(t, err)
	assert.Len(t, forecast.Predictions, 24)
	assert.GreaterOrEqual(t, forecast.Confidence, 0.8, "steady load with a full week of history should score high confidence")
	assert.Zero(t, forecast.ModelInfo.FallbackSteps)
}

func TestScenario_VolatileHistoryLowersConfidence(t *testing.T) {
	eng := newScenarioEngine(t)

	steady := simulator.NewGenerator(simulator.GeneratorConfig{
		BaseCPU: 50, Variance: 2, Pattern: simulator.PatternSteady, Seed: 1,
	})
	volatile := simulator.NewGenerator(simulator.GeneratorConfig{
		BaseCPU: 50, Variance: 45, Pattern: simulator.PatternSteady, Seed: 1,
	})

	stableForecast, err := eng.ForecastAt("web-01", steady.History(scenarioBase, 168), 24, scenarioBase)
	require.NoError(t, err)
	volatileForecast, err := eng.ForecastAt("web-01", volatile.History(scenarioBase, 168), 24, scenarioBase)
	require.NoError(t, err)

	assert.Greater(t, stableForecast.Confidence, volatileForecast.Confidence)
}

func TestScenario_NewResourceRejected(t *testing.T) {
	eng := newScenarioEngine(t)
	gen := simulator.NewGenerator(simulator.GeneratorConfig{Seed: 1})

	_, err := eng.ForecastAt("web-01", gen.History(scenarioBase, 5), 24, scenarioBase)

	require.Error(t, err)
	assert.True(t, engine.IsInsufficientHistory(err))
}

func TestScenario_OverloadedResourceScalesUp(t *testing.T) {
	eng := newScenarioEngine(t)
	gen := simulator.NewGenerator(simulator.GeneratorConfig{
		BaseCPU: 92, BaseMemory: 88, Variance: 2, Pattern: simulator.PatternSteady, Seed: 1,
	})
	history := gen.History(scenarioBase, 168)

	forecast, err := eng.ForecastAt("web-01", history, 24, scenarioBase)
	require.NoError(t, err)

	decision := eng.Decide("web-01", models.CurrentMetrics(history), forecast.Predictions)

	assert.Equal(t, models.ActionScaleUp, decision.Action)
	assert.True(t, decision.IsActionable())
}

func TestScenario_IdleResourceScalesDown(t *testing.T) {
	eng := newScenarioEngine(t)
	gen := simulator.NewGenerator(simulator.GeneratorConfig{
		BaseCPU: 8, BaseMemory: 12, Variance: 1, Pattern: simulator.PatternSteady, Seed: 1,
	})
	history := gen.History(scenarioBase, 168)

	forecast, err := eng.ForecastAt("web-01", history, 24, scenarioBase)
	require.NoError(t, err)

	decision := eng.Decide("web-01", models.CurrentMetrics(history), forecast.Predictions)

	assert.Equal(t, models.ActionScaleDown, decision.Action)
}

func TestScenario_DailyPatternStaysBounded(t *testing.T) {
	eng := newScenarioEngine(t)
	gen := simulator.NewGenerator(simulator.GeneratorConfig{
		BaseCPU: 60, Variance: 5, Pattern: simulator.PatternDaily, Seed: 1,
	})

	forecast, err := eng.ForecastAt("web-01", gen.History(scenarioBase, 336), 48, scenarioBase)

	require.NoError(t, err)
	require.Len(t, forecast.Predictions, 48)
	for _, p := range forecast.Predictions {
		assert.GreaterOrEqual(t, p.CPUPercent, 0.0)
		assert.LessOrEqual(t, p.CPUPercent, 100.0)
	}
}

func TestScenario_RepeatedRunsAgree(t *testing.T) {
	gen := simulator.NewGenerator(simulator.GeneratorConfig{
		BaseCPU: 55, Variance: 8, Pattern: simulator.PatternDaily, Seed: 9,
	})
	history := gen.History(scenarioBase, 168)

	first, err := newScenarioEngine(t).ForecastAt("web-01", history, 24, scenarioBase)
	require.NoError(t, err)
	second, err := newScenarioEngine(t).ForecastAt("web-01", history, 24, scenarioBase)
	require.NoError(t, err)

	assert.Equal(t, first.Predictions, second.Predictions)

	firstDecision := newScenarioEngine(t).Decide("web-01", models.CurrentMetrics(history), first.Predictions)
	secondDecision := newScenarioEngine(t).Decide("web-01", models.CurrentMetrics(history), second.Predictions)
	assert.Equal(t, firstDecision.Action, secondDecision.Action)
	assert.Equal(t, firstDecision.Confidence, secondDecision.Confidence)
}

package integration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsched/scheduler/internal/engine"
	"github.com/cloudsched/scheduler/internal/events"
	"github.com/cloudsched/scheduler/internal/simulator"
	"github.com/cloudsched/scheduler/pkg/models"
)

// Exercises the forecast path end to end without a database: synthetic
// history in, forecast and decision out, events observed on the bus.
func TestForecastPipeline_FullCycle(t *testing.T) {
	tests := []struct {
		name           string
		baseCPU        float64
		baseMemory     float64
		expectedAction models.ScheduleAction
	}{
		{
			name:           "overloaded resource scales up",
			baseCPU:        93.0,
			baseMemory:     90.0,
			expectedAction: models.ActionScaleUp,
		},
		{
			name:           "idle resource scales down",
			baseCPU:        8.0,
			baseMemory:     12.0,
			expectedAction: models.ActionScaleDown,
		},
		{
			name:           "normal resource maintains",
			baseCPU:        50.0,
			baseMemory:     55.0,
			expectedAction: models.ActionMaintain,
		},
	}

	base := time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := engine.New(engine.Config{Seed: 42})
			require.NoError(t, err)

			gen := simulator.NewGenerator(simulator.GeneratorConfig{
				BaseCPU:    tt.baseCPU,
				BaseMemory: tt.baseMemory,
				Variance:   2,
				Pattern:    simulator.PatternSteady,
				Seed:       1,
			})
			history := gen.History(base, 168)

			forecast, err := eng.ForecastAt("web-01", history, 24, base)
			require.NoError(t, err)
			assert.Len(t, forecast.Predictions, 24)

			decision := eng.Decide("web-01", models.CurrentMetrics(history), forecast.Predictions)
			require.NotNil(t, decision)
			assert.Equal(t, tt.expectedAction, decision.Action)
		})
	}
}

func TestForecastPipeline_PublishesEvents(t *testing.T) {
	bus := events.NewEventBus(16)
	defer bus.Close()

	forecasts := bus.Subscribe(models.EventTypeForecastGenerated)
	decisions := bus.Subscribe(models.EventTypeDecisionMade)
	publisher := events.NewPublisher(bus)

	eng, err := engine.New(engine.Config{Seed: 42})
	require.NoError(t, err)

	base := time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)
	gen := simulator.NewGenerator(simulator.GeneratorConfig{Seed: 1})
	history := gen.History(base, 168)

	forecast, err := eng.ForecastAt("web-01", history, 24, base)
	require.NoError(t, err)
	publisher.ForecastGenerated("web-01", forecast)

	decision := eng.Decide("web-01", models.CurrentMetrics(history), forecast.Predictions)
	publisher.DecisionMade("web-01", decision)

	select {
	case event := <-forecasts:
		assert.Equal(t, models.EventTypeForecastGenerated, event.Type)
		assert.Equal(t, "web-01", event.ResourceID)
	case <-time.After(time.Second):
		t.Fatal("no forecast event received")
	}

	select {
	case event := <-decisions:
		assert.Equal(t, models.EventTypeDecisionMade, event.Type)
		assert.Equal(t, "web-01", event.ResourceID)
	case <-time.After(time.Second):
		t.Fatal("no decision event received")
	}
}

func TestEventBus_SubscribeAllSeesEveryType(t *testing.T) {
	bus := events.NewEventBus(16)
	defer bus.Close()

	all := bus.SubscribeAll()
	publisher := events.NewPublisher(bus)

	publisher.FallbackUsed("web-01", 3)
	publisher.Alert("web-01", models.SeverityWarning, "forecast degraded", nil)
	publisher.Error("web-01", "storage unreachable", assert.AnError)

	received := map[models.EventType]bool{}
	for i := 0; i < 3; i++ {
		select {
		case event := <-all:
			received[event.Type] = true
		case <-time.After(time.Second):
			t.Fatalf("expected 3 events, got %d", i)
		}
	}

	assert.True(t, received[models.EventTypeFallbackUsed])
	assert.True(t, received[models.EventTypeAlert])
	assert.True(t, received[models.EventTypeError])
}

func TestForecastPipeline_TraceIDPropagates(t *testing.T) {
	bus := events.NewEventBus(16)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeAlert)
	publisher := events.NewPublisher(bus).WithTraceID("trace-123")

	publisher.Alert("web-01", models.SeverityCritical, "test alert", nil)

	select {
	case event := <-ch:
		assert.Equal(t, "trace-123", event.TraceID)
	case <-time.After(time.Second):
		t.Fatal("no alert received")
	}
}

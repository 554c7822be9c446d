package simulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_HistoryShape(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{Seed: 1})
	end := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)

	history := gen.History(end, 168)

	require.Len(t, history, 168)
	assert.Equal(t, end.Add(-168*time.Hour), history[0].Timestamp)
	assert.Equal(t, end.Add(-time.Hour), history[len(history)-1].Timestamp)

	for i := 1; i < len(history); i++ {
		assert.True(t, history[i].Timestamp.After(history[i-1].Timestamp))
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	end := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)

	a := NewGenerator(GeneratorConfig{Seed: 7, Pattern: &DailyPattern{}}).History(end, 48)
	b := NewGenerator(GeneratorConfig{Seed: 7, Pattern: &DailyPattern{}}).History(end, 48)

	assert.Equal(t, a, b)
}

func TestGenerator_SampleBounds(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{BaseCPU: 95, Variance: 30, Seed: 3})
	at := time.Date(2025, 3, 17, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		s := gen.Sample(at.Add(time.Duration(i) * time.Hour))

		assert.GreaterOrEqual(t, s.CPUPercent, 0.0)
		assert.LessOrEqual(t, s.CPUPercent, 100.0)
		assert.GreaterOrEqual(t, s.MemoryPercent, 0.0)
		assert.LessOrEqual(t, s.MemoryPercent, 100.0)
		assert.GreaterOrEqual(t, s.NetworkInBytes, 0.0)
	}
}

func TestGenerator_Records(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{Seed: 1})
	end := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)

	records := gen.Records("web-01", end, 24)

	require.Len(t, records, 24)
	for _, r := range records {
		assert.Equal(t, "web-01", r.ResourceID)
	}
}

func TestParsePattern(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{name: "steady", expected: "steady"},
		{name: "daily", expected: "daily"},
		{name: "weekly", expected: "weekly"},
		{name: "gradual_rise", expected: "gradual_rise"},
		{name: "unknown", expected: "steady"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePattern(tt.name).Name())
		})
	}
}

func TestDailyPattern_PeakHours(t *testing.T) {
	p := &DailyPattern{}
	morning := time.Date(2025, 3, 17, 10, 0, 0, 0, time.UTC)
	night := time.Date(2025, 3, 17, 3, 0, 0, 0, time.UTC)

	assert.Greater(t, p.Apply(50, morning), p.Apply(50, night))
}

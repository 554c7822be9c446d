package config

import (
	"github.com/cloudsched/scheduler/internal/engine"
)

func (e EngineConfig) ToEngineConfig(p PolicyConfig) engine.Config {
	return engine.Config{
		Horizon:        e.Horizon,
		MinHistory:     e.MinHistory,
		SequenceWeight: e.SequenceWeight,
		EnsembleWeight: e.EnsembleWeight,
		Seed:           e.Seed,
		ModelPath:      e.ModelPath,
		Forest: engine.ForestConfig{
			Trees:    e.Forest.Trees,
			MaxDepth: e.Forest.MaxDepth,
			MinLeaf:  e.Forest.MinLeaf,
		},
		Policy: engine.PolicyConfig{
			WindowHours:         p.WindowHours,
			PeakThreshold:       p.PeakThreshold,
			SustainedThreshold:  p.SustainedThreshold,
			IdleCPUThreshold:    p.IdleCPUThreshold,
			IdleMemoryThreshold: p.IdleMemoryThreshold,
			IdlePeakCPU:         p.IdlePeakCPU,
			VolatilityThreshold: p.VolatilityThreshold,
		},
	}
}

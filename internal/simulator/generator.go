// Package simulator produces synthetic utilization histories for
// exercising the forecasting engine without live collectors.
package simulator

import (
	"math/rand"
	"time"

	"github.com/cloudsched/scheduler/pkg/models"
)

type GeneratorConfig struct {
	BaseCPU     float64
	BaseMemory  float64
	BaseDisk    float64
	BaseNetwork float64
	Variance    float64
	Pattern     Pattern
	Seed        int64
}

func (c *GeneratorConfig) applyDefaults() {
	if c.BaseCPU == 0 {
		c.BaseCPU = 50.0
	}
	if c.BaseMemory == 0 {
		c.BaseMemory = 60.0
	}
	if c.BaseDisk == 0 {
		c.BaseDisk = 40.0
	}
	if c.BaseNetwork == 0 {
		c.BaseNetwork = 5000.0
	}
	if c.Variance == 0 {
		c.Variance = 10.0
	}
	if c.Pattern == nil {
		c.Pattern = PatternDaily
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
}

// Generator emits hourly metric samples following a load pattern with
// seeded noise, so a given config always yields the same series.
type Generator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

func NewGenerator(cfg GeneratorConfig) *Generator {
	cfg.applyDefaults()
	return &Generator{
		config: cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Sample produces one observation for the given timestamp.
func (g *Generator) Sample(at time.Time) models.MetricSample {
	cfg := g.config

	cpu := cfg.Pattern.Apply(cfg.BaseCPU, at) + g.noise()
	memory := cfg.Pattern.Apply(cfg.BaseMemory, at) + g.noise()
	disk := cfg.BaseDisk + g.noise()/2

	network := cfg.BaseNetwork * (cpu / cfg.BaseCPU)
	if network < 0 {
		network = 0
	}

	return models.MetricSample{
		Timestamp:       at,
		CPUPercent:      clamp(cpu),
		MemoryPercent:   clamp(memory),
		DiskPercent:     clamp(disk),
		NetworkInBytes:  network,
		NetworkOutBytes: network * 0.6,
	}
}

// History generates hours of hourly samples ending just before `end`,
// oldest first.
func (g *Generator) History(end time.Time, hours int) []models.MetricSample {
	if hours <= 0 {
		return nil
	}

	samples := make([]models.MetricSample, 0, hours)
	start := end.Add(-time.Duration(hours) * time.Hour)

	for i := 0; i < hours; i++ {
		samples = append(samples, g.Sample(start.Add(time.Duration(i)*time.Hour)))
	}

	return samples
}

// Records converts a generated history into storable rows for a
// resource.
func (g *Generator) Records(resourceID string, end time.Time, hours int) []models.SampleRecord {
	history := g.History(end, hours)

	records := make([]models.SampleRecord, 0, len(history))
	for _, s := range history {
		records = append(records, models.SampleRecord{
			Time:            s.Timestamp,
			ResourceID:      resourceID,
			CPUPercent:      s.CPUPercent,
			MemoryPercent:   s.MemoryPercent,
			DiskPercent:     s.DiskPercent,
			NetworkInBytes:  s.NetworkInBytes,
			NetworkOutBytes: s.NetworkOutBytes,
		})
	}

	return records
}

func (g *Generator) noise() float64 {
	return (g.rng.Float64()*2 - 1) * g.config.Variance
}

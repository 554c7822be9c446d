package engine

import (
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/cloudsched/scheduler/pkg/models"
)

// Baselines used when no history exists at all
const (
	baselineCPU     = 20.0
	baselineMemory  = 30.0
	baselineDisk    = 15.0
	baselineNetwork = 1000.0

	fallbackWindow = 24
	jitterSigma    = 0.1
)

// fallbackForecast produces trend-hold points when a model cannot run:
// recent column means (or fixed baselines for empty input) with
// multiplicative Gaussian jitter per field. The caller supplies the
// random source so runs stay reproducible.
func fallbackForecast(features FeatureMatrix, from, horizon int, base time.Time, rng *rand.Rand) []models.ForecastPoint {
	cpu, mem, disk, network := baselineCPU, baselineMemory, baselineDisk, baselineNetwork

	if features.Len() > 0 {
		recent := features.Tail(fallbackWindow)
		cpu = stat.Mean(recent.Column(colCPU), nil)
		mem = stat.Mean(recent.Column(colMemory), nil)
		disk = stat.Mean(recent.Column(colDisk), nil)
		network = stat.Mean(recent.Column(colNetwork), nil)
	}

	points := make([]models.ForecastPoint, 0, horizon-from)
	for i := from; i < horizon; i++ {
		p := models.ForecastPoint{
			Timestamp:     base.Add(time.Duration(i+1) * time.Hour),
			CPUPercent:    cpu * (1 + rng.NormFloat64()*jitterSigma),
			MemoryPercent: mem * (1 + rng.NormFloat64()*jitterSigma),
			DiskPercent:   disk * (1 + rng.NormFloat64()*jitterSigma),
			NetworkUsage:  network * (1 + rng.NormFloat64()*jitterSigma),
		}
		p.Clamp()
		points = append(points, p)
	}
	return points
}

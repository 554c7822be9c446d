package engine

import (
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/cloudsched/scheduler/pkg/models"
)

const (
	ensembleMinRows    = 10
	ensembleMinSamples = 5
	ensembleMaxWindow  = 12
)

// windowDescriptor summarizes a block of rows into the 6 statistics
// the regression forest consumes: mean/stdev/max of cpu and memory.
func windowDescriptor(window [][]float64) []float64 {
	n := len(window)
	cpu := make([]float64, n)
	mem := make([]float64, n)
	for i, row := range window {
		cpu[i] = row[colCPU]
		mem[i] = row[colMemory]
	}
	return []float64{
		stat.Mean(cpu, nil),
		stat.PopStdDev(cpu, nil),
		stat.Mean(mem, nil),
		stat.PopStdDev(mem, nil),
		maxOf(cpu),
		maxOf(mem),
	}
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// ensembleForecast fits a regression forest from the call's own
// history and rolls it forward: each predicted 4-vector becomes the
// newest window row for the next step. Too little history, or any
// fit failure, delegates wholly to the fallback estimator.
func (e *Engine) ensembleForecast(features FeatureMatrix, horizon int, base time.Time, rng *rand.Rand) ([]models.ForecastPoint, int) {
	n := features.Len()
	if n < ensembleMinRows {
		return fallbackForecast(features, 0, horizon, base, rng), horizon
	}

	window := ensembleMaxWindow
	if n/2 < window {
		window = n / 2
	}

	rows := features.baseWindow(n)

	var X, Y [][]float64
	for i := window; i < n; i++ {
		X = append(X, windowDescriptor(rows[i-window:i]))
		Y = append(Y, rows[i])
	}
	if len(X) < ensembleMinSamples {
		return fallbackForecast(features, 0, horizon, base, rng), horizon
	}

	forest := fitForest(X, Y, e.config.Forest, rng)

	current := make([][]float64, window)
	copy(current, rows[n-window:])

	points := make([]models.ForecastPoint, 0, horizon)
	for i := 0; i < horizon; i++ {
		pred := forest.predict(windowDescriptor(current))

		p := models.ForecastPoint{
			Timestamp:     base.Add(time.Duration(i+1) * time.Hour),
			CPUPercent:    pred[colCPU],
			MemoryPercent: pred[colMemory],
			DiskPercent:   pred[colDisk],
			NetworkUsage:  pred[colNetwork],
		}
		p.Clamp()
		points = append(points, p)

		current = append(current[1:], pred)
	}
	return points, 0
}

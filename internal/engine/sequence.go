package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/cloudsched/scheduler/pkg/models"
)

const sequenceWindow = 24

// standardizer scales columns to zero mean and unit variance using
// statistics fit on the context window of a single call.
type standardizer struct {
	mean []float64
	std  []float64
}

func fitStandardizer(window [][]float64) standardizer {
	width := len(window[0])
	s := standardizer{
		mean: make([]float64, width),
		std:  make([]float64, width),
	}
	col := make([]float64, len(window))
	for j := 0; j < width; j++ {
		for i, row := range window {
			col[i] = row[j]
		}
		s.mean[j] = stat.Mean(col, nil)
		s.std[j] = stat.PopStdDev(col, nil)
		if s.std[j] == 0 {
			s.std[j] = 1
		}
	}
	return s
}

func (s standardizer) transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.mean[j]) / s.std[j]
	}
	return out
}

func (s standardizer) inverse(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = v*s.std[j] + s.mean[j]
	}
	return out
}

// sequenceForecast runs the recurrent model autoregressively: predict
// one step, feed the prediction back as the newest window row, repeat.
// On any inference failure the remaining steps come from the fallback
// estimator; points already produced are kept.
func (e *Engine) sequenceForecast(features FeatureMatrix, horizon int, base time.Time, rng *rand.Rand) ([]models.ForecastPoint, int) {
	window := features.baseWindow(sequenceWindow)
	scaler := fitStandardizer(window)

	scaled := make([][]float64, len(window))
	for i, row := range window {
		scaled[i] = scaler.transform(row)
	}

	points := make([]models.ForecastPoint, 0, horizon)
	for i := 0; i < horizon; i++ {
		pred, err := e.model.forward(scaled)
		if err != nil {
			rest := fallbackForecast(features, i, horizon, base, rng)
			return append(points, rest...), horizon - i
		}

		raw := scaler.inverse(pred)
		p := models.ForecastPoint{
			Timestamp:     base.Add(time.Duration(i+1) * time.Hour),
			CPUPercent:    raw[colCPU],
			MemoryPercent: raw[colMemory],
			DiskPercent:   raw[colDisk],
			NetworkUsage:  raw[colNetwork],
		}
		p.Clamp()
		points = append(points, p)

		scaled = append(scaled[1:], pred)
	}
	return points, 0
}

// forward computes one inference pass over the window, returning the
// model output for the step after the last row.
func (m *SequenceModel) forward(window [][]float64) ([]float64, error) {
	if len(window) == 0 {
		return nil, &ModelInferenceError{Stage: "sequence", Err: fmt.Errorf("empty window")}
	}

	h := make([][]float64, m.NumLayers)
	c := make([][]float64, m.NumLayers)
	for l := range h {
		h[l] = make([]float64, m.HiddenSize)
		c[l] = make([]float64, m.HiddenSize)
	}

	for _, row := range window {
		if len(row) != m.InputSize {
			return nil, &ModelInferenceError{
				Stage: "sequence",
				Err:   fmt.Errorf("row width %d, model expects %d", len(row), m.InputSize),
			}
		}
		x := row
		for l := 0; l < m.NumLayers; l++ {
			h[l], c[l] = m.Layers[l].step(x, h[l], c[l], m.HiddenSize)
			x = h[l]
		}
	}

	top := h[m.NumLayers-1]
	out := make([]float64, m.OutputSize)
	for j := 0; j < m.OutputSize; j++ {
		v := m.FCBias[j]
		for k, w := range m.FCWeight[j] {
			v += w * top[k]
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &ModelInferenceError{Stage: "sequence", Err: fmt.Errorf("non-finite output")}
		}
		out[j] = v
	}
	return out, nil
}

// step advances one LSTM cell: gates ordered input, forget, cell,
// output to match the artifact layout.
func (l lstmLayer) step(x, hPrev, cPrev []float64, hidden int) (h, c []float64) {
	gates := make([]float64, 4*hidden)
	for g := range gates {
		v := l.BIH[g] + l.BHH[g]
		for k, xv := range x {
			v += l.WIH[g][k] * xv
		}
		for k, hv := range hPrev {
			v += l.WHH[g][k] * hv
		}
		gates[g] = v
	}

	h = make([]float64, hidden)
	c = make([]float64, hidden)
	for j := 0; j < hidden; j++ {
		in := sigmoid(gates[j])
		forget := sigmoid(gates[hidden+j])
		cell := math.Tanh(gates[2*hidden+j])
		out := sigmoid(gates[3*hidden+j])

		c[j] = forget*cPrev[j] + in*cell
		h[j] = out * math.Tanh(c[j])
	}
	return h, c
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

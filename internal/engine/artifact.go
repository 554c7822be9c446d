package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
)

// Inference dimensions of the sequence model
const (
	seqInputSize  = 4
	seqHiddenSize = 64
	seqNumLayers  = 2
	seqOutputSize = 4
)

type lstmLayer struct {
	WIH [][]float64 `json:"weight_ih"`
	WHH [][]float64 `json:"weight_hh"`
	BIH []float64   `json:"bias_ih"`
	BHH []float64   `json:"bias_hh"`
}

// SequenceModel holds the trained recurrent-network weights used for
// inference. Training happens elsewhere; this is a read-only artifact
// safe to share across concurrent calls.
type SequenceModel struct {
	InputSize  int         `json:"input_size"`
	HiddenSize int         `json:"hidden_size"`
	NumLayers  int         `json:"num_layers"`
	OutputSize int         `json:"output_size"`
	Layers     []lstmLayer `json:"layers"`
	FCWeight   [][]float64 `json:"fc_weight"`
	FCBias     []float64   `json:"fc_bias"`
	Version    string      `json:"version,omitempty"`
}

// LoadSequenceModel reads a JSON weight artifact from disk
func LoadSequenceModel(path string) (*SequenceModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var m SequenceModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	return &m, nil
}

// NewStandInModel builds a behaviorally-equivalent deterministic
// stand-in artifact from a seed, for deployments without trained
// weights and for reproducible tests.
func NewStandInModel(seed int64) *SequenceModel {
	rng := rand.New(rand.NewSource(seed))

	m := &SequenceModel{
		InputSize:  seqInputSize,
		HiddenSize: seqHiddenSize,
		NumLayers:  seqNumLayers,
		OutputSize: seqOutputSize,
		Version:    "standin-v1",
	}

	bound := 1.0 / math.Sqrt(float64(m.HiddenSize))
	uniform := func(n int) []float64 {
		v := make([]float64, n)
		for i := range v {
			v[i] = (rng.Float64()*2 - 1) * bound
		}
		return v
	}
	matrix := func(rows, cols int) [][]float64 {
		w := make([][]float64, rows)
		for i := range w {
			w[i] = uniform(cols)
		}
		return w
	}

	for l := 0; l < m.NumLayers; l++ {
		in := m.InputSize
		if l > 0 {
			in = m.HiddenSize
		}
		m.Layers = append(m.Layers, lstmLayer{
			WIH: matrix(4*m.HiddenSize, in),
			WHH: matrix(4*m.HiddenSize, m.HiddenSize),
			BIH: uniform(4 * m.HiddenSize),
			BHH: uniform(4 * m.HiddenSize),
		})
	}
	m.FCWeight = matrix(m.OutputSize, m.HiddenSize)
	m.FCBias = uniform(m.OutputSize)

	return m
}

func (m *SequenceModel) validate() error {
	if m.InputSize <= 0 || m.HiddenSize <= 0 || m.OutputSize <= 0 {
		return fmt.Errorf("non-positive dimensions")
	}
	if len(m.Layers) != m.NumLayers {
		return fmt.Errorf("expected %d layers, got %d", m.NumLayers, len(m.Layers))
	}
	for l, layer := range m.Layers {
		in := m.InputSize
		if l > 0 {
			in = m.HiddenSize
		}
		if len(layer.WIH) != 4*m.HiddenSize || len(layer.WHH) != 4*m.HiddenSize ||
			len(layer.BIH) != 4*m.HiddenSize || len(layer.BHH) != 4*m.HiddenSize {
			return fmt.Errorf("layer %d: wrong gate dimensions", l)
		}
		for _, row := range layer.WIH {
			if len(row) != in {
				return fmt.Errorf("layer %d: input weight width %d, want %d", l, len(row), in)
			}
		}
		for _, row := range layer.WHH {
			if len(row) != m.HiddenSize {
				return fmt.Errorf("layer %d: hidden weight width %d, want %d", l, len(row), m.HiddenSize)
			}
		}
	}
	if len(m.FCWeight) != m.OutputSize || len(m.FCBias) != m.OutputSize {
		return fmt.Errorf("wrong output head dimensions")
	}
	for _, row := range m.FCWeight {
		if len(row) != m.HiddenSize {
			return fmt.Errorf("output head width %d, want %d", len(row), m.HiddenSize)
		}
	}
	return nil
}

package engine

import (
	"math"

	"github.com/cloudsched/scheduler/pkg/models"
)

// Fixed base column layout of a FeatureMatrix. Time-of-day columns and
// the moving averages follow the base metrics when present.
const (
	colCPU = iota
	colMemory
	colDisk
	colNetwork
	numBaseCols
)

// FeatureMatrix is a rectangular numeric table derived from a sample
// sequence, one row per sample.
type FeatureMatrix struct {
	rows    [][]float64
	hasTime bool
}

func (m FeatureMatrix) Len() int      { return len(m.rows) }
func (m FeatureMatrix) HasTime() bool { return m.hasTime }

func (m FeatureMatrix) Width() int {
	if len(m.rows) == 0 {
		return 0
	}
	return len(m.rows[0])
}

func (m FeatureMatrix) Row(i int) []float64 { return m.rows[i] }

// Column copies column i into a fresh slice
func (m FeatureMatrix) Column(i int) []float64 {
	col := make([]float64, len(m.rows))
	for r, row := range m.rows {
		col[r] = row[i]
	}
	return col
}

// Tail returns the last n rows (all rows when n >= Len)
func (m FeatureMatrix) Tail(n int) FeatureMatrix {
	if n >= len(m.rows) {
		return m
	}
	return FeatureMatrix{rows: m.rows[len(m.rows)-n:], hasTime: m.hasTime}
}

// baseWindow copies the base metric columns of the last n rows,
// left-padding by repeating the earliest row when fewer exist.
func (m FeatureMatrix) baseWindow(n int) [][]float64 {
	out := make([][]float64, 0, n)
	pad := n - len(m.rows)
	if pad > 0 && len(m.rows) > 0 {
		first := m.rows[0]
		for i := 0; i < pad; i++ {
			out = append(out, append([]float64(nil), first[:numBaseCols]...))
		}
	}
	start := 0
	if len(m.rows) > n {
		start = len(m.rows) - n
	}
	for _, row := range m.rows[start:] {
		out = append(out, append([]float64(nil), row[:numBaseCols]...))
	}
	return out
}

// ExtractFeatures converts an ordered sample sequence into a feature
// matrix: base metrics, calendar columns when timestamps are present,
// and trailing moving averages (windows 3 and 12) of cpu and memory.
func ExtractFeatures(samples []models.MetricSample) (FeatureMatrix, error) {
	if len(samples) == 0 {
		return FeatureMatrix{}, &FeatureExtractionError{Reason: "empty sample sequence"}
	}

	hasTime := true
	for _, s := range samples {
		if s.Timestamp.IsZero() {
			hasTime = false
			break
		}
	}

	base := make([][]float64, len(samples))
	for i, s := range samples {
		row := []float64{s.CPUPercent, s.MemoryPercent, s.DiskPercent, s.NetworkInBytes}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return FeatureMatrix{}, &FeatureExtractionError{Reason: "non-finite metric value"}
			}
		}
		if hasTime {
			ts := s.Timestamp
			row = append(row,
				float64(ts.Hour()),
				float64(ts.Weekday()),
				float64(ts.Day()),
			)
		}
		base[i] = row
	}

	cpuMA3 := trailingMean(base, colCPU, 3)
	cpuMA12 := trailingMean(base, colCPU, 12)
	memMA3 := trailingMean(base, colMemory, 3)
	memMA12 := trailingMean(base, colMemory, 12)

	for i := range base {
		base[i] = append(base[i], cpuMA3[i], cpuMA12[i], memMA3[i], memMA12[i])
	}

	return FeatureMatrix{rows: base, hasTime: hasTime}, nil
}

// trailingMean computes a trailing moving average over the given
// window. Leading rows where the window is not yet full take the first
// fully-defined value; if the series never fills the window, zero.
func trailingMean(rows [][]float64, col, window int) []float64 {
	n := len(rows)
	out := make([]float64, n)

	var sum float64
	firstValid := -1
	for i := 0; i < n; i++ {
		sum += rows[i][col]
		if i >= window {
			sum -= rows[i-window][col]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
			if firstValid < 0 {
				firstValid = i
			}
		}
	}

	if firstValid < 0 {
		return out // window never filled, all zero
	}
	for i := 0; i < firstValid; i++ {
		out[i] = out[firstValid]
	}
	return out
}

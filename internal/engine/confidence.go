package engine

import "gonum.org/v1/gonum/stat"

const (
	confidenceWindow = 24
	fullWeekRows     = 168.0
	cvEpsilon        = 1e-8

	stabilityWeight = 0.7
	dataWeight      = 0.3

	minConfidence = 0.1
	maxConfidence = 0.95
)

// confidenceScore rates a forecast from the stability of the recent
// history (coefficient of variation of cpu and memory) and how much
// history exists, a week of hourly rows scoring full marks.
func confidenceScore(features FeatureMatrix) float64 {
	if features.Len() < confidenceWindow {
		return 0.5
	}

	recent := features.Tail(confidenceWindow)
	cpu := recent.Column(colCPU)
	mem := recent.Column(colMemory)

	cvCPU := stat.PopStdDev(cpu, nil) / (stat.Mean(cpu, nil) + cvEpsilon)
	cvMem := stat.PopStdDev(mem, nil) / (stat.Mean(mem, nil) + cvEpsilon)

	stability := 1.0 / (1.0 + cvCPU + cvMem)

	dataScore := float64(features.Len()) / fullWeekRows
	if dataScore > 1 {
		dataScore = 1
	}

	confidence := stabilityWeight*stability + dataWeight*dataScore
	if confidence < minConfidence {
		return minConfidence
	}
	if confidence > maxConfidence {
		return maxConfidence
	}
	return confidence
}

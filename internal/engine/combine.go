package engine

import "github.com/cloudsched/scheduler/pkg/models"

// combineForecasts blends the two forecast sets with fixed weights
// over their overlapping prefix, taking timestamps from the sequence
// side. Either side empty passes the other through unchanged; sets of
// different length truncate to the shorter one.
func combineForecasts(sequence, ensemble []models.ForecastPoint, seqWeight, ensWeight float64) []models.ForecastPoint {
	if len(sequence) == 0 {
		return ensemble
	}
	if len(ensemble) == 0 {
		return sequence
	}

	n := len(sequence)
	if len(ensemble) < n {
		n = len(ensemble)
	}

	combined := make([]models.ForecastPoint, n)
	for i := 0; i < n; i++ {
		combined[i] = models.ForecastPoint{
			Timestamp:     sequence[i].Timestamp,
			CPUPercent:    seqWeight*sequence[i].CPUPercent + ensWeight*ensemble[i].CPUPercent,
			MemoryPercent: seqWeight*sequence[i].MemoryPercent + ensWeight*ensemble[i].MemoryPercent,
			DiskPercent:   seqWeight*sequence[i].DiskPercent + ensWeight*ensemble[i].DiskPercent,
			NetworkUsage:  seqWeight*sequence[i].NetworkUsage + ensWeight*ensemble[i].NetworkUsage,
		}
	}
	return combined
}

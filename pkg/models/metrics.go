package models

import "time"

// MetricSample is a single utilization observation for a resource.
// Samples arrive chronologically ordered but may have gaps; missing
// fields are zero and handled by the feature extractor.
type MetricSample struct {
	Timestamp       time.Time `json:"timestamp"`
	CPUPercent      float64   `json:"cpu_usage_percent"`
	MemoryPercent   float64   `json:"memory_usage_percent"`
	DiskPercent     float64   `json:"disk_usage_percent"`
	NetworkInBytes  float64   `json:"network_in_bytes"`
	NetworkOutBytes float64   `json:"network_out_bytes,omitempty"`
}

// SampleRecord is a metric sample as stored for a resource
type SampleRecord struct {
	Time            time.Time `json:"time"`
	ResourceID      string    `json:"resource_id"`
	CPUPercent      float64   `json:"cpu_usage_percent"`
	MemoryPercent   float64   `json:"memory_usage_percent"`
	DiskPercent     float64   `json:"disk_usage_percent"`
	NetworkInBytes  float64   `json:"network_in_bytes"`
	NetworkOutBytes float64   `json:"network_out_bytes"`
}

func (r SampleRecord) ToSample() MetricSample {
	return MetricSample{
		Timestamp:       r.Time,
		CPUPercent:      r.CPUPercent,
		MemoryPercent:   r.MemoryPercent,
		DiskPercent:     r.DiskPercent,
		NetworkInBytes:  r.NetworkInBytes,
		NetworkOutBytes: r.NetworkOutBytes,
	}
}

// ResourceStats summarizes stored samples over a query window
type ResourceStats struct {
	ResourceID  string    `json:"resource_id"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	AvgCPU      float64   `json:"avg_cpu"`
	AvgMemory   float64   `json:"avg_memory"`
	AvgDisk     float64   `json:"avg_disk"`
	AvgNetwork  float64   `json:"avg_network"`
	MaxCPU      float64   `json:"max_cpu"`
	MaxMemory   float64   `json:"max_memory"`
	SampleCount int       `json:"sample_count"`
}

// CurrentMetrics returns the newest sample as the current-metrics map
// consumed by Decide. Returns nil for an empty history.
func CurrentMetrics(history []MetricSample) map[string]float64 {
	if len(history) == 0 {
		return nil
	}
	last := history[len(history)-1]
	return map[string]float64{
		"cpu_usage_percent":    last.CPUPercent,
		"memory_usage_percent": last.MemoryPercent,
		"disk_usage_percent":   last.DiskPercent,
		"network_in_bytes":     last.NetworkInBytes,
	}
}

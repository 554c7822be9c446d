package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cloudsched/scheduler/internal/logger"
)

// Metrics tracks scheduler counters and gauges and serves them in the
// Prometheus text exposition format.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	forecastsTotal     map[string]int64
	forecastErrors     map[string]int64
	fallbackStepsTotal map[string]int64
	decisionsTotal     map[string]map[string]int64 // resource -> action -> count
	samplesIngested    map[string]int64

	// Gauges
	forecastConfidence  map[string]float64
	resourceCPU         map[string]float64
	resourceMemory      map[string]float64
	circuitBreakerState map[string]int // 0=closed, 1=open, 2=half-open

	// Latencies, last observed value only
	forecastLatency map[string]time.Duration
	decisionLatency map[string]time.Duration
}

var (
	instance *Metrics
	once     sync.Once
)

func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			forecastsTotal:      make(map[string]int64),
			forecastErrors:      make(map[string]int64),
			fallbackStepsTotal:  make(map[string]int64),
			decisionsTotal:      make(map[string]map[string]int64),
			samplesIngested:     make(map[string]int64),
			forecastConfidence:  make(map[string]float64),
			resourceCPU:         make(map[string]float64),
			resourceMemory:      make(map[string]float64),
			circuitBreakerState: make(map[string]int),
			forecastLatency:     make(map[string]time.Duration),
			decisionLatency:     make(map[string]time.Duration),
		}
	})
	return instance
}

func (m *Metrics) IncForecasts(resourceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecastsTotal[resourceID]++
}

func (m *Metrics) IncForecastErrors(resourceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecastErrors[resourceID]++
}

func (m *Metrics) AddFallbackSteps(resourceID string, steps int) {
	if steps <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbackStepsTotal[resourceID] += int64(steps)
}

func (m *Metrics) IncDecision(resourceID, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.decisionsTotal[resourceID] == nil {
		m.decisionsTotal[resourceID] = make(map[string]int64)
	}
	m.decisionsTotal[resourceID][action]++
}

func (m *Metrics) IncSamplesIngested(resourceID string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samplesIngested[resourceID] += int64(n)
}

func (m *Metrics) SetConfidence(resourceID string, confidence float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecastConfidence[resourceID] = confidence
}

func (m *Metrics) SetCPU(resourceID string, cpu float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resourceCPU[resourceID] = cpu
}

func (m *Metrics) SetMemory(resourceID string, memory float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resourceMemory[resourceID] = memory
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.circuitBreakerState[name] = state
}

func (m *Metrics) SetForecastLatency(resourceID string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecastLatency[resourceID] = d
}

func (m *Metrics) SetDecisionLatency(resourceID string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisionLatency[resourceID] = d
}

func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		for resource, count := range m.forecastsTotal {
			writeMetric(w, "scheduler_forecasts_total", map[string]string{"resource_id": resource}, float64(count))
		}

		for resource, count := range m.forecastErrors {
			writeMetric(w, "scheduler_forecast_errors_total", map[string]string{"resource_id": resource}, float64(count))
		}

		for resource, count := range m.fallbackStepsTotal {
			writeMetric(w, "scheduler_forecast_fallback_steps_total", map[string]string{"resource_id": resource}, float64(count))
		}

		for resource, actions := range m.decisionsTotal {
			for action, count := range actions {
				writeMetric(w, "scheduler_decisions_total", map[string]string{"resource_id": resource, "action": action}, float64(count))
			}
		}

		for resource, count := range m.samplesIngested {
			writeMetric(w, "scheduler_samples_ingested_total", map[string]string{"resource_id": resource}, float64(count))
		}

		for resource, confidence := range m.forecastConfidence {
			writeMetric(w, "scheduler_forecast_confidence", map[string]string{"resource_id": resource}, confidence)
		}

		for resource, cpu := range m.resourceCPU {
			writeMetric(w, "scheduler_resource_cpu_percent", map[string]string{"resource_id": resource}, cpu)
		}

		for resource, memory := range m.resourceMemory {
			writeMetric(w, "scheduler_resource_memory_percent", map[string]string{"resource_id": resource}, memory)
		}

		for name, state := range m.circuitBreakerState {
			writeMetric(w, "scheduler_circuit_breaker_state", map[string]string{"name": name}, float64(state))
		}

		for resource, latency := range m.forecastLatency {
			writeMetric(w, "scheduler_forecast_latency_ms", map[string]string{"resource_id": resource}, float64(latency.Milliseconds()))
		}

		for resource, latency := range m.decisionLatency {
			writeMetric(w, "scheduler_decision_latency_ms", map[string]string{"resource_id": resource}, float64(latency.Milliseconds()))
		}
	})
}

func writeMetric(w http.ResponseWriter, name string, labels map[string]string, value float64) {
	labelStr := ""
	if len(labels) > 0 {
		labelStr = "{"
		first := true
		for k, v := range labels {
			if !first {
				labelStr += ","
			}
			labelStr += k + `="` + v + `"`
			first = false
		}
		labelStr += "}"
	}
	w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(value, 'f', -1, 64) + "\n"))
}

func StartServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Get().Handler())

	addr := ":" + strconv.Itoa(port)
	logger.Infof("Prometheus metrics server listening on %s", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Errorf("Prometheus server error: %v", err)
		}
	}()
}

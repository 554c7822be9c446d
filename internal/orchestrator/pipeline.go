package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/cloudsched/scheduler/internal/engine"
	"github.com/cloudsched/scheduler/internal/events"
	"github.com/cloudsched/scheduler/internal/logger"
	"github.com/cloudsched/scheduler/internal/metrics"
	"github.com/cloudsched/scheduler/internal/resilience"
	"github.com/cloudsched/scheduler/pkg/database/queries"
	"github.com/cloudsched/scheduler/pkg/models"
)

type PipelineConfig struct {
	ResourceID     string
	Interval       time.Duration
	HistoryHours   int
	Engine         *engine.Engine
	Samples        *queries.SampleRepository
	EventPublisher *events.Publisher
	Breaker        *resilience.CircuitBreaker
}

// Pipeline runs the forecast-and-decide cycle for one resource on a
// fixed interval.
type Pipeline struct {
	config  PipelineConfig
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Interval == 0 {
		cfg.Interval = time.Hour
	}
	if cfg.HistoryHours == 0 {
		cfg.HistoryHours = 168
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pipeline{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (p *Pipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}

	p.running = true
	p.wg.Add(1)
	go p.run()

	logger.WithResource(p.config.ResourceID).Info("Pipeline started")
	return nil
}

func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()

	logger.WithResource(p.config.ResourceID).Info("Pipeline stopped")
}

func (p *Pipeline) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Pipeline) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Run immediately on start
	p.runCycle()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.runCycle()
		}
	}
}

func (p *Pipeline) runCycle() {
	ctx, cancel := context.WithTimeout(p.ctx, p.config.Interval/2)
	defer cancel()

	if _, _, err := p.Cycle(ctx); err != nil {
		logger.WithResource(p.config.ResourceID).Errorf("Cycle failed: %v", err)
	}
}

// Cycle loads history, generates a forecast, and derives a scheduling
// decision. Exported so API handlers can trigger an on-demand run.
func (p *Pipeline) Cycle(ctx context.Context) (*models.Forecast, *models.Decision, error) {
	resourceID := p.config.ResourceID
	m := metrics.Get()

	history, err := p.loadHistory(ctx)
	if err != nil {
		m.IncForecastErrors(resourceID)
		p.config.EventPublisher.Error(resourceID, "failed to load sample history", err)
		return nil, nil, err
	}

	start := time.Now()
	forecast, err := p.config.Engine.Forecast(resourceID, history, p.config.Engine.Horizon())
	if err != nil {
		m.IncForecastErrors(resourceID)
		p.config.EventPublisher.Error(resourceID, "forecast failed", err)
		return nil, nil, err
	}
	m.SetForecastLatency(resourceID, time.Since(start))
	m.IncForecasts(resourceID)
	m.SetConfidence(resourceID, forecast.Confidence)
	m.AddFallbackSteps(resourceID, forecast.ModelInfo.FallbackSteps)

	p.config.EventPublisher.ForecastGenerated(resourceID, forecast)
	if forecast.ModelInfo.FallbackSteps > 0 {
		p.config.EventPublisher.FallbackUsed(resourceID, forecast.ModelInfo.FallbackSteps)
	}

	current := models.CurrentMetrics(history)
	if len(history) > 0 {
		last := history[len(history)-1]
		m.SetCPU(resourceID, last.CPUPercent)
		m.SetMemory(resourceID, last.MemoryPercent)
	}

	decideStart := time.Now()
	decision := p.config.Engine.Decide(resourceID, current, forecast.Predictions)
	m.SetDecisionLatency(resourceID, time.Since(decideStart))
	m.IncDecision(resourceID, string(decision.Action))

	p.config.EventPublisher.DecisionMade(resourceID, decision)

	logger.WithResource(resourceID).Infof(
		"Cycle complete: action=%s confidence=%.2f fallback_steps=%d",
		decision.Action, decision.Confidence, forecast.ModelInfo.FallbackSteps,
	)

	return forecast, decision, nil
}

func (p *Pipeline) loadHistory(ctx context.Context) ([]models.MetricSample, error) {
	var history []models.MetricSample

	err := p.config.Breaker.Execute(func() error {
		var err error
		history, err = p.config.Samples.GetHourly(ctx, p.config.ResourceID, p.config.HistoryHours)
		return err
	})
	if err != nil {
		return nil, err
	}

	return history, nil
}

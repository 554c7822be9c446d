package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudsched/scheduler/internal/engine"
	"github.com/cloudsched/scheduler/internal/events"
	"github.com/cloudsched/scheduler/internal/logger"
	"github.com/cloudsched/scheduler/internal/metrics"
	"github.com/cloudsched/scheduler/internal/resilience"
	"github.com/cloudsched/scheduler/pkg/config"
	"github.com/cloudsched/scheduler/pkg/database"
	"github.com/cloudsched/scheduler/pkg/database/queries"
	"github.com/cloudsched/scheduler/pkg/models"
)

// Orchestrator owns the per-resource forecast pipelines, the event bus,
// and the breaker guarding storage reads.
type Orchestrator struct {
	config      *config.Config
	db          *database.DB
	engine      *engine.Engine
	eventBus    *events.EventBus
	eventLogger *events.EventLogger
	samples     *queries.SampleRepository
	breaker     *resilience.CircuitBreaker
	pipelines   map[string]*Pipeline
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

func New(cfg *config.Config, db *database.DB, eng *engine.Engine) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())

	bufferSize := cfg.Events.BufferSize
	if bufferSize <= 0 {
		bufferSize = 100
	}
	eventBus := events.NewEventBus(bufferSize)

	allEvents := eventBus.SubscribeAll()
	eventLogger := events.NewEventLogger(db, allEvents)

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:        "sample-storage",
		MaxFailures: cfg.Orchestrator.CircuitBreaker.MaxFailures,
		Timeout:     cfg.Orchestrator.CircuitBreaker.Timeout,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
			metrics.Get().SetCircuitBreakerState(name, int(to))
		},
	})

	var samples *queries.SampleRepository
	if db != nil {
		samples = queries.NewSampleRepository(db.DB)
	}

	return &Orchestrator{
		config:      cfg,
		db:          db,
		engine:      eng,
		eventBus:    eventBus,
		eventLogger: eventLogger,
		samples:     samples,
		breaker:     breaker,
		pipelines:   make(map[string]*Pipeline),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (o *Orchestrator) Start() error {
	logger.Info("Orchestrator starting")
	o.eventLogger.Start()

	if o.config.Orchestrator.Enabled && o.samples != nil {
		if err := o.startKnownResources(); err != nil {
			logger.Warnf("Failed to start pipelines for known resources: %v", err)
		}
	}

	return nil
}

func (o *Orchestrator) startKnownResources() error {
	ids, err := o.samples.ListResources(o.ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := o.StartResource(id); err != nil {
			logger.WithResource(id).Warnf("Failed to start pipeline: %v", err)
		}
	}

	return nil
}

func (o *Orchestrator) Stop() {
	logger.Info("Orchestrator stopping")

	o.mu.Lock()
	for resourceID, pipeline := range o.pipelines {
		logger.Infof("Stopping pipeline for resource %s", resourceID)
		pipeline.Stop()
	}
	o.mu.Unlock()

	o.cancel()
	o.eventLogger.Stop()
	o.eventBus.Close()

	logger.Info("Orchestrator stopped")
}

func (o *Orchestrator) StartResource(resourceID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.pipelines[resourceID]; exists {
		return fmt.Errorf("pipeline already exists for resource %s", resourceID)
	}

	pipeline := NewPipeline(PipelineConfig{
		ResourceID:     resourceID,
		Interval:       o.config.Orchestrator.Interval,
		HistoryHours:   o.config.Orchestrator.HistoryHours,
		Engine:         o.engine,
		Samples:        o.samples,
		EventPublisher: events.NewPublisher(o.eventBus),
		Breaker:        o.breaker,
	})

	if err := pipeline.Start(); err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}

	o.pipelines[resourceID] = pipeline
	logger.WithResource(resourceID).Info("Resource pipeline started")

	return nil
}

func (o *Orchestrator) StopResource(resourceID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	pipeline, exists := o.pipelines[resourceID]
	if !exists {
		return fmt.Errorf("no pipeline found for resource %s", resourceID)
	}

	pipeline.Stop()
	delete(o.pipelines, resourceID)
	logger.WithResource(resourceID).Info("Resource pipeline stopped")

	return nil
}

// RunOnce executes a single forecast-and-decide cycle for a resource,
// creating a transient pipeline when none is registered.
func (o *Orchestrator) RunOnce(ctx context.Context, resourceID string) (*models.Forecast, *models.Decision, error) {
	o.mu.RLock()
	pipeline, exists := o.pipelines[resourceID]
	o.mu.RUnlock()

	if !exists {
		pipeline = NewPipeline(PipelineConfig{
			ResourceID:     resourceID,
			Interval:       o.config.Orchestrator.Interval,
			HistoryHours:   o.config.Orchestrator.HistoryHours,
			Engine:         o.engine,
			Samples:        o.samples,
			EventPublisher: events.NewPublisher(o.eventBus),
			Breaker:        o.breaker,
		})
	}

	return pipeline.Cycle(ctx)
}

func (o *Orchestrator) IsResourceRunning(resourceID string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	pipeline, exists := o.pipelines[resourceID]
	return exists && pipeline.IsRunning()
}

func (o *Orchestrator) ListRunningResources() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	resources := make([]string, 0, len(o.pipelines))
	for resourceID, pipeline := range o.pipelines {
		if pipeline.IsRunning() {
			resources = append(resources, resourceID)
		}
	}
	return resources
}

func (o *Orchestrator) Publisher() *events.Publisher {
	return events.NewPublisher(o.eventBus)
}

func (o *Orchestrator) SubscribeAllEvents() <-chan *models.Event {
	return o.eventBus.SubscribeAll()
}

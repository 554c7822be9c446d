package events

import (
	"context"

	"github.com/cloudsched/scheduler/internal/logger"
	"github.com/cloudsched/scheduler/pkg/database"
	"github.com/cloudsched/scheduler/pkg/database/queries"
	"github.com/cloudsched/scheduler/pkg/models"
)

// EventLogger mirrors bus events into the structured log and persists
// forecasts and decisions for later querying.
type EventLogger struct {
	db        *database.DB
	forecasts *queries.ForecastRepository
	decisions *queries.DecisionRepository
	eventChan <-chan *models.Event
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewEventLogger accepts a nil db; events are then logged without
// being persisted.
func NewEventLogger(db *database.DB, eventChan <-chan *models.Event) *EventLogger {
	ctx, cancel := context.WithCancel(context.Background())
	l := &EventLogger{
		db:        db,
		eventChan: eventChan,
		ctx:       ctx,
		cancel:    cancel,
	}
	if db != nil {
		l.forecasts = queries.NewForecastRepository(db.DB)
		l.decisions = queries.NewDecisionRepository(db.DB)
	}
	return l
}

func (l *EventLogger) Start() {
	go l.run()
}

func (l *EventLogger) Stop() {
	l.cancel()
}

func (l *EventLogger) run() {
	for {
		select {
		case <-l.ctx.Done():
			return
		case event, ok := <-l.eventChan:
			if !ok {
				return
			}
			l.processEvent(event)
		}
	}
}

func (l *EventLogger) processEvent(event *models.Event) {
	entry := logger.WithFields(map[string]interface{}{
		"event_type":  event.Type,
		"resource_id": event.ResourceID,
		"severity":    event.Severity,
		"trace_id":    event.TraceID,
	})

	switch event.Severity {
	case models.SeverityCritical:
		entry.Error(event.Message)
	case models.SeverityWarning:
		entry.Warn(event.Message)
	default:
		entry.Info(event.Message)
	}

	if l.db == nil {
		return
	}

	switch event.Type {
	case models.EventTypeForecastGenerated:
		l.persistForecast(event)
	case models.EventTypeDecisionMade:
		l.persistDecision(event)
	}
}

func (l *EventLogger) persistForecast(event *models.Event) {
	forecast, ok := event.Data.(*models.Forecast)
	if !ok {
		return
	}

	if err := l.forecasts.Insert(l.ctx, forecast); err != nil {
		logger.Errorf("Failed to persist forecast: %v", err)
	}
}

func (l *EventLogger) persistDecision(event *models.Event) {
	decision, ok := event.Data.(*models.Decision)
	if !ok {
		return
	}

	if err := l.decisions.Insert(l.ctx, decision); err != nil {
		logger.Errorf("Failed to persist decision: %v", err)
	}
}

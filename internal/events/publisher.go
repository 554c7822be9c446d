package events

import (
	"fmt"

	"github.com/cloudsched/scheduler/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) SampleIngested(resourceID string, sample *models.MetricSample) {
	event := models.NewEvent(models.EventTypeSampleIngested, resourceID, "Metric sample ingested").
		WithData(sample)
	p.publish(event)
}

func (p *Publisher) ForecastGenerated(resourceID string, forecast *models.Forecast) {
	msg := fmt.Sprintf("Forecast generated: %d points, confidence %.2f", len(forecast.Predictions), forecast.Confidence)
	event := models.NewEvent(models.EventTypeForecastGenerated, resourceID, msg).
		WithData(forecast)

	if forecast.ModelInfo.FallbackSteps > 0 {
		event.WithSeverity(models.SeverityWarning)
	}

	p.publish(event)
}

func (p *Publisher) FallbackUsed(resourceID string, steps int) {
	msg := fmt.Sprintf("Trend fallback produced %d forecast steps", steps)
	event := models.NewEvent(models.EventTypeFallbackUsed, resourceID, msg).
		WithSeverity(models.SeverityWarning)
	p.publish(event)
}

func (p *Publisher) DecisionMade(resourceID string, decision *models.Decision) {
	msg := "Schedule decision: " + string(decision.Action)
	event := models.NewEvent(models.EventTypeDecisionMade, resourceID, msg).
		WithData(decision)

	if decision.Action == models.ActionScaleUp && decision.Confidence >= 0.9 {
		event.WithSeverity(models.SeverityWarning)
	}

	p.publish(event)
}

func (p *Publisher) Alert(resourceID string, severity models.EventSeverity, message string, data interface{}) {
	event := models.NewEvent(models.EventTypeAlert, resourceID, message).
		WithSeverity(severity).
		WithData(data)
	p.publish(event)
}

func (p *Publisher) Error(resourceID string, message string, err error) {
	event := models.NewEvent(models.EventTypeError, resourceID, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}

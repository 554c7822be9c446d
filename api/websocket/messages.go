package websocket

import (
	"encoding/json"
	"time"

	"github.com/cloudsched/scheduler/pkg/models"
)

type MessageType string

const (
	MessageTypeForecast MessageType = "forecast"
	MessageTypeDecision MessageType = "decision"
	MessageTypeAlert    MessageType = "alert"
)

type OutgoingMessage struct {
	Type       MessageType `json:"type"`
	ResourceID string      `json:"resource_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       interface{} `json:"data"`
}

func NewMessage(msgType MessageType, resourceID string, data interface{}) *OutgoingMessage {
	return &OutgoingMessage{
		Type:       msgType,
		ResourceID: resourceID,
		Timestamp:  time.Now(),
		Data:       data,
	}
}

func (m *OutgoingMessage) JSON() []byte {
	data, _ := json.Marshal(m)
	return data
}

type ForecastData struct {
	Horizon       int     `json:"prediction_horizon"`
	Confidence    float64 `json:"confidence"`
	FallbackSteps int     `json:"fallback_steps"`
	ModelVersion  string  `json:"model_version,omitempty"`
}

type DecisionData struct {
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type AlertData struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

func BroadcastForecast(hub *Hub, forecast *models.Forecast) {
	data := ForecastData{
		Horizon:       forecast.Horizon,
		Confidence:    forecast.Confidence,
		FallbackSteps: forecast.ModelInfo.FallbackSteps,
		ModelVersion:  forecast.ModelInfo.ModelVersion,
	}
	msg := NewMessage(MessageTypeForecast, forecast.ResourceID, data)
	hub.BroadcastToResource(forecast.ResourceID, msg.JSON())
}

func BroadcastDecision(hub *Hub, decision *models.Decision) {
	data := DecisionData{
		Action:     string(decision.Action),
		Confidence: decision.Confidence,
		Reasoning:  decision.Reasoning,
	}
	msg := NewMessage(MessageTypeDecision, decision.ResourceID, data)
	hub.BroadcastToResource(decision.ResourceID, msg.JSON())
}

func BroadcastAlert(hub *Hub, resourceID, severity, message string) {
	data := AlertData{
		Severity: severity,
		Message:  message,
	}
	msg := NewMessage(MessageTypeAlert, resourceID, data)
	hub.BroadcastToResource(resourceID, msg.JSON())
}

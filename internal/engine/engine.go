// Package engine implements the predictive scheduling core: feature
// extraction from utilization history, two independent forecasters
// blended into one forecast, a confidence estimate, and a rule-based
// scheduling decision. Every call is a pure function of its inputs;
// the only shared state is the immutable sequence-model artifact.
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/cloudsched/scheduler/internal/logger"
	"github.com/cloudsched/scheduler/pkg/models"
)

type Config struct {
	Horizon        int     // default forecast length in hours, default 24
	MinHistory     int     // samples required by Forecast, default 24
	SequenceWeight float64 // blend weight of the sequence model, default 0.6
	EnsembleWeight float64 // blend weight of the regression forest, default 0.4
	Seed           int64   // base seed for fallback jitter and forest sampling, default 42
	ModelPath      string  // JSON sequence-model artifact; empty uses the stand-in
	Forest         ForestConfig
	Policy         PolicyConfig
}

type Engine struct {
	config Config
	model  *SequenceModel
}

func New(cfg Config) (*Engine, error) {
	if cfg.Horizon == 0 {
		cfg.Horizon = 24
	}
	if cfg.MinHistory == 0 {
		cfg.MinHistory = 24
	}
	if cfg.SequenceWeight == 0 && cfg.EnsembleWeight == 0 {
		cfg.SequenceWeight = 0.6
		cfg.EnsembleWeight = 0.4
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}

	var model *SequenceModel
	if cfg.ModelPath != "" {
		m, err := LoadSequenceModel(cfg.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load sequence model: %w", err)
		}
		model = m
	} else {
		model = NewStandInModel(cfg.Seed)
		logger.Infof("No model artifact configured, using deterministic stand-in (seed %d)", cfg.Seed)
	}

	return &Engine{config: cfg, model: model}, nil
}

// Forecast predicts resource usage `horizon` hours ahead from the
// supplied chronological history. A horizon of 0 takes the configured
// default. History shorter than the minimum returns
// InsufficientHistoryError; model failures degrade to the trend
// fallback instead of surfacing.
func (e *Engine) Forecast(resourceID string, history []models.MetricSample, horizon int) (*models.Forecast, error) {
	return e.ForecastAt(resourceID, history, horizon, time.Now())
}

// ForecastAt is Forecast with an explicit base time for the predicted
// timestamps, used by backtesting and reproducibility tests.
func (e *Engine) ForecastAt(resourceID string, history []models.MetricSample, horizon int, base time.Time) (*models.Forecast, error) {
	if horizon <= 0 {
		horizon = e.config.Horizon
	}
	if len(history) < e.config.MinHistory {
		return nil, &InsufficientHistoryError{Got: len(history), Need: e.config.MinHistory}
	}

	features, err := ExtractFeatures(history)
	if err != nil {
		return nil, err
	}

	seqRng := rand.New(rand.NewSource(e.config.Seed))
	ensRng := rand.New(rand.NewSource(e.config.Seed + 1))

	sequence, seqFallback := e.sequenceForecast(features, horizon, base, seqRng)
	ensemble, ensFallback := e.ensembleForecast(features, horizon, base, ensRng)

	combined := combineForecasts(sequence, ensemble, e.config.SequenceWeight, e.config.EnsembleWeight)
	confidence := confidenceScore(features)

	fallbackSteps := seqFallback + ensFallback
	if fallbackSteps > 0 {
		logger.WithResource(resourceID).Warnf(
			"Forecast degraded: %d of %d model steps produced by trend fallback",
			fallbackSteps, 2*horizon,
		)
	}

	return &models.Forecast{
		ResourceID:  resourceID,
		Horizon:     horizon,
		Predictions: combined,
		Confidence:  confidence,
		ModelInfo: models.ModelInfo{
			SequenceUsed:  seqFallback < horizon,
			EnsembleUsed:  ensFallback < horizon,
			Blended:       true,
			FallbackSteps: fallbackSteps,
			ModelVersion:  e.model.Version,
		},
		GeneratedAt: base,
	}, nil
}

// Decide converts current metrics plus the near-term forecast into a
// scheduling recommendation. It is total: any internal failure yields
// a low-confidence maintain decision instead of an error.
func (e *Engine) Decide(resourceID string, current map[string]float64, predictions []models.ForecastPoint) (decision *models.Decision) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithResource(resourceID).Errorf("Decision analysis failed: %v", r)
			decision = &models.Decision{
				ResourceID: resourceID,
				Timestamp:  time.Now(),
				Action:     models.ActionMaintain,
				Confidence: 0.1,
				Reasoning:  fmt.Sprintf("decision analysis failed: %v", r),
			}
		}
	}()

	decision = evaluatePolicy(resourceID, current, predictions, e.config.Policy)

	logger.WithResource(resourceID).Debugf(
		"Decision: %s (confidence %.2f, avg cpu %.1f%%, max cpu %.1f%%)",
		decision.Action, decision.Confidence,
		decision.Aggregates.AvgCPU, decision.Aggregates.MaxCPU,
	)
	return decision
}

// Horizon reports the configured default forecast length
func (e *Engine) Horizon() int {
	return e.config.Horizon
}

// MinHistory reports the minimum history length Forecast accepts
func (e *Engine) MinHistory() int {
	return e.config.MinHistory
}

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cloudsched/scheduler/internal/engine"
	"github.com/cloudsched/scheduler/internal/logger"
	"github.com/cloudsched/scheduler/internal/simulator"
	"github.com/cloudsched/scheduler/pkg/models"
)

// Offline harness: generates a synthetic utilization history, runs the
// forecasting engine over it, and prints the forecast and decision.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	resourceID := flag.String("resource", "sim-resource-1", "resource identifier")
	pattern := flag.String("pattern", "daily", "load pattern: steady, daily, weekly, gradual_rise")
	hours := flag.Int("hours", 168, "hours of synthetic history")
	horizon := flag.Int("horizon", 24, "forecast horizon in hours")
	baseCPU := flag.Float64("cpu", 50.0, "base CPU percent")
	seed := flag.Int64("seed", 42, "random seed")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger.Setup(*logLevel, "development")
	logger.Infof("Simulating %d hours of %s load for %s", *hours, *pattern, *resourceID)

	gen := simulator.NewGenerator(simulator.GeneratorConfig{
		BaseCPU: *baseCPU,
		Pattern: simulator.ParsePattern(*pattern),
		Seed:    *seed,
	})

	now := time.Now().Truncate(time.Hour)
	history := gen.History(now, *hours)

	eng, err := engine.New(engine.Config{Horizon: *horizon, Seed: *seed})
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	forecast, err := eng.ForecastAt(*resourceID, history, *horizon, now)
	if err != nil {
		return fmt.Errorf("forecast failed: %w", err)
	}

	decision := eng.Decide(*resourceID, models.CurrentMetrics(history), forecast.Predictions)

	out := struct {
		Forecast *models.Forecast `json:"forecast"`
		Decision *models.Decision `json:"decision"`
	}{forecast, decision}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(encoded))

	logger.Infof("Action: %s (confidence %.2f)", decision.Action, decision.Confidence)
	return nil
}

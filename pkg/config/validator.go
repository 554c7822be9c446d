package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, errors.New("database.port must be between 1 and 65535"))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("database.name is required"))
	}
	if c.Database.MaxConnections <= 0 {
		errs = append(errs, errors.New("database.max_connections must be positive"))
	}

	// Engine validation
	if c.Engine.Horizon <= 0 {
		errs = append(errs, errors.New("engine.horizon must be positive"))
	}
	if c.Engine.MinHistory <= 0 {
		errs = append(errs, errors.New("engine.min_history must be positive"))
	}
	if c.Engine.SequenceWeight < 0 || c.Engine.EnsembleWeight < 0 {
		errs = append(errs, errors.New("engine blend weights must be non-negative"))
	}
	if c.Engine.SequenceWeight+c.Engine.EnsembleWeight == 0 {
		errs = append(errs, errors.New("engine blend weights must not both be zero"))
	}
	if c.Engine.Forest.Trees < 0 {
		errs = append(errs, errors.New("engine.forest.trees must not be negative"))
	}

	// Policy validation
	if c.Policy.WindowHours <= 0 {
		errs = append(errs, errors.New("policy.window_hours must be positive"))
	}
	if c.Policy.PeakThreshold <= 0 || c.Policy.PeakThreshold > 100 {
		errs = append(errs, errors.New("policy.peak_threshold must be between 0 and 100"))
	}
	if c.Policy.SustainedThreshold >= c.Policy.PeakThreshold {
		errs = append(errs, errors.New("policy.sustained_threshold must be less than peak_threshold"))
	}
	if c.Policy.IdleCPUThreshold < 0 || c.Policy.IdleCPUThreshold >= c.Policy.SustainedThreshold {
		errs = append(errs, errors.New("policy.idle_cpu_threshold must be between 0 and sustained_threshold"))
	}

	// Orchestrator validation
	if c.Orchestrator.Enabled {
		if c.Orchestrator.Interval <= 0 {
			errs = append(errs, errors.New("orchestrator.interval must be positive"))
		}
		if c.Orchestrator.HistoryHours <= 0 {
			errs = append(errs, errors.New("orchestrator.history_hours must be positive"))
		}
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.App.Mode == "production" && c.API.JWTSecret == "change-me-in-production" {
		errs = append(errs, errors.New("api.jwt_secret must be changed in production"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}

package unit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsched/scheduler/pkg/config"
)

func validConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:     "test-app",
			Mode:     "development",
			LogLevel: "info",
		},
		Database: config.DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			Name:           "testdb",
			User:           "user",
			Password:       "pass",
			MaxConnections: 10,
		},
		Engine: config.EngineConfig{
			Horizon:        24,
			MinHistory:     24,
			SequenceWeight: 0.6,
			EnsembleWeight: 0.4,
			Seed:           42,
		},
		Policy: config.PolicyConfig{
			WindowHours:         6,
			PeakThreshold:       85.0,
			SustainedThreshold:  70.0,
			IdleCPUThreshold:    20.0,
			IdleMemoryThreshold: 30.0,
			IdlePeakCPU:         40.0,
			VolatilityThreshold: 20.0,
		},
		Orchestrator: config.OrchestratorConfig{
			Enabled:      true,
			Interval:     time.Hour,
			HistoryHours: 168,
		},
		API: config.APIConfig{
			Port:      8080,
			JWTSecret: "test-secret",
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		modifyFunc  func(*config.Config)
		expectErr   bool
		errContains string
	}{
		{
			name:       "valid config",
			modifyFunc: func(c *config.Config) {},
			expectErr:  false,
		},
		{
			name: "invalid mode",
			modifyFunc: func(c *config.Config) {
				c.App.Mode = "staging"
			},
			expectErr:   true,
			errContains: "app.mode",
		},
		{
			name: "invalid log level",
			modifyFunc: func(c *config.Config) {
				c.App.LogLevel = "trace"
			},
			expectErr:   true,
			errContains: "app.log_level",
		},
		{
			name: "missing database host",
			modifyFunc: func(c *config.Config) {
				c.Database.Host = ""
			},
			expectErr:   true,
			errContains: "database.host",
		},
		{
			name: "non-positive horizon",
			modifyFunc: func(c *config.Config) {
				c.Engine.Horizon = 0
			},
			expectErr:   true,
			errContains: "engine.horizon",
		},
		{
			name: "both blend weights zero",
			modifyFunc: func(c *config.Config) {
				c.Engine.SequenceWeight = 0
				c.Engine.EnsembleWeight = 0
			},
			expectErr:   true,
			errContains: "blend weights",
		},
		{
			name: "sustained threshold above peak",
			modifyFunc: func(c *config.Config) {
				c.Policy.SustainedThreshold = 90.0
			},
			expectErr:   true,
			errContains: "sustained_threshold",
		},
		{
			name: "idle threshold above sustained",
			modifyFunc: func(c *config.Config) {
				c.Policy.IdleCPUThreshold = 75.0
			},
			expectErr:   true,
			errContains: "idle_cpu_threshold",
		},
		{
			name: "orchestrator enabled without interval",
			modifyFunc: func(c *config.Config) {
				c.Orchestrator.Interval = 0
			},
			expectErr:   true,
			errContains: "orchestrator.interval",
		},
		{
			name: "orchestrator disabled skips interval check",
			modifyFunc: func(c *config.Config) {
				c.Orchestrator.Enabled = false
				c.Orchestrator.Interval = 0
			},
			expectErr: false,
		},
		{
			name: "default jwt secret in production",
			modifyFunc: func(c *config.Config) {
				c.App.Mode = "production"
				c.API.JWTSecret = "change-me-in-production"
			},
			expectErr:   true,
			errContains: "jwt_secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modifyFunc(cfg)

			err := cfg.Validate()

			if tt.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	dbCfg := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "testdb",
		User:     "admin",
		Password: "secret",
		SSLMode:  "disable",
	}

	dsn := dbCfg.DSN()

	expected := "host=localhost port=5432 user=admin password=secret dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
}

func TestEngineConfig_ToEngineConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.Forest = config.ForestConfig{Trees: 30, MaxDepth: 5, MinLeaf: 3}

	engCfg := cfg.Engine.ToEngineConfig(cfg.Policy)

	assert.Equal(t, 24, engCfg.Horizon)
	assert.Equal(t, int64(42), engCfg.Seed)
	assert.Equal(t, 0.6, engCfg.SequenceWeight)
	assert.Equal(t, 30, engCfg.Forest.Trees)
	assert.Equal(t, 85.0, engCfg.Policy.PeakThreshold)
	assert.Equal(t, 6, engCfg.Policy.WindowHours)
}

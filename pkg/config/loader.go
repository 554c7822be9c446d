package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/scheduler")
	}

	v.SetEnvPrefix("SCHEDULER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// no config file, defaults and env vars apply
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "cloud-scheduler")
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.shutdown_timeout", "15s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "scheduler")
	v.SetDefault("database.user", "admin")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.migration_timeout", "60s")

	// Engine defaults
	v.SetDefault("engine.horizon", 24)
	v.SetDefault("engine.min_history", 24)
	v.SetDefault("engine.sequence_weight", 0.6)
	v.SetDefault("engine.ensemble_weight", 0.4)
	v.SetDefault("engine.seed", 42)
	v.SetDefault("engine.model_path", "")
	v.SetDefault("engine.forest.trees", 50)
	v.SetDefault("engine.forest.max_depth", 6)
	v.SetDefault("engine.forest.min_leaf", 2)

	// Policy defaults
	v.SetDefault("policy.window_hours", 6)
	v.SetDefault("policy.peak_threshold", 85.0)
	v.SetDefault("policy.sustained_threshold", 70.0)
	v.SetDefault("policy.idle_cpu_threshold", 20.0)
	v.SetDefault("policy.idle_memory_threshold", 30.0)
	v.SetDefault("policy.idle_peak_cpu", 40.0)
	v.SetDefault("policy.volatility_threshold", 20.0)

	// Orchestrator defaults
	v.SetDefault("orchestrator.enabled", true)
	v.SetDefault("orchestrator.interval", "1h")
	v.SetDefault("orchestrator.history_hours", 168)
	v.SetDefault("orchestrator.circuit_breaker.max_failures", 5)
	v.SetDefault("orchestrator.circuit_breaker.timeout", "30s")

	// API defaults
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "15s")
	v.SetDefault("api.rate_limit", 100)
	v.SetDefault("api.jwt_secret", "change-me-in-production")
	v.SetDefault("api.jwt_duration", "24h")
	v.SetDefault("api.jwt_issuer", "cloud-scheduler")
	v.SetDefault("api.default_limit", 50)
	v.SetDefault("api.max_limit", 1000)

	// WebSocket defaults
	v.SetDefault("websocket.max_connections", 1000)
	v.SetDefault("websocket.ping_interval", "30s")

	// Prometheus defaults
	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.port", 9090)

	// Events defaults
	v.SetDefault("events.buffer_size", 100)
}

package config

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/infrastructure/logging"
)

// Config holds all runtime and tooling configuration.
type Config struct {
	Logging LogConfig
	Metrics MetricsConfig
	Stress  StressConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"OBJMGR_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"OBJMGR_LOG_DEV" default:"false"`
}

// MetricsConfig controls the Prometheus observer and the diagnostics server.
type MetricsConfig struct {
	Enabled         bool   `envconfig:"OBJMGR_METRICS_ENABLED" default:"true"`
	Namespace       string `envconfig:"OBJMGR_METRICS_NAMESPACE" default:"objmgr"`
	Addr            string `envconfig:"OBJMGR_METRICS_ADDR" default:""`
	TraceBroadcasts bool   `envconfig:"OBJMGR_TRACE_BROADCASTS" default:"false"`
}

// StressConfig sizes the soak scenarios.
type StressConfig struct {
	Workers      int `envconfig:"OBJMGR_STRESS_WORKERS" default:"8"`
	Iterations   int `envconfig:"OBJMGR_STRESS_ITERATIONS" default:"10000"`
	Clients      int `envconfig:"OBJMGR_STRESS_CLIENTS" default:"16"`
	BroadcastRPS int `envconfig:"OBJMGR_STRESS_BROADCAST_RPS" default:"0"` // 0 means unlimited
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "objmgr",
		},
		Stress: StressConfig{
			Workers:    8,
			Iterations: 10000,
			Clients:    16,
		},
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("log level %q: %w", c.Logging.Level, err))
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		errs = append(errs, errors.New("metrics namespace must not be empty"))
	}
	if c.Stress.Workers < 1 {
		errs = append(errs, fmt.Errorf("stress workers must be positive, got %d", c.Stress.Workers))
	}
	if c.Stress.Iterations < 1 {
		errs = append(errs, fmt.Errorf("stress iterations must be positive, got %d", c.Stress.Iterations))
	}
	if c.Stress.Clients < 1 {
		errs = append(errs, fmt.Errorf("stress clients must be positive, got %d", c.Stress.Clients))
	}
	if c.Stress.BroadcastRPS < 0 {
		errs = append(errs, fmt.Errorf("stress broadcast rate must not be negative, got %d", c.Stress.BroadcastRPS))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoggerConfig maps the logging section onto a logger configuration.
func (c *Config) LoggerConfig() logging.Config {
	base := logging.DefaultConfig()
	if c.Logging.Development {
		base = logging.DevelopmentConfig()
	}
	base.Level = c.Logging.Level
	return base
}

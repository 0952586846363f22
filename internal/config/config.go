// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// DatabaseURL is the Postgres DSN; required by the sweeper and migrate binaries.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// SweepSchedule is the cron expression for evaluator sweeps (default every minute).
	SweepSchedule string `mapstructure:"SWEEP_SCHEDULE"`
	// SweepBatchSize is how many active records one sweep iteration loads per page.
	SweepBatchSize int `mapstructure:"SWEEP_BATCH_SIZE"`
	// EvaluateMaxRetries bounds compare-and-set retries for a single record before the sweep moves on.
	EvaluateMaxRetries int `mapstructure:"EVALUATE_MAX_RETRIES"`
	// MetricsAddr is the address the sweeper serves Prometheus metrics on (e.g. :9464).
	MetricsAddr string `mapstructure:"METRICS_ADDR"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// Transition events (optional). When Kafka brokers are set, the sweeper emits
	// hit/missed transitions to Kafka for downstream notification pipelines.
	// KafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// KafkaTopic is the Kafka topic for SLA transition events (default sla-transitions).
	KafkaTopic string `mapstructure:"SLA_EVENTS_KAFKA_TOPIC"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SWEEP_SCHEDULE", "* * * * *")
	v.SetDefault("SWEEP_BATCH_SIZE", 500)
	v.SetDefault("EVALUATE_MAX_RETRIES", 3)
	v.SetDefault("METRICS_ADDR", ":9464")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("SLA_EVENTS_KAFKA_TOPIC", "sla-transitions")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.SweepSchedule == "" {
		return nil, errors.New("config: SWEEP_SCHEDULE must be set")
	}
	if cfg.SweepBatchSize <= 0 {
		return nil, errors.New("config: SWEEP_BATCH_SIZE must be positive")
	}
	if cfg.EvaluateMaxRetries < 0 {
		return nil, errors.New("config: EVALUATE_MAX_RETRIES must not be negative")
	}

	return &cfg, nil
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if transition emission is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

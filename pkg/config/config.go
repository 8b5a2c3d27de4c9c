// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for the
// search engine, the request queue, logging and metrics.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Execution policy names accepted in SearchConfig.Policy.
const (
	PolicySequential = "sequential"
	PolicyParallel   = "parallel"
)

// Config is the top-level application configuration.
type Config struct {
	Search       SearchConfig       `yaml:"search"`
	RequestQueue RequestQueueConfig `yaml:"requestQueue"`
	Logging      LoggingConfig      `yaml:"logging"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

// SearchConfig controls engine construction and how queries are executed.
type SearchConfig struct {
	StopWords  []string `yaml:"stopWords"`
	ShardCount int      `yaml:"shardCount"`
	MaxWorkers int      `yaml:"maxWorkers"`
	Policy     string   `yaml:"policy"`
}

// RequestQueueConfig sizes the trailing window of recorded requests.
type RequestQueueConfig struct {
	Window int `yaml:"window"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values, and fails if the result does not validate.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges that the engine would otherwise reject later.
func (c *Config) Validate() error {
	if c.Search.ShardCount < 1 {
		return fmt.Errorf("search.shardCount must be at least 1, got %d", c.Search.ShardCount)
	}
	if c.Search.MaxWorkers < 0 {
		return fmt.Errorf("search.maxWorkers must not be negative, got %d", c.Search.MaxWorkers)
	}
	switch c.Search.Policy {
	case PolicySequential, PolicyParallel:
	default:
		return fmt.Errorf("search.policy must be %q or %q, got %q", PolicySequential, PolicyParallel, c.Search.Policy)
	}
	if c.RequestQueue.Window < 1 {
		return fmt.Errorf("requestQueue.window must be at least 1, got %d", c.RequestQueue.Window)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			StopWords:  []string{},
			ShardCount: 8,
			MaxWorkers: 0,
			Policy:     PolicyParallel,
		},
		RequestQueue: RequestQueueConfig{
			Window: 1440,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads SP_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SP_SEARCH_STOP_WORDS"); v != "" {
		cfg.Search.StopWords = strings.Fields(v)
	}
	if v := os.Getenv("SP_SEARCH_SHARD_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.ShardCount = n
		}
	}
	if v := os.Getenv("SP_SEARCH_MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.MaxWorkers = n
		}
	}
	if v := os.Getenv("SP_SEARCH_POLICY"); v != "" {
		cfg.Search.Policy = strings.ToLower(v)
	}
	if v := os.Getenv("SP_REQUEST_QUEUE_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RequestQueue.Window = n
		}
	}
	if v := os.Getenv("SP_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SP_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SP_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("SP_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}

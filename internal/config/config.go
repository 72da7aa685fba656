// Package config provides configuration loading for covarsim. Values come
// from defaults, then an optional YAML file, then environment variables,
// in increasing precedence. Command-line flags override everything.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config contains all covarsim configuration settings.
type Config struct {
	// Simulation holds the default study parameters.
	Simulation SimulationConfig `yaml:"simulation"`

	// Database configures optional run persistence.
	Database DatabaseConfig `yaml:"database"`

	// Telemetry configures the optional OTEL metrics exporter.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Logging configures log verbosity.
	Logging LoggingConfig `yaml:"logging"`
}

// SimulationConfig holds default study parameters; each can be overridden
// per run by CLI flags.
type SimulationConfig struct {
	// Units is the dataset size per trial.
	Units int `yaml:"units"`

	// Trials is the number of simulated trials per run.
	Trials int `yaml:"trials"`

	// Mode is the assignment mechanism: "independent" or "biased".
	Mode string `yaml:"mode"`

	// Seed is the random stream seed.
	Seed uint64 `yaml:"seed"`

	// BiasStrength controls how strongly the covariate drives assignment
	// in biased mode, in [-1, 1]. Negative values reverse the direction of
	// the induced covariance.
	BiasStrength float64 `yaml:"bias_strength"`

	// Workers is the number of parallel trial workers; 1 runs sequentially.
	Workers int `yaml:"workers"`
}

// DatabaseConfig configures the libsql database used by --save.
type DatabaseConfig struct {
	// URL is a libsql URL: libsql://... for Turso, file:... for local.
	URL string `yaml:"url"`

	// AuthToken authenticates against a remote database. Unused for file URLs.
	AuthToken string `yaml:"auth_token"`
}

// TelemetryConfig configures OTLP metrics export. The COVARSIM_OTEL_*
// environment overrides are applied by the exporter adapter at export time.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets log verbosity: "debug", "info" (default), "warn", "error".
	Level string `yaml:"level"`
}

// Default returns the built-in configuration: the headline study scenario
// of 2000 trials of 20 units under independent assignment.
func Default() Config {
	return Config{
		Simulation: SimulationConfig{
			Units:        20,
			Trials:       2000,
			Mode:         "independent",
			Seed:         42,
			BiasStrength: 0.6,
			Workers:      1,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads configuration from path on top of the defaults. A missing file
// is not an error when path is empty; an explicit path must exist.
// Environment variables are applied last.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("COVARSIM_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("COVARSIM_DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("COVARSIM_AUTH_TOKEN"); v != "" {
		c.Database.AuthToken = v
	}
	if v := os.Getenv("COVARSIM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/MatchwellLabs/Faceoff/internal/ranking"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Events   EventsConfig   `yaml:"events"`
	Session  SessionConfig  `yaml:"session"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type EventsConfig struct {
	URL string `yaml:"url"`
}

// SessionConfig carries the defaults applied to new ranking sessions.
// Per-session overrides in the create request win over these.
type SessionConfig struct {
	KFactor             float64        `yaml:"k_factor"`
	ConfidenceThreshold float64        `yaml:"confidence_threshold"`
	Weights             SessionWeights `yaml:"weights"`
	DefaultBatch        int            `yaml:"default_batch"`
}

type SessionWeights struct {
	LowComparison float64 `yaml:"low_comparison"`
	Confidence    float64 `yaml:"confidence"`
	Proximity     float64 `yaml:"proximity"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RankingConfig converts the session defaults to an engine config.
func (c *Config) RankingConfig() ranking.Config {
	return ranking.Config{
		KFactor:             c.Session.KFactor,
		ConfidenceThreshold: c.Session.ConfidenceThreshold,
		Weights: ranking.WeightSet{
			LowComparison: c.Session.Weights.LowComparison,
			Confidence:    c.Session.Weights.Confidence,
			Proximity:     c.Session.Weights.Proximity,
		},
	}
}

func Load(path string) (*Config, error) {
	defaults := ranking.DefaultConfig()
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Events: EventsConfig{
			URL: "nats://localhost:4222",
		},
		Session: SessionConfig{
			KFactor:             defaults.KFactor,
			ConfidenceThreshold: defaults.ConfidenceThreshold,
			Weights: SessionWeights{
				LowComparison: defaults.Weights.LowComparison,
				Confidence:    defaults.Weights.Confidence,
				Proximity:     defaults.Weights.Proximity,
			},
			DefaultBatch: ranking.DefaultBatchSize,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.RankingConfig().Validate(); err != nil {
		return nil, fmt.Errorf("session defaults: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FACEOFF_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("FACEOFF_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("FACEOFF_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("FACEOFF_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("FACEOFF_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("FACEOFF_K_FACTOR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Session.KFactor = f
		}
	}
	if v := os.Getenv("FACEOFF_CONFIDENCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Session.ConfidenceThreshold = f
		}
	}
	if v := os.Getenv("FACEOFF_DEFAULT_BATCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Session.DefaultBatch = n
		}
	}
	if v := os.Getenv("FACEOFF_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

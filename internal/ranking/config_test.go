package ranking

import (
	"errors"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.KFactor != 32 {
		t.Errorf("expected default k-factor 32, got %f", cfg.KFactor)
	}
	if cfg.ConfidenceThreshold != 0.9 {
		t.Errorf("expected default threshold 0.9, got %f", cfg.ConfidenceThreshold)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero k-factor", func(c *Config) { c.KFactor = 0 }, true},
		{"negative k-factor", func(c *Config) { c.KFactor = -32 }, true},
		{"zero threshold", func(c *Config) { c.ConfidenceThreshold = 0 }, true},
		{"threshold above one", func(c *Config) { c.ConfidenceThreshold = 1.5 }, true},
		{"threshold exactly one", func(c *Config) { c.ConfidenceThreshold = 1 }, false},
		{"negative weight", func(c *Config) { c.Weights.Proximity = -0.1 }, true},
		{"all-zero weights", func(c *Config) { c.Weights = WeightSet{} }, true},
		{"weights need not sum to one", func(c *Config) {
			c.Weights = WeightSet{LowComparison: 2, Confidence: 3, Proximity: 1}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

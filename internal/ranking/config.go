package ranking

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid session config")

// WeightSet defines the relative importance of each match-selection factor.
// The weights do not need to sum to 1; only their relative magnitudes matter.
type WeightSet struct {
	LowComparison float64 `json:"low_comparison"`
	Confidence    float64 `json:"confidence"`
	Proximity     float64 `json:"proximity"`
}

// DefaultWeights returns the standard weight distribution.
func DefaultWeights() WeightSet {
	return WeightSet{
		LowComparison: 0.5,
		Confidence:    0.3,
		Proximity:     0.2,
	}
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	return w.LowComparison + w.Confidence + w.Proximity
}

// Validate checks that no weight is negative and at least one is positive.
func (w WeightSet) Validate() error {
	for _, v := range []float64{w.LowComparison, w.Confidence, w.Proximity} {
		if v < 0 {
			return fmt.Errorf("%w: negative weight %f", ErrInvalidConfig, v)
		}
	}
	if w.Sum() == 0 {
		return fmt.Errorf("%w: all weights are zero", ErrInvalidConfig)
	}
	return nil
}

// Config holds the tunables for one ranking session. It is fixed at
// construction and survives Reset unchanged.
type Config struct {
	KFactor             float64   `json:"k_factor"`
	ConfidenceThreshold float64   `json:"confidence_threshold"`
	Weights             WeightSet `json:"weights"`
}

// DefaultConfig returns the standard session configuration.
func DefaultConfig() Config {
	return Config{
		KFactor:             32,
		ConfidenceThreshold: 0.9,
		Weights:             DefaultWeights(),
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.KFactor <= 0 {
		return fmt.Errorf("%w: k-factor must be positive, got %f", ErrInvalidConfig, c.KFactor)
	}
	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence threshold %f must be in (0, 1]", ErrInvalidConfig, c.ConfidenceThreshold)
	}
	return c.Weights.Validate()
}

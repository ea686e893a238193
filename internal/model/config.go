package model

import "runtime"

// Config holds every tunable of a resolution run
type Config struct {
	Anchors      AnchorsConfig      `yaml:"anchors"`
	Selection    SelectionConfig    `yaml:"selection"`
	Guardrails   GuardrailsConfig   `yaml:"guardrails"`
	Fixpoint     FixpointConfig     `yaml:"fixpoint"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting"`
	Output       OutputConfig       `yaml:"output"`
}

// AnchorsConfig selects the anchor catalog source
type AnchorsConfig struct {
	File string `yaml:"file"` // empty uses the built-in catalog
}

// SelectionConfig controls anchor ranking
type SelectionConfig struct {
	K             int `yaml:"k"`
	MaxBlockItems int `yaml:"max_block_items"`
}

// GuardrailsConfig caps and pins the active anchor set
type GuardrailsConfig struct {
	Enabled          bool     `yaml:"enabled"`
	MaxActiveAnchors int      `yaml:"max_active_anchors"`
	PinIfMissing     []string `yaml:"pin_if_missing"`
	Positional       bool     `yaml:"positional"` // cut by position even if a pin is lost
}

// FixpointConfig bounds the evaluator loop
type FixpointConfig struct {
	MaxIters        int     `yaml:"max_iters"`
	ChangeTolerance int     `yaml:"change_tolerance"`
	Epsilon         float64 `yaml:"epsilon"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// RateLimitingConfig throttles batch requests per source
type RateLimitingConfig struct {
	RequestsPerSecond float64               `yaml:"requests_per_second"` // 0 disables throttling
	BurstSize         int                   `yaml:"burst_size"`
	Sources           map[string]SourceRate `yaml:"sources"` // per-source overrides
}

// SourceRate overrides the default rate for one source. A zero rate
// exempts the source.
type SourceRate struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// Throttled reports whether any source is rate limited
func (c RateLimitingConfig) Throttled() bool {
	if c.RequestsPerSecond > 0 {
		return true
	}
	for _, s := range c.Sources {
		if s.RequestsPerSecond > 0 {
			return true
		}
	}
	return false
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Selection: SelectionConfig{
			K:             5,
			MaxBlockItems: 5,
		},
		Guardrails: GuardrailsConfig{
			Enabled:          false,
			MaxActiveAnchors: 5,
			PinIfMissing:     []string{},
		},
		Fixpoint: FixpointConfig{
			MaxIters:        12,
			ChangeTolerance: 0,
			Epsilon:         1e-9,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 0,
			BurstSize:         5,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}

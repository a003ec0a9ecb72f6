// Package config defines service configuration and how it is loaded.
//
// Conventions:
// - New(ctx) returns a Config filled with defaults.
// - Load(ctx) layers a YAML file and MATCHDAY_* env vars over the defaults.
// - Every validation failure wraps ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// WorkerCount caps the batch worker pool. Zero means one per CPU minus one.
	WorkerCount int `koanf:"worker_count"`

	// DatabasePath is the sqlite file backing the league. Empty keeps
	// everything in memory.
	DatabasePath string `koanf:"database_path"`

	// WorkerDir holds the per-worker database copies.
	WorkerDir string `koanf:"worker_dir"`

	MaxSubstitutions  int     `koanf:"max_substitutions"`
	HomeAdvantage     float64 `koanf:"home_advantage"`
	InjuryProbability float64 `koanf:"injury_probability"`

	// ClockPaceMS is the wall-clock delay per simulated second for live
	// single-match runs. Batches always run flat out.
	ClockPaceMS int `koanf:"clock_pace_ms"`

	NarrativeMatchday   int `koanf:"narrative_matchday"`
	YellowCardThreshold int `koanf:"yellow_card_threshold"`
	RelegationSlots     int `koanf:"relegation_slots"`

	// RandomSeed fixes the base seed of every batch. Zero picks one at startup.
	RandomSeed int64 `koanf:"random_seed"`

	// DemoLeague seeds a generated league into an empty store on startup.
	DemoLeague bool `koanf:"demo_league"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		MaxSubstitutions:    5,
		HomeAdvantage:       5,
		InjuryProbability:   0.08,
		NarrativeMatchday:   5,
		YellowCardThreshold: 5,
		RelegationSlots:     3,
		DemoLeague:          true,
	}
}

// ClockPace returns ClockPaceMS as a duration.
func (c *Config) ClockPace() time.Duration {
	return time.Duration(c.ClockPaceMS) * time.Millisecond
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WorkerCount < 0:
		return fmt.Errorf("%w: worker_count must not be negative, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.MaxSubstitutions < 0:
		return fmt.Errorf("%w: max_substitutions must not be negative, got %d", ErrInvalidConfig, c.MaxSubstitutions)
	case c.HomeAdvantage < 0:
		return fmt.Errorf("%w: home_advantage must not be negative, got %g", ErrInvalidConfig, c.HomeAdvantage)
	case c.InjuryProbability < 0 || c.InjuryProbability > 1:
		return fmt.Errorf("%w: injury_probability must be within [0,1], got %g", ErrInvalidConfig, c.InjuryProbability)
	case c.ClockPaceMS < 0:
		return fmt.Errorf("%w: clock_pace_ms must not be negative, got %d", ErrInvalidConfig, c.ClockPaceMS)
	case c.NarrativeMatchday < 1:
		return fmt.Errorf("%w: narrative_matchday must be at least 1, got %d", ErrInvalidConfig, c.NarrativeMatchday)
	case c.YellowCardThreshold < 1:
		return fmt.Errorf("%w: yellow_card_threshold must be at least 1, got %d", ErrInvalidConfig, c.YellowCardThreshold)
	case c.RelegationSlots < 0:
		return fmt.Errorf("%w: relegation_slots must not be negative, got %d", ErrInvalidConfig, c.RelegationSlots)
	}
	return nil
}

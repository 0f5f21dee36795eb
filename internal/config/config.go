// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by every CLI command. Flags override
// the environment after Load.
type Config struct {
	DBPath        string        `env:"MECHANICS_DB"`
	ItemsPath     string        `env:"MECHANICS_ITEMS"          envDefault:"items.yaml"`
	MessagesPath  string        `env:"MECHANICS_MESSAGES"`
	Tick          time.Duration `env:"MECHANICS_TICK"           envDefault:"50ms"`
	ConditionTTL  time.Duration `env:"MECHANICS_CONDITION_TTL"  envDefault:"1s"`
	CooldownSweep time.Duration `env:"MECHANICS_COOLDOWN_SWEEP" envDefault:"5m"`
	CooldownLimit int           `env:"MECHANICS_COOLDOWN_LIMIT" envDefault:"10000"`
	LogLevel      string        `env:"MECHANICS_LOG_LEVEL"      envDefault:"info"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and the log level.
func (c Config) Validate() error {
	var errs []error
	if c.Tick <= 0 {
		errs = append(errs, fmt.Errorf("MECHANICS_TICK must be positive, got %s", c.Tick))
	}
	if c.ConditionTTL < 0 {
		errs = append(errs, fmt.Errorf("MECHANICS_CONDITION_TTL must not be negative, got %s", c.ConditionTTL))
	}
	if c.CooldownSweep <= 0 {
		errs = append(errs, fmt.Errorf("MECHANICS_COOLDOWN_SWEEP must be positive, got %s", c.CooldownSweep))
	}
	if c.CooldownLimit <= 0 {
		errs = append(errs, fmt.Errorf("MECHANICS_COOLDOWN_LIMIT must be positive, got %d", c.CooldownLimit))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level maps LogLevel to a slog level. Accepts debug, info, warn, error.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("MECHANICS_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// Package config loads process configuration for the arplace commands.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is the arsim configuration. Every field can be set from the
// environment and overridden by a command-line flag.
type Config struct {
	Scenario string `env:"ARPLACE_SCENARIO"`
	Replay   string `env:"ARPLACE_REPLAY"`
	Record   string `env:"ARPLACE_RECORD"`
	Asset    string `env:"ARPLACE_ASSET" envDefault:"models/ice.glb"`
	OutDir   string `env:"ARPLACE_OUT"`
	Every    int    `env:"ARPLACE_EVERY" envDefault:"1"`
	Lang     string `env:"ARPLACE_LANG" envDefault:"en"`
	Width    int    `env:"ARPLACE_WIDTH" envDefault:"640"`
	Height   int    `env:"ARPLACE_HEIGHT" envDefault:"480"`
	LogLevel string `env:"ARPLACE_LOG_LEVEL" envDefault:"info"`
	Renderer string `env:"ARPLACE_RENDERER" envDefault:"software"`

	OTelEndpoint string `env:"ARPLACE_OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"ARPLACE_OTEL_ENABLED" envDefault:"true"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns the configuration from the environment.
func Load() (Config, error) {
	var c Config
	if err := ParseEnv(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the combined configuration after flags were applied.
func (c Config) Validate() error {
	var errs []error
	switch {
	case c.Scenario == "" && c.Replay == "":
		errs = append(errs, errors.New("one of scenario or replay is required"))
	case c.Scenario != "" && c.Replay != "":
		errs = append(errs, errors.New("scenario and replay are mutually exclusive"))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid frame size %dx%d", c.Width, c.Height))
	}
	if c.Every <= 0 {
		errs = append(errs, fmt.Errorf("every must be positive, got %d", c.Every))
	}
	if c.Renderer != "software" && c.Renderer != "gpu" {
		errs = append(errs, fmt.Errorf("renderer must be software or gpu, got %q", c.Renderer))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

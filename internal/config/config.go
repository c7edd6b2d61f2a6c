// Package config loads the client configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/koscakluka/ema-council/core/discussion"
)

const (
	TransportHTTP      = "http"
	TransportWebSocket = "websocket"
)

var responseLengths = []string{"brief", "moderate", "detailed"}

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	BaseURL   string `env:"COUNCIL_BASE_URL"  envDefault:"http://127.0.0.1:5000"`
	Transport string `env:"COUNCIL_TRANSPORT" envDefault:"http"`

	Mode             string `env:"COUNCIL_MODE"              envDefault:"panel"`
	DiscussionLength string `env:"COUNCIL_DISCUSSION_LENGTH" envDefault:"quick"`
	DialecticTension int    `env:"COUNCIL_DIALECTIC_TENSION" envDefault:"50"`
	ResponseLength   string `env:"COUNCIL_RESPONSE_LENGTH"   envDefault:"moderate"`
	PoetryForm       string `env:"COUNCIL_POETRY_FORM"       envDefault:"spoken_word"`

	AutoSelect      bool `env:"COUNCIL_AUTO_SELECT"       envDefault:"true"`
	AutoSelectLimit int  `env:"COUNCIL_AUTO_SELECT_LIMIT" envDefault:"5"`
	Enrichment      bool `env:"COUNCIL_ENRICHMENT"        envDefault:"true"`

	// OTelEndpoint is the OTLP HTTP endpoint. Tracing is off when empty.
	OTelEndpoint string `env:"COUNCIL_OTEL_ENDPOINT"`
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

// Validate rejects values outside of their known sets. The auto select limit
// is clamped rather than rejected.
func (c *Config) Validate() error {
	var errs []error

	if c.Transport != TransportHTTP && c.Transport != TransportWebSocket {
		errs = append(errs, fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, c.Transport))
	}
	if _, err := discussion.ParseMode(c.Mode); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}
	if !discussion.ValidDiscussionLength(c.DiscussionLength) {
		errs = append(errs, fmt.Errorf("%w: unknown discussion length %q", ErrInvalidConfig, c.DiscussionLength))
	}
	if c.DialecticTension < 0 || c.DialecticTension > 100 {
		errs = append(errs, fmt.Errorf("%w: dialectic tension %d is outside 0-100", ErrInvalidConfig, c.DialecticTension))
	}
	if !slices.Contains(responseLengths, c.ResponseLength) {
		errs = append(errs, fmt.Errorf("%w: unknown response length %q", ErrInvalidConfig, c.ResponseLength))
	}
	c.AutoSelectLimit = min(max(c.AutoSelectLimit, 3), 7)

	return errors.Join(errs...)
}

// DiscussionSettings returns the tuning shared by every discussion.
func (c Config) DiscussionSettings() discussion.Settings {
	return discussion.Settings{
		DiscussionLength: c.DiscussionLength,
		DialecticTension: c.DialecticTension,
		ResponseLength:   c.ResponseLength,
		PoetryForm:       c.PoetryForm,
		AutoSelect:       c.AutoSelect,
		AutoSelectLimit:  c.AutoSelectLimit,
	}
}

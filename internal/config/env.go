// Package config loads process configuration from the environment and
// session seed files from YAML.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// ClientConfig configures the interactive session client.
type ClientConfig struct {
	// APIURL is the optimization service base address.
	APIURL         string        `env:"BAYESX_API_URL" envDefault:"http://localhost:8000"`
	RequestTimeout time.Duration `env:"BAYESX_REQUEST_TIMEOUT" envDefault:"30s"`
	MetricName     string        `env:"BAYESX_METRIC_NAME" envDefault:"Metric"`
	LogLevel       string        `env:"BAYESX_LOG_LEVEL" envDefault:"warn"`
	LogFormat      string        `env:"BAYESX_LOG_FORMAT" envDefault:"text"`
}

// ServiceConfig configures the reference optimization service.
type ServiceConfig struct {
	Addr          string  `env:"BAYESX_SERVICE_ADDR" envDefault:":8000"`
	AllowedOrigin string  `env:"BAYESX_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`
	Acquisition   string  `env:"BAYESX_ACQUISITION" envDefault:"ucb"`
	Kappa         float64 `env:"BAYESX_KAPPA" envDefault:"2.5"`
	Xi            float64 `env:"BAYESX_XI" envDefault:"0.01"`
	Alpha         float64 `env:"BAYESX_GP_ALPHA" envDefault:"0.001"`
	KernelWidth   float64 `env:"BAYESX_KERNEL_WIDTH" envDefault:"0.2"`
	GridPoints    int     `env:"BAYESX_GRID_POINTS" envDefault:"1000"`
	Candidates    int     `env:"BAYESX_CANDIDATES" envDefault:"2000"`
	RandomSeed    int64   `env:"BAYESX_RANDOM_SEED" envDefault:"1"`

	// RateLimit is in requests per second; 0 disables limiting.
	RateLimit float64 `env:"BAYESX_RATE_LIMIT" envDefault:"10"`
	RateBurst int     `env:"BAYESX_RATE_BURST" envDefault:"20"`

	LogLevel  string `env:"BAYESX_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"BAYESX_LOG_FORMAT" envDefault:"json"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	return nil
}

// LoadClientConfig parses and validates ClientConfig.
func LoadClientConfig() (ClientConfig, error) {
	var cfg ClientConfig
	if err := ParseEnv(&cfg); err != nil {
		return ClientConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return ClientConfig{}, err
	}

	return cfg, nil
}

// LoadServiceConfig parses and validates ServiceConfig.
func LoadServiceConfig() (ServiceConfig, error) {
	var cfg ServiceConfig
	if err := ParseEnv(&cfg); err != nil {
		return ServiceConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return ServiceConfig{}, err
	}

	return cfg, nil
}

// Validate checks the client settings.
func (c ClientConfig) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("BAYESX_API_URL: %w", err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BAYESX_API_URL: %q is not an http(s) address", c.APIURL)
	}

	if c.RequestTimeout < 0 {
		return errors.New("BAYESX_REQUEST_TIMEOUT: must not be negative")
	}

	return nil
}

// Validate checks the service settings.
func (c ServiceConfig) Validate() error {
	var errs []error

	switch strings.ToLower(c.Acquisition) {
	case "ucb", "pi", "ei", "thompson":
	default:
		errs = append(errs, fmt.Errorf("BAYESX_ACQUISITION: unknown %q, want ucb, pi, ei or thompson", c.Acquisition))
	}

	if c.GridPoints <= 0 {
		errs = append(errs, errors.New("BAYESX_GRID_POINTS: must be positive"))
	}

	if c.Candidates <= 0 {
		errs = append(errs, errors.New("BAYESX_CANDIDATES: must be positive"))
	}

	if c.Alpha < 0 {
		errs = append(errs, errors.New("BAYESX_GP_ALPHA: must not be negative"))
	}

	if c.KernelWidth <= 0 {
		errs = append(errs, errors.New("BAYESX_KERNEL_WIDTH: must be positive"))
	}

	if c.RateLimit < 0 {
		errs = append(errs, errors.New("BAYESX_RATE_LIMIT: must not be negative"))
	}

	if c.RateLimit > 0 && c.RateBurst <= 0 {
		errs = append(errs, errors.New("BAYESX_RATE_BURST: must be positive when rate limiting"))
	}

	return errors.Join(errs...)
}

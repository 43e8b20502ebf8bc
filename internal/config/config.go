// Package config loads client configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config controls the gateway endpoint and the token lifecycle policy.
type Config struct {
	// BaseURL is the root of the LinkCut auth gateway.
	BaseURL string `env:"LINKCUT_API_URL" envDefault:"https://api.linkcut.io"`
	// RequestTimeout bounds every gateway call.
	RequestTimeout time.Duration `env:"LINKCUT_TIMEOUT" envDefault:"30s"`
	// AccessTTL is the assumed access-token lifetime when the token itself
	// carries no usable expiry.
	AccessTTL time.Duration `env:"LINKCUT_ACCESS_TTL" envDefault:"15m"`
	// RefreshMargin is subtracted from the TTL when scheduling a refresh,
	// leaving room for clock drift and round-trip latency.
	RefreshMargin time.Duration `env:"LINKCUT_REFRESH_MARGIN" envDefault:"1m"`
	// StatePath overrides the state file location (default: user config dir).
	StatePath string `env:"LINKCUT_STATE_PATH"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// RefreshPeriod is the default scheduler period: TTL minus the safety margin,
// falling back to half the TTL when the margin eats the whole lifetime.
func (c Config) RefreshPeriod() time.Duration {
	p := c.AccessTTL - c.RefreshMargin
	if p <= 0 {
		p = c.AccessTTL / 2
	}
	return p
}

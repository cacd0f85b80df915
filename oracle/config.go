package oracle

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Config configures the external reference solver subprocess. It mirrors
// the retrieval pack's two-step "decode JSON into map[string]any, then
// mapstructure.Decode into a typed struct" convention, so unknown keys are
// ignored and missing keys simply keep their flag-supplied defaults.
type Config struct {
	Path           string `mapstructure:"path"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// DefaultTimeout is used when a Config leaves TimeoutSeconds unset.
const DefaultTimeout = 30 * time.Second

// Timeout returns the configured timeout, or DefaultTimeout if unset.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadConfig decodes an oracle Config from a JSON file. An empty path
// returns the zero Config (oracle.Solver then falls back to resolving
// satswarm-oracle on PATH).
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("oracle: read config: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return cfg, fmt.Errorf("oracle: parse config: %w", err)
	}
	if err := mapstructure.Decode(fields, &cfg); err != nil {
		return cfg, fmt.Errorf("oracle: decode config: %w", err)
	}
	return cfg, nil
}

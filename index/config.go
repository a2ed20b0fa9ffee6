package index

import (
	"errors"
	"fmt"

	"sigs.k8s.io/yaml"
)

// DefaultConcurrencyLimit bounds ResolveAll unless configured otherwise.
const DefaultConcurrencyLimit = 8

// Config is the serialized form of the resolution options, as found in a YAML or JSON
// configuration file:
//
//	concurrencyLimit: 4
//	includePrereleases: false
//	lenientVersions: true
type Config struct {
	// ConcurrencyLimit bounds ResolveAll. -1 removes the bound.
	ConcurrencyLimit int `json:"concurrencyLimit,omitempty"`
	// IncludePrereleases lets queries resolve to pre-releases they do not name.
	// Defaults to true.
	IncludePrereleases *bool `json:"includePrereleases,omitempty"`
	// LenientVersions accepts loose tags such as "v1.2".
	LenientVersions bool `json:"lenientVersions,omitempty"`
}

// DefaultConfig returns the configuration used when nothing is configured.
func DefaultConfig() *Config {
	include := true
	return &Config{
		ConcurrencyLimit:   DefaultConcurrencyLimit,
		IncludePrereleases: &include,
	}
}

// LoadConfig decodes a YAML or JSON configuration. Unset fields keep their defaults and
// unknown fields are rejected.
func LoadConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode index config: %w", err)
	}
	if cfg.IncludePrereleases == nil {
		include := true
		cfg.IncludePrereleases = &include
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ConcurrencyLimit == 0 || c.ConcurrencyLimit < -1 {
		return errors.New("concurrencyLimit must be positive or -1")
	}
	return nil
}

// Options converts the configuration into resolution options.
func (c *Config) Options() []Option {
	opts := []Option{WithConcurrencyLimit(c.ConcurrencyLimit)}
	if c.IncludePrereleases != nil && !*c.IncludePrereleases {
		opts = append(opts, WithoutPrereleases())
	}
	if c.LenientVersions {
		opts = append(opts, WithLenientVersions())
	}
	return opts
}

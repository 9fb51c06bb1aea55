package resolver

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds tier thresholds and candidate limits.
type Config struct {
	FuzzyThreshold       float64 `toml:"fuzzy_threshold"`
	NameAddressThreshold float64 `toml:"name_address_threshold"`
	AddressThreshold     float64 `toml:"address_threshold"`
	MaxCandidates        int     `toml:"max_candidates"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	FuzzyThreshold       string
	NameAddressThreshold string
	AddressThreshold     string
	MaxCandidates        string
}

// Thresholds returns the tier thresholds.
func (c *Config) Thresholds() Thresholds {
	return Thresholds{
		Fuzzy:       c.FuzzyThreshold,
		NameAddress: c.NameAddressThreshold,
		Address:     c.AddressThreshold,
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.FuzzyThreshold != 0 {
		c.FuzzyThreshold = overlay.FuzzyThreshold
	}
	if overlay.NameAddressThreshold != 0 {
		c.NameAddressThreshold = overlay.NameAddressThreshold
	}
	if overlay.AddressThreshold != 0 {
		c.AddressThreshold = overlay.AddressThreshold
	}
	if overlay.MaxCandidates != 0 {
		c.MaxCandidates = overlay.MaxCandidates
	}
}

func (c *Config) loadDefaults() {
	if c.FuzzyThreshold == 0 {
		c.FuzzyThreshold = 0.90
	}
	if c.NameAddressThreshold == 0 {
		c.NameAddressThreshold = 0.80
	}
	if c.AddressThreshold == 0 {
		c.AddressThreshold = 0.85
	}
	if c.MaxCandidates == 0 {
		c.MaxCandidates = 500
	}
}

func (c *Config) loadEnv(env *Env) {
	setFloat := func(name string, dst *float64) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	setFloat(env.FuzzyThreshold, &c.FuzzyThreshold)
	setFloat(env.NameAddressThreshold, &c.NameAddressThreshold)
	setFloat(env.AddressThreshold, &c.AddressThreshold)

	if env.MaxCandidates != "" {
		if v := os.Getenv(env.MaxCandidates); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxCandidates = n
			}
		}
	}
}

func (c *Config) validate() error {
	for name, v := range map[string]float64{
		"fuzzy_threshold":        c.FuzzyThreshold,
		"name_address_threshold": c.NameAddressThreshold,
		"address_threshold":      c.AddressThreshold,
	} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%s must be in (0, 1]: %v", name, v)
		}
	}
	if c.MaxCandidates < 1 {
		return fmt.Errorf("max_candidates must be positive")
	}
	return nil
}

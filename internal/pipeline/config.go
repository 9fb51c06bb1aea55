package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/intake/internal/signals"
)

// Config holds pipeline timeouts and signal lease settings. Durations are
// Go duration strings. The lease must outlast an extraction plus a commit.
type Config struct {
	ExtractionTimeout string `toml:"extraction_timeout"`
	CommitTimeout     string `toml:"commit_timeout"`
	Lease             string `toml:"lease"`
	PollInterval      string `toml:"poll_interval"`
	MaxWait           string `toml:"max_wait"`
	DefaultSource     string `toml:"default_source"`
	DefaultDomain     string `toml:"default_domain"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ExtractionTimeout string
	CommitTimeout     string
	Lease             string
	PollInterval      string
	MaxWait           string
	DefaultSource     string
	DefaultDomain     string
}

// ExtractionTimeoutDuration returns ExtractionTimeout as a time.Duration.
func (c *Config) ExtractionTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ExtractionTimeout)
	return d
}

// CommitTimeoutDuration returns CommitTimeout as a time.Duration.
func (c *Config) CommitTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.CommitTimeout)
	return d
}

// SignalOptions returns the ledger lease and wait settings.
func (c *Config) SignalOptions() signals.Options {
	lease, _ := time.ParseDuration(c.Lease)
	poll, _ := time.ParseDuration(c.PollInterval)
	wait, _ := time.ParseDuration(c.MaxWait)
	return signals.Options{
		Lease:        lease,
		PollInterval: poll,
		MaxWait:      wait,
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
	if overlay.ExtractionTimeout != "" {
		c.ExtractionTimeout = overlay.ExtractionTimeout
	}
	if overlay.CommitTimeout != "" {
		c.CommitTimeout = overlay.CommitTimeout
	}
	if overlay.Lease != "" {
		c.Lease = overlay.Lease
	}
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.MaxWait != "" {
		c.MaxWait = overlay.MaxWait
	}
	if overlay.DefaultSource != "" {
		c.DefaultSource = overlay.DefaultSource
	}
	if overlay.DefaultDomain != "" {
		c.DefaultDomain = overlay.DefaultDomain
	}
}

func (c *Config) loadDefaults() {
	if c.ExtractionTimeout == "" {
		c.ExtractionTimeout = "2m"
	}
	if c.CommitTimeout == "" {
		c.CommitTimeout = "30s"
	}
	if c.Lease == "" {
		c.Lease = "5m"
	}
	if c.PollInterval == "" {
		c.PollInterval = "250ms"
	}
	if c.MaxWait == "" {
		c.MaxWait = "30s"
	}
	if c.DefaultSource == "" {
		c.DefaultSource = "upload"
	}
	if c.DefaultDomain == "" {
		c.DefaultDomain = "financial"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.ExtractionTimeout, &c.ExtractionTimeout)
	set(env.CommitTimeout, &c.CommitTimeout)
	set(env.Lease, &c.Lease)
	set(env.PollInterval, &c.PollInterval)
	set(env.MaxWait, &c.MaxWait)
	set(env.DefaultSource, &c.DefaultSource)
	set(env.DefaultDomain, &c.DefaultDomain)
}

func (c *Config) validate() error {
	durations := []struct {
		name  string
		value string
	}{
		{"extraction_timeout", c.ExtractionTimeout},
		{"commit_timeout", c.CommitTimeout},
		{"lease", c.Lease},
		{"poll_interval", c.PollInterval},
		{"max_wait", c.MaxWait},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
		if v <= 0 {
			return fmt.Errorf("%s must be positive", d.name)
		}
	}

	lease, _ := time.ParseDuration(c.Lease)
	if lease <= c.ExtractionTimeoutDuration()+c.CommitTimeoutDuration() {
		return fmt.Errorf("lease (%s) must exceed extraction_timeout (%s) plus commit_timeout (%s)",
			c.Lease, c.ExtractionTimeout, c.CommitTimeout)
	}
	return nil
}

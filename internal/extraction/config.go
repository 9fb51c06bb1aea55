package extraction

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config holds gateway limits and pricing.
type Config struct {
	CostPerPage       string  `toml:"cost_per_page"`
	MaxPages          int     `toml:"max_pages"`
	DPI               int     `toml:"dpi"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	CostPerPage       string
	MaxPages          string
	DPI               string
	RequestsPerSecond string
	Burst             string
}

// Cost returns CostPerPage as a decimal. Finalize guarantees it parses.
func (c *Config) Cost() decimal.Decimal {
	d, err := decimal.NewFromString(c.CostPerPage)
	if err != nil {
		return decimal.Zero
	}
	return d
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
	if overlay.CostPerPage != "" {
		c.CostPerPage = overlay.CostPerPage
	}
	if overlay.MaxPages != 0 {
		c.MaxPages = overlay.MaxPages
	}
	if overlay.DPI != 0 {
		c.DPI = overlay.DPI
	}
	if overlay.RequestsPerSecond != 0 {
		c.RequestsPerSecond = overlay.RequestsPerSecond
	}
	if overlay.Burst != 0 {
		c.Burst = overlay.Burst
	}
}

func (c *Config) loadDefaults() {
	if c.CostPerPage == "" {
		c.CostPerPage = "0.01"
	}
	if c.MaxPages == 0 {
		c.MaxPages = 20
	}
	if c.DPI == 0 {
		c.DPI = 300
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 2
	}
	if c.Burst == 0 {
		c.Burst = 4
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.CostPerPage != "" {
		if v := os.Getenv(env.CostPerPage); v != "" {
			c.CostPerPage = v
		}
	}
	if env.MaxPages != "" {
		if v := os.Getenv(env.MaxPages); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxPages = n
			}
		}
	}
	if env.DPI != "" {
		if v := os.Getenv(env.DPI); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.DPI = n
			}
		}
	}
	if env.RequestsPerSecond != "" {
		if v := os.Getenv(env.RequestsPerSecond); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.RequestsPerSecond = f
			}
		}
	}
	if env.Burst != "" {
		if v := os.Getenv(env.Burst); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Burst = n
			}
		}
	}
}

func (c *Config) validate() error {
	cost, err := decimal.NewFromString(c.CostPerPage)
	if err != nil {
		return fmt.Errorf("invalid cost_per_page: %w", err)
	}
	if cost.IsNegative() {
		return fmt.Errorf("cost_per_page must not be negative")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("max_pages must be positive")
	}
	if c.DPI < 72 || c.DPI > 600 {
		return fmt.Errorf("dpi must be between 72 and 600: %d", c.DPI)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive")
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be positive")
	}
	return nil
}
